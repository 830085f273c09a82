package partner

import (
	"strings"

	"github.com/erp/connector/internal/domain/partner"
	"github.com/erp/connector/internal/domain/shared"
)

// =============================================================================
// Partner DTOs
// =============================================================================

// CreatePartnerRequest represents a request to create a partner with its bank accounts
type CreatePartnerRequest struct {
	Name         string               `json:"name" binding:"required,min=1,max=200"`
	Role         string               `json:"role" binding:"omitempty,oneof=client provider both"`
	IsCompany    *bool                `json:"is_company"`
	CompanyType  string               `json:"company_type" binding:"omitempty,oneof=person company"`
	Lang         string               `json:"lang" binding:"omitempty,locale"`
	Mobile       string               `json:"mobile" binding:"omitempty,min=7,max=32"`
	Phone        string               `json:"phone" binding:"omitempty,min=7,max=32"`
	VAT          string               `json:"vat" binding:"omitempty,min=5,max=32"`
	Email        string               `json:"email" binding:"omitempty,email,max=200"`
	Street       string               `json:"street" binding:"max=200"`
	Street2      string               `json:"street2" binding:"max=200"`
	Zip          string               `json:"zip" binding:"max=20"`
	City         string               `json:"city" binding:"max=100"`
	Website      string               `json:"website" binding:"omitempty,url"`
	CountryID    *shared.ID           `json:"country_id"`
	CompanyID    *shared.ID           `json:"company_id"`
	ParentID     *shared.ID           `json:"parent_id"`
	CustomerRank *int                 `json:"customer_rank" binding:"omitempty,gte=0"`
	SupplierRank *int                 `json:"supplier_rank" binding:"omitempty,gte=0"`
	BankAccounts []BankAccountRequest `json:"bank_accounts" binding:"omitempty,max=50,dive"`
}

// ToInput converts the request into the orchestrator input. Empty strings
// are left out so they never overwrite ledger defaults.
func (r CreatePartnerRequest) ToInput() CreatePartnerInput {
	fields := shared.Fields{"name": strings.TrimSpace(r.Name)}
	setString(fields, "company_type", r.CompanyType)
	setString(fields, "lang", r.Lang)
	setString(fields, "mobile", r.Mobile)
	setString(fields, "phone", r.Phone)
	setString(fields, "vat", r.VAT)
	setString(fields, "email", r.Email)
	setString(fields, "street", r.Street)
	setString(fields, "street2", r.Street2)
	setString(fields, "zip", r.Zip)
	setString(fields, "city", r.City)
	setString(fields, "website", r.Website)
	setID(fields, "country_id", r.CountryID)
	setID(fields, "company_id", r.CompanyID)
	setID(fields, "parent_id", r.ParentID)
	if r.IsCompany != nil {
		fields["is_company"] = *r.IsCompany
	}
	if r.CustomerRank != nil {
		fields["customer_rank"] = *r.CustomerRank
	}
	if r.SupplierRank != nil {
		fields["supplier_rank"] = *r.SupplierRank
	}

	accounts := make([]partner.BankAccountInput, 0, len(r.BankAccounts))
	for _, a := range r.BankAccounts {
		accounts = append(accounts, a.ToInput())
	}
	return CreatePartnerInput{Fields: fields, BankAccounts: accounts}
}

// UpdatePartnerRequest represents a partial partner update
type UpdatePartnerRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=200"`
	IsCompany   *bool      `json:"is_company"`
	CompanyType *string    `json:"company_type" binding:"omitempty,oneof=person company"`
	Lang        *string    `json:"lang" binding:"omitempty,locale"`
	Mobile      *string    `json:"mobile" binding:"omitempty,min=7,max=32"`
	Phone       *string    `json:"phone" binding:"omitempty,min=7,max=32"`
	VAT         *string    `json:"vat" binding:"omitempty,min=5,max=32"`
	Email       *string    `json:"email" binding:"omitempty,email,max=200"`
	Street      *string    `json:"street" binding:"omitempty,max=200"`
	Street2     *string    `json:"street2" binding:"omitempty,max=200"`
	Zip         *string    `json:"zip" binding:"omitempty,max=20"`
	City        *string    `json:"city" binding:"omitempty,max=100"`
	Website     *string    `json:"website" binding:"omitempty,url"`
	CountryID   *shared.ID `json:"country_id"`
	CompanyID   *shared.ID `json:"company_id"`
	ParentID    *shared.ID `json:"parent_id"`
}

// ToFields returns the fields the caller set
func (r UpdatePartnerRequest) ToFields() shared.Fields {
	fields := shared.Fields{}
	strs := map[string]*string{
		"name": r.Name, "company_type": r.CompanyType, "lang": r.Lang,
		"mobile": r.Mobile, "phone": r.Phone, "vat": r.VAT, "email": r.Email,
		"street": r.Street, "street2": r.Street2, "zip": r.Zip, "city": r.City,
		"website": r.Website,
	}
	for k, v := range strs {
		if v != nil {
			fields[k] = strings.TrimSpace(*v)
		}
	}
	setID(fields, "country_id", r.CountryID)
	setID(fields, "company_id", r.CompanyID)
	setID(fields, "parent_id", r.ParentID)
	if r.IsCompany != nil {
		fields["is_company"] = *r.IsCompany
	}
	return fields
}

// ListPartnersRequest holds listing query parameters
type ListPartnersRequest struct {
	CompanyID string `form:"company_id" binding:"max=20"`
	Name      string `form:"name" binding:"max=200"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// =============================================================================
// Bank DTOs
// =============================================================================

// BankAccountRequest is one bank account in a partner request
type BankAccountRequest struct {
	AccNumber  string     `json:"acc_number" binding:"max=64"`
	BankName   string     `json:"bank_name" binding:"max=200"`
	BIC        string     `json:"bic" binding:"omitempty,min=8,max=11,alphanum"`
	CurrencyID *shared.ID `json:"currency_id"`
	CompanyID  *shared.ID `json:"company_id"`
}

// ToInput converts the request into the domain input
func (r BankAccountRequest) ToInput() partner.BankAccountInput {
	return partner.BankAccountInput{
		AccNumber:  r.AccNumber,
		CurrencyID: r.CurrencyID,
		CompanyID:  r.CompanyID,
		Bank:       partner.BankInput{Name: strings.TrimSpace(r.BankName), BIC: strings.TrimSpace(r.BIC)},
	}
}

// CreateBankAccountRequest creates a standalone bank account for a partner
type CreateBankAccountRequest struct {
	PartnerID *shared.ID `json:"partner_id" binding:"required"`
	BankAccountRequest
}

// CreateBankRequest represents a request to create a bank
type CreateBankRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
	BIC  string `json:"bic" binding:"omitempty,min=8,max=11,alphanum"`
}

// =============================================================================
// Results
// =============================================================================

// CreatePartnerInput is the orchestrator input: free-form partner fields
// plus the accounts to attach in order
type CreatePartnerInput struct {
	Fields       shared.Fields
	BankAccounts []partner.BankAccountInput
}

// PartnerWithAccounts is returned by CreateWithBankAccounts
type PartnerWithAccounts struct {
	Partner            *partner.Partner      `json:"partner"`
	BankAccountResults []partner.BankAccount `json:"bankAccountResults"`
	BankAccountInvalid []shared.Warning      `json:"bankAccountInvalid"`
}

func setString(f shared.Fields, key, v string) {
	if v = strings.TrimSpace(v); v != "" {
		f[key] = v
	}
}

// setID forwards any id the caller sent, including an invalid one, so the
// service can reject it
func setID(f shared.Fields, key string, id *shared.ID) {
	if id != nil {
		f[key] = id.Int64()
	}
}
