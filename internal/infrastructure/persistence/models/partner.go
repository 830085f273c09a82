package models

import (
	"github.com/erp/connector/internal/domain/partner"
	"github.com/erp/connector/internal/infrastructure/ledger"
)

// PartnerRecord is a res.partner row
type PartnerRecord struct {
	ID           int64       `json:"id"`
	Name         ledger.Text `json:"name"`
	VAT          ledger.Text `json:"vat"`
	Street       ledger.Text `json:"street"`
	Street2      ledger.Text `json:"street2"`
	Zip          ledger.Text `json:"zip"`
	City         ledger.Text `json:"city"`
	Country      ledger.Ref  `json:"country_id"`
	Phone        ledger.Text `json:"phone"`
	Mobile       ledger.Text `json:"mobile"`
	Email        ledger.Text `json:"email"`
	Website      ledger.Text `json:"website"`
	Lang         ledger.Text `json:"lang"`
	CategoryIDs  ledger.IDs  `json:"category_id"`
	Company      ledger.Ref  `json:"company_id"`
	CompanyType  ledger.Text `json:"company_type"`
	IsCompany    bool        `json:"is_company"`
	CustomerRank int         `json:"customer_rank"`
	SupplierRank int         `json:"supplier_rank"`
	Parent       ledger.Ref  `json:"parent_id"`
	Active       bool        `json:"active"`
}

// ToDomain converts the record to a partner entity
func (r *PartnerRecord) ToDomain() *partner.Partner {
	return &partner.Partner{
		ID:           r.ID,
		Name:         string(r.Name),
		VAT:          string(r.VAT),
		Street:       string(r.Street),
		Street2:      string(r.Street2),
		Zip:          string(r.Zip),
		City:         string(r.City),
		Country:      r.Country.Shared(),
		Phone:        string(r.Phone),
		Mobile:       string(r.Mobile),
		Email:        string(r.Email),
		Website:      string(r.Website),
		Lang:         string(r.Lang),
		CategoryIDs:  []int64(r.CategoryIDs),
		Company:      r.Company.Shared(),
		CompanyType:  string(r.CompanyType),
		IsCompany:    r.IsCompany,
		CustomerRank: r.CustomerRank,
		SupplierRank: r.SupplierRank,
		Parent:       r.Parent.Shared(),
		Active:       r.Active,
	}
}

// BankRecord is a res.bank row
type BankRecord struct {
	ID     int64       `json:"id"`
	Name   ledger.Text `json:"name"`
	BIC    ledger.Text `json:"bic"`
	Active bool        `json:"active"`
}

// ToDomain converts the record to a bank entity
func (r *BankRecord) ToDomain() partner.Bank {
	return partner.Bank{ID: r.ID, Name: string(r.Name), BIC: string(r.BIC), Active: r.Active}
}

// BankAccountRecord is a res.partner.bank row
type BankAccountRecord struct {
	ID        int64       `json:"id"`
	AccNumber ledger.Text `json:"acc_number"`
	Bank      ledger.Ref  `json:"bank_id"`
	Partner   ledger.Ref  `json:"partner_id"`
	Currency  ledger.Ref  `json:"currency_id"`
	Company   ledger.Ref  `json:"company_id"`
	Active    bool        `json:"active"`
}

// ToDomain converts the record to a bank account entity
func (r *BankAccountRecord) ToDomain() partner.BankAccount {
	return partner.BankAccount{
		ID:        r.ID,
		AccNumber: string(r.AccNumber),
		Bank:      r.Bank.Shared(),
		BankName:  r.Bank.Name,
		Partner:   r.Partner.Shared(),
		Currency:  r.Currency.Shared(),
		Company:   r.Company.Shared(),
		Active:    r.Active,
	}
}
