package partner

import (
	"context"
	"strings"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
)

// BankAccountFields is the writable whitelist for res.partner.bank
var BankAccountFields = shared.NewFieldSet("acc_number", "currency_id", "company_id")

// BankAccount is a res.partner.bank record
type BankAccount struct {
	ID        int64       `json:"id"`
	AccNumber string      `json:"acc_number"`
	Bank      *shared.Ref `json:"bank_id,omitempty"`
	BankName  string      `json:"bank_name,omitempty"`
	Partner   *shared.Ref `json:"partner_id,omitempty"`
	Currency  *shared.Ref `json:"currency_id,omitempty"`
	Company   *shared.Ref `json:"company_id,omitempty"`
	Active    bool        `json:"active"`
}

// BankInput names the bank an account belongs to
type BankInput struct {
	Name string `json:"bank_name"`
	BIC  string `json:"bic,omitempty"`
}

// BankAccountInput is one requested bank account
type BankAccountInput struct {
	AccNumber  string     `json:"acc_number"`
	CurrencyID *shared.ID `json:"currency_id,omitempty"`
	CompanyID  *shared.ID `json:"company_id,omitempty"`
	Bank       BankInput  `json:"bank"`
}

// NormalizedNumber is the key used to detect duplicates within one request
func (in BankAccountInput) NormalizedNumber() string {
	return strings.ToUpper(strings.Join(strings.Fields(in.AccNumber), ""))
}

// Fields returns the projected writable fields of the account. Ids the
// caller sent are kept even when invalid.
func (in BankAccountInput) Fields() shared.Fields {
	raw := shared.Fields{"acc_number": strings.TrimSpace(in.AccNumber)}
	if in.CurrencyID != nil {
		raw["currency_id"] = in.CurrencyID.Int64()
	}
	if in.CompanyID != nil {
		raw["company_id"] = in.CompanyID.Int64()
	}
	return shared.Project(raw, BankAccountFields)
}

// AccountRefs names the entities referenced by a bank account
var AccountRefs = shared.Refs{"currency_id": "currency", "company_id": "company"}

// BankAccountRepository reads and writes res.partner.bank records
type BankAccountRepository interface {
	Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error)
	FindByID(ctx context.Context, cred identity.Credential, id int64) (*BankAccount, error)

	// FindByPartner lists the partner's accounts, optionally narrowed to accNumber
	FindByPartner(ctx context.Context, cred identity.Credential, partnerID int64, accNumber string) ([]BankAccount, error)

	Create(ctx context.Context, cred identity.Credential, fields shared.Fields) (int64, error)
	Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields) error

	// Archive soft-deletes the account (active=false)
	Archive(ctx context.Context, cred identity.Credential, id int64) error
}
