package models

import (
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/infrastructure/ledger"
)

// CompanyRecord is a res.company row
type CompanyRecord struct {
	ID       int64       `json:"id"`
	Name     ledger.Text `json:"name"`
	Currency ledger.Ref  `json:"currency_id"`
}

// ToDomain converts the record to a company reference
func (r *CompanyRecord) ToDomain() identity.Company {
	return identity.Company{ID: r.ID, Name: string(r.Name), CurrencyID: r.Currency.ID}
}
