// Package catalog models the ledger's product templates.
package catalog

import (
	"context"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductFields is the writable whitelist for product.template
var ProductFields = shared.NewFieldSet(
	"name", "default_code", "type", "list_price", "standard_price",
	"sale_ok", "purchase_ok", "description", "company_id",
)

// ReadFields is requested on every product read
var ReadFields = []string{
	"id", "name", "default_code", "type", "list_price", "standard_price",
	"sale_ok", "purchase_ok", "description", "company_id", "active",
}

// Product is a product.template record
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	DefaultCode   string          `json:"default_code,omitempty"`
	Type          string          `json:"type,omitempty"`
	ListPrice     decimal.Decimal `json:"list_price"`
	StandardPrice decimal.Decimal `json:"standard_price"`
	SaleOK        bool            `json:"sale_ok"`
	PurchaseOK    bool            `json:"purchase_ok"`
	Description   string          `json:"description,omitempty"`
	Company       *shared.Ref     `json:"company_id,omitempty"`
	Active        bool            `json:"active"`
}

// Filter narrows product listings
type Filter struct {
	CompanyID int64
	Name      string
	Limit     int
}

// ProductRepository reads and writes product.template records
type ProductRepository interface {
	Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error)
	FindByID(ctx context.Context, cred identity.Credential, id int64) (*Product, error)
	FindAll(ctx context.Context, cred identity.Credential, filter Filter) ([]Product, error)
	Create(ctx context.Context, cred identity.Credential, fields shared.Fields) (int64, error)
	Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields) error
}
