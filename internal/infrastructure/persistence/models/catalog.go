package models

import (
	"github.com/erp/connector/internal/domain/catalog"
	"github.com/erp/connector/internal/infrastructure/ledger"
	"github.com/shopspring/decimal"
)

// ProductRecord is a product.template row
type ProductRecord struct {
	ID            int64           `json:"id"`
	Name          ledger.Text     `json:"name"`
	DefaultCode   ledger.Text     `json:"default_code"`
	Type          ledger.Text     `json:"type"`
	ListPrice     decimal.Decimal `json:"list_price"`
	StandardPrice decimal.Decimal `json:"standard_price"`
	SaleOK        bool            `json:"sale_ok"`
	PurchaseOK    bool            `json:"purchase_ok"`
	Description   ledger.Text     `json:"description"`
	Company       ledger.Ref      `json:"company_id"`
	Active        bool            `json:"active"`
}

// ToDomain converts the record to a product entity
func (r *ProductRecord) ToDomain() *catalog.Product {
	return &catalog.Product{
		ID:            r.ID,
		Name:          string(r.Name),
		DefaultCode:   string(r.DefaultCode),
		Type:          string(r.Type),
		ListPrice:     r.ListPrice,
		StandardPrice: r.StandardPrice,
		SaleOK:        r.SaleOK,
		PurchaseOK:    r.PurchaseOK,
		Description:   string(r.Description),
		Company:       r.Company.Shared(),
		Active:        r.Active,
	}
}
