package models

import (
	"github.com/erp/connector/internal/domain/billing"
	"github.com/erp/connector/internal/infrastructure/ledger"
	"github.com/shopspring/decimal"
)

// BillRecord is an account.move row
type BillRecord struct {
	ID               int64           `json:"id"`
	Name             ledger.Text     `json:"name"`
	MoveType         ledger.Text     `json:"move_type"`
	Partner          ledger.Ref      `json:"partner_id"`
	InvoiceDate      ledger.Text     `json:"invoice_date"`
	InvoiceDateDue   ledger.Text     `json:"invoice_date_due"`
	Ref              ledger.Text     `json:"ref"`
	Currency         ledger.Ref      `json:"currency_id"`
	Company          ledger.Ref      `json:"company_id"`
	Journal          ledger.Ref      `json:"journal_id"`
	PaymentReference ledger.Text     `json:"payment_reference"`
	InvoiceOrigin    ledger.Text     `json:"invoice_origin"`
	LineIDs          ledger.IDs      `json:"invoice_line_ids"`
	AmountUntaxed    decimal.Decimal `json:"amount_untaxed"`
	AmountTax        decimal.Decimal `json:"amount_tax"`
	AmountTotal      decimal.Decimal `json:"amount_total"`
	State            ledger.Text     `json:"state"`
}

// ToDomain converts the record to a bill without its lines
func (r *BillRecord) ToDomain() *billing.Bill {
	lineIDs := []int64(r.LineIDs)
	if lineIDs == nil {
		lineIDs = []int64{}
	}
	return &billing.Bill{
		ID:               r.ID,
		Name:             string(r.Name),
		MoveType:         billing.MoveType(r.MoveType),
		Partner:          r.Partner.Shared(),
		InvoiceDate:      string(r.InvoiceDate),
		InvoiceDateDue:   string(r.InvoiceDateDue),
		Ref:              string(r.Ref),
		Currency:         r.Currency.Shared(),
		Company:          r.Company.Shared(),
		Journal:          r.Journal.Shared(),
		PaymentReference: string(r.PaymentReference),
		InvoiceOrigin:    string(r.InvoiceOrigin),
		LineIDs:          lineIDs,
		Lines:            []billing.Line{},
		AmountUntaxed:    r.AmountUntaxed,
		AmountTax:        r.AmountTax,
		AmountTotal:      r.AmountTotal,
		State:            billing.State(r.State),
	}
}

// LineRecord is an account.move.line row
type LineRecord struct {
	ID            int64           `json:"id"`
	Move          ledger.Ref      `json:"move_id"`
	Product       ledger.Ref      `json:"product_id"`
	Name          ledger.Text     `json:"name"`
	Quantity      decimal.Decimal `json:"quantity"`
	PriceUnit     decimal.Decimal `json:"price_unit"`
	TaxIDs        ledger.IDs      `json:"tax_ids"`
	Account       ledger.Ref      `json:"account_id"`
	PriceSubtotal decimal.Decimal `json:"price_subtotal"`
	PriceTotal    decimal.Decimal `json:"price_total"`
}

// ToDomain converts the record to a bill line
func (r *LineRecord) ToDomain() billing.Line {
	return billing.Line{
		ID:            r.ID,
		Product:       r.Product.Shared(),
		Name:          string(r.Name),
		Quantity:      r.Quantity,
		PriceUnit:     r.PriceUnit,
		TaxIDs:        []int64(r.TaxIDs),
		Account:       r.Account.Shared(),
		PriceSubtotal: r.PriceSubtotal,
		PriceTotal:    r.PriceTotal,
	}
}
