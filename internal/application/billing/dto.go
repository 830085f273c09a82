package billing

import (
	"strings"

	"github.com/erp/connector/internal/domain/billing"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Bill DTOs
// =============================================================================

// LineRequest is one invoice line in a bill request
type LineRequest struct {
	ProductID *shared.ID       `json:"product_id"`
	Name      string           `json:"name" binding:"max=500"`
	Quantity  *decimal.Decimal `json:"quantity"`
	PriceUnit decimal.Decimal  `json:"price_unit"`
	TaxIDs    []int64          `json:"tax_ids" binding:"omitempty,dive,gt=0"`
	AccountID shared.ID        `json:"account_id"`
}

// ToInput converts the request into the domain line input. An omitted
// quantity becomes the ledger default.
func (r LineRequest) ToInput() billing.LineInput {
	qty := billing.DefaultQuantity
	if r.Quantity != nil {
		qty = *r.Quantity
	}
	return billing.LineInput{
		ProductID: r.ProductID,
		Name:      strings.TrimSpace(r.Name),
		Quantity:  qty,
		PriceUnit: r.PriceUnit,
		TaxIDs:    r.TaxIDs,
		AccountID: r.AccountID,
	}
}

// CreateBillRequest represents a request to create a bill with its lines
type CreateBillRequest struct {
	MoveType         string        `json:"move_type" binding:"omitempty,oneof=in_invoice out_invoice in_refund out_refund"`
	PartnerID        *shared.ID    `json:"partner_id" binding:"required"`
	InvoiceDate      string        `json:"invoice_date" binding:"omitempty,datetime=2006-01-02"`
	InvoiceDateDue   string        `json:"invoice_date_due" binding:"omitempty,datetime=2006-01-02"`
	Ref              string        `json:"ref" binding:"max=200"`
	CurrencyID       *shared.ID    `json:"currency_id"`
	CompanyID        *shared.ID    `json:"company_id"`
	JournalID        *shared.ID    `json:"journal_id"`
	PaymentReference string        `json:"payment_reference" binding:"max=200"`
	InvoiceOrigin    string        `json:"invoice_origin" binding:"max=200"`
	Lines            []LineRequest `json:"invoice_line_ids" binding:"omitempty,max=200,dive"`
}

// ToInput converts the request into the orchestrator input
func (r CreateBillRequest) ToInput() CreateBillInput {
	fields := headerFields(r.MoveType, r.InvoiceDate, r.InvoiceDateDue, r.Ref, r.PaymentReference, r.InvoiceOrigin)
	setID(fields, "partner_id", r.PartnerID)
	setID(fields, "currency_id", r.CurrencyID)
	setID(fields, "company_id", r.CompanyID)
	setID(fields, "journal_id", r.JournalID)
	return CreateBillInput{Fields: fields, Lines: toLines(r.Lines)}
}

// UpdateBillRequest replaces a draft bill's header and, when
// invoice_line_ids is present, all of its lines
type UpdateBillRequest struct {
	MoveType         string         `json:"move_type" binding:"omitempty,oneof=in_invoice out_invoice in_refund out_refund"`
	PartnerID        *shared.ID     `json:"partner_id"`
	InvoiceDate      string         `json:"invoice_date" binding:"omitempty,datetime=2006-01-02"`
	InvoiceDateDue   string         `json:"invoice_date_due" binding:"omitempty,datetime=2006-01-02"`
	Ref              string         `json:"ref" binding:"max=200"`
	CurrencyID       *shared.ID     `json:"currency_id"`
	CompanyID        *shared.ID     `json:"company_id"`
	JournalID        *shared.ID     `json:"journal_id"`
	PaymentReference string         `json:"payment_reference" binding:"max=200"`
	InvoiceOrigin    string         `json:"invoice_origin" binding:"max=200"`
	Lines            *[]LineRequest `json:"invoice_line_ids" binding:"omitempty,dive"`
}

// ToInput converts the request into the orchestrator input
func (r UpdateBillRequest) ToInput() UpdateBillInput {
	fields := headerFields(r.MoveType, r.InvoiceDate, r.InvoiceDateDue, r.Ref, r.PaymentReference, r.InvoiceOrigin)
	setID(fields, "partner_id", r.PartnerID)
	setID(fields, "currency_id", r.CurrencyID)
	setID(fields, "company_id", r.CompanyID)
	setID(fields, "journal_id", r.JournalID)
	in := UpdateBillInput{Fields: fields}
	if r.Lines != nil {
		in.ReplaceLines = true
		in.Lines = toLines(*r.Lines)
	}
	return in
}

// ListBillsRequest holds listing query parameters
type ListBillsRequest struct {
	State     string `form:"state" binding:"omitempty,oneof=draft posted"`
	PartnerID string `form:"partner_id" binding:"max=20"`
	MoveType  string `form:"move_type" binding:"omitempty,oneof=in_invoice out_invoice in_refund out_refund"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// =============================================================================
// Inputs and results
// =============================================================================

// CreateBillInput is the header plus the lines to attach
type CreateBillInput struct {
	Fields shared.Fields
	Lines  []billing.LineInput
}

// UpdateBillInput is a full update. ReplaceLines is set when the caller sent
// a line list, even an empty one.
type UpdateBillInput struct {
	Fields       shared.Fields
	Lines        []billing.LineInput
	ReplaceLines bool
}

// RowAction selects what EditRow does
type RowAction string

const (
	RowAdd    RowAction = "add"
	RowDelete RowAction = "delete"
)

// EditRowInput is a single line edit
type EditRowInput struct {
	Action RowAction
	LineID int64
	Line   billing.LineInput
}

// BillWithWarnings is returned by the line-writing operations
type BillWithWarnings struct {
	Bill         *billing.Bill    `json:"bill"`
	InvalidLines []shared.Warning `json:"invalidLines"`
}

func headerFields(moveType, date, due, ref, payRef, origin string) shared.Fields {
	fields := shared.Fields{}
	for k, v := range map[string]string{
		"move_type":         moveType,
		"invoice_date":      date,
		"invoice_date_due":  due,
		"ref":               ref,
		"payment_reference": payRef,
		"invoice_origin":    origin,
	} {
		if v = strings.TrimSpace(v); v != "" {
			fields[k] = v
		}
	}
	return fields
}

func toLines(reqs []LineRequest) []billing.LineInput {
	lines := make([]billing.LineInput, 0, len(reqs))
	for _, l := range reqs {
		lines = append(lines, l.ToInput())
	}
	return lines
}

// setID forwards any id the caller sent, including an invalid one, so the
// header check can reject it
func setID(f shared.Fields, key string, id *shared.ID) {
	if id != nil {
		f[key] = id.Int64()
	}
}
