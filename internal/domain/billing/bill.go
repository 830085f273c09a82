// Package billing models ledger bills (account.move) and their invoice lines.
//
// A bill is editable while it is in draft. Confirmation moves it to posted,
// after which no line or header edit is attempted.
package billing

import (
	"context"
	"strings"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// State is the lifecycle state reported by the ledger
type State string

const (
	StateDraft  State = "draft"
	StatePosted State = "posted"
	StateCancel State = "cancel"
)

// StateFilter narrows a bill lookup to one state; the zero value matches any
type StateFilter string

const (
	FilterNone   StateFilter = ""
	FilterDraft  StateFilter = StateFilter(StateDraft)
	FilterPosted StateFilter = StateFilter(StatePosted)
)

// ParseStateFilter parses the state query parameter
func ParseStateFilter(s string) (StateFilter, error) {
	switch StateFilter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterNone:
		return FilterNone, nil
	case FilterDraft:
		return FilterDraft, nil
	case FilterPosted:
		return FilterPosted, nil
	default:
		return "", shared.InvalidInput("unknown bill state %q, expected draft or posted", s)
	}
}

// Matches reports whether state satisfies the filter
func (f StateFilter) Matches(s State) bool {
	return f == FilterNone || State(f) == s
}

// MoveType is the ledger's document type
type MoveType string

const (
	MoveInInvoice  MoveType = "in_invoice"
	MoveOutInvoice MoveType = "out_invoice"
	MoveInRefund   MoveType = "in_refund"
	MoveOutRefund  MoveType = "out_refund"
)

// Valid reports whether the move type is one the ledger accepts
func (m MoveType) Valid() bool {
	switch m {
	case MoveInInvoice, MoveOutInvoice, MoveInRefund, MoveOutRefund:
		return true
	}
	return false
}

// BillFields is the writable header whitelist for account.move
var BillFields = shared.NewFieldSet(
	"move_type", "partner_id", "invoice_date", "invoice_date_due", "ref",
	"currency_id", "company_id", "journal_id", "payment_reference", "invoice_origin",
)

// LineFields is the writable whitelist for account.move.line
var LineFields = shared.NewFieldSet(
	"product_id", "name", "quantity", "price_unit", "tax_ids", "account_id",
)

// ReadFields is requested on bill reads
var ReadFields = []string{
	"id", "name", "move_type", "partner_id", "invoice_date", "invoice_date_due",
	"ref", "currency_id", "company_id", "journal_id", "payment_reference",
	"invoice_origin", "invoice_line_ids", "amount_untaxed", "amount_tax",
	"amount_total", "state",
}

// LineReadFields is requested on line reads
var LineReadFields = []string{
	"id", "move_id", "product_id", "name", "quantity", "price_unit",
	"tax_ids", "account_id", "price_subtotal", "price_total",
}

// Line is an account.move.line record
type Line struct {
	ID            int64           `json:"id"`
	Product       *shared.Ref     `json:"product_id,omitempty"`
	Name          string          `json:"name,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	PriceUnit     decimal.Decimal `json:"price_unit"`
	TaxIDs        []int64         `json:"tax_ids,omitempty"`
	Account       *shared.Ref     `json:"account_id,omitempty"`
	PriceSubtotal decimal.Decimal `json:"price_subtotal"`
	PriceTotal    decimal.Decimal `json:"price_total"`
}

// Bill is an account.move record with its lines expanded
type Bill struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name,omitempty"`
	MoveType         MoveType        `json:"move_type,omitempty"`
	Partner          *shared.Ref     `json:"partner_id,omitempty"`
	InvoiceDate      string          `json:"invoice_date,omitempty"`
	InvoiceDateDue   string          `json:"invoice_date_due,omitempty"`
	Ref              string          `json:"ref,omitempty"`
	Currency         *shared.Ref     `json:"currency_id,omitempty"`
	Company          *shared.Ref     `json:"company_id,omitempty"`
	Journal          *shared.Ref     `json:"journal_id,omitempty"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	InvoiceOrigin    string          `json:"invoice_origin,omitempty"`
	LineIDs          []int64         `json:"invoice_line_ids"`
	Lines            []Line          `json:"lines"`
	AmountUntaxed    decimal.Decimal `json:"amount_untaxed"`
	AmountTax        decimal.Decimal `json:"amount_tax"`
	AmountTotal      decimal.Decimal `json:"amount_total"`
	State            State           `json:"state"`
}

// IsDraft reports whether the bill may still be edited
func (b *Bill) IsDraft() bool {
	return b.State == StateDraft
}

// HasLine reports whether lineID belongs to the bill
func (b *Bill) HasLine(lineID int64) bool {
	for _, id := range b.LineIDs {
		if id == lineID {
			return true
		}
	}
	return false
}

// HeaderRefs names the entities referenced by a bill header
var HeaderRefs = shared.Refs{
	"partner_id":  "partner",
	"currency_id": "currency",
	"company_id":  "company",
	"journal_id":  "journal",
}

// DefaultQuantity is the quantity the ledger gives a line that names none
var DefaultQuantity = decimal.NewFromInt(1)

// LineInput is one requested invoice line. A nil ProductID is a note or
// label line with no product.
type LineInput struct {
	ProductID *shared.ID      `json:"product_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	PriceUnit decimal.Decimal `json:"price_unit"`
	TaxIDs    []int64         `json:"tax_ids,omitempty"`
	AccountID shared.ID       `json:"account_id,omitempty"`
}

// ProductRef returns the requested product id and whether one was sent
func (in LineInput) ProductRef() (int64, bool) {
	if in.ProductID == nil {
		return 0, false
	}
	return in.ProductID.Int64(), true
}

// Fields converts the line into the ledger payload. Decimals are sent as
// JSON numbers since the ledger rejects quoted quantities.
func (in LineInput) Fields() shared.Fields {
	raw := shared.Fields{
		"quantity":   in.Quantity.InexactFloat64(),
		"price_unit": in.PriceUnit.InexactFloat64(),
	}
	if id, ok := in.ProductRef(); ok {
		raw["product_id"] = id
	}
	if in.Name != "" {
		raw["name"] = in.Name
	}
	if len(in.TaxIDs) > 0 {
		// many2many replace command: [(6, 0, ids)]
		raw["tax_ids"] = []any{[]any{6, 0, in.TaxIDs}}
	}
	if in.AccountID.Valid() {
		raw["account_id"] = in.AccountID.Int64()
	}
	return shared.Project(raw, LineFields)
}

// Filter narrows bill listings
type Filter struct {
	State     StateFilter
	PartnerID int64
	MoveType  MoveType
	Limit     int
}

// BillRepository reads and writes account.move records
type BillRepository interface {
	Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error)

	// FindByID returns the bill with lines. A bill that exists but does not
	// satisfy filter yields NOT_IN_STATE rather than NOT_FOUND.
	FindByID(ctx context.Context, cred identity.Credential, id int64, filter StateFilter) (*Bill, error)

	FindAll(ctx context.Context, cred identity.Credential, filter Filter) ([]Bill, error)
	Create(ctx context.Context, cred identity.Credential, fields shared.Fields) (int64, error)
	Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields) error

	// AddLine attaches one line with a (0, 0, vals) command
	AddLine(ctx context.Context, cred identity.Credential, id int64, line shared.Fields) error

	// RemoveLines deletes lines with (2, id) commands in a single write
	RemoveLines(ctx context.Context, cred identity.Credential, id int64, lineIDs []int64) error

	// Post issues the draft-to-posted transition (action_post)
	Post(ctx context.Context, cred identity.Credential, id int64) error
}
