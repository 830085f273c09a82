package persistence

import (
	"context"

	"github.com/erp/connector/internal/domain/billing"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/ledger"
	"github.com/erp/connector/internal/infrastructure/persistence/models"
)

// LedgerBillRepository implements BillRepository on account.move
type LedgerBillRepository struct {
	ex ledger.Executor
}

// NewLedgerBillRepository creates a new LedgerBillRepository
func NewLedgerBillRepository(ex ledger.Executor) *LedgerBillRepository {
	return &LedgerBillRepository{ex: ex}
}

func (r *LedgerBillRepository) Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error) {
	return ledger.Exists(ctx, r.ex, cred, ModelBill, id, nil)
}

// FindByID reads the bill once, checks its state locally, then expands the
// lines. A state mismatch is NOT_IN_STATE and the lines are not fetched.
func (r *LedgerBillRepository) FindByID(ctx context.Context, cred identity.Credential, id int64, filter billing.StateFilter) (*billing.Bill, error) {
	rec, err := ledger.ReadOne[models.BillRecord](ctx, r.ex, cred, ModelBill, "bill", id, billing.ReadFields)
	if err != nil {
		return nil, err
	}
	bill := rec.ToDomain()
	if !filter.Matches(bill.State) {
		return nil, shared.NotInState("bill", id, string(filter), string(bill.State))
	}

	lines, err := r.lines(ctx, cred, bill.LineIDs)
	if err != nil {
		return nil, err
	}
	bill.Lines = lines
	return bill, nil
}

func (r *LedgerBillRepository) lines(ctx context.Context, cred identity.Credential, ids []int64) ([]billing.Line, error) {
	if len(ids) == 0 {
		return []billing.Line{}, nil
	}
	rows, err := ledger.SearchRead[models.LineRecord](ctx, r.ex, cred, ModelBillLine,
		ledger.Domain{}.Where("id", "in", ids),
		ledger.SearchOptions{Fields: billing.LineReadFields, Order: "sequence, id"})
	if err != nil {
		return nil, err
	}
	out := make([]billing.Line, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// FindAll lists bill headers; lines are not expanded
func (r *LedgerBillRepository) FindAll(ctx context.Context, cred identity.Credential, filter billing.Filter) ([]billing.Bill, error) {
	domain := ledger.Domain{}
	if filter.State != billing.FilterNone {
		domain = domain.Where("state", "=", string(filter.State))
	}
	if filter.PartnerID > 0 {
		domain = domain.Where("partner_id", "=", filter.PartnerID)
	}
	if filter.MoveType != "" {
		domain = domain.Where("move_type", "=", string(filter.MoveType))
	}
	rows, err := ledger.SearchRead[models.BillRecord](ctx, r.ex, cred, ModelBill, domain,
		ledger.SearchOptions{Fields: billing.ReadFields, Limit: listLimit(filter.Limit), Order: "id desc"})
	if err != nil {
		return nil, err
	}
	out := make([]billing.Bill, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

func (r *LedgerBillRepository) Create(ctx context.Context, cred identity.Credential, fields shared.Fields) (int64, error) {
	return ledger.Create(ctx, r.ex, cred, ModelBill, fields)
}

func (r *LedgerBillRepository) Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields) error {
	if id <= 0 {
		return shared.NotFound("bill", id)
	}
	if len(fields) == 0 {
		return nil
	}
	return ledger.Write(ctx, r.ex, cred, ModelBill, []int64{id}, fields)
}

// AddLine attaches one line through invoice_line_ids
func (r *LedgerBillRepository) AddLine(ctx context.Context, cred identity.Credential, id int64, line shared.Fields) error {
	if id <= 0 {
		return shared.NotFound("bill", id)
	}
	return ledger.Write(ctx, r.ex, cred, ModelBill, []int64{id}, shared.Fields{
		"invoice_line_ids": []any{ledger.AddCommand(line)},
	})
}

// RemoveLines deletes lineIDs in a single write; no ids means no call
func (r *LedgerBillRepository) RemoveLines(ctx context.Context, cred identity.Credential, id int64, lineIDs []int64) error {
	if id <= 0 {
		return shared.NotFound("bill", id)
	}
	if len(lineIDs) == 0 {
		return nil
	}
	cmds := make([]any, 0, len(lineIDs))
	for _, lid := range lineIDs {
		cmds = append(cmds, ledger.DeleteCommand(lid))
	}
	return ledger.Write(ctx, r.ex, cred, ModelBill, []int64{id}, shared.Fields{"invoice_line_ids": cmds})
}

// Post runs action_post on the bill
func (r *LedgerBillRepository) Post(ctx context.Context, cred identity.Credential, id int64) error {
	if id <= 0 {
		return shared.NotFound("bill", id)
	}
	return ledger.CallMethod(ctx, r.ex, cred, ModelBill, ledger.OpActionPost, []int64{id})
}

var _ billing.BillRepository = (*LedgerBillRepository)(nil)
