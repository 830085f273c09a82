package persistence

import (
	"context"
	"strings"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/partner"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/ledger"
	"github.com/erp/connector/internal/infrastructure/persistence/models"
)

var bankReadFields = []string{"id", "name", "bic", "active"}

// LedgerBankRepository implements BankRepository on res.bank
type LedgerBankRepository struct {
	ex ledger.Executor
}

// NewLedgerBankRepository creates a new LedgerBankRepository
func NewLedgerBankRepository(ex ledger.Executor) *LedgerBankRepository {
	return &LedgerBankRepository{ex: ex}
}

func (r *LedgerBankRepository) Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error) {
	return ledger.Exists(ctx, r.ex, cred, ModelBank, id, nil)
}

func (r *LedgerBankRepository) FindByID(ctx context.Context, cred identity.Credential, id int64) (*partner.Bank, error) {
	rec, err := ledger.ReadOne[models.BankRecord](ctx, r.ex, cred, ModelBank, "bank", id, bankReadFields)
	if err != nil {
		return nil, err
	}
	b := rec.ToDomain()
	return &b, nil
}

// FindByName runs `name ilike` and returns every hit; callers pick the
// exact match themselves.
func (r *LedgerBankRepository) FindByName(ctx context.Context, cred identity.Credential, name string) ([]partner.Bank, error) {
	domain := ledger.Domain{}
	if name = strings.TrimSpace(name); name != "" {
		domain = domain.Where("name", "ilike", name)
	}
	rows, err := ledger.SearchRead[models.BankRecord](ctx, r.ex, cred, ModelBank, domain,
		ledger.SearchOptions{Fields: bankReadFields, Limit: defaultListLimit, Order: "id"})
	if err != nil {
		return nil, err
	}
	out := make([]partner.Bank, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

func (r *LedgerBankRepository) Create(ctx context.Context, cred identity.Credential, fields shared.Fields) (int64, error) {
	return ledger.Create(ctx, r.ex, cred, ModelBank, fields)
}

var _ partner.BankRepository = (*LedgerBankRepository)(nil)
