package persistence

import (
	"context"
	"strings"

	"github.com/erp/connector/internal/domain/catalog"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/ledger"
	"github.com/erp/connector/internal/infrastructure/persistence/models"
)

// LedgerProductRepository implements ProductRepository on product.template
type LedgerProductRepository struct {
	ex ledger.Executor
}

// NewLedgerProductRepository creates a new LedgerProductRepository
func NewLedgerProductRepository(ex ledger.Executor) *LedgerProductRepository {
	return &LedgerProductRepository{ex: ex}
}

func (r *LedgerProductRepository) Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error) {
	return ledger.Exists(ctx, r.ex, cred, ModelProduct, id, nil)
}

func (r *LedgerProductRepository) FindByID(ctx context.Context, cred identity.Credential, id int64) (*catalog.Product, error) {
	rec, err := ledger.ReadOne[models.ProductRecord](ctx, r.ex, cred, ModelProduct, "product", id, catalog.ReadFields)
	if err != nil {
		return nil, err
	}
	return rec.ToDomain(), nil
}

// FindAll lists products. A company filter also keeps products shared
// across companies (company_id unset).
func (r *LedgerProductRepository) FindAll(ctx context.Context, cred identity.Credential, filter catalog.Filter) ([]catalog.Product, error) {
	domain := ledger.Domain{}
	if filter.CompanyID > 0 {
		domain = domain.Where("company_id", "in", []any{filter.CompanyID, false})
	}
	if name := strings.TrimSpace(filter.Name); name != "" {
		domain = domain.Where("name", "ilike", name)
	}
	rows, err := ledger.SearchRead[models.ProductRecord](ctx, r.ex, cred, ModelProduct, domain,
		ledger.SearchOptions{Fields: catalog.ReadFields, Limit: listLimit(filter.Limit), Order: "id"})
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Product, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

func (r *LedgerProductRepository) Create(ctx context.Context, cred identity.Credential, fields shared.Fields) (int64, error) {
	return ledger.Create(ctx, r.ex, cred, ModelProduct, fields)
}

func (r *LedgerProductRepository) Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields) error {
	if id <= 0 {
		return shared.NotFound("product", id)
	}
	if len(fields) == 0 {
		return nil
	}
	return ledger.Write(ctx, r.ex, cred, ModelProduct, []int64{id}, fields)
}

var _ catalog.ProductRepository = (*LedgerProductRepository)(nil)
