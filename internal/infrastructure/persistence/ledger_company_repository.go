package persistence

import (
	"context"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/infrastructure/ledger"
	"github.com/erp/connector/internal/infrastructure/persistence/models"
)

var companyReadFields = []string{"id", "name", "currency_id"}

// LedgerCompanyRepository implements CompanyRepository on res.company
type LedgerCompanyRepository struct {
	ex ledger.Executor
}

// NewLedgerCompanyRepository creates a new LedgerCompanyRepository
func NewLedgerCompanyRepository(ex ledger.Executor) *LedgerCompanyRepository {
	return &LedgerCompanyRepository{ex: ex}
}

func (r *LedgerCompanyRepository) Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error) {
	return ledger.Exists(ctx, r.ex, cred, ModelCompany, id, nil)
}

func (r *LedgerCompanyRepository) FindByID(ctx context.Context, cred identity.Credential, id int64) (*identity.Company, error) {
	rec, err := ledger.ReadOne[models.CompanyRecord](ctx, r.ex, cred, ModelCompany, "company", id, companyReadFields)
	if err != nil {
		return nil, err
	}
	c := rec.ToDomain()
	return &c, nil
}

func (r *LedgerCompanyRepository) FindAll(ctx context.Context, cred identity.Credential) ([]identity.Company, error) {
	rows, err := ledger.SearchRead[models.CompanyRecord](ctx, r.ex, cred, ModelCompany, nil,
		ledger.SearchOptions{Fields: companyReadFields, Order: "id"})
	if err != nil {
		return nil, err
	}
	out := make([]identity.Company, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

var _ identity.CompanyRepository = (*LedgerCompanyRepository)(nil)
