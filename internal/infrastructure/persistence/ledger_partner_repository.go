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

// Ledger models backing the repositories
const (
	ModelPartner     = "res.partner"
	ModelBank        = "res.bank"
	ModelBankAccount = "res.partner.bank"
	ModelProduct     = "product.template"
	ModelBill        = "account.move"
	ModelBillLine    = "account.move.line"
	ModelCompany     = "res.company"
	ModelAttachment  = "ir.attachment"
)

// defaultListLimit bounds listings that do not specify a limit
const defaultListLimit = 80

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

// LedgerPartnerRepository implements PartnerRepository on res.partner
type LedgerPartnerRepository struct {
	ex ledger.Executor
}

// NewLedgerPartnerRepository creates a new LedgerPartnerRepository
func NewLedgerPartnerRepository(ex ledger.Executor) *LedgerPartnerRepository {
	return &LedgerPartnerRepository{ex: ex}
}

// roleDomain narrows a partner search to the ranks role implies
func roleDomain(role partner.Role) ledger.Domain {
	d := ledger.Domain{}
	if role.IsClient() {
		d = d.Where("customer_rank", ">", 0)
	}
	if role.IsProvider() {
		d = d.Where("supplier_rank", ">", 0)
	}
	return d
}

// Exists reports whether an active partner with id exists
func (r *LedgerPartnerRepository) Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error) {
	return ledger.Exists(ctx, r.ex, cred, ModelPartner, id, nil)
}

// FindByID returns the partner playing role
func (r *LedgerPartnerRepository) FindByID(ctx context.Context, cred identity.Credential, id int64, role partner.Role) (*partner.Partner, error) {
	if id <= 0 {
		return nil, shared.NotFound(role.Label(), id)
	}
	domain := append(ledger.ByID(id), roleDomain(role)...)
	rows, err := ledger.SearchRead[models.PartnerRecord](ctx, r.ex, cred, ModelPartner, domain,
		ledger.SearchOptions{Fields: partner.ReadFields, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.NotFound(role.Label(), id)
	}
	return rows[0].ToDomain(), nil
}

// FindAll lists partners matching filter, ordered by id
func (r *LedgerPartnerRepository) FindAll(ctx context.Context, cred identity.Credential, filter partner.Filter) ([]partner.Partner, error) {
	domain := roleDomain(filter.Role)
	if filter.CompanyID > 0 {
		domain = domain.Where("company_id", "=", filter.CompanyID)
	}
	if name := strings.TrimSpace(filter.Name); name != "" {
		domain = domain.Where("name", "ilike", name)
	}

	rows, err := ledger.SearchRead[models.PartnerRecord](ctx, r.ex, cred, ModelPartner, domain,
		ledger.SearchOptions{Fields: partner.ReadFields, Limit: listLimit(filter.Limit), Order: "id"})
	if err != nil {
		return nil, err
	}
	out := make([]partner.Partner, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// Create creates a partner and returns its id
func (r *LedgerPartnerRepository) Create(ctx context.Context, cred identity.Credential, fields shared.Fields) (int64, error) {
	return ledger.Create(ctx, r.ex, cred, ModelPartner, fields)
}

// Update writes fields on the partner; an empty payload makes no call
func (r *LedgerPartnerRepository) Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields) error {
	if id <= 0 {
		return shared.NotFound("partner", id)
	}
	if len(fields) == 0 {
		return nil
	}
	return ledger.Write(ctx, r.ex, cred, ModelPartner, []int64{id}, fields)
}

// Archive sets active=false on the partner
func (r *LedgerPartnerRepository) Archive(ctx context.Context, cred identity.Credential, id int64) error {
	if id <= 0 {
		return shared.NotFound("partner", id)
	}
	return ledger.Write(ctx, r.ex, cred, ModelPartner, []int64{id}, shared.Fields{"active": false})
}

var _ partner.PartnerRepository = (*LedgerPartnerRepository)(nil)
