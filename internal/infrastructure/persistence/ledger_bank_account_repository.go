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

var bankAccountReadFields = []string{
	"id", "acc_number", "bank_id", "partner_id", "currency_id", "company_id", "active",
}

// LedgerBankAccountRepository implements BankAccountRepository on res.partner.bank
type LedgerBankAccountRepository struct {
	ex ledger.Executor
}

// NewLedgerBankAccountRepository creates a new LedgerBankAccountRepository
func NewLedgerBankAccountRepository(ex ledger.Executor) *LedgerBankAccountRepository {
	return &LedgerBankAccountRepository{ex: ex}
}

func (r *LedgerBankAccountRepository) Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error) {
	return ledger.Exists(ctx, r.ex, cred, ModelBankAccount, id, nil)
}

func (r *LedgerBankAccountRepository) FindByID(ctx context.Context, cred identity.Credential, id int64) (*partner.BankAccount, error) {
	rec, err := ledger.ReadOne[models.BankAccountRecord](ctx, r.ex, cred, ModelBankAccount, "bank account", id, bankAccountReadFields)
	if err != nil {
		return nil, err
	}
	acc := rec.ToDomain()
	return &acc, nil
}

// FindByPartner lists the partner's active accounts. A non-empty accNumber
// narrows the search to that number.
func (r *LedgerBankAccountRepository) FindByPartner(ctx context.Context, cred identity.Credential, partnerID int64, accNumber string) ([]partner.BankAccount, error) {
	if partnerID <= 0 {
		return nil, shared.NotFound("partner", partnerID)
	}
	domain := ledger.Domain{}.Where("partner_id", "=", partnerID)
	if accNumber = strings.TrimSpace(accNumber); accNumber != "" {
		domain = domain.Where("acc_number", "=", accNumber)
	}
	rows, err := ledger.SearchRead[models.BankAccountRecord](ctx, r.ex, cred, ModelBankAccount, domain,
		ledger.SearchOptions{Fields: bankAccountReadFields, Order: "id"})
	if err != nil {
		return nil, err
	}
	out := make([]partner.BankAccount, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

func (r *LedgerBankAccountRepository) Create(ctx context.Context, cred identity.Credential, fields shared.Fields) (int64, error) {
	return ledger.Create(ctx, r.ex, cred, ModelBankAccount, fields)
}

func (r *LedgerBankAccountRepository) Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields) error {
	if id <= 0 {
		return shared.NotFound("bank account", id)
	}
	if len(fields) == 0 {
		return nil
	}
	return ledger.Write(ctx, r.ex, cred, ModelBankAccount, []int64{id}, fields)
}

// Archive sets active=false on the account
func (r *LedgerBankAccountRepository) Archive(ctx context.Context, cred identity.Credential, id int64) error {
	if id <= 0 {
		return shared.NotFound("bank account", id)
	}
	return ledger.Write(ctx, r.ex, cred, ModelBankAccount, []int64{id}, shared.Fields{"active": false})
}

var _ partner.BankAccountRepository = (*LedgerBankAccountRepository)(nil)
