package partner

import (
	"context"
	"strings"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/partner"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// CreateBank creates a bank unless one with the same name already exists
func (s *Service) CreateBank(ctx context.Context, cred identity.Credential, in partner.BankInput) shared.Result[*partner.Bank] {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return shared.Rejected[*partner.Bank](shared.InvalidInput("bank name is required"))
	}
	hits, err := s.banks.FindByName(ctx, cred, name)
	if err != nil {
		return shared.ResultOf[*partner.Bank](nil, err)
	}
	if b, ok := partner.PickByName(hits, name); ok {
		return shared.Rejected[*partner.Bank](
			shared.NewDomainError(shared.CodeAlreadyExists, "bank "+b.Name+" already exists").WithData(b))
	}

	fields := shared.Fields{"name": name}
	if bic := strings.ToUpper(strings.TrimSpace(in.BIC)); bic != "" {
		fields["bic"] = bic
	}
	id, err := s.banks.Create(ctx, cred, shared.Project(fields, partner.BankFields))
	if err != nil {
		return shared.ResultOf[*partner.Bank](nil, err)
	}
	return shared.ResultOf(s.banks.FindByID(ctx, cred, id))
}

// ListBanks searches banks by name; an empty name lists every bank
func (s *Service) ListBanks(ctx context.Context, cred identity.Credential, name string) shared.Result[[]partner.Bank] {
	return shared.ResultOf(s.banks.FindByName(ctx, cred, name))
}

// ListBankAccounts lists the active accounts of a partner
func (s *Service) ListBankAccounts(ctx context.Context, cred identity.Credential, partnerID int64) shared.Result[[]partner.BankAccount] {
	if err := s.requirePartner(ctx, cred, partnerID); err != nil {
		return shared.ResultOf[[]partner.BankAccount](nil, err)
	}
	return shared.ResultOf(s.accounts.FindByPartner(ctx, cred, partnerID, ""))
}

// AddBankAccount attaches one account to an existing partner and returns the
// partner's accounts
func (s *Service) AddBankAccount(ctx context.Context, cred identity.Credential, partnerID int64, in partner.BankAccountInput) shared.Result[[]partner.BankAccount] {
	if _, err := s.addAccount(ctx, cred, partnerID, in); err != nil {
		return shared.ResultOf[[]partner.BankAccount](nil, err)
	}
	return shared.ResultOf(s.accounts.FindByPartner(ctx, cred, partnerID, ""))
}

// CreateBankAccount creates one account for a partner and returns it
func (s *Service) CreateBankAccount(ctx context.Context, cred identity.Credential, partnerID int64, in partner.BankAccountInput) shared.Result[*partner.BankAccount] {
	id, err := s.addAccount(ctx, cred, partnerID, in)
	if err != nil {
		return shared.ResultOf[*partner.BankAccount](nil, err)
	}
	return shared.ResultOf(s.accounts.FindByID(ctx, cred, id))
}

func (s *Service) addAccount(ctx context.Context, cred identity.Credential, partnerID int64, in partner.BankAccountInput) (int64, error) {
	if err := s.requirePartner(ctx, cred, partnerID); err != nil {
		return 0, err
	}
	if in.NormalizedNumber() == "" {
		return 0, shared.InvalidInput("account number is required")
	}
	existing, err := s.accounts.FindByPartner(ctx, cred, partnerID, strings.TrimSpace(in.AccNumber))
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, shared.NewDomainError(shared.CodeAlreadyExists,
			"account number "+in.AccNumber+" is already registered for this partner")
	}

	account, err := s.createAccount(ctx, cred, newBankResolver(s.banks, cred), partnerID, in)
	if err != nil {
		return 0, err
	}
	logger.L(ctx).Info("Bank account created",
		zap.Int64("partner_id", partnerID),
		zap.Int64("bank_account_id", account.ID),
	)
	return account.ID, nil
}

// RemoveBankAccount archives one of the partner's accounts and returns the
// remaining ones
func (s *Service) RemoveBankAccount(ctx context.Context, cred identity.Credential, partnerID, accountID int64) shared.Result[[]partner.BankAccount] {
	if err := s.requirePartner(ctx, cred, partnerID); err != nil {
		return shared.ResultOf[[]partner.BankAccount](nil, err)
	}
	account, err := s.accounts.FindByID(ctx, cred, accountID)
	if err != nil {
		return shared.ResultOf[[]partner.BankAccount](nil, err)
	}
	if shared.RefID(account.Partner) != partnerID {
		return shared.Rejected[[]partner.BankAccount](shared.NotFound("bank account", accountID))
	}
	if err := s.accounts.Archive(ctx, cred, accountID); err != nil {
		return shared.ResultOf[[]partner.BankAccount](nil, err)
	}
	return shared.ResultOf(s.accounts.FindByPartner(ctx, cred, partnerID, ""))
}
