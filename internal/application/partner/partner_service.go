// Package partner orchestrates partner, bank and bank account operations.
package partner

import (
	"context"
	"fmt"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/partner"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PipelineCreatePartner names the partner creation pipeline in traces and logs
const PipelineCreatePartner = "partner.create_with_bank_accounts"

// Service handles partner, bank and bank account business operations
type Service struct {
	partners  partner.PartnerRepository
	banks     partner.BankRepository
	accounts  partner.BankAccountRepository
	companies identity.CompanyRepository
	hooks     []shared.StepHook
}

// Option configures a Service
type Option func(*Service)

// WithStepHooks attaches observers to every pipeline step
func WithStepHooks(hooks ...shared.StepHook) Option {
	return func(s *Service) {
		s.hooks = append(s.hooks, hooks...)
	}
}

// NewService creates a new partner Service
func NewService(
	partners partner.PartnerRepository,
	banks partner.BankRepository,
	accounts partner.BankAccountRepository,
	companies identity.CompanyRepository,
	opts ...Option,
) *Service {
	s := &Service{
		partners:  partners,
		banks:     banks,
		accounts:  accounts,
		companies: companies,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type createState struct {
	cred      identity.Credential
	role      partner.Role
	input     CreatePartnerInput
	partnerID int64
	out       PartnerWithAccounts
}

// CreateWithBankAccounts creates a partner and then attaches each requested
// bank account in order. Only the partner creation can fail the request;
// problems with individual accounts are reported as warnings. Records created
// before a failure are kept.
func (s *Service) CreateWithBankAccounts(ctx context.Context, cred identity.Credential, input CreatePartnerInput, role partner.Role) shared.Result[*PartnerWithAccounts] {
	if role == partner.RoleAny {
		role = partner.RoleBoth
	}
	st := &createState{
		cred:  cred,
		role:  role,
		input: input,
		out: PartnerWithAccounts{
			BankAccountResults: []partner.BankAccount{},
			BankAccountInvalid: []shared.Warning{},
		},
	}

	err := shared.NewPipeline[createState](PipelineCreatePartner, s.hooks...).
		Then("create_partner", s.createPartner).
		Then("attach_bank_accounts", s.attachBankAccounts).
		Then("reload_partner", s.reloadPartner).
		Run(ctx, st)
	if err != nil && st.partnerID == 0 {
		return shared.ResultOf[*PartnerWithAccounts](nil, err)
	}
	if err != nil && st.out.Partner == nil {
		st.out.Partner = &partner.Partner{ID: st.partnerID}
	}
	return shared.ResultOf(&st.out, err)
}

// CreateProvider creates a provider with its bank accounts
func (s *Service) CreateProvider(ctx context.Context, cred identity.Credential, input CreatePartnerInput) shared.Result[*PartnerWithAccounts] {
	return s.CreateWithBankAccounts(ctx, cred, input, partner.RoleProvider)
}

func (s *Service) createPartner(ctx context.Context, st *createState) error {
	fields := partner.WithRank(shared.Project(st.input.Fields, partner.FieldsFor(st.role)), st.role)
	if name, _ := fields["name"].(string); name == "" {
		return shared.InvalidInput("partner name is required")
	}
	if err := s.checkReferences(ctx, st.cred, fields, partner.PartnerRefs); err != nil {
		return err
	}

	id, err := s.partners.Create(ctx, st.cred, fields)
	if err != nil {
		return err
	}
	st.partnerID = id
	logger.L(ctx).Info("Partner created",
		zap.Int64("partner_id", id),
		zap.String("role", string(st.role)),
	)
	return nil
}

func (s *Service) attachBankAccounts(ctx context.Context, st *createState) error {
	resolver := newBankResolver(s.banks, st.cred)
	seen := make(map[string]struct{}, len(st.input.BankAccounts))
	partnerName, _ := st.input.Fields["name"].(string)

	for i, in := range st.input.BankAccounts {
		if err := ctx.Err(); err != nil {
			return shared.NewTransportError("request cancelled", err)
		}
		number := in.NormalizedNumber()
		if number == "" {
			st.out.BankAccountInvalid = append(st.out.BankAccountInvalid, shared.Warnf(i, "account number is required"))
			continue
		}
		if _, dup := seen[number]; dup {
			st.out.BankAccountInvalid = append(st.out.BankAccountInvalid,
				shared.Warnf(i, "duplicate account number %s", in.AccNumber))
			continue
		}
		seen[number] = struct{}{}

		account, err := s.createAccount(ctx, st.cred, resolver, st.partnerID, in)
		if err != nil {
			logger.L(ctx).Warn("Bank account skipped",
				zap.Int64("partner_id", st.partnerID),
				zap.Int("index", i),
				zap.Error(err),
			)
			st.out.BankAccountInvalid = append(st.out.BankAccountInvalid,
				shared.Warnf(i, "account %s: %s", in.AccNumber, err.Error()))
			continue
		}
		account.Partner = &shared.Ref{ID: st.partnerID, Name: partnerName}
		st.out.BankAccountResults = append(st.out.BankAccountResults, *account)
	}
	return nil
}

func (s *Service) reloadPartner(ctx context.Context, st *createState) error {
	p, err := s.partners.FindByID(ctx, st.cred, st.partnerID, st.role)
	if err != nil {
		return err
	}
	st.out.Partner = p
	return nil
}

// createAccount resolves the bank and creates one account for partnerID
func (s *Service) createAccount(ctx context.Context, cred identity.Credential, resolver *bankResolver, partnerID int64, in partner.BankAccountInput) (*partner.BankAccount, error) {
	fields := in.Fields()
	if err := s.checkReferences(ctx, cred, fields, partner.AccountRefs); err != nil {
		return nil, err
	}
	bank, err := resolver.Resolve(ctx, in.Bank)
	if err != nil {
		return nil, err
	}
	fields["partner_id"] = partnerID
	fields["bank_id"] = bank.ID

	id, err := s.accounts.Create(ctx, cred, fields)
	if err != nil {
		return nil, err
	}
	return &partner.BankAccount{
		ID:        id,
		AccNumber: fmt.Sprint(fields["acc_number"]),
		Bank:      &shared.Ref{ID: bank.ID, Name: bank.Name},
		BankName:  bank.Name,
		Partner:   &shared.Ref{ID: partnerID},
		Active:    true,
	}, nil
}

// checkReferences rejects unusable reference ids in fields and verifies the
// company, if any
func (s *Service) checkReferences(ctx context.Context, cred identity.Credential, fields shared.Fields, refs shared.Refs) error {
	if err := refs.Check(fields); err != nil {
		return err
	}
	companyID, present, err := fields.ID("company_id")
	if err != nil {
		return err
	}
	if !present {
		return nil
	}
	ok, err := s.companies.Exists(ctx, cred, companyID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NotFound("company", companyID)
	}
	return nil
}

// Get returns a partner playing role
func (s *Service) Get(ctx context.Context, cred identity.Credential, id int64, role partner.Role) shared.Result[*partner.Partner] {
	return shared.ResultOf(s.partners.FindByID(ctx, cred, id, role))
}

// List lists partners matching filter
func (s *Service) List(ctx context.Context, cred identity.Credential, filter partner.Filter) shared.Result[[]partner.Partner] {
	if filter.CompanyID < 0 {
		return shared.Rejected[[]partner.Partner](shared.InvalidInput("company_id must be a positive id"))
	}
	return shared.ResultOf(s.partners.FindAll(ctx, cred, filter))
}

// Update overwrites the whitelisted fields of a partner and returns the
// re-read record
func (s *Service) Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields, role partner.Role) shared.Result[*partner.Partner] {
	if _, err := s.partners.FindByID(ctx, cred, id, role); err != nil {
		return shared.ResultOf[*partner.Partner](nil, err)
	}
	projected := shared.Project(fields, partner.FieldsFor(role))
	if len(projected) == 0 {
		return shared.Rejected[*partner.Partner](shared.InvalidInput("no updatable fields supplied"))
	}
	if name, ok := projected["name"].(string); ok && name == "" {
		return shared.Rejected[*partner.Partner](shared.InvalidInput("partner name cannot be empty"))
	}
	if err := s.checkReferences(ctx, cred, projected, partner.PartnerRefs); err != nil {
		return shared.ResultOf[*partner.Partner](nil, err)
	}
	if err := s.partners.Update(ctx, cred, id, projected); err != nil {
		return shared.ResultOf[*partner.Partner](nil, err)
	}
	return shared.ResultOf(s.partners.FindByID(ctx, cred, id, role))
}

// Archive soft-deletes a partner and returns its id
func (s *Service) Archive(ctx context.Context, cred identity.Credential, id int64) shared.Result[int64] {
	if err := s.requirePartner(ctx, cred, id); err != nil {
		return shared.ResultOf[int64](0, err)
	}
	if err := s.partners.Archive(ctx, cred, id); err != nil {
		return shared.ResultOf[int64](0, err)
	}
	logger.L(ctx).Info("Partner archived", zap.Int64("partner_id", id))
	return shared.Ok(id)
}

func (s *Service) requirePartner(ctx context.Context, cred identity.Credential, id int64) error {
	if id <= 0 {
		return shared.NotFound("partner", id)
	}
	ok, err := s.partners.Exists(ctx, cred, id)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NotFound("partner", id)
	}
	return nil
}
