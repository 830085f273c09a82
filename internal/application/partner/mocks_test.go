package partner

import (
	"context"
	"testing"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/partner"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockPartnerRepository is a mock implementation of PartnerRepository
type MockPartnerRepository struct {
	mock.Mock
}

func (m *MockPartnerRepository) Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error) {
	args := m.Called(ctx, cred, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPartnerRepository) FindByID(ctx context.Context, cred identity.Credential, id int64, role partner.Role) (*partner.Partner, error) {
	args := m.Called(ctx, cred, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) FindAll(ctx context.Context, cred identity.Credential, filter partner.Filter) ([]partner.Partner, error) {
	args := m.Called(ctx, cred, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) Create(ctx context.Context, cred identity.Credential, fields shared.Fields) (int64, error) {
	args := m.Called(ctx, cred, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPartnerRepository) Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields) error {
	args := m.Called(ctx, cred, id, fields)
	return args.Error(0)
}

func (m *MockPartnerRepository) Archive(ctx context.Context, cred identity.Credential, id int64) error {
	args := m.Called(ctx, cred, id)
	return args.Error(0)
}

// MockBankRepository is a mock implementation of BankRepository
type MockBankRepository struct {
	mock.Mock
}

func (m *MockBankRepository) Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error) {
	args := m.Called(ctx, cred, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBankRepository) FindByID(ctx context.Context, cred identity.Credential, id int64) (*partner.Bank, error) {
	args := m.Called(ctx, cred, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Bank), args.Error(1)
}

func (m *MockBankRepository) FindByName(ctx context.Context, cred identity.Credential, name string) ([]partner.Bank, error) {
	args := m.Called(ctx, cred, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Bank), args.Error(1)
}

func (m *MockBankRepository) Create(ctx context.Context, cred identity.Credential, fields shared.Fields) (int64, error) {
	args := m.Called(ctx, cred, fields)
	return args.Get(0).(int64), args.Error(1)
}

// MockBankAccountRepository is a mock implementation of BankAccountRepository
type MockBankAccountRepository struct {
	mock.Mock
}

func (m *MockBankAccountRepository) Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error) {
	args := m.Called(ctx, cred, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBankAccountRepository) FindByID(ctx context.Context, cred identity.Credential, id int64) (*partner.BankAccount, error) {
	args := m.Called(ctx, cred, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepository) FindByPartner(ctx context.Context, cred identity.Credential, partnerID int64, accNumber string) ([]partner.BankAccount, error) {
	args := m.Called(ctx, cred, partnerID, accNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepository) Create(ctx context.Context, cred identity.Credential, fields shared.Fields) (int64, error) {
	args := m.Called(ctx, cred, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBankAccountRepository) Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields) error {
	args := m.Called(ctx, cred, id, fields)
	return args.Error(0)
}

func (m *MockBankAccountRepository) Archive(ctx context.Context, cred identity.Credential, id int64) error {
	args := m.Called(ctx, cred, id)
	return args.Error(0)
}

// MockCompanyRepository is a mock implementation of CompanyRepository
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error) {
	args := m.Called(ctx, cred, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, cred identity.Credential, id int64) (*identity.Company, error) {
	args := m.Called(ctx, cred, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindAll(ctx context.Context, cred identity.Credential) ([]identity.Company, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Company), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

type fixture struct {
	partners  *MockPartnerRepository
	banks     *MockBankRepository
	accounts  *MockBankAccountRepository
	companies *MockCompanyRepository
	svc       *Service
	cred      identity.Credential
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	cred, err := identity.NewCredential("admin", "acme", 2, "secret")
	require.NoError(t, err)
	f := &fixture{
		partners:  new(MockPartnerRepository),
		banks:     new(MockBankRepository),
		accounts:  new(MockBankAccountRepository),
		companies: new(MockCompanyRepository),
		cred:      cred,
	}
	f.svc = NewService(f.partners, f.banks, f.accounts, f.companies, opts...)
	t.Cleanup(func() {
		f.partners.AssertExpectations(t)
		f.banks.AssertExpectations(t)
		f.accounts.AssertExpectations(t)
		f.companies.AssertExpectations(t)
	})
	return f
}
