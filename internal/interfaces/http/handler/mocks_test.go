package handler

import (
	"context"

	appbilling "github.com/erp/connector/internal/application/billing"
	appidentity "github.com/erp/connector/internal/application/identity"
	apppartner "github.com/erp/connector/internal/application/partner"
	"github.com/erp/connector/internal/domain/attachment"
	"github.com/erp/connector/internal/domain/billing"
	"github.com/erp/connector/internal/domain/catalog"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/partner"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/auth"
	"github.com/stretchr/testify/mock"
)

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req appidentity.LoginRequest) shared.Result[*appidentity.LoginResult] {
	args := m.Called(ctx, req)
	return args.Get(0).(shared.Result[*appidentity.LoginResult])
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims) shared.Result[bool] {
	args := m.Called(ctx, claims)
	return args.Get(0).(shared.Result[bool])
}

func (m *MockAuthService) LogoutAll(ctx context.Context, claims *auth.Claims) shared.Result[bool] {
	args := m.Called(ctx, claims)
	return args.Get(0).(shared.Result[bool])
}

func (m *MockAuthService) Me(ctx context.Context, cred identity.Credential) shared.Result[*appidentity.CurrentUser] {
	args := m.Called(ctx, cred)
	return args.Get(0).(shared.Result[*appidentity.CurrentUser])
}

// MockPartnerService is a mock implementation of PartnerService and BankService
type MockPartnerService struct {
	mock.Mock
}

func (m *MockPartnerService) CreateWithBankAccounts(ctx context.Context, cred identity.Credential, input apppartner.CreatePartnerInput, role partner.Role) shared.Result[*apppartner.PartnerWithAccounts] {
	args := m.Called(ctx, cred, input, role)
	return args.Get(0).(shared.Result[*apppartner.PartnerWithAccounts])
}

func (m *MockPartnerService) Get(ctx context.Context, cred identity.Credential, id int64, role partner.Role) shared.Result[*partner.Partner] {
	args := m.Called(ctx, cred, id, role)
	return args.Get(0).(shared.Result[*partner.Partner])
}

func (m *MockPartnerService) List(ctx context.Context, cred identity.Credential, filter partner.Filter) shared.Result[[]partner.Partner] {
	args := m.Called(ctx, cred, filter)
	return args.Get(0).(shared.Result[[]partner.Partner])
}

func (m *MockPartnerService) Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields, role partner.Role) shared.Result[*partner.Partner] {
	args := m.Called(ctx, cred, id, fields, role)
	return args.Get(0).(shared.Result[*partner.Partner])
}

func (m *MockPartnerService) Archive(ctx context.Context, cred identity.Credential, id int64) shared.Result[int64] {
	args := m.Called(ctx, cred, id)
	return args.Get(0).(shared.Result[int64])
}

func (m *MockPartnerService) ListBankAccounts(ctx context.Context, cred identity.Credential, partnerID int64) shared.Result[[]partner.BankAccount] {
	args := m.Called(ctx, cred, partnerID)
	return args.Get(0).(shared.Result[[]partner.BankAccount])
}

func (m *MockPartnerService) AddBankAccount(ctx context.Context, cred identity.Credential, partnerID int64, in partner.BankAccountInput) shared.Result[[]partner.BankAccount] {
	args := m.Called(ctx, cred, partnerID, in)
	return args.Get(0).(shared.Result[[]partner.BankAccount])
}

func (m *MockPartnerService) RemoveBankAccount(ctx context.Context, cred identity.Credential, partnerID, accountID int64) shared.Result[[]partner.BankAccount] {
	args := m.Called(ctx, cred, partnerID, accountID)
	return args.Get(0).(shared.Result[[]partner.BankAccount])
}

func (m *MockPartnerService) CreateBank(ctx context.Context, cred identity.Credential, in partner.BankInput) shared.Result[*partner.Bank] {
	args := m.Called(ctx, cred, in)
	return args.Get(0).(shared.Result[*partner.Bank])
}

func (m *MockPartnerService) ListBanks(ctx context.Context, cred identity.Credential, name string) shared.Result[[]partner.Bank] {
	args := m.Called(ctx, cred, name)
	return args.Get(0).(shared.Result[[]partner.Bank])
}

func (m *MockPartnerService) CreateBankAccount(ctx context.Context, cred identity.Credential, partnerID int64, in partner.BankAccountInput) shared.Result[*partner.BankAccount] {
	args := m.Called(ctx, cred, partnerID, in)
	return args.Get(0).(shared.Result[*partner.BankAccount])
}

// MockBillService is a mock implementation of BillService
type MockBillService struct {
	mock.Mock
}

func (m *MockBillService) CreateWithLines(ctx context.Context, cred identity.Credential, input appbilling.CreateBillInput) shared.Result[*appbilling.BillWithWarnings] {
	args := m.Called(ctx, cred, input)
	return args.Get(0).(shared.Result[*appbilling.BillWithWarnings])
}

func (m *MockBillService) GetByID(ctx context.Context, cred identity.Credential, id int64, filter billing.StateFilter) shared.Result[*billing.Bill] {
	args := m.Called(ctx, cred, id, filter)
	return args.Get(0).(shared.Result[*billing.Bill])
}

func (m *MockBillService) List(ctx context.Context, cred identity.Credential, filter billing.Filter) shared.Result[[]billing.Bill] {
	args := m.Called(ctx, cred, filter)
	return args.Get(0).(shared.Result[[]billing.Bill])
}

func (m *MockBillService) UpdateFull(ctx context.Context, cred identity.Credential, id int64, input appbilling.UpdateBillInput) shared.Result[*appbilling.BillWithWarnings] {
	args := m.Called(ctx, cred, id, input)
	return args.Get(0).(shared.Result[*appbilling.BillWithWarnings])
}

func (m *MockBillService) EditRow(ctx context.Context, cred identity.Credential, id int64, row appbilling.EditRowInput) shared.Result[*billing.Bill] {
	args := m.Called(ctx, cred, id, row)
	return args.Get(0).(shared.Result[*billing.Bill])
}

func (m *MockBillService) Confirm(ctx context.Context, cred identity.Credential, id int64) shared.Result[*billing.Bill] {
	args := m.Called(ctx, cred, id)
	return args.Get(0).(shared.Result[*billing.Bill])
}

// MockProductService is a mock implementation of ProductService
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, cred identity.Credential, fields shared.Fields) shared.Result[*catalog.Product] {
	args := m.Called(ctx, cred, fields)
	return args.Get(0).(shared.Result[*catalog.Product])
}

func (m *MockProductService) GetByID(ctx context.Context, cred identity.Credential, id int64) shared.Result[*catalog.Product] {
	args := m.Called(ctx, cred, id)
	return args.Get(0).(shared.Result[*catalog.Product])
}

func (m *MockProductService) List(ctx context.Context, cred identity.Credential, filter catalog.Filter) shared.Result[[]catalog.Product] {
	args := m.Called(ctx, cred, filter)
	return args.Get(0).(shared.Result[[]catalog.Product])
}

func (m *MockProductService) Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields) shared.Result[*catalog.Product] {
	args := m.Called(ctx, cred, id, fields)
	return args.Get(0).(shared.Result[*catalog.Product])
}

// MockAttachmentService is a mock implementation of AttachmentService
type MockAttachmentService struct {
	mock.Mock
	maxBytes int64
}

func (m *MockAttachmentService) Upload(ctx context.Context, cred identity.Credential, up attachment.Upload) shared.Result[*attachment.Attachment] {
	args := m.Called(ctx, cred, up)
	return args.Get(0).(shared.Result[*attachment.Attachment])
}

func (m *MockAttachmentService) Get(ctx context.Context, cred identity.Credential, id int64) shared.Result[*attachment.Attachment] {
	args := m.Called(ctx, cred, id)
	return args.Get(0).(shared.Result[*attachment.Attachment])
}

func (m *MockAttachmentService) ListByResource(ctx context.Context, cred identity.Credential, resModel string, resID int64) shared.Result[[]attachment.Attachment] {
	args := m.Called(ctx, cred, resModel, resID)
	return args.Get(0).(shared.Result[[]attachment.Attachment])
}

func (m *MockAttachmentService) Delete(ctx context.Context, cred identity.Credential, id int64) shared.Result[int64] {
	args := m.Called(ctx, cred, id)
	return args.Get(0).(shared.Result[int64])
}

func (m *MockAttachmentService) MaxBytes() int64 {
	if m.maxBytes == 0 {
		return 1 << 20
	}
	return m.maxBytes
}
