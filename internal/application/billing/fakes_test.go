package billing

import (
	"context"
	"sort"
	"sync"

	"github.com/erp/connector/internal/domain/billing"
	"github.com/erp/connector/internal/domain/catalog"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/partner"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// memoryBills is a stateful BillRepository that behaves like the ledger for
// the operations the service uses
type memoryBills struct {
	mu       sync.Mutex
	nextBill int64
	nextLine int64
	bills    map[int64]*billing.Bill
	writes   int
	posts    int
	// postTo is the state Post moves a bill to
	postTo billing.State
}

func newMemoryBills() *memoryBills {
	return &memoryBills{bills: map[int64]*billing.Bill{}, postTo: billing.StatePosted}
}

func (m *memoryBills) seed(state billing.State, lines int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextBill++
	b := &billing.Bill{ID: m.nextBill, State: state, MoveType: billing.MoveInInvoice}
	for i := 0; i < lines; i++ {
		m.nextLine++
		b.LineIDs = append(b.LineIDs, m.nextLine)
		b.Lines = append(b.Lines, billing.Line{ID: m.nextLine, Quantity: decimal.NewFromInt(1)})
	}
	m.bills[b.ID] = b
	return b.ID
}

func (m *memoryBills) mutations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes + m.posts
}

func clone(b *billing.Bill) *billing.Bill {
	cp := *b
	cp.LineIDs = append([]int64{}, b.LineIDs...)
	cp.Lines = append([]billing.Line{}, b.Lines...)
	return &cp
}

func (m *memoryBills) Exists(_ context.Context, _ identity.Credential, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.bills[id]
	return ok, nil
}

func (m *memoryBills) FindByID(_ context.Context, _ identity.Credential, id int64, filter billing.StateFilter) (*billing.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bills[id]
	if id <= 0 || !ok {
		return nil, shared.NotFound("bill", id)
	}
	if !filter.Matches(b.State) {
		return nil, shared.NotInState("bill", id, string(filter), string(b.State))
	}
	return clone(b), nil
}

func (m *memoryBills) FindAll(_ context.Context, _ identity.Credential, filter billing.Filter) ([]billing.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []billing.Bill{}
	for _, b := range m.bills {
		if filter.State.Matches(b.State) {
			out = append(out, *clone(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memoryBills) Create(_ context.Context, _ identity.Credential, fields shared.Fields) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextBill++
	b := &billing.Bill{ID: m.nextBill, State: billing.StateDraft, LineIDs: []int64{}, Lines: []billing.Line{}}
	if mt, ok := fields["move_type"].(string); ok {
		b.MoveType = billing.MoveType(mt)
	}
	if pid, ok := shared.ParseID(fields["partner_id"]); ok {
		b.Partner = &shared.Ref{ID: pid}
	}
	m.bills[b.ID] = b
	return b.ID, nil
}

func (m *memoryBills) Update(_ context.Context, _ identity.Credential, id int64, fields shared.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if ref, ok := fields["ref"].(string); ok {
		m.bills[id].Ref = ref
	}
	return nil
}

func (m *memoryBills) AddLine(_ context.Context, _ identity.Credential, id int64, line shared.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.nextLine++
	b := m.bills[id]
	pid, _ := shared.ParseID(line["product_id"])
	qty, _ := line["quantity"].(float64)
	b.LineIDs = append(b.LineIDs, m.nextLine)
	b.Lines = append(b.Lines, billing.Line{
		ID:       m.nextLine,
		Product:  &shared.Ref{ID: pid},
		Quantity: decimal.NewFromFloat(qty),
	})
	return nil
}

func (m *memoryBills) RemoveLines(_ context.Context, _ identity.Credential, id int64, lineIDs []int64) error {
	if len(lineIDs) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	drop := map[int64]bool{}
	for _, l := range lineIDs {
		drop[l] = true
	}
	b := m.bills[id]
	ids := []int64{}
	lines := []billing.Line{}
	for _, l := range b.Lines {
		if !drop[l.ID] {
			ids = append(ids, l.ID)
			lines = append(lines, l)
		}
	}
	b.LineIDs, b.Lines = ids, lines
	return nil
}

func (m *memoryBills) Post(_ context.Context, _ identity.Credential, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts++
	m.bills[id].State = m.postTo
	return nil
}

var _ billing.BillRepository = (*memoryBills)(nil)

// MockPartnerRepository mocks the partner existence check
type MockPartnerRepository struct {
	partner.PartnerRepository
	mock.Mock
}

func (m *MockPartnerRepository) Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error) {
	args := m.Called(ctx, cred, id)
	return args.Bool(0), args.Error(1)
}

// MockProductRepository mocks the product existence check
type MockProductRepository struct {
	catalog.ProductRepository
	mock.Mock
}

func (m *MockProductRepository) Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error) {
	args := m.Called(ctx, cred, id)
	return args.Bool(0), args.Error(1)
}

// MockCompanyRepository mocks the company existence check
type MockCompanyRepository struct {
	identity.CompanyRepository
	mock.Mock
}

func (m *MockCompanyRepository) Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error) {
	args := m.Called(ctx, cred, id)
	return args.Bool(0), args.Error(1)
}
