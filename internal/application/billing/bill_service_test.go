package billing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/erp/connector/internal/domain/billing"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	bills     *memoryBills
	partners  *MockPartnerRepository
	products  *MockProductRepository
	companies *MockCompanyRepository
	svc       *Service
	cred      identity.Credential
}

// newFixture knows partner 5 and products 10 and 11
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	cred, err := identity.NewCredential("admin", "acme", 2, "secret")
	require.NoError(t, err)
	f := &fixture{
		bills:     newMemoryBills(),
		partners:  new(MockPartnerRepository),
		products:  new(MockProductRepository),
		companies: new(MockCompanyRepository),
		cred:      cred,
	}
	f.partners.On("Exists", mock.Anything, cred, int64(5)).Return(true, nil).Maybe()
	f.partners.On("Exists", mock.Anything, cred, mock.Anything).Return(false, nil).Maybe()
	f.products.On("Exists", mock.Anything, cred, int64(10)).Return(true, nil).Maybe()
	f.products.On("Exists", mock.Anything, cred, int64(11)).Return(true, nil).Maybe()
	f.products.On("Exists", mock.Anything, cred, mock.Anything).Return(false, nil).Maybe()
	f.svc = NewService(f.bills, f.partners, f.products, f.companies, opts...)
	return f
}

func line(productID int64, qty int64) billing.LineInput {
	id := shared.ID(productID)
	return billing.LineInput{
		ProductID: &id,
		Quantity:  decimal.NewFromInt(qty),
		PriceUnit: decimal.NewFromInt(100),
	}
}

func header() shared.Fields {
	return shared.Fields{"partner_id": int64(5), "ref": "INV-1"}
}

func TestService_CreateWithLines(t *testing.T) {
	ctx := context.Background()

	t.Run("created bill reads back identically", func(t *testing.T) {
		f := newFixture(t)
		res := f.svc.CreateWithLines(ctx, f.cred, CreateBillInput{Fields: header(), Lines: []billing.LineInput{line(10, 2), line(11, 1)}})
		require.True(t, res.IsOk(), "unexpected error: %v", res.Err())

		created := res.Value().Bill
		assert.Equal(t, billing.StateDraft, created.State)
		assert.Equal(t, billing.MoveInInvoice, created.MoveType)
		assert.Len(t, created.Lines, 2)

		read := f.svc.GetByID(ctx, f.cred, created.ID, billing.FilterNone)
		require.True(t, read.IsOk())
		assert.Equal(t, created, read.Value())
	})

	t.Run("invalid product skips the line with a warning naming the id", func(t *testing.T) {
		f := newFixture(t)
		res := f.svc.CreateWithLines(ctx, f.cred, CreateBillInput{
			Fields: header(),
			Lines:  []billing.LineInput{line(10, 1), line(99, 1), line(11, 3)},
		})
		require.True(t, res.IsOk())

		out := res.Value()
		require.Len(t, out.Bill.Lines, 2)
		assert.Equal(t, int64(10), out.Bill.Lines[0].Product.ID)
		assert.Equal(t, int64(11), out.Bill.Lines[1].Product.ID)
		require.Len(t, out.InvalidLines, 1)
		assert.Equal(t, 1, out.InvalidLines[0].Index)
		assert.Equal(t, "line 1: product 99 does not exist", out.InvalidLines[0].Message)
	})

	t.Run("non-positive product id never reaches the ledger", func(t *testing.T) {
		f := newFixture(t)
		res := f.svc.CreateWithLines(ctx, f.cred, CreateBillInput{Fields: header(), Lines: []billing.LineInput{line(0, 1)}})
		require.True(t, res.IsOk())
		assert.Len(t, res.Value().InvalidLines, 1)
		f.products.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, int64(0))
	})

	t.Run("line without a product is attached unchecked", func(t *testing.T) {
		f := newFixture(t)
		var req LineRequest
		require.NoError(t, json.Unmarshal([]byte(`{"name":"Payment terms: 30 days"}`), &req))

		res := f.svc.CreateWithLines(ctx, f.cred, CreateBillInput{Fields: header(), Lines: []billing.LineInput{line(10, 2), req.ToInput()}})
		require.True(t, res.IsOk())
		assert.Empty(t, res.Value().InvalidLines)
		require.Len(t, res.Value().Bill.Lines, 2)
		assert.True(t, res.Value().Bill.Lines[1].Quantity.Equal(decimal.NewFromInt(1)))
		f.products.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, int64(0))
	})

	t.Run("explicit zero quantity is kept", func(t *testing.T) {
		f := newFixture(t)
		res := f.svc.CreateWithLines(ctx, f.cred, CreateBillInput{Fields: header(), Lines: []billing.LineInput{line(10, 0)}})
		require.True(t, res.IsOk())
		assert.Empty(t, res.Value().InvalidLines)
		require.Len(t, res.Value().Bill.Lines, 1)
		assert.True(t, res.Value().Bill.Lines[0].Quantity.IsZero())
	})

	t.Run("unusable company id creates nothing", func(t *testing.T) {
		var req CreateBillRequest
		require.NoError(t, json.Unmarshal([]byte(`{"partner_id":5,"company_id":"abc"}`), &req))

		f := newFixture(t)
		res := f.svc.CreateWithLines(ctx, f.cred, req.ToInput())
		assert.Equal(t, shared.CodeNotFound, shared.CodeOf(res.Err()))
		assert.ErrorContains(t, res.Err(), "company 0 not found")
		assert.Empty(t, f.bills.bills)
		f.companies.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unusable journal and currency ids create nothing", func(t *testing.T) {
		for _, body := range []string{`{"partner_id":5,"journal_id":0}`, `{"partner_id":5,"currency_id":-7}`} {
			var req CreateBillRequest
			require.NoError(t, json.Unmarshal([]byte(body), &req))

			f := newFixture(t)
			res := f.svc.CreateWithLines(ctx, f.cred, req.ToInput())
			assert.True(t, shared.IsNotFound(res.Err()), body)
			assert.Empty(t, f.bills.bills, body)
		}
	})

	t.Run("unknown partner creates nothing", func(t *testing.T) {
		f := newFixture(t)
		res := f.svc.CreateWithLines(ctx, f.cred, CreateBillInput{Fields: shared.Fields{"partner_id": int64(6)}})
		assert.True(t, shared.IsNotFound(res.Err()))
		assert.Empty(t, f.bills.bills)
	})

	t.Run("missing partner is invalid input", func(t *testing.T) {
		f := newFixture(t)
		res := f.svc.CreateWithLines(ctx, f.cred, CreateBillInput{Fields: shared.Fields{"ref": "x"}})
		assert.Equal(t, shared.CodeInvalidInput, shared.CodeOf(res.Err()))
	})

	t.Run("unknown company creates nothing", func(t *testing.T) {
		f := newFixture(t)
		f.companies.On("Exists", mock.Anything, f.cred, int64(3)).Return(false, nil)
		fields := header()
		fields["company_id"] = int64(3)

		res := f.svc.CreateWithLines(ctx, f.cred, CreateBillInput{Fields: fields})
		assert.True(t, shared.IsNotFound(res.Err()))
		assert.Empty(t, f.bills.bills)
	})
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.bills.seed(billing.StatePosted, 1)

	t.Run("state filter mismatch is not in state", func(t *testing.T) {
		res := f.svc.GetByID(ctx, f.cred, id, billing.FilterDraft)
		assert.Equal(t, shared.CodeNotInState, shared.CodeOf(res.Err()))
		assert.Equal(t, shared.TagRejected, res.Tag())
	})

	t.Run("matching filter returns the bill", func(t *testing.T) {
		res := f.svc.GetByID(ctx, f.cred, id, billing.FilterPosted)
		require.True(t, res.IsOk())
		assert.Len(t, res.Value().Lines, 1)
	})

	t.Run("invalid id is not found", func(t *testing.T) {
		res := f.svc.GetByID(ctx, f.cred, 0, billing.FilterNone)
		assert.True(t, shared.IsNotFound(res.Err()))
	})
}

func TestService_PostedBillIsReadOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.bills.seed(billing.StatePosted, 2)

	update := f.svc.UpdateFull(ctx, f.cred, id, UpdateBillInput{
		Fields:       shared.Fields{"ref": "changed"},
		Lines:        []billing.LineInput{line(10, 1)},
		ReplaceLines: true,
	})
	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(update.Err()))

	add := f.svc.EditRow(ctx, f.cred, id, EditRowInput{Action: RowAdd, Line: line(10, 1)})
	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(add.Err()))

	del := f.svc.EditRow(ctx, f.cred, id, EditRowInput{Action: RowDelete, LineID: f.bills.bills[id].LineIDs[0]})
	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(del.Err()))

	assert.Zero(t, f.bills.mutations())
	assert.Len(t, f.bills.bills[id].Lines, 2)
}

func TestService_UpdateFull(t *testing.T) {
	ctx := context.Background()

	t.Run("empty bill updated with two lines has exactly two", func(t *testing.T) {
		f := newFixture(t)
		created := f.svc.CreateWithLines(ctx, f.cred, CreateBillInput{Fields: header()})
		require.True(t, created.IsOk())
		id := created.Value().Bill.ID
		require.Empty(t, created.Value().Bill.Lines)

		res := f.svc.UpdateFull(ctx, f.cred, id, UpdateBillInput{
			Lines:        []billing.LineInput{line(10, 1), line(11, 2)},
			ReplaceLines: true,
		})
		require.True(t, res.IsOk(), "unexpected error: %v", res.Err())
		assert.Len(t, res.Value().Bill.Lines, 2)
		assert.Empty(t, res.Value().InvalidLines)
	})

	t.Run("replaces existing lines", func(t *testing.T) {
		f := newFixture(t)
		id := f.bills.seed(billing.StateDraft, 3)

		res := f.svc.UpdateFull(ctx, f.cred, id, UpdateBillInput{
			Fields:       shared.Fields{"ref": "INV-2"},
			Lines:        []billing.LineInput{line(10, 1)},
			ReplaceLines: true,
		})
		require.True(t, res.IsOk())
		assert.Equal(t, "INV-2", res.Value().Bill.Ref)
		require.Len(t, res.Value().Bill.Lines, 1)
		assert.Equal(t, int64(10), res.Value().Bill.Lines[0].Product.ID)
	})

	t.Run("unusable partner id is not found", func(t *testing.T) {
		var req UpdateBillRequest
		require.NoError(t, json.Unmarshal([]byte(`{"partner_id":"abc","ref":"INV-3"}`), &req))

		f := newFixture(t)
		id := f.bills.seed(billing.StateDraft, 1)
		res := f.svc.UpdateFull(ctx, f.cred, id, req.ToInput())
		assert.ErrorContains(t, res.Err(), "partner 0 not found")
		assert.Zero(t, f.bills.mutations())
	})

	t.Run("empty line list clears the bill", func(t *testing.T) {
		f := newFixture(t)
		id := f.bills.seed(billing.StateDraft, 2)

		res := f.svc.UpdateFull(ctx, f.cred, id, UpdateBillInput{ReplaceLines: true})
		require.True(t, res.IsOk())
		assert.Empty(t, res.Value().Bill.Lines)
	})

	t.Run("header-only update keeps lines", func(t *testing.T) {
		f := newFixture(t)
		id := f.bills.seed(billing.StateDraft, 2)

		res := f.svc.UpdateFull(ctx, f.cred, id, UpdateBillInput{Fields: shared.Fields{"ref": "INV-3"}})
		require.True(t, res.IsOk())
		assert.Len(t, res.Value().Bill.Lines, 2)
	})

	t.Run("warnings keep input order under concurrency", func(t *testing.T) {
		f := newFixture(t, WithLineConcurrency(3))
		id := f.bills.seed(billing.StateDraft, 0)

		res := f.svc.UpdateFull(ctx, f.cred, id, UpdateBillInput{
			Lines:        []billing.LineInput{line(98, 1), line(10, 1), line(99, 1), line(11, 1)},
			ReplaceLines: true,
		})
		require.True(t, res.IsOk())
		assert.Len(t, res.Value().Bill.Lines, 2)
		require.Len(t, res.Value().InvalidLines, 2)
		assert.Equal(t, "line 0: product 98 does not exist", res.Value().InvalidLines[0].Message)
		assert.Equal(t, "line 2: product 99 does not exist", res.Value().InvalidLines[1].Message)
	})

	t.Run("unknown bill", func(t *testing.T) {
		f := newFixture(t)
		res := f.svc.UpdateFull(ctx, f.cred, 404, UpdateBillInput{ReplaceLines: true})
		assert.True(t, shared.IsNotFound(res.Err()))
	})
}

func TestService_EditRow(t *testing.T) {
	ctx := context.Background()

	t.Run("adds a line", func(t *testing.T) {
		f := newFixture(t)
		id := f.bills.seed(billing.StateDraft, 1)

		res := f.svc.EditRow(ctx, f.cred, id, EditRowInput{Action: RowAdd, Line: line(11, 4)})
		require.True(t, res.IsOk())
		assert.Len(t, res.Value().Lines, 2)
	})

	t.Run("add with unknown product is not found", func(t *testing.T) {
		f := newFixture(t)
		id := f.bills.seed(billing.StateDraft, 1)

		res := f.svc.EditRow(ctx, f.cred, id, EditRowInput{Action: RowAdd, Line: line(77, 1)})
		assert.True(t, shared.IsNotFound(res.Err()))
		assert.Zero(t, f.bills.mutations())
	})

	t.Run("deletes a line of the bill", func(t *testing.T) {
		f := newFixture(t)
		id := f.bills.seed(billing.StateDraft, 2)
		lineID := f.bills.bills[id].LineIDs[0]

		res := f.svc.EditRow(ctx, f.cred, id, EditRowInput{Action: RowDelete, LineID: lineID})
		require.True(t, res.IsOk())
		require.Len(t, res.Value().Lines, 1)
		assert.NotEqual(t, lineID, res.Value().Lines[0].ID)
	})

	t.Run("delete of a foreign line is not found", func(t *testing.T) {
		f := newFixture(t)
		id := f.bills.seed(billing.StateDraft, 1)
		other := f.bills.seed(billing.StateDraft, 1)

		res := f.svc.EditRow(ctx, f.cred, id, EditRowInput{Action: RowDelete, LineID: f.bills.bills[other].LineIDs[0]})
		assert.True(t, shared.IsNotFound(res.Err()))
		assert.Zero(t, f.bills.mutations())
	})

	t.Run("unknown action", func(t *testing.T) {
		f := newFixture(t)
		res := f.svc.EditRow(ctx, f.cred, 1, EditRowInput{Action: "move"})
		assert.Equal(t, shared.CodeInvalidInput, shared.CodeOf(res.Err()))
	})
}

func TestService_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("posts a draft and leaves the draft filter", func(t *testing.T) {
		f := newFixture(t)
		id := f.bills.seed(billing.StateDraft, 1)

		res := f.svc.Confirm(ctx, f.cred, id)
		require.True(t, res.IsOk(), "unexpected error: %v", res.Err())
		assert.Equal(t, billing.StatePosted, res.Value().State)

		draft := f.svc.GetByID(ctx, f.cred, id, billing.FilterDraft)
		assert.Equal(t, shared.CodeNotInState, shared.CodeOf(draft.Err()))
		posted := f.svc.GetByID(ctx, f.cred, id, billing.FilterPosted)
		assert.True(t, posted.IsOk())
	})

	t.Run("non-draft bill is never posted", func(t *testing.T) {
		f := newFixture(t)
		id := f.bills.seed(billing.StatePosted, 1)

		res := f.svc.Confirm(ctx, f.cred, id)
		assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(res.Err()))
		assert.Zero(t, f.bills.posts)
	})

	t.Run("cancelled bill counts as not draft", func(t *testing.T) {
		f := newFixture(t)
		id := f.bills.seed(billing.StateCancel, 0)

		res := f.svc.Confirm(ctx, f.cred, id)
		assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(res.Err()))
		assert.Zero(t, f.bills.posts)
	})

	t.Run("bill left in draft fails confirmation", func(t *testing.T) {
		f := newFixture(t)
		f.bills.postTo = billing.StateDraft
		id := f.bills.seed(billing.StateDraft, 1)

		res := f.svc.Confirm(ctx, f.cred, id)
		assert.Equal(t, shared.CodeConfirmationFailed, shared.CodeOf(res.Err()))
		assert.Equal(t, shared.KindBackend, shared.KindOf(res.Err()))
		require.NotNil(t, res.Value())
		assert.Equal(t, billing.StateDraft, res.Value().State)
	})
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	f.bills.seed(billing.StateDraft, 0)
	f.bills.seed(billing.StatePosted, 0)

	res := f.svc.List(context.Background(), f.cred, billing.Filter{State: billing.FilterDraft})
	require.True(t, res.IsOk())
	assert.Len(t, res.Value(), 1)

	bad := f.svc.List(context.Background(), f.cred, billing.Filter{MoveType: "entry"})
	assert.Equal(t, shared.CodeInvalidInput, shared.CodeOf(bad.Err()))
}
