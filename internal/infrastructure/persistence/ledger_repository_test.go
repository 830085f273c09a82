package persistence

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/connector/internal/domain/billing"
	"github.com/erp/connector/internal/domain/catalog"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/partner"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/ledger"
)

type call struct {
	model     string
	operation string
	params    []any
	kwargs    map[string]any
}

// fakeLedger answers calls from a queue of raw JSON replies
type fakeLedger struct {
	replies []string
	calls   []call
}

func (f *fakeLedger) Execute(_ context.Context, _ identity.Credential, model, operation string, params []any, kwargs map[string]any) (json.RawMessage, error) {
	i := len(f.calls)
	f.calls = append(f.calls, call{model: model, operation: operation, params: params, kwargs: kwargs})
	if i < len(f.replies) {
		return json.RawMessage(f.replies[i]), nil
	}
	return json.RawMessage("true"), nil
}

var _ ledger.Executor = (*fakeLedger)(nil)

func cred(t *testing.T) identity.Credential {
	t.Helper()
	c, err := identity.NewCredential("admin", "acme", 2, "secret")
	require.NoError(t, err)
	return c
}

func TestPartnerRepository_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("applies the role domain", func(t *testing.T) {
		ex := &fakeLedger{replies: []string{
			`[{"id":7,"name":"Acme","vat":false,"customer_rank":0,"supplier_rank":1,"company_id":[1,"Main"],"active":true}]`,
		}}
		repo := NewLedgerPartnerRepository(ex)

		p, err := repo.FindByID(ctx, cred(t), 7, partner.RoleProvider)
		require.NoError(t, err)
		assert.Equal(t, "Acme", p.Name)
		assert.Equal(t, "", p.VAT)
		assert.Equal(t, int64(1), shared.RefID(p.Company))

		require.Len(t, ex.calls, 1)
		assert.Equal(t, ModelPartner, ex.calls[0].model)
		assert.Equal(t, ledger.OpSearchRead, ex.calls[0].operation)
		domain := ex.calls[0].params[0].(ledger.Domain)
		assert.Contains(t, domain, []any{"supplier_rank", ">", 0})
		assert.NotContains(t, domain, []any{"customer_rank", ">", 0})
	})

	t.Run("missing is not found", func(t *testing.T) {
		ex := &fakeLedger{replies: []string{`[]`}}
		_, err := NewLedgerPartnerRepository(ex).FindByID(ctx, cred(t), 7, partner.RoleClient)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("non-positive id makes no call", func(t *testing.T) {
		ex := &fakeLedger{}
		_, err := NewLedgerPartnerRepository(ex).FindByID(ctx, cred(t), 0, partner.RoleClient)
		assert.True(t, shared.IsNotFound(err))
		assert.Empty(t, ex.calls)
	})
}

func TestPartnerRepository_Archive(t *testing.T) {
	ex := &fakeLedger{}
	err := NewLedgerPartnerRepository(ex).Archive(context.Background(), cred(t), 9)
	require.NoError(t, err)

	require.Len(t, ex.calls, 1)
	assert.Equal(t, ledger.OpWrite, ex.calls[0].operation)
	assert.Equal(t, []int64{9}, ex.calls[0].params[0])
	assert.Equal(t, map[string]any{"active": false}, ex.calls[0].params[1])
}

func TestPartnerRepository_UpdateEmptyMakesNoCall(t *testing.T) {
	ex := &fakeLedger{}
	err := NewLedgerPartnerRepository(ex).Update(context.Background(), cred(t), 9, shared.Fields{})
	require.NoError(t, err)
	assert.Empty(t, ex.calls)
}

func TestBankRepository_FindByName(t *testing.T) {
	ex := &fakeLedger{replies: []string{`[{"id":1,"name":"ING Bank","bic":false,"active":true},{"id":2,"name":"ING","bic":"INGBNL2A","active":true}]`}}

	banks, err := NewLedgerBankRepository(ex).FindByName(context.Background(), cred(t), " ing ")
	require.NoError(t, err)
	require.Len(t, banks, 2)

	domain := ex.calls[0].params[0].(ledger.Domain)
	assert.Equal(t, ledger.Domain{[]any{"name", "ilike", "ing"}}, domain)

	picked, ok := partner.PickByName(banks, "ING")
	require.True(t, ok)
	assert.Equal(t, int64(2), picked.ID)
}

func TestBankAccountRepository_FindByPartner(t *testing.T) {
	ex := &fakeLedger{replies: []string{`[{"id":4,"acc_number":"NL01","bank_id":[2,"ING"],"partner_id":[7,"Acme"],"currency_id":false,"company_id":false,"active":true}]`}}

	accs, err := NewLedgerBankAccountRepository(ex).FindByPartner(context.Background(), cred(t), 7, "NL01")
	require.NoError(t, err)
	require.Len(t, accs, 1)
	assert.Equal(t, "ING", accs[0].BankName)
	assert.Nil(t, accs[0].Currency)

	domain := ex.calls[0].params[0].(ledger.Domain)
	assert.Equal(t, ledger.Domain{
		[]any{"partner_id", "=", int64(7)},
		[]any{"acc_number", "=", "NL01"},
	}, domain)
}

func TestProductRepository_FindByIDTwiceIsStable(t *testing.T) {
	row := `[{"id":5,"name":"Widget","default_code":"W-1","type":"consu","list_price":12.5,"standard_price":8,"sale_ok":true,"purchase_ok":true,"description":false,"company_id":false,"active":true}]`
	ex := &fakeLedger{replies: []string{row, row}}
	repo := NewLedgerProductRepository(ex)

	first, err := repo.FindByID(context.Background(), cred(t), 5)
	require.NoError(t, err)
	second, err := repo.FindByID(context.Background(), cred(t), 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "12.5", first.ListPrice.String())
}

func TestProductRepository_FindAllCompanyScope(t *testing.T) {
	ex := &fakeLedger{replies: []string{`[]`}}
	_, err := NewLedgerProductRepository(ex).FindAll(context.Background(), cred(t), catalog.Filter{CompanyID: 3})
	require.NoError(t, err)

	domain := ex.calls[0].params[0].(ledger.Domain)
	assert.Equal(t, ledger.Domain{[]any{"company_id", "in", []any{int64(3), false}}}, domain)
	assert.Equal(t, defaultListLimit, ex.calls[0].kwargs["limit"])
}

const draftBill = `[{"id":11,"name":"/","move_type":"in_invoice","partner_id":[7,"Acme"],"invoice_line_ids":[21,22],"amount_total":30,"state":"draft"}]`

func TestBillRepository_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("expands lines", func(t *testing.T) {
		ex := &fakeLedger{replies: []string{
			draftBill,
			`[{"id":21,"move_id":[11,"/"],"product_id":[5,"Widget"],"quantity":1,"price_unit":10},{"id":22,"move_id":[11,"/"],"product_id":[6,"Bolt"],"quantity":2,"price_unit":10}]`,
		}}
		bill, err := NewLedgerBillRepository(ex).FindByID(ctx, cred(t), 11, billing.FilterDraft)
		require.NoError(t, err)
		assert.True(t, bill.IsDraft())
		require.Len(t, bill.Lines, 2)
		assert.Equal(t, int64(6), shared.RefID(bill.Lines[1].Product))

		require.Len(t, ex.calls, 2)
		assert.Equal(t, ModelBillLine, ex.calls[1].model)
		assert.Equal(t, ledger.Domain{[]any{"id", "in", []int64{21, 22}}}, ex.calls[1].params[0])
	})

	t.Run("state mismatch is not in state", func(t *testing.T) {
		ex := &fakeLedger{replies: []string{draftBill}}
		_, err := NewLedgerBillRepository(ex).FindByID(ctx, cred(t), 11, billing.FilterPosted)
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotInState, shared.CodeOf(err))
		assert.Len(t, ex.calls, 1)
	})

	t.Run("no lines skips the line read", func(t *testing.T) {
		ex := &fakeLedger{replies: []string{`[{"id":12,"invoice_line_ids":[],"state":"draft"}]`}}
		bill, err := NewLedgerBillRepository(ex).FindByID(ctx, cred(t), 12, billing.FilterNone)
		require.NoError(t, err)
		assert.Empty(t, bill.Lines)
		assert.Len(t, ex.calls, 1)
	})
}

func TestBillRepository_LineCommands(t *testing.T) {
	ctx := context.Background()
	ex := &fakeLedger{}
	repo := NewLedgerBillRepository(ex)

	require.NoError(t, repo.AddLine(ctx, cred(t), 11, shared.Fields{"product_id": int64(5)}))
	require.NoError(t, repo.RemoveLines(ctx, cred(t), 11, []int64{21, 22}))
	require.NoError(t, repo.RemoveLines(ctx, cred(t), 11, nil))

	require.Len(t, ex.calls, 2)
	assert.Equal(t, map[string]any{
		"invoice_line_ids": []any{[]any{0, 0, map[string]any{"product_id": int64(5)}}},
	}, ex.calls[0].params[1])
	assert.Equal(t, map[string]any{
		"invoice_line_ids": []any{[]any{2, int64(21)}, []any{2, int64(22)}},
	}, ex.calls[1].params[1])
}

func TestBillRepository_Post(t *testing.T) {
	ex := &fakeLedger{}
	require.NoError(t, NewLedgerBillRepository(ex).Post(context.Background(), cred(t), 11))

	require.Len(t, ex.calls, 1)
	assert.Equal(t, ledger.OpActionPost, ex.calls[0].operation)
	assert.Equal(t, []any{[]int64{11}}, ex.calls[0].params)
}

func TestCompanyRepository_Exists(t *testing.T) {
	ex := &fakeLedger{replies: []string{`[1]`, `[]`}}
	repo := NewLedgerCompanyRepository(ex)

	ok, err := repo.Exists(context.Background(), cred(t), 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(context.Background(), cred(t), 99)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Exists(context.Background(), cred(t), -1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, ex.calls, 2)
}

func TestAttachmentRepository_FindByResource(t *testing.T) {
	ex := &fakeLedger{replies: []string{`[{"id":3,"name":"scan.pdf","mimetype":"application/pdf","res_model":"account.move","res_id":11,"file_size":42}]`}}

	list, err := NewLedgerAttachmentRepository(ex).FindByResource(context.Background(), cred(t), "account.move", 11)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(11), list[0].ResID)
	assert.NotContains(t, ex.calls[0].kwargs["fields"], "datas")

	_, err = NewLedgerAttachmentRepository(ex).FindByResource(context.Background(), cred(t), "", 11)
	assert.Equal(t, shared.CodeInvalidInput, shared.CodeOf(err))
}
