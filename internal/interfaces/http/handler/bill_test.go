package handler

import (
	"net/http"
	"testing"

	appbilling "github.com/erp/connector/internal/application/billing"
	"github.com/erp/connector/internal/domain/billing"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupBillRouter(t *testing.T) (*gin.Engine, *MockBillService) {
	t.Helper()
	svc := new(MockBillService)
	h := NewBillHandler(NewBaseHandler(false), svc)

	r := newAuthedRouter(testCredential(t))
	r.POST("/bills", h.Create)
	r.GET("/bills", h.List)
	r.GET("/bills/:id", h.Get)
	r.PUT("/bills/:id", h.Update)
	r.POST("/bills/:id/lines", h.AddLine)
	r.DELETE("/bills/:id/lines/:lineId", h.DeleteLine)
	r.POST("/bills/:id/confirm", h.Confirm)
	return r, svc
}

func TestBillHandler_CreateReportsInvalidLines(t *testing.T) {
	r, svc := setupBillRouter(t)

	out := &appbilling.BillWithWarnings{
		Bill:         &billing.Bill{ID: 20},
		InvalidLines: []shared.Warning{shared.Warnf(1, "line 1: product 999 does not exist")},
	}
	svc.On("CreateWithLines", mock.Anything, mock.Anything, mock.MatchedBy(func(in appbilling.CreateBillInput) bool {
		return in.Fields["partner_id"] == int64(7) &&
			len(in.Lines) == 2 &&
			in.Lines[0].Quantity.Equal(decimal.NewFromInt(2)) &&
			in.Lines[1].ProductID != nil && *in.Lines[1].ProductID == 999
	})).Return(shared.Ok(out))

	rec := doJSON(t, r, http.MethodPost, "/bills", map[string]any{
		"partner_id": 7,
		"move_type":  "in_invoice",
		"invoice_line_ids": []map[string]any{
			{"product_id": 4, "quantity": "2", "price_unit": "10.50"},
			{"product_id": 999, "quantity": 1},
		},
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	warnings := data["invalidLines"].([]any)
	assert.Len(t, warnings, 1)
	assert.Equal(t, float64(1), warnings[0].(map[string]any)["index"])
	svc.AssertExpectations(t)
}

func TestBillHandler_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing partner", map[string]any{"move_type": "in_invoice"}, "partner_id"},
		{"unknown move type", map[string]any{"partner_id": 7, "move_type": "receipt"}, "move_type"},
		{"bad date", map[string]any{"partner_id": 7, "invoice_date": "14/10/2026"}, "invoice_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := setupBillRouter(t)

			rec := doJSON(t, r, http.MethodPost, "/bills", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			details := decodeEnvelope(t, rec)["details"].([]any)
			assert.Equal(t, tt.field, details[0].(map[string]any)["field"])
			svc.AssertNotCalled(t, "CreateWithLines", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestBillHandler_GetWithState(t *testing.T) {
	r, svc := setupBillRouter(t)
	svc.On("GetByID", mock.Anything, mock.Anything, int64(20), billing.FilterDraft).
		Return(shared.ResultOf[*billing.Bill](nil, shared.NotInState("bill", 20, "draft", "posted")))

	rec := doJSON(t, r, http.MethodGet, "/bills/20?state=draft", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, shared.CodeNotInState, decodeEnvelope(t, rec)["code"])
}

func TestBillHandler_GetRejectsUnknownState(t *testing.T) {
	r, svc := setupBillRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/bills/20?state=paid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, shared.CodeInvalidInput, decodeEnvelope(t, rec)["code"])
	svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBillHandler_List(t *testing.T) {
	r, svc := setupBillRouter(t)
	svc.On("List", mock.Anything, mock.Anything, billing.Filter{
		State:     billing.FilterPosted,
		PartnerID: 7,
		MoveType:  billing.MoveInInvoice,
	}).Return(shared.Ok([]billing.Bill{{ID: 20}}))

	rec := doJSON(t, r, http.MethodGet, "/bills?state=posted&partner_id=7&move_type=in_invoice", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestBillHandler_ListRejectsMalformedPartner(t *testing.T) {
	for _, raw := range []string{"-3", "1.5", "99999999999999999999"} {
		t.Run(raw, func(t *testing.T) {
			r, svc := setupBillRouter(t)

			rec := doJSON(t, r, http.MethodGet, "/bills?partner_id="+raw, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, shared.CodeInvalidInput, decodeEnvelope(t, rec)["code"])
			svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestBillHandler_UnusablePathIDIsNotFound(t *testing.T) {
	r, svc := setupBillRouter(t)

	for _, path := range []string{"/bills/abc", "/bills/0", "/bills/-4"} {
		rec := doJSON(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, shared.CodeNotFound, decodeEnvelope(t, rec)["code"], path)
	}
	rec := doJSON(t, r, http.MethodDelete, "/bills/5/lines/xyz", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "bill line 0 not found", decodeEnvelope(t, rec)["message"])

	svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "EditRow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBillHandler_UpdateReplacesLinesOnlyWhenSent(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]any
		replace bool
	}{
		{"header only", map[string]any{"ref": "INV-9"}, false},
		{"empty line list", map[string]any{"ref": "INV-9", "invoice_line_ids": []any{}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := setupBillRouter(t)
			svc.On("UpdateFull", mock.Anything, mock.Anything, int64(20), mock.MatchedBy(func(in appbilling.UpdateBillInput) bool {
				return in.ReplaceLines == tt.replace && in.Fields["ref"] == "INV-9"
			})).Return(shared.Ok(&appbilling.BillWithWarnings{Bill: &billing.Bill{ID: 20}, InvalidLines: []shared.Warning{}}))

			rec := doJSON(t, r, http.MethodPut, "/bills/20", tt.body)

			assert.Equal(t, http.StatusOK, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestBillHandler_EditRows(t *testing.T) {
	r, svc := setupBillRouter(t)
	svc.On("EditRow", mock.Anything, mock.Anything, int64(20), mock.MatchedBy(func(row appbilling.EditRowInput) bool {
		return row.Action == appbilling.RowAdd && row.Line.ProductID != nil && *row.Line.ProductID == 4
	})).Return(shared.Ok(&billing.Bill{ID: 20}))
	svc.On("EditRow", mock.Anything, mock.Anything, int64(20), appbilling.EditRowInput{
		Action: appbilling.RowDelete,
		LineID: 31,
	}).Return(shared.ResultOf[*billing.Bill](nil, shared.NotFound("bill line", 31)))

	rec := doJSON(t, r, http.MethodPost, "/bills/20/lines", map[string]any{"product_id": 4, "quantity": 1})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/bills/20/lines/31", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestBillHandler_Confirm(t *testing.T) {
	tests := []struct {
		name   string
		result shared.Result[*billing.Bill]
		status int
	}{
		{"posted", shared.Ok(&billing.Bill{ID: 20, State: billing.StatePosted}), http.StatusOK},
		{"not draft", shared.ResultOf[*billing.Bill](nil, shared.NotInState("bill", 20, "draft", "posted")), http.StatusNotFound},
		{"ledger refused", shared.ResultOf[*billing.Bill](nil, &shared.DomainError{
			Code: shared.CodeConfirmationFailed, Message: "bill 20 could not be posted", Kind: shared.KindBackend,
		}), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := setupBillRouter(t)
			svc.On("Confirm", mock.Anything, mock.Anything, int64(20)).Return(tt.result)

			rec := doJSON(t, r, http.MethodPost, "/bills/20/confirm", nil)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
