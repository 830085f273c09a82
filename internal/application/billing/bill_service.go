// Package billing orchestrates the bill lifecycle: creation with lines, full
// and per-line edits of drafts, and confirmation.
package billing

import (
	"context"
	"fmt"

	"github.com/erp/connector/internal/domain/billing"
	"github.com/erp/connector/internal/domain/catalog"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/partner"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pipeline names used in traces and logs
const (
	PipelineCreateBill = "billing.create_with_lines"
	PipelineUpdateBill = "billing.update_full"
	PipelineConfirm    = "billing.confirm"
)

// DefaultLineConcurrency bounds concurrent line writes after a full replace
const DefaultLineConcurrency = 4

// Service handles bill business operations
type Service struct {
	bills           billing.BillRepository
	partners        partner.PartnerRepository
	products        catalog.ProductRepository
	companies       identity.CompanyRepository
	lineConcurrency int
	hooks           []shared.StepHook
}

// Option configures a Service
type Option func(*Service)

// WithLineConcurrency sets how many lines are re-attached in parallel
func WithLineConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.lineConcurrency = n
		}
	}
}

// WithStepHooks attaches observers to every pipeline step
func WithStepHooks(hooks ...shared.StepHook) Option {
	return func(s *Service) {
		s.hooks = append(s.hooks, hooks...)
	}
}

// NewService creates a new billing Service
func NewService(
	bills billing.BillRepository,
	partners partner.PartnerRepository,
	products catalog.ProductRepository,
	companies identity.CompanyRepository,
	opts ...Option,
) *Service {
	s := &Service{
		bills:           bills,
		partners:        partners,
		products:        products,
		companies:       companies,
		lineConcurrency: DefaultLineConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type createState struct {
	cred     identity.Credential
	input    CreateBillInput
	header   shared.Fields
	billID   int64
	warnings []shared.Warning
	bill     *billing.Bill
}

// CreateWithLines creates a bill header and attaches every line whose
// product exists. Lines with unknown products are skipped and reported.
func (s *Service) CreateWithLines(ctx context.Context, cred identity.Credential, input CreateBillInput) shared.Result[*BillWithWarnings] {
	st := &createState{cred: cred, input: input, warnings: []shared.Warning{}}

	err := shared.NewPipeline[createState](PipelineCreateBill, s.hooks...).
		Then("validate_references", s.validateCreate).
		Then("create_bill", s.createBill).
		Then("attach_lines", s.attachLines).
		Then("reload_bill", func(ctx context.Context, st *createState) error {
			bill, err := s.bills.FindByID(ctx, st.cred, st.billID, billing.FilterNone)
			st.bill = bill
			return err
		}).
		Run(ctx, st)
	if err != nil && st.billID == 0 {
		return shared.ResultOf[*BillWithWarnings](nil, err)
	}
	out := &BillWithWarnings{Bill: st.bill, InvalidLines: st.warnings}
	if out.Bill == nil {
		out.Bill = &billing.Bill{ID: st.billID, State: billing.StateDraft}
	}
	return shared.ResultOf(out, err)
}

func (s *Service) validateCreate(ctx context.Context, st *createState) error {
	header := shared.Project(st.input.Fields, billing.BillFields)
	if _, ok := header.Get("partner_id"); !ok {
		return shared.InvalidInput("partner_id is required")
	}
	if _, ok := header.Get("move_type"); !ok {
		header["move_type"] = string(billing.MoveInInvoice)
	}
	if err := s.checkHeader(ctx, st.cred, header); err != nil {
		return err
	}
	st.header = header
	return nil
}

func (s *Service) createBill(ctx context.Context, st *createState) error {
	id, err := s.bills.Create(ctx, st.cred, st.header)
	if err != nil {
		return err
	}
	st.billID = id
	logger.L(ctx).Info("Bill created", zap.Int64("bill_id", id), zap.Int("lines", len(st.input.Lines)))
	return nil
}

func (s *Service) attachLines(ctx context.Context, st *createState) error {
	for i, line := range st.input.Lines {
		if err := ctx.Err(); err != nil {
			return shared.NewTransportError("request cancelled", err)
		}
		if w, ok := s.attachLine(ctx, st.cred, st.billID, i, line); !ok {
			st.warnings = append(st.warnings, w)
		}
	}
	return nil
}

// attachLine validates and attaches one line. It reports a warning instead
// of an error so one bad line never aborts the batch.
func (s *Service) attachLine(ctx context.Context, cred identity.Credential, billID int64, i int, line billing.LineInput) (shared.Warning, bool) {
	if err := s.validateLine(ctx, cred, line); err != nil {
		if shared.IsNotFound(err) {
			id, _ := line.ProductRef()
			return shared.Warnf(i, "line %d: product %d does not exist", i, id), false
		}
		return shared.Warnf(i, "line %d: %s", i, err.Error()), false
	}
	if err := s.bills.AddLine(ctx, cred, billID, line.Fields()); err != nil {
		logger.L(ctx).Warn("Bill line skipped",
			zap.Int64("bill_id", billID),
			zap.Int("index", i),
			zap.Error(err),
		)
		return shared.Warnf(i, "line %d: %s", i, err.Error()), false
	}
	return shared.Warning{}, true
}

// validateLine checks the product of the line exists. Lines without a
// product are accepted as they are.
func (s *Service) validateLine(ctx context.Context, cred identity.Credential, line billing.LineInput) error {
	id, ok := line.ProductRef()
	if !ok {
		return nil
	}
	if !line.ProductID.Valid() {
		return shared.NotFound("product", id)
	}
	ok, err := s.products.Exists(ctx, cred, id)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NotFound("product", id)
	}
	return nil
}

// checkHeader validates the references and move type of a header payload
func (s *Service) checkHeader(ctx context.Context, cred identity.Credential, header shared.Fields) error {
	if v, ok := header.Get("move_type"); ok {
		mt, _ := v.(string)
		if !billing.MoveType(mt).Valid() {
			return shared.InvalidInput("unknown move_type %v", v)
		}
	}
	if err := billing.HeaderRefs.Check(header); err != nil {
		return err
	}
	partnerID, present, _ := header.ID("partner_id")
	if present {
		exists, err := s.partners.Exists(ctx, cred, partnerID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.NotFound("partner", partnerID)
		}
	}
	companyID, present, _ := header.ID("company_id")
	if present {
		exists, err := s.companies.Exists(ctx, cred, companyID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.NotFound("company", companyID)
		}
	}
	return nil
}

// GetByID returns a bill with its lines. A bill outside filter yields
// NOT_IN_STATE.
func (s *Service) GetByID(ctx context.Context, cred identity.Credential, id int64, filter billing.StateFilter) shared.Result[*billing.Bill] {
	return shared.ResultOf(s.bills.FindByID(ctx, cred, id, filter))
}

// List lists bills matching filter
func (s *Service) List(ctx context.Context, cred identity.Credential, filter billing.Filter) shared.Result[[]billing.Bill] {
	if filter.MoveType != "" && !filter.MoveType.Valid() {
		return shared.Rejected[[]billing.Bill](shared.InvalidInput("unknown move_type %q", filter.MoveType))
	}
	return shared.ResultOf(s.bills.FindAll(ctx, cred, filter))
}

// requireDraft loads the bill and refuses anything but a draft
func (s *Service) requireDraft(ctx context.Context, cred identity.Credential, id int64) (*billing.Bill, error) {
	bill, err := s.bills.FindByID(ctx, cred, id, billing.FilterNone)
	if err != nil {
		return nil, err
	}
	if !bill.IsDraft() {
		return bill, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("bill %d is %s; only draft bills can be changed", id, bill.State))
	}
	return bill, nil
}

type updateState struct {
	cred     identity.Credential
	id       int64
	input    UpdateBillInput
	current  *billing.Bill
	warnings []shared.Warning
	bill     *billing.Bill
}

// UpdateFull replaces the header of a draft bill and, when requested, all of
// its lines. Replacement lines are attached concurrently and reported in
// input order.
func (s *Service) UpdateFull(ctx context.Context, cred identity.Credential, id int64, input UpdateBillInput) shared.Result[*BillWithWarnings] {
	st := &updateState{cred: cred, id: id, input: input, warnings: []shared.Warning{}}

	err := shared.NewPipeline[updateState](PipelineUpdateBill, s.hooks...).
		Then("check_state", func(ctx context.Context, st *updateState) error {
			bill, err := s.requireDraft(ctx, st.cred, st.id)
			st.current = bill
			return err
		}).
		Then("write_header", s.writeHeader).
		Then("replace_lines", s.replaceLines).
		Then("reload_bill", func(ctx context.Context, st *updateState) error {
			bill, err := s.bills.FindByID(ctx, st.cred, st.id, billing.FilterNone)
			st.bill = bill
			return err
		}).
		Run(ctx, st)
	if err != nil && st.bill == nil {
		return shared.ResultOf[*BillWithWarnings](nil, err)
	}
	return shared.ResultOf(&BillWithWarnings{Bill: st.bill, InvalidLines: st.warnings}, err)
}

func (s *Service) writeHeader(ctx context.Context, st *updateState) error {
	header := shared.Project(st.input.Fields, billing.BillFields)
	if len(header) == 0 {
		return nil
	}
	if err := s.checkHeader(ctx, st.cred, header); err != nil {
		return err
	}
	return s.bills.Update(ctx, st.cred, st.id, header)
}

func (s *Service) replaceLines(ctx context.Context, st *updateState) error {
	if !st.input.ReplaceLines {
		return nil
	}
	if err := s.bills.RemoveLines(ctx, st.cred, st.id, st.current.LineIDs); err != nil {
		return err
	}

	results := make([]*shared.Warning, len(st.input.Lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.lineConcurrency)
	for i, line := range st.input.Lines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return shared.NewTransportError("request cancelled", err)
			}
			if w, ok := s.attachLine(gctx, st.cred, st.id, i, line); !ok {
				results[i] = &w
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, w := range results {
		if w != nil {
			st.warnings = append(st.warnings, *w)
		}
	}
	return nil
}

// EditRow adds or deletes a single line of a draft bill and returns the
// refreshed bill
func (s *Service) EditRow(ctx context.Context, cred identity.Credential, id int64, row EditRowInput) shared.Result[*billing.Bill] {
	if row.Action != RowAdd && row.Action != RowDelete {
		return shared.Rejected[*billing.Bill](shared.InvalidInput("unknown row action %q, expected add or delete", row.Action))
	}
	bill, err := s.requireDraft(ctx, cred, id)
	if err != nil {
		return shared.ResultOf[*billing.Bill](nil, err)
	}

	switch row.Action {
	case RowAdd:
		if err := s.validateLine(ctx, cred, row.Line); err != nil {
			return shared.ResultOf[*billing.Bill](nil, err)
		}
		if err := s.bills.AddLine(ctx, cred, id, row.Line.Fields()); err != nil {
			return shared.ResultOf[*billing.Bill](nil, err)
		}
	case RowDelete:
		if row.LineID <= 0 || !bill.HasLine(row.LineID) {
			return shared.Rejected[*billing.Bill](shared.NotFound("bill line", row.LineID))
		}
		if err := s.bills.RemoveLines(ctx, cred, id, []int64{row.LineID}); err != nil {
			return shared.ResultOf[*billing.Bill](nil, err)
		}
	}
	return shared.ResultOf(s.bills.FindByID(ctx, cred, id, billing.FilterNone))
}

type confirmState struct {
	cred identity.Credential
	id   int64
	bill *billing.Bill
}

// Confirm posts a draft bill and verifies the ledger reports it as posted
func (s *Service) Confirm(ctx context.Context, cred identity.Credential, id int64) shared.Result[*billing.Bill] {
	st := &confirmState{cred: cred, id: id}

	err := shared.NewPipeline[confirmState](PipelineConfirm, s.hooks...).
		Then("check_state", func(ctx context.Context, st *confirmState) error {
			_, err := s.requireDraft(ctx, st.cred, st.id)
			return err
		}).
		Then("post", func(ctx context.Context, st *confirmState) error {
			return s.bills.Post(ctx, st.cred, st.id)
		}).
		Then("verify_posted", func(ctx context.Context, st *confirmState) error {
			bill, err := s.bills.FindByID(ctx, st.cred, st.id, billing.FilterNone)
			if err != nil {
				return err
			}
			st.bill = bill
			if bill.State != billing.StatePosted {
				return &shared.DomainError{
					Code:    shared.CodeConfirmationFailed,
					Message: fmt.Sprintf("bill %d was not posted (current state: %s)", st.id, bill.State),
					Kind:    shared.KindBackend,
				}
			}
			return nil
		}).
		Run(ctx, st)
	if err == nil {
		logger.L(ctx).Info("Bill confirmed", zap.Int64("bill_id", id))
	}
	if err != nil && st.bill == nil {
		return shared.ResultOf[*billing.Bill](nil, err)
	}
	return shared.ResultOf(st.bill, err)
}
