package persistence

import (
	"context"

	"github.com/erp/connector/internal/domain/attachment"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/ledger"
	"github.com/erp/connector/internal/infrastructure/persistence/models"
)

var (
	attachmentMetaFields = []string{"id", "name", "mimetype", "res_model", "res_id", "file_size"}
	attachmentReadFields = append(append([]string{}, attachmentMetaFields...), "datas")
)

// LedgerAttachmentRepository implements attachment.Repository on ir.attachment
type LedgerAttachmentRepository struct {
	ex ledger.Executor
}

// NewLedgerAttachmentRepository creates a new LedgerAttachmentRepository
func NewLedgerAttachmentRepository(ex ledger.Executor) *LedgerAttachmentRepository {
	return &LedgerAttachmentRepository{ex: ex}
}

func (r *LedgerAttachmentRepository) Create(ctx context.Context, cred identity.Credential, fields shared.Fields) (int64, error) {
	return ledger.Create(ctx, r.ex, cred, ModelAttachment, fields)
}

func (r *LedgerAttachmentRepository) FindByID(ctx context.Context, cred identity.Credential, id int64) (*attachment.Attachment, error) {
	rec, err := ledger.ReadOne[models.AttachmentRecord](ctx, r.ex, cred, ModelAttachment, "attachment", id, attachmentReadFields)
	if err != nil {
		return nil, err
	}
	a := rec.ToDomain()
	return &a, nil
}

func (r *LedgerAttachmentRepository) FindByResource(ctx context.Context, cred identity.Credential, resModel string, resID int64) ([]attachment.Attachment, error) {
	if resModel == "" || resID <= 0 {
		return nil, shared.InvalidInput("res_model and a positive res_id are required")
	}
	domain := ledger.Domain{}.
		Where("res_model", "=", resModel).
		Where("res_id", "=", resID)
	rows, err := ledger.SearchRead[models.AttachmentRecord](ctx, r.ex, cred, ModelAttachment, domain,
		ledger.SearchOptions{Fields: attachmentMetaFields, Order: "id"})
	if err != nil {
		return nil, err
	}
	out := make([]attachment.Attachment, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

func (r *LedgerAttachmentRepository) Delete(ctx context.Context, cred identity.Credential, id int64) error {
	if id <= 0 {
		return shared.NotFound("attachment", id)
	}
	return ledger.Unlink(ctx, r.ex, cred, ModelAttachment, []int64{id})
}

var _ attachment.Repository = (*LedgerAttachmentRepository)(nil)
