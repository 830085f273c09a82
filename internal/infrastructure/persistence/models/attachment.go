package models

import (
	"github.com/erp/connector/internal/domain/attachment"
	"github.com/erp/connector/internal/infrastructure/ledger"
)

// AttachmentRecord is an ir.attachment row. Datas is only requested when
// reading a single attachment; res_id is false for unlinked files.
type AttachmentRecord struct {
	ID       int64       `json:"id"`
	Name     ledger.Text `json:"name"`
	Mimetype ledger.Text `json:"mimetype"`
	ResModel ledger.Text `json:"res_model"`
	ResID    ledger.Ref  `json:"res_id"`
	FileSize int64       `json:"file_size"`
	Datas    ledger.Text `json:"datas"`
}

// ToDomain converts the record to an attachment entity
func (r *AttachmentRecord) ToDomain() attachment.Attachment {
	return attachment.Attachment{
		ID:       r.ID,
		Name:     string(r.Name),
		Mimetype: string(r.Mimetype),
		ResModel: string(r.ResModel),
		ResID:    r.ResID.ID,
		FileSize: r.FileSize,
		Datas:    string(r.Datas),
	}
}
