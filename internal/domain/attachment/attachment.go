// Package attachment models binary documents linked to a ledger record.
package attachment

import (
	"context"
	"encoding/base64"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
)

// Attachment is an ir.attachment record. Datas holds the base64 payload.
type Attachment struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Mimetype    string `json:"mimetype,omitempty"`
	ResModel    string `json:"res_model"`
	ResID       int64  `json:"res_id"`
	FileSize    int64  `json:"file_size,omitempty"`
	Datas       string `json:"datas,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// Upload is a file to attach to (ResModel, ResID)
type Upload struct {
	Name     string
	Mimetype string
	ResModel string
	ResID    int64
	Content  []byte
}

// Validate checks the upload before anything is sent to the ledger
func (u Upload) Validate() error {
	if u.Name == "" {
		return shared.InvalidInput("attachment name is required")
	}
	if u.ResModel == "" {
		return shared.InvalidInput("res_model is required")
	}
	if u.ResID <= 0 {
		return shared.InvalidInput("res_id must be a positive id")
	}
	if len(u.Content) == 0 {
		return shared.InvalidInput("attachment %s is empty", u.Name)
	}
	return nil
}

// Fields converts the upload to the ir.attachment create payload
func (u Upload) Fields() shared.Fields {
	mimetype := u.Mimetype
	if mimetype == "" {
		mimetype = "application/octet-stream"
	}
	return shared.Fields{
		"name":      u.Name,
		"datas":     base64.StdEncoding.EncodeToString(u.Content),
		"res_model": u.ResModel,
		"res_id":    u.ResID,
		"mimetype":  mimetype,
	}
}

// Repository reads and writes ir.attachment records
type Repository interface {
	Create(ctx context.Context, cred identity.Credential, fields shared.Fields) (int64, error)

	// FindByID returns the attachment including its base64 payload
	FindByID(ctx context.Context, cred identity.Credential, id int64) (*Attachment, error)

	// FindByResource lists attachment metadata for one record, without payloads
	FindByResource(ctx context.Context, cred identity.Credential, resModel string, resID int64) ([]Attachment, error)

	Delete(ctx context.Context, cred identity.Credential, id int64) error
}
