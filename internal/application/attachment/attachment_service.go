// Package attachment uploads documents to the ledger and optionally mirrors
// them to object storage for presigned downloads.
package attachment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/connector/internal/domain/attachment"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DefaultMaxBytes caps a single upload
const DefaultMaxBytes int64 = 10 << 20

// AllowedModels are the ledger models documents may be attached to
var AllowedModels = map[string]bool{
	"res.partner":      true,
	"product.template": true,
	"account.move":     true,
}

// ObjectStore is the mirror the service writes copies to
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	PresignDownload(ctx context.Context, key string) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
}

// Service handles attachment operations
type Service struct {
	repo     attachment.Repository
	store    ObjectStore
	maxBytes int64
	logger   *zap.Logger
}

// Option configures the Service
type Option func(*Service)

// WithObjectStore enables mirroring uploads to store
func WithObjectStore(store ObjectStore) Option {
	return func(s *Service) { s.store = store }
}

// WithMaxBytes overrides DefaultMaxBytes
func WithMaxBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithLogger sets the fallback logger used when the context carries none
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates an attachment service
func NewService(repo attachment.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, maxBytes: DefaultMaxBytes, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxBytes returns the upload size limit
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// ObjectKey is the mirror key for an attachment: attachments/<db>/<id>/<name>
func ObjectKey(db string, id int64, name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	return fmt.Sprintf("attachments/%s/%d/%s", db, id, name)
}

// Upload stores the file on the ledger and mirrors it when a store is set.
// The ledger copy is authoritative; mirror failures are logged only.
func (s *Service) Upload(ctx context.Context, cred identity.Credential, up attachment.Upload) shared.Result[*attachment.Attachment] {
	if err := up.Validate(); err != nil {
		return shared.Rejected[*attachment.Attachment](err)
	}
	if int64(len(up.Content)) > s.maxBytes {
		return shared.Rejected[*attachment.Attachment](shared.NewDomainError(shared.CodeRequestTooLarge,
			fmt.Sprintf("attachment %s exceeds %d bytes", up.Name, s.maxBytes)))
	}
	if !AllowedModels[up.ResModel] {
		return shared.Rejected[*attachment.Attachment](shared.InvalidInput("attachments are not supported on %s", up.ResModel))
	}

	fields := up.Fields()
	id, err := s.repo.Create(ctx, cred, fields)
	if err != nil {
		return shared.ResultOf[*attachment.Attachment](nil, err)
	}
	att := &attachment.Attachment{
		ID:       id,
		Name:     up.Name,
		Mimetype: fields["mimetype"].(string),
		ResModel: up.ResModel,
		ResID:    up.ResID,
		FileSize: int64(len(up.Content)),
	}
	log := logger.FromContextOr(ctx, s.logger)
	log.Info("Attachment created",
		zap.Int64("attachment_id", id),
		zap.String("res_model", up.ResModel),
		zap.Int64("res_id", up.ResID),
		zap.Int64("size", att.FileSize))

	if s.store != nil {
		key := ObjectKey(cred.DB(), id, up.Name)
		if err := s.store.Put(ctx, key, up.Content, att.Mimetype); err != nil {
			log.Warn("Attachment mirror failed", zap.Int64("attachment_id", id), zap.String("key", key), zap.Error(err))
		} else {
			att.DownloadURL = s.presign(ctx, log, key)
		}
	}
	return shared.Ok(att)
}

// Get returns the attachment including its payload. A presigned URL is added
// only when the mirror holds a copy.
func (s *Service) Get(ctx context.Context, cred identity.Credential, id int64) shared.Result[*attachment.Attachment] {
	att, err := s.repo.FindByID(ctx, cred, id)
	if err != nil {
		return shared.ResultOf[*attachment.Attachment](nil, err)
	}
	if s.store == nil {
		return shared.Ok(att)
	}
	log := logger.FromContextOr(ctx, s.logger)
	key := ObjectKey(cred.DB(), att.ID, att.Name)
	mirrored, err := s.store.Exists(ctx, key)
	switch {
	case err != nil:
		log.Warn("Attachment mirror lookup failed", zap.String("key", key), zap.Error(err))
	case mirrored:
		att.DownloadURL = s.presign(ctx, log, key)
	}
	return shared.Ok(att)
}

// ListByResource lists attachment metadata for one ledger record
func (s *Service) ListByResource(ctx context.Context, cred identity.Credential, resModel string, resID int64) shared.Result[[]attachment.Attachment] {
	if !AllowedModels[resModel] {
		return shared.Rejected[[]attachment.Attachment](shared.InvalidInput("attachments are not supported on %s", resModel))
	}
	if resID <= 0 {
		return shared.Rejected[[]attachment.Attachment](shared.InvalidInput("res_id must be a positive id"))
	}
	return shared.ResultOf(s.repo.FindByResource(ctx, cred, resModel, resID))
}

// Delete removes the ledger record and then the mirrored copy
func (s *Service) Delete(ctx context.Context, cred identity.Credential, id int64) shared.Result[int64] {
	att, err := s.repo.FindByID(ctx, cred, id)
	if err != nil {
		return shared.ResultOf[int64](0, err)
	}
	if err := s.repo.Delete(ctx, cred, att.ID); err != nil {
		return shared.ResultOf[int64](0, err)
	}
	if s.store != nil {
		key := ObjectKey(cred.DB(), att.ID, att.Name)
		if err := s.store.Delete(ctx, key); err != nil {
			logger.FromContextOr(ctx, s.logger).Warn("Attachment mirror delete failed", zap.String("key", key), zap.Error(err))
		}
	}
	return shared.Ok(att.ID)
}

func (s *Service) presign(ctx context.Context, log *zap.Logger, key string) string {
	url, _, err := s.store.PresignDownload(ctx, key)
	if err != nil {
		log.Warn("Presign failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}
