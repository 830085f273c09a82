package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/erp/connector/internal/domain/attachment"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is the slack allowed over the file size for headers and
// the other form fields
const multipartOverhead = 1 << 20

// AttachmentService covers ir.attachment operations
type AttachmentService interface {
	Upload(ctx context.Context, cred identity.Credential, up attachment.Upload) shared.Result[*attachment.Attachment]
	Get(ctx context.Context, cred identity.Credential, id int64) shared.Result[*attachment.Attachment]
	ListByResource(ctx context.Context, cred identity.Credential, resModel string, resID int64) shared.Result[[]attachment.Attachment]
	Delete(ctx context.Context, cred identity.Credential, id int64) shared.Result[int64]
	MaxBytes() int64
}

// AttachmentHandler handles document uploads linked to ledger records
type AttachmentHandler struct {
	BaseHandler
	attachments AttachmentService
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(base BaseHandler, attachments AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{BaseHandler: base, attachments: attachments}
}

// Upload godoc
// @Summary      Upload attachment
// @Description  Store a file on a partner, product or bill
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file      formData file   true "File"
// @Param        res_model formData string true "res.partner, product.template or account.move"
// @Param        res_id    formData int    true "Record id"
// @Success      201 {object} dto.Envelope{data=attachment.Attachment}
// @Failure      400 {object} dto.Envelope
// @Failure      413 {object} dto.Envelope
// @Router       /attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	maxBytes := h.attachments.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.HandleError(c, shared.NewDomainError(shared.CodeRequestTooLarge, "upload exceeds the size limit"), nil)
			return
		}
		h.HandleError(c, shared.InvalidInput("file is required"), nil)
		return
	}
	resID, err := strconv.ParseInt(c.PostForm("res_id"), 10, 64)
	if err != nil || resID <= 0 {
		h.HandleError(c, shared.InvalidInput("res_id must be a positive integer"), nil)
		return
	}

	f, err := header.Open()
	if err != nil {
		h.HandleError(c, shared.InvalidInput("file could not be read"), nil)
		return
	}
	defer f.Close()
	// One byte past the limit is enough for the service to reject it
	content, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		h.HandleError(c, shared.InvalidInput("file could not be read"), nil)
		return
	}

	up := attachment.Upload{
		Name:     header.Filename,
		Mimetype: header.Header.Get("Content-Type"),
		ResModel: strings.TrimSpace(c.PostForm("res_model")),
		ResID:    resID,
		Content:  content,
	}
	h.Render(c, h.attachments.Upload(c.Request.Context(), cred, up), http.StatusCreated)
}

// Get godoc
// @Summary      Get attachment
// @Tags         attachments
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Attachment id"
// @Success      200 {object} dto.Envelope{data=attachment.Attachment}
// @Failure      404 {object} dto.Envelope
// @Router       /attachments/{id} [get]
func (h *AttachmentHandler) Get(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "attachment")
	if !ok {
		return
	}
	h.Render(c, h.attachments.Get(c.Request.Context(), cred, id), http.StatusOK)
}

// List godoc
// @Summary      List attachments of a record
// @Tags         attachments
// @Produce      json
// @Security     BearerAuth
// @Param        res_model query string true "Model"
// @Param        res_id    query int    true "Record id"
// @Success      200 {object} dto.Envelope{data=[]attachment.Attachment}
// @Failure      400 {object} dto.Envelope
// @Router       /attachments [get]
func (h *AttachmentHandler) List(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	resID, err := strconv.ParseInt(c.Query("res_id"), 10, 64)
	if err != nil {
		h.HandleError(c, shared.InvalidInput("res_id must be a positive integer"), nil)
		return
	}
	h.Render(c, h.attachments.ListByResource(c.Request.Context(), cred, c.Query("res_model"), resID), http.StatusOK)
}

// Delete godoc
// @Summary      Delete attachment
// @Tags         attachments
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Attachment id"
// @Success      200 {object} dto.Envelope
// @Failure      404 {object} dto.Envelope
// @Router       /attachments/{id} [delete]
func (h *AttachmentHandler) Delete(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "attachment")
	if !ok {
		return
	}
	h.Render(c, h.attachments.Delete(c.Request.Context(), cred, id), http.StatusOK)
}
