package qrcodes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sosc-devhost/backend/pkg/response"
)

// Handler serves QR code downloads.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a QR code handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Download handles GET /qr/:id by redirecting to a pre-signed image URL.
func (h *Handler) Download(c *gin.Context) {
	qrID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid qr id")
		return
	}
	url, err := h.svc.DownloadURL(c.Request.Context(), qrID)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "qr code not found")
		return
	}
	if err != nil {
		h.logger.Error("presign qr download failed", zap.Error(err), zap.String("qr_id", qrID.String()))
		response.BadGateway(c, "failed to create download link")
		return
	}
	c.Redirect(http.StatusFound, url)
}
