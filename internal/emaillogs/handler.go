package emaillogs

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/pkg/response"
)

// Lister reads delivery attempts of one registration record.
type Lister interface {
	ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]*models.EmailLog, error)
}

// Handler handles email log HTTP endpoints.
type Handler struct {
	repo   Lister
	logger *zap.Logger
}

// NewHandler creates an email logs handler.
func NewHandler(repo Lister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListByRegistration handles GET /app/emails/:id. Returns the confirmation mails sent for a record.
func (h *Handler) ListByRegistration(c *gin.Context) {
	registrationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	logs, err := h.repo.ListByRegistration(c.Request.Context(), registrationID)
	if err != nil {
		h.logger.Error("list email logs failed", zap.Error(err), zap.String("registration_id", registrationID.String()))
		response.Internal(c, "failed to load email logs")
		return
	}
	response.OK(c, gin.H{"result": logs})
}
