package feedback

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/pkg/response"
	"github.com/sosc-devhost/backend/pkg/validator"
)

// Store persists feedback.
type Store interface {
	Create(ctx context.Context, f *models.Feedback) error
}

// Request is the body for POST /user/feedback.
type Request struct {
	Name    string `json:"name" binding:"max=64"`
	Email   string `json:"email" binding:"omitempty,email"`
	Message string `json:"message" binding:"required,max=2000"`
	Rating  int    `json:"rating" binding:"omitempty,min=1,max=5"`
}

// Handler handles feedback HTTP endpoints.
type Handler struct {
	repo   Store
	logger *zap.Logger
}

// NewHandler creates a feedback handler.
func NewHandler(repo Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /user/feedback.
func (h *Handler) Create(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}
	f := &models.Feedback{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
		Rating:  req.Rating,
	}
	if f.Message == "" {
		response.BadRequest(c, validator.ErrFieldRequired+": Request.Message")
		return
	}
	if err := h.repo.Create(c.Request.Context(), f); err != nil {
		h.logger.Error("save feedback failed", zap.Error(err))
		response.Internal(c, "failed to save feedback")
		return
	}
	response.Created(c, gin.H{"id": f.ID})
}
