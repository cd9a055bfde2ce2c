package registrations

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sosc-devhost/backend/internal/middleware"
	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/pkg/response"
	"github.com/sosc-devhost/backend/pkg/validator"
)

const (
	msgBadDiscriminator = "Check your info params."
	msgNoInfo           = "No info on this ID."
	msgNoRecipient      = "Issue with fetching the Email ID."
	msgUpdated          = "Updated the details."
)

// Handler handles registration HTTP endpoints of both the public and the token route sets.
type Handler struct {
	svc     *Service
	baseURL string
	logger  *zap.Logger
}

// NewHandler creates a registrations handler. An empty baseURL makes links point at the requesting host.
func NewHandler(svc *Service, baseURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, baseURL: strings.TrimSuffix(baseURL, "/"), logger: logger}
}

// Register handles POST /app/registration/:info (e, t, h) and POST /user/registration/:info (0, 1).
// On the token route set the record is owned by the authenticated user.
func (h *Handler) Register(c *gin.Context) {
	kind, err := models.ParseKind(c.Param("info"))
	if err != nil {
		response.BadRequest(c, msgBadDiscriminator)
		return
	}

	in := RegisterInput{Kind: kind, BaseURL: h.requestBaseURL(c)}
	if uid, ok := middleware.UserID(c); ok {
		in.OwnerID = &uid
	}
	switch kind {
	case models.KindEvent, models.KindTalk:
		var req EventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, validator.Message(err))
			return
		}
		in.Event = &req
	case models.KindHackathon:
		var req HackathonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, validator.Message(err))
			return
		}
		in.Hackathon = &req
	}

	receipt, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, gin.H{"id": receipt.ID, "dl": receipt.Link})
}

type lookupBody struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	Hackathon string `json:"hackathon"`
}

// Info handles GET /app/info/:info with info u, et or h. The id comes from the id query
// parameter or, as sent by older clients, from the JSON body.
func (h *Handler) Info(c *gin.Context) {
	target, err := ParseTarget(c.Param("info"))
	if err != nil {
		response.BadRequest(c, msgBadDiscriminator)
		return
	}

	raw := c.Query("id")
	if raw == "" {
		var body lookupBody
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			response.BadRequest(c, validator.Message(err))
			return
		}
		raw = body.idFor(target)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(c, "invalid id")
		return
	}

	result, err := h.svc.Lookup(c.Request.Context(), target, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, gin.H{"result": result})
}

func (b lookupBody) idFor(t Target) string {
	switch {
	case t == TargetEvent && b.Event != "":
		return b.Event
	case t == TargetHackathon && b.Hackathon != "":
		return b.Hackathon
	}
	return b.ID
}

// InfoByID handles GET /user/info/:id, searching event/talk records then hackathon records.
func (h *Handler) InfoByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid id")
		return
	}
	result, err := h.svc.LookupAny(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, gin.H{"result": result})
}

// Modify handles PATCH /user/modifier/:info/:id with info 0 (event/talk) or 1 (hackathon).
func (h *Handler) Modify(c *gin.Context) {
	kind, err := models.ParseKind(c.Param("info"))
	if err != nil {
		response.BadRequest(c, msgBadDiscriminator)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid id")
		return
	}
	var req ModifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}
	if err := validateAdditions(req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	result, err := h.svc.Modify(c.Request.Context(), kind, id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, gin.H{"message": msgUpdated, "result": result})
}

// validateAdditions applies the registration rules to entries being added.
// Removals only need an email, so they are not checked here.
func validateAdditions(req ModifyRequest) error {
	if !req.Add {
		return nil
	}
	for _, p := range req.Events {
		if err := binding.Validator.ValidateStruct(p); err != nil {
			return err
		}
	}
	for _, m := range req.Members {
		if err := binding.Validator.ValidateStruct(m); err != nil {
			return err
		}
	}
	return nil
}

// Verify handles POST /app/verify/:qrId. Call after RequireRole so only staff can check people in.
func (h *Handler) Verify(c *gin.Context) {
	qrID, err := uuid.Parse(c.Param("qrId"))
	if err != nil {
		response.BadRequest(c, "invalid qr id")
		return
	}
	ci, err := h.svc.Verify(c.Request.Context(), qrID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, gin.H{"result": ci})
}

// Resend handles POST /app/registration/:info/:id/resend. A queued resend answers 202 with the job id,
// an inline one 200 once the mail is out.
func (h *Handler) Resend(c *gin.Context) {
	kind, err := models.ParseKind(c.Param("info"))
	if err != nil {
		response.BadRequest(c, msgBadDiscriminator)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid id")
		return
	}
	res, err := h.svc.ResendConfirmation(c.Request.Context(), kind, id, h.requestBaseURL(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !res.Queued {
		response.OK(c, gin.H{"message": "resend sent"})
		return
	}
	response.Accepted(c, gin.H{"message": "resend queued", "job_id": res.JobID})
}

func (h *Handler) requestBaseURL(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + c.Request.Host
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidKind):
		response.BadRequest(c, msgBadDiscriminator)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrTeamSize), errors.Is(err, ErrLeadRemoval):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, msgNoInfo)
	case errors.Is(err, ErrNoRecipient):
		h.logger.Error("no confirmation recipient", zap.String("path", c.FullPath()))
		response.Internal(c, msgNoRecipient)
	case errors.Is(err, ErrQRFailed), errors.Is(err, ErrMailFailed):
		h.logger.Error("registration dependency failed", zap.Error(err), zap.String("path", c.FullPath()))
		response.BadGateway(c, err.Error())
	default:
		h.logger.Error("registration request failed", zap.Error(err), zap.String("path", c.FullPath()))
		response.Internal(c, err.Error())
	}
}
