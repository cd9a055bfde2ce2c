package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/pkg/response"
	"github.com/sosc-devhost/backend/pkg/utils"
	"github.com/sosc-devhost/backend/pkg/validator"
)

// UserStore is the user persistence used by the handler.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// ProfileRequest is the student/employee part of the signup form.
type ProfileRequest struct {
	Type        string `json:"role" binding:"required,oneof=student employee"`
	College     string `json:"college" binding:"required_if=Type student,omitempty,min=3"`
	Course      string `json:"course" binding:"required_if=Type student,omitempty,min=2"`
	YearOfStudy string `json:"yearOfStudy" binding:"required_if=Type student,omitempty,oneof=1 2 3 4 5"`
	Branch      string `json:"branch" binding:"required_if=Type student,omitempty,min=2"`
	Company     string `json:"company" binding:"required_if=Type employee,omitempty,min=3"`
	Designation string `json:"designation" binding:"required_if=Type employee,omitempty,min=2"`
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Name                 string         `json:"name" binding:"required,min=3,max=48"`
	Email                string         `json:"email" binding:"required,email"`
	Password             string         `json:"password" binding:"required,min=8,max=24"`
	PasswordConfirmation string         `json:"passwordConfirmation" binding:"required,eqfield=Password"`
	Profile              ProfileRequest `json:"role"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   UserStore
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo UserStore, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user := &models.User{
		Email:    req.Email,
		Password: hash,
		FullName: req.Name,
		Role:     models.RoleParticipant,
		Profile:  req.Profile.toModel(),
	}
	err = h.repo.Create(c.Request.Context(), user)
	if errors.Is(err, ErrEmailTaken) {
		response.Conflict(c, "email already registered")
		return
	}
	if err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	h.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	response.Created(c, gin.H{"token": token, "user": user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			h.logger.Error("login lookup failed", zap.Error(err))
		}
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, gin.H{"token": token, "user": user.ToPublic()})
}

func (p ProfileRequest) toModel() models.Profile {
	if p.Type == string(models.ProfileEmployee) {
		return models.Profile{Type: models.ProfileEmployee, Company: p.Company, Designation: p.Designation}
	}
	return models.Profile{
		Type:        models.ProfileStudent,
		College:     p.College,
		Course:      p.Course,
		YearOfStudy: p.YearOfStudy,
		Branch:      p.Branch,
	}
}
