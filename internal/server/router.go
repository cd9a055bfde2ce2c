// Package server assembles the HTTP route table and runs the listener.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sosc-devhost/backend/internal/auth"
	"github.com/sosc-devhost/backend/internal/emaillogs"
	"github.com/sosc-devhost/backend/internal/feedback"
	"github.com/sosc-devhost/backend/internal/middleware"
	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/internal/qrcodes"
	"github.com/sosc-devhost/backend/internal/registrations"
	"github.com/sosc-devhost/backend/pkg/response"
)

// Deps are the handlers and collaborators the router wires together.
type Deps struct {
	Auth          *auth.Handler
	Registrations *registrations.Handler
	QRCodes       *qrcodes.Handler
	EmailLogs     *emaillogs.Handler
	Feedback      *feedback.Handler
	Tokens        middleware.TokenValidator
	CORSOrigins   []string
	Logger        *zap.Logger
}

// NewRouter builds the gin engine with the public (/user) and token (/app) route sets.
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(d.CORSOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", d.Auth.Register)
		authGroup.POST("/login", d.Auth.Login)
	}

	router.GET("/qr/:id", d.QRCodes.Download)

	// Public set: numeric discriminators, no token.
	user := router.Group("/user")
	{
		user.POST("/registration/:info", d.Registrations.Register)
		user.GET("/info/:id", d.Registrations.InfoByID)
		user.PATCH("/modifier/:info/:id", d.Registrations.Modify)
		user.POST("/feedback", d.Feedback.Create)
	}

	app := router.Group("/app")
	app.Use(middleware.JWT(d.Tokens))
	{
		app.POST("/registration/:info", d.Registrations.Register)
		app.GET("/info/:info", d.Registrations.Info)

		// Staff only: check-in, delivery history and resends.
		staff := middleware.RequireRole(models.RoleVolunteer, models.RoleAdmin)
		app.POST("/verify/:qrId", staff, d.Registrations.Verify)
		app.GET("/emails/:id", staff, d.EmailLogs.ListByRegistration)
		app.POST("/registration/:info/:id/resend", staff, d.Registrations.Resend)
	}

	return router
}
