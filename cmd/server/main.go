// Package main runs the DevHost registration API with graceful shutdown.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sosc-devhost/backend/config"
	"github.com/sosc-devhost/backend/internal/auth"
	"github.com/sosc-devhost/backend/internal/emaillogs"
	"github.com/sosc-devhost/backend/internal/feedback"
	"github.com/sosc-devhost/backend/internal/mail"
	"github.com/sosc-devhost/backend/internal/qrcodes"
	"github.com/sosc-devhost/backend/internal/registrations"
	"github.com/sosc-devhost/backend/internal/server"
	"github.com/sosc-devhost/backend/internal/worker"
	"github.com/sosc-devhost/backend/pkg/database"
	"github.com/sosc-devhost/backend/pkg/queue"
	"github.com/sosc-devhost/backend/pkg/redis"
	"github.com/sosc-devhost/backend/pkg/storage"
	"github.com/sosc-devhost/backend/pkg/validator"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if err := validator.RegisterWithGin(); err != nil {
		logger.Fatal("validator", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		QRBucket:             cfg.AWS.QRBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	mailer, err := mail.NewMailer(ctx, mail.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: mail.SESConfig{
			Region:             cfg.AWS.Region,
			AccessKeyID:        cfg.AWS.AccessKeyID,
			SecretAccessKey:    cfg.AWS.SecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		logger.Fatal("mailer", zap.Error(err))
	}

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// QR codes
	qrService := qrcodes.NewService(qrcodes.NewRepository(pool), s3Client, qrcodes.Options{
		Bucket:        s3Client.QRBucket(),
		PublicRead:    cfg.AWS.QRPublicRead,
		PresignExpire: s3Client.PresignExpire(),
	}, logger)
	qrHandler := qrcodes.NewHandler(qrService, logger)

	// Email logs and confirmation sender
	emailLogsRepo := emaillogs.NewRepository(pool)
	emailLogsHandler := emaillogs.NewHandler(emailLogsRepo, logger)
	sender := mail.NewSender(mailer, emailLogsRepo, logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Registrations
	registrationService := registrations.NewService(
		registrations.NewRepository(pool),
		authRepo,
		qrService,
		sender,
		jobQueue,
		registrations.Options{MinMembers: cfg.Hackathon.MinMembers, MaxMembers: cfg.Hackathon.MaxMembers},
		logger,
	)
	registrationHandler := registrations.NewHandler(registrationService, cfg.Server.PublicBaseURL, logger)

	feedbackHandler := feedback.NewHandler(feedback.NewRepository(pool), logger)

	router := server.NewRouter(server.Deps{
		Auth:          authHandler,
		Registrations: registrationHandler,
		QRCodes:       qrHandler,
		EmailLogs:     emailLogsHandler,
		Feedback:      feedbackHandler,
		Tokens:        jwtService,
		CORSOrigins:   cfg.Server.CORSAllowedOrigins,
		Logger:        logger,
	})

	// Background worker (confirmation resends)
	if cfg.Worker.EmbeddedEmailWorker {
		go worker.NewEmailProcessor(jobQueue, sender, logger).Run(ctx)
		logger.Info("email worker started")
	}

	err = server.Run(ctx, router, server.Config{
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}, logger)
	if err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
