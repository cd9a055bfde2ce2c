package qrcodes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/pkg/qrcode"
	"github.com/sosc-devhost/backend/pkg/storage"
)

// ArtifactStore persists QR artifacts.
type ArtifactStore interface {
	Create(ctx context.Context, a *models.QRArtifact) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.QRArtifact, error)
}

// ObjectStorage is the subset of the S3 client used for QR images.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, contentLength int64, publicRead bool) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
}

// Options configures where and how QR images are stored.
type Options struct {
	Bucket        string
	PublicRead    bool
	PresignExpire time.Duration
	ImageSize     int
}

// Service generates QR artifacts for registration records.
type Service struct {
	repo    ArtifactStore
	storage ObjectStorage
	opts    Options
	logger  *zap.Logger
}

// NewService creates a QR code service.
func NewService(repo ArtifactStore, storage ObjectStorage, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PresignExpire <= 0 {
		opts.PresignExpire = 15 * time.Minute
	}
	return &Service{repo: repo, storage: storage, opts: opts, logger: logger}
}

// Link is the stable download address of a QR artifact: GET <baseURL>/qr/<qrID> redirects to a
// freshly signed image URL on every request.
func Link(baseURL string, qrID uuid.UUID) string {
	return strings.TrimSuffix(baseURL, "/") + "/qr/" + qrID.String()
}

// Create renders a QR image encoding a fresh artifact id, uploads it and records the artifact
// against registrationID. The returned Link points at the download route under baseURL.
func (s *Service) Create(ctx context.Context, registrationID uuid.UUID, baseURL string) (*models.QRArtifact, error) {
	qrID := uuid.New()
	png, err := qrcode.PNG(qrID.String(), s.opts.ImageSize)
	if err != nil {
		return nil, err
	}

	key := storage.QRKey(registrationID.String(), qrID.String())
	if _, err := s.storage.Upload(ctx, s.opts.Bucket, key, "image/png", bytes.NewReader(png), int64(len(png)), s.opts.PublicRead); err != nil {
		return nil, fmt.Errorf("store qr image: %w", err)
	}

	a := &models.QRArtifact{
		ID:             qrID,
		RegistrationID: registrationID,
		ObjectKey:      key,
		Link:           Link(baseURL, qrID),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		s.discard(key)
		return nil, fmt.Errorf("save qr artifact: %w", err)
	}

	s.logger.Info("qr code created",
		zap.String("qr_id", qrID.String()),
		zap.String("registration_id", registrationID.String()))
	return a, nil
}

// DownloadURL returns a fresh pre-signed URL for the artifact's image.
func (s *Service) DownloadURL(ctx context.Context, qrID uuid.UUID) (string, error) {
	a, err := s.repo.GetByID(ctx, qrID)
	if err != nil {
		return "", err
	}
	return s.storage.GeneratePresignedDownloadURL(ctx, s.opts.Bucket, a.ObjectKey, s.opts.PresignExpire)
}

// discard removes an uploaded image whose artifact could not be recorded.
func (s *Service) discard(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storage.DeleteObject(ctx, s.opts.Bucket, key); err != nil {
		s.logger.Warn("orphaned qr image", zap.String("key", key), zap.Error(err))
	}
}
