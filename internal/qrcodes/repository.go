package qrcodes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/pkg/database"
)

var (
	// ErrNotFound is returned when no artifact matches.
	ErrNotFound = errors.New("qr code not found")
	// ErrAlreadyExists is returned when the registration already has an artifact.
	ErrAlreadyExists = errors.New("qr code already exists for registration")
)

// Repository handles qr_codes persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates a QR code repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an artifact. registration_id is unique, so a second artifact for the same record
// fails with ErrAlreadyExists.
func (r *Repository) Create(ctx context.Context, a *models.QRArtifact) error {
	const q = `INSERT INTO qr_codes (id, registration_id, object_key, link)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	err := r.db.QueryRow(ctx, q, a.ID, a.RegistrationID, a.ObjectKey, a.Link).Scan(&a.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}
	return err
}

// GetByID returns an artifact by its own id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.QRArtifact, error) {
	const q = `SELECT id, registration_id, object_key, link, created_at FROM qr_codes WHERE id = $1`
	var a models.QRArtifact
	err := r.db.QueryRow(ctx, q, id).Scan(&a.ID, &a.RegistrationID, &a.ObjectKey, &a.Link, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
