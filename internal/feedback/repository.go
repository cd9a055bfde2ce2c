package feedback

import (
	"context"

	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/pkg/database"
)

// Repository handles feedback persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates a feedback repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a feedback message.
func (r *Repository) Create(ctx context.Context, f *models.Feedback) error {
	const q = `INSERT INTO feedback (name, email, message, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return r.db.QueryRow(ctx, q, f.Name, f.Email, f.Message, f.Rating).Scan(&f.ID, &f.CreatedAt)
}
