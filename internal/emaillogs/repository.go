package emaillogs

import (
	"context"

	"github.com/google/uuid"

	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/pkg/database"
)

// Repository handles email_logs persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates an email logs repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts one delivery attempt and fills in its id and created_at.
func (r *Repository) Create(ctx context.Context, l *models.EmailLog) error {
	const q = `INSERT INTO email_logs (registration_id, kind, email_type, recipient_email, subject, status, sent_at, error_message)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, NULLIF($8, ''))
		RETURNING id, created_at`
	return r.db.QueryRow(ctx, q,
		l.RegistrationID, string(l.Kind), l.EmailType, l.RecipientEmail, l.Subject, l.Status, l.SentAt, l.ErrorMessage,
	).Scan(&l.ID, &l.CreatedAt)
}

// ListByRegistration returns email logs for a registration record, newest first.
func (r *Repository) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]*models.EmailLog, error) {
	const q = `SELECT id, registration_id, kind, email_type, recipient_email, subject, status, sent_at, error_message, created_at
		FROM email_logs
		WHERE registration_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*models.EmailLog{}
	for rows.Next() {
		var el models.EmailLog
		var subject, errMsg *string
		if err := rows.Scan(&el.ID, &el.RegistrationID, &el.Kind, &el.EmailType, &el.RecipientEmail, &subject, &el.Status, &el.SentAt, &errMsg, &el.CreatedAt); err != nil {
			return nil, err
		}
		if subject != nil {
			el.Subject = *subject
		}
		if errMsg != nil {
			el.ErrorMessage = *errMsg
		}
		list = append(list, &el)
	}
	return list, rows.Err()
}
