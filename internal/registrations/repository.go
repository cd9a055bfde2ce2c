package registrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/pkg/database"
)

const (
	eventColumns     = `id, kind, user_id, event_code, email, participants, verify, qr_id, created_at, updated_at`
	hackathonColumns = `id, user_id, name, theme, theme_desc, college, members, verify, qr_id, created_at, updated_at`
)

// Repository handles event, talk and hackathon registration persistence.
// Participant and member lists are stored as JSONB.
type Repository struct {
	db database.DB
}

// NewRepository creates a registrations repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// CreateEvent inserts an event or talk registration and fills in its id and timestamps.
func (r *Repository) CreateEvent(ctx context.Context, rec *models.EventRegistration) error {
	participants, err := json.Marshal(rec.Participants)
	if err != nil {
		return fmt.Errorf("encode participants: %w", err)
	}
	const q = `INSERT INTO event_registrations (kind, user_id, event_code, email, participants, verify)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, q, string(rec.Kind), rec.UserID, rec.Event, rec.Email, participants, rec.Verify).
		Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
}

// CreateHackathon inserts a hackathon team registration and fills in its id and timestamps.
func (r *Repository) CreateHackathon(ctx context.Context, rec *models.HackathonRegistration) error {
	members, err := json.Marshal(rec.Members)
	if err != nil {
		return fmt.Errorf("encode members: %w", err)
	}
	const q = `INSERT INTO hackathon_registrations (user_id, name, theme, theme_desc, college, members, verify)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, q, rec.UserID, rec.Name, rec.Theme, rec.ThemeDesc, rec.College, members, rec.Verify).
		Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
}

// SetEventQR attaches a QR id to an event or talk record.
func (r *Repository) SetEventQR(ctx context.Context, id, qrID uuid.UUID) error {
	return r.setQR(ctx, `UPDATE event_registrations SET qr_id = $2, updated_at = NOW() WHERE id = $1`, id, qrID)
}

// SetHackathonQR attaches a QR id to a hackathon record.
func (r *Repository) SetHackathonQR(ctx context.Context, id, qrID uuid.UUID) error {
	return r.setQR(ctx, `UPDATE hackathon_registrations SET qr_id = $2, updated_at = NOW() WHERE id = $1`, id, qrID)
}

func (r *Repository) setQR(ctx context.Context, q string, id, qrID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, q, id, qrID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetEvent returns an event or talk record by id.
func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*models.EventRegistration, error) {
	return scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM event_registrations WHERE id = $1`, id))
}

// GetHackathon returns a hackathon record by id.
func (r *Repository) GetHackathon(ctx context.Context, id uuid.UUID) (*models.HackathonRegistration, error) {
	return scanHackathon(r.db.QueryRow(ctx, `SELECT `+hackathonColumns+` FROM hackathon_registrations WHERE id = $1`, id))
}

// HackathonLeadEmail returns the email of the member flagged as lead, or "" when none is.
func (r *Repository) HackathonLeadEmail(ctx context.Context, id uuid.UUID) (string, error) {
	const q = `SELECT COALESCE((
			SELECT m->>'email' FROM jsonb_array_elements(members) AS m
			WHERE (m->>'lead')::boolean LIMIT 1
		), '')
		FROM hackathon_registrations WHERE id = $1`
	var email string
	err := r.db.QueryRow(ctx, q, id).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return email, err
}

// UpdateParticipants rewrites the participant list of an event or talk record inside one transaction.
func (r *Repository) UpdateParticipants(ctx context.Context, id uuid.UUID, fn func([]models.Participant) ([]models.Participant, error)) (*models.EventRegistration, error) {
	var out *models.EventRegistration
	err := database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		rec, err := scanEvent(tx.QueryRow(ctx, `SELECT `+eventColumns+` FROM event_registrations WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		next, err := fn(rec.Participants)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode participants: %w", err)
		}
		if err := tx.QueryRow(ctx,
			`UPDATE event_registrations SET participants = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
			id, raw).Scan(&rec.UpdatedAt); err != nil {
			return err
		}
		rec.Participants = next
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMembers rewrites the member list of a hackathon record inside one transaction.
func (r *Repository) UpdateMembers(ctx context.Context, id uuid.UUID, fn func([]models.Member) ([]models.Member, error)) (*models.HackathonRegistration, error) {
	var out *models.HackathonRegistration
	err := database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		rec, err := scanHackathon(tx.QueryRow(ctx, `SELECT `+hackathonColumns+` FROM hackathon_registrations WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		next, err := fn(rec.Members)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode members: %w", err)
		}
		if err := tx.QueryRow(ctx,
			`UPDATE hackathon_registrations SET members = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
			id, raw).Scan(&rec.UpdatedAt); err != nil {
			return err
		}
		rec.Members = next
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkVerifiedByQR sets verify on whichever record carries qrID.
func (r *Repository) MarkVerifiedByQR(ctx context.Context, qrID uuid.UUID) (*CheckIn, error) {
	ci := &CheckIn{}
	var kind string
	err := r.db.QueryRow(ctx, `WITH prev AS (
			SELECT id, verify FROM event_registrations WHERE qr_id = $1 FOR UPDATE
		)
		UPDATE event_registrations e SET verify = TRUE, updated_at = NOW()
		FROM prev WHERE e.id = prev.id
		RETURNING e.id, e.kind, prev.verify`, qrID).Scan(&ci.RegistrationID, &kind, &ci.AlreadyVerified)
	if err == nil {
		ci.Kind = models.Kind(kind)
		return ci, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRow(ctx, `WITH prev AS (
			SELECT id, verify FROM hackathon_registrations WHERE qr_id = $1 FOR UPDATE
		)
		UPDATE hackathon_registrations h SET verify = TRUE, updated_at = NOW()
		FROM prev WHERE h.id = prev.id
		RETURNING h.id, prev.verify`, qrID).Scan(&ci.RegistrationID, &ci.AlreadyVerified)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	ci.Kind = models.KindHackathon
	return ci, nil
}

func scanEvent(row pgx.Row) (*models.EventRegistration, error) {
	var rec models.EventRegistration
	var kind string
	var participants []byte
	err := row.Scan(&rec.ID, &kind, &rec.UserID, &rec.Event, &rec.Email, &participants, &rec.Verify, &rec.QRID, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Kind = models.Kind(kind)
	if err := json.Unmarshal(participants, &rec.Participants); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}
	return &rec, nil
}

func scanHackathon(row pgx.Row) (*models.HackathonRegistration, error) {
	var rec models.HackathonRegistration
	var members []byte
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Name, &rec.Theme, &rec.ThemeDesc, &rec.College, &members, &rec.Verify, &rec.QRID, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(members, &rec.Members); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	return &rec, nil
}
