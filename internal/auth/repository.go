package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/pkg/database"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

const userColumns = `id, email, password_hash, full_name, role, profile_type,
	COALESCE(college,''), COALESCE(course,''), COALESCE(year_of_study,''), COALESCE(branch,''),
	COALESCE(company,''), COALESCE(designation,''), created_at, updated_at`

// Repository handles user persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates an auth repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail returns a user by email, compared case-insensitively.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email)))
}

// Create inserts a new user and fills in the generated fields.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	const q = `INSERT INTO users (email, password_hash, full_name, role, profile_type,
		college, course, year_of_study, branch, company, designation)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), NULLIF($7,''), NULLIF($8,''), NULLIF($9,''), NULLIF($10,''), NULLIF($11,''))
		RETURNING id, created_at, updated_at`
	u.Email = normalizeEmail(u.Email)
	p := u.Profile
	err := r.db.QueryRow(ctx, q, u.Email, u.Password, u.FullName, string(u.Role), string(p.Type),
		p.College, p.Course, p.YearOfStudy, p.Branch, p.Company, p.Designation).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var role, profileType string
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &role, &profileType,
		&u.Profile.College, &u.Profile.Course, &u.Profile.YearOfStudy, &u.Profile.Branch,
		&u.Profile.Company, &u.Profile.Designation, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.Profile.Type = models.ProfileType(profileType)
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
