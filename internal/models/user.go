package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permissions on the platform.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleVolunteer   Role = "volunteer"
	RoleParticipant Role = "participant"
)

// ProfileType distinguishes student and working-professional accounts.
type ProfileType string

const (
	ProfileStudent  ProfileType = "student"
	ProfileEmployee ProfileType = "employee"
)

// Profile carries the signup details; only the fields of Type are set.
type Profile struct {
	Type        ProfileType `json:"type"`
	College     string      `json:"college,omitempty"`
	Course      string      `json:"course,omitempty"`
	YearOfStudy string      `json:"year_of_study,omitempty"`
	Branch      string      `json:"branch,omitempty"`
	Company     string      `json:"company,omitempty"`
	Designation string      `json:"designation,omitempty"`
}

// User represents an account.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		Profile:   u.Profile,
		CreatedAt: u.CreatedAt,
	}
}
