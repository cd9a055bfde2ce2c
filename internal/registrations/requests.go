package registrations

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sosc-devhost/backend/internal/models"
)

// EventSignup is the event/talk part of a registration form.
type EventSignup struct {
	Eve          string               `json:"eve" binding:"required,max=64"`
	Participants []models.Participant `json:"participant" binding:"required,min=1,onelead,uniqueemail,dive"`
}

// EventRequest is the body of an event or talk registration.
type EventRequest struct {
	Email string      `json:"email" binding:"omitempty,email"`
	Event EventSignup `json:"event"`
}

// HackathonRequest is the body of a hackathon team registration. Verify is accepted but ignored.
type HackathonRequest struct {
	Name      string          `json:"name" binding:"required,min=2,max=64"`
	Theme     int             `json:"theme" binding:"gte=0"`
	ThemeDesc string          `json:"themeDesc" binding:"max=2000"`
	College   string          `json:"college" binding:"max=128"`
	Members   []models.Member `json:"member" binding:"required,min=1,onelead,uniqueemail,dive"`
	Verify    bool            `json:"verify"`
}

// ModifyRequest adds or removes participants (events) or members (hackathon).
// Removal targets the union of the entry emails and Emails.
type ModifyRequest struct {
	Add     bool                 `json:"add"`
	Events  []models.Participant `json:"events"`
	Members []models.Member      `json:"member"`
	Emails  []string             `json:"email" binding:"omitempty,dive,email"`
}

// RegisterInput is one registration attempt. Exactly the payload matching Kind is used.
type RegisterInput struct {
	Kind      models.Kind
	OwnerID   *uuid.UUID
	BaseURL   string
	Event     *EventRequest
	Hackathon *HackathonRequest
}

// Receipt is the outcome of a successful registration.
type Receipt struct {
	ID   uuid.UUID `json:"id"`
	QRID uuid.UUID `json:"qr_id"`
	Link string    `json:"dl"`
	To   string    `json:"-"`
}

// Target selects what an authenticated lookup reads.
type Target string

const (
	TargetUser      Target = "u"
	TargetEvent     Target = "et"
	TargetHackathon Target = "h"
)

// ParseTarget maps the lookup discriminator to a Target.
func ParseTarget(s string) (Target, error) {
	switch t := Target(strings.ToLower(strings.TrimSpace(s))); t {
	case TargetUser, TargetEvent, TargetHackathon:
		return t, nil
	}
	return "", fmt.Errorf("%w %q", ErrInvalidKind, s)
}
