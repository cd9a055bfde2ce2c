package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind is the closed set of registration record kinds.
type Kind string

const (
	KindEvent     Kind = "event"
	KindTalk      Kind = "talk"
	KindHackathon Kind = "hackathon"
)

// ParseKind maps a route discriminator to a Kind. Letter codes (e, t, h) are used by the
// authenticated routes, numeric codes (0 = event, 1 = hackathon) by the public ones.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "e", "0", string(KindEvent):
		return KindEvent, nil
	case "t", string(KindTalk):
		return KindTalk, nil
	case "h", "1", string(KindHackathon):
		return KindHackathon, nil
	}
	return "", fmt.Errorf("unknown registration kind %q", s)
}

// Code is the numeric discriminator carried in confirmation mails.
func (k Kind) Code() int {
	switch k {
	case KindEvent:
		return 0
	case KindTalk:
		return 1
	case KindHackathon:
		return 2
	}
	return -1
}

// Label is the human readable kind name.
func (k Kind) Label() string {
	switch k {
	case KindEvent:
		return "Event"
	case KindTalk:
		return "Talk"
	case KindHackathon:
		return "Hackathon"
	}
	return string(k)
}

// Participant is one attendee of an event or talk registration.
type Participant struct {
	Name  string `json:"name" binding:"required,min=2,max=64"`
	Email string `json:"email" binding:"required,email"`
	Lead  bool   `json:"lead"`
}

// IsLead implements the onelead validation contract.
func (p Participant) IsLead() bool { return p.Lead }

// EmailAddress implements the uniqueemail validation contract.
func (p Participant) EmailAddress() string { return p.Email }

// Member is one hackathon team member.
type Member struct {
	Name  string `json:"name" binding:"required,min=2,max=64"`
	Email string `json:"email" binding:"required,email"`
	Lead  bool   `json:"lead"`
}

// IsLead implements the onelead validation contract.
func (m Member) IsLead() bool { return m.Lead }

// EmailAddress implements the uniqueemail validation contract.
func (m Member) EmailAddress() string { return m.Email }

// EventRegistration is a signup for an event or a talk.
type EventRegistration struct {
	ID           uuid.UUID     `json:"id"`
	Kind         Kind          `json:"kind"`
	UserID       *uuid.UUID    `json:"user_id,omitempty"`
	Event        string        `json:"event"`
	Email        string        `json:"email,omitempty"`
	Participants []Participant `json:"participants"`
	Verify       bool          `json:"verify"`
	QRID         *uuid.UUID    `json:"qr_id,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Lead returns the lead participant, or the first one when none is flagged.
func (r *EventRegistration) Lead() (Participant, bool) {
	for _, p := range r.Participants {
		if p.Lead {
			return p, true
		}
	}
	if len(r.Participants) > 0 {
		return r.Participants[0], true
	}
	return Participant{}, false
}

// HackathonRegistration is a hackathon team signup.
type HackathonRegistration struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Name      string     `json:"name"`
	Theme     int        `json:"theme"`
	ThemeDesc string     `json:"themeDesc"`
	College   string     `json:"college,omitempty"`
	Members   []Member   `json:"member"`
	Verify    bool       `json:"verify"`
	QRID      *uuid.UUID `json:"qr_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// LeadEmail returns the email of the flagged team lead.
func (h *HackathonRegistration) LeadEmail() string {
	for _, m := range h.Members {
		if m.Lead {
			return m.Email
		}
	}
	return ""
}

// QRArtifact is the generated QR image of one registration record.
type QRArtifact struct {
	ID             uuid.UUID `json:"id"`
	RegistrationID uuid.UUID `json:"registration_id"`
	ObjectKey      string    `json:"-"`
	Link           string    `json:"link"`
	CreatedAt      time.Time `json:"created_at"`
}

// Feedback is a free-form message left by a visitor.
type Feedback struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}
