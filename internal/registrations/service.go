package registrations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sosc-devhost/backend/internal/auth"
	"github.com/sosc-devhost/backend/internal/mail"
	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/pkg/queue"
)

// Store persists registration records. Missing records are reported as ErrNotFound.
type Store interface {
	CreateEvent(ctx context.Context, r *models.EventRegistration) error
	CreateHackathon(ctx context.Context, r *models.HackathonRegistration) error
	SetEventQR(ctx context.Context, id, qrID uuid.UUID) error
	SetHackathonQR(ctx context.Context, id, qrID uuid.UUID) error
	GetEvent(ctx context.Context, id uuid.UUID) (*models.EventRegistration, error)
	GetHackathon(ctx context.Context, id uuid.UUID) (*models.HackathonRegistration, error)
	HackathonLeadEmail(ctx context.Context, id uuid.UUID) (string, error)
	// UpdateParticipants and UpdateMembers run fn on the current list under a row lock
	// and store its result; an error from fn aborts without writing.
	UpdateParticipants(ctx context.Context, id uuid.UUID, fn func([]models.Participant) ([]models.Participant, error)) (*models.EventRegistration, error)
	UpdateMembers(ctx context.Context, id uuid.UUID, fn func([]models.Member) ([]models.Member, error)) (*models.HackathonRegistration, error)
	MarkVerifiedByQR(ctx context.Context, qrID uuid.UUID) (*CheckIn, error)
}

// UserFinder reads accounts; a missing account is auth.ErrNotFound.
type UserFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// QRGenerator creates the QR artifact of a record; its Link is served under baseURL.
type QRGenerator interface {
	Create(ctx context.Context, registrationID uuid.UUID, baseURL string) (*models.QRArtifact, error)
}

// Notifier delivers confirmation mails.
type Notifier interface {
	SendConfirmation(ctx context.Context, c mail.Confirmation) error
}

// Enqueuer schedules confirmation mails for the email worker.
type Enqueuer interface {
	EnqueueConfirmation(ctx context.Context, p queue.ConfirmationPayload) (string, error)
}

// CheckIn is the result of scanning a QR code at the venue.
type CheckIn struct {
	RegistrationID  uuid.UUID   `json:"registration_id"`
	Kind            models.Kind `json:"kind"`
	AlreadyVerified bool        `json:"already_verified"`
}

// Options bounds hackathon team sizes, lead included.
type Options struct {
	MinMembers int
	MaxMembers int
}

// Service runs the registration, lookup and modification workflows.
type Service struct {
	store    Store
	users    UserFinder
	qr       QRGenerator
	notifier Notifier
	queue    Enqueuer
	opts     Options
	logger   *zap.Logger
}

// NewService creates a registrations service. jobs may be nil, in which case resends are sent inline.
func NewService(store Store, users UserFinder, qr QRGenerator, notifier Notifier, jobs Enqueuer, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MinMembers <= 0 {
		opts.MinMembers = 2
	}
	if opts.MaxMembers < opts.MinMembers {
		opts.MaxMembers = 4
	}
	return &Service{store: store, users: users, qr: qr, notifier: notifier, queue: jobs, opts: opts, logger: logger}
}

// Register persists a record, creates and attaches its QR code and mails the confirmation.
// Every step must succeed before the next one starts.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Receipt, error) {
	switch in.Kind {
	case models.KindEvent, models.KindTalk:
		if in.Event == nil {
			return nil, fmt.Errorf("%w: missing event payload", ErrInvalidInput)
		}
		return s.registerEvent(ctx, in)
	case models.KindHackathon:
		if in.Hackathon == nil {
			return nil, fmt.Errorf("%w: missing hackathon payload", ErrInvalidInput)
		}
		return s.registerHackathon(ctx, in)
	}
	return nil, fmt.Errorf("%w %q", ErrInvalidKind, in.Kind)
}

func (s *Service) registerEvent(ctx context.Context, in RegisterInput) (*Receipt, error) {
	req := in.Event
	rec := &models.EventRegistration{
		Kind:         in.Kind,
		UserID:       in.OwnerID,
		Event:        strings.TrimSpace(req.Event.Eve),
		Email:        strings.TrimSpace(req.Email),
		Participants: make([]models.Participant, len(req.Event.Participants)),
		Verify:       false,
	}
	for i, p := range req.Event.Participants {
		p.Email = strings.TrimSpace(p.Email)
		rec.Participants[i] = p
	}
	if err := s.store.CreateEvent(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist registration: %w", err)
	}

	art, err := s.createQR(ctx, rec.ID, in.BaseURL)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetEventQR(ctx, rec.ID, art.ID); err != nil {
		return nil, fmt.Errorf("attach qr code: %w", err)
	}
	rec.QRID = &art.ID

	to, err := s.eventRecipient(ctx, rec)
	if err != nil {
		return nil, err
	}
	c := mail.Confirmation{
		BaseURL:        in.BaseURL,
		Kind:           rec.Kind,
		SubEvent:       rec.Event,
		To:             to,
		Name:           eventDisplayName(rec),
		QRID:           art.ID,
		RegistrationID: rec.ID,
	}
	if err := s.notifier.SendConfirmation(ctx, c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMailFailed, err)
	}

	s.logger.Info("registration completed",
		zap.String("kind", string(rec.Kind)),
		zap.String("registration_id", rec.ID.String()),
		zap.String("qr_id", art.ID.String()))
	return &Receipt{ID: rec.ID, QRID: art.ID, Link: art.Link, To: to}, nil
}

func (s *Service) registerHackathon(ctx context.Context, in RegisterInput) (*Receipt, error) {
	req := in.Hackathon
	if n := len(req.Members); n < s.opts.MinMembers || n > s.opts.MaxMembers {
		return nil, fmt.Errorf("%w: a team has %d to %d members, got %d", ErrTeamSize, s.opts.MinMembers, s.opts.MaxMembers, n)
	}
	members := make([]models.Member, len(req.Members))
	for i, m := range req.Members {
		m.Email = strings.TrimSpace(m.Email)
		members[i] = m
	}
	rec := &models.HackathonRegistration{
		UserID:    in.OwnerID,
		Name:      strings.TrimSpace(req.Name),
		Theme:     req.Theme,
		ThemeDesc: req.ThemeDesc,
		College:   req.College,
		Members:   members,
		Verify:    false,
	}
	if err := s.store.CreateHackathon(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist registration: %w", err)
	}

	art, err := s.createQR(ctx, rec.ID, in.BaseURL)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetHackathonQR(ctx, rec.ID, art.ID); err != nil {
		return nil, fmt.Errorf("attach qr code: %w", err)
	}
	rec.QRID = &art.ID

	to, err := s.store.HackathonLeadEmail(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("lead email: %w", err)
	}
	if to == "" {
		return nil, ErrNoRecipient
	}
	c := mail.Confirmation{
		BaseURL:        in.BaseURL,
		Kind:           models.KindHackathon,
		To:             to,
		Name:           rec.Name,
		QRID:           art.ID,
		RegistrationID: rec.ID,
	}
	if err := s.notifier.SendConfirmation(ctx, c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMailFailed, err)
	}

	s.logger.Info("registration completed",
		zap.String("kind", string(models.KindHackathon)),
		zap.String("registration_id", rec.ID.String()),
		zap.String("qr_id", art.ID.String()))
	return &Receipt{ID: rec.ID, QRID: art.ID, Link: art.Link, To: to}, nil
}

func (s *Service) createQR(ctx context.Context, id uuid.UUID, baseURL string) (*models.QRArtifact, error) {
	art, err := s.qr.Create(ctx, id, baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQRFailed, err)
	}
	return art, nil
}

// eventRecipient resolves the confirmation address of an event/talk record: the owner's
// account, then the lead participant, then the contact email.
func (s *Service) eventRecipient(ctx context.Context, rec *models.EventRegistration) (string, error) {
	if rec.UserID != nil {
		u, err := s.users.GetByID(ctx, *rec.UserID)
		switch {
		case err == nil && u.Email != "":
			return u.Email, nil
		case err != nil && !errors.Is(err, auth.ErrNotFound):
			return "", fmt.Errorf("owner lookup: %w", err)
		}
	}
	if lead, ok := rec.Lead(); ok && lead.Email != "" {
		return lead.Email, nil
	}
	if rec.Email != "" {
		return rec.Email, nil
	}
	return "", ErrNoRecipient
}

// eventDisplayName is the lead participant's name; participant names are required on every entry.
func eventDisplayName(rec *models.EventRegistration) string {
	lead, _ := rec.Lead()
	return lead.Name
}

// Lookup reads an account, an event/talk record or a hackathon record by id.
func (s *Service) Lookup(ctx context.Context, target Target, id uuid.UUID) (any, error) {
	switch target {
	case TargetUser:
		u, err := s.users.GetByID(ctx, id)
		if errors.Is(err, auth.ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return u.ToPublic(), nil
	case TargetEvent:
		return s.store.GetEvent(ctx, id)
	case TargetHackathon:
		return s.store.GetHackathon(ctx, id)
	}
	return nil, fmt.Errorf("%w %q", ErrInvalidKind, target)
}

// LookupAny tries the event/talk store first, then the hackathon store.
func (s *Service) LookupAny(ctx context.Context, id uuid.UUID) (any, error) {
	ev, err := s.store.GetEvent(ctx, id)
	if err == nil {
		return ev, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.store.GetHackathon(ctx, id)
}

// Modify adds or removes participants of an event/talk record or members of a hackathon team.
func (s *Service) Modify(ctx context.Context, kind models.Kind, id uuid.UUID, req ModifyRequest) (any, error) {
	switch kind {
	case models.KindEvent, models.KindTalk:
		return s.modifyEvent(ctx, id, req)
	case models.KindHackathon:
		return s.modifyHackathon(ctx, id, req)
	}
	return nil, fmt.Errorf("%w %q", ErrInvalidKind, kind)
}

func (s *Service) modifyEvent(ctx context.Context, id uuid.UUID, req ModifyRequest) (*models.EventRegistration, error) {
	if req.Add {
		if len(req.Events) == 0 {
			return nil, fmt.Errorf("%w: no participants to add", ErrInvalidInput)
		}
		return s.store.UpdateParticipants(ctx, id, func(cur []models.Participant) ([]models.Participant, error) {
			return addParticipants(cur, req.Events), nil
		})
	}

	drop := emailSet(req.Emails, participantEmails(req.Events))
	if len(drop) == 0 {
		return nil, fmt.Errorf("%w: no participants to remove", ErrInvalidInput)
	}
	return s.store.UpdateParticipants(ctx, id, func(cur []models.Participant) ([]models.Participant, error) {
		return removeParticipants(cur, drop), nil
	})
}

func (s *Service) modifyHackathon(ctx context.Context, id uuid.UUID, req ModifyRequest) (*models.HackathonRegistration, error) {
	if req.Add {
		if len(req.Members) == 0 {
			return nil, fmt.Errorf("%w: no members to add", ErrInvalidInput)
		}
		return s.store.UpdateMembers(ctx, id, func(cur []models.Member) ([]models.Member, error) {
			next := addMembers(cur, req.Members)
			if len(next) > s.opts.MaxMembers {
				return nil, fmt.Errorf("%w: a team has at most %d members", ErrTeamSize, s.opts.MaxMembers)
			}
			return next, nil
		})
	}

	drop := emailSet(req.Emails, memberEmails(req.Members))
	if len(drop) == 0 {
		return nil, fmt.Errorf("%w: no members to remove", ErrInvalidInput)
	}
	return s.store.UpdateMembers(ctx, id, func(cur []models.Member) ([]models.Member, error) {
		next, removedLead := removeMembers(cur, drop)
		if removedLead {
			return nil, ErrLeadRemoval
		}
		if len(next) < s.opts.MinMembers {
			return nil, fmt.Errorf("%w: a team has at least %d members", ErrTeamSize, s.opts.MinMembers)
		}
		return next, nil
	})
}

// Resend reports how a confirmation resend was handled. JobID is set only when Queued.
type Resend struct {
	Queued bool
	JobID  string
}

// ResendConfirmation queues the confirmation mail of an existing record again. Without a queue
// the mail is sent before returning.
func (s *Service) ResendConfirmation(ctx context.Context, kind models.Kind, id uuid.UUID, baseURL string) (*Resend, error) {
	c, err := s.confirmationFor(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	c.BaseURL = baseURL

	if s.queue == nil {
		if err := s.notifier.SendConfirmation(ctx, c); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMailFailed, err)
		}
		return &Resend{}, nil
	}
	jobID, err := s.queue.EnqueueConfirmation(ctx, queue.ConfirmationPayload{
		Kind:           string(c.Kind),
		RegistrationID: c.RegistrationID,
		SubEvent:       c.SubEvent,
		To:             c.To,
		Name:           c.Name,
		QRID:           c.QRID,
		BaseURL:        c.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue confirmation: %w", err)
	}
	return &Resend{Queued: true, JobID: jobID}, nil
}

func (s *Service) confirmationFor(ctx context.Context, kind models.Kind, id uuid.UUID) (mail.Confirmation, error) {
	switch kind {
	case models.KindEvent, models.KindTalk:
		rec, err := s.store.GetEvent(ctx, id)
		if err != nil {
			return mail.Confirmation{}, err
		}
		if rec.QRID == nil {
			return mail.Confirmation{}, fmt.Errorf("%w: registration has no qr code", ErrInvalidInput)
		}
		to, err := s.eventRecipient(ctx, rec)
		if err != nil {
			return mail.Confirmation{}, err
		}
		return mail.Confirmation{
			Kind:           rec.Kind,
			SubEvent:       rec.Event,
			To:             to,
			Name:           eventDisplayName(rec),
			QRID:           *rec.QRID,
			RegistrationID: rec.ID,
		}, nil
	case models.KindHackathon:
		rec, err := s.store.GetHackathon(ctx, id)
		if err != nil {
			return mail.Confirmation{}, err
		}
		if rec.QRID == nil {
			return mail.Confirmation{}, fmt.Errorf("%w: registration has no qr code", ErrInvalidInput)
		}
		to := rec.LeadEmail()
		if to == "" {
			return mail.Confirmation{}, ErrNoRecipient
		}
		return mail.Confirmation{
			Kind:           models.KindHackathon,
			To:             to,
			Name:           rec.Name,
			QRID:           *rec.QRID,
			RegistrationID: rec.ID,
		}, nil
	}
	return mail.Confirmation{}, fmt.Errorf("%w %q", ErrInvalidKind, kind)
}

// Verify checks in the record owning qrID.
func (s *Service) Verify(ctx context.Context, qrID uuid.UUID) (*CheckIn, error) {
	ci, err := s.store.MarkVerifiedByQR(ctx, qrID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("checked in",
		zap.String("qr_id", qrID.String()),
		zap.String("registration_id", ci.RegistrationID.String()),
		zap.Bool("already_verified", ci.AlreadyVerified))
	return ci, nil
}

func participantEmails(ps []models.Participant) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Email)
	}
	return out
}

func memberEmails(ms []models.Member) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Email)
	}
	return out
}
