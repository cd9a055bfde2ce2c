package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/internal/qrcodes"
)

const confirmationTemplate = "confirmation"

// Confirmation is one registration confirmation mail.
type Confirmation struct {
	BaseURL        string
	Kind           models.Kind
	SubEvent       string // event/talk only
	To             string
	Name           string
	QRID           uuid.UUID
	RegistrationID uuid.UUID
}

// DownloadURL is the QR download link embedded in the mail.
func (c Confirmation) DownloadURL() string {
	return qrcodes.Link(c.BaseURL, c.QRID)
}

type confirmationData struct {
	KindLabel      string
	KindCode       int
	SubEvent       string
	Name           string
	QRID           string
	RegistrationID string
	DownloadURL    string
}

// LogRecorder stores delivery attempts.
type LogRecorder interface {
	Create(ctx context.Context, l *models.EmailLog) error
}

// Sender renders and delivers confirmation mails and logs every attempt.
type Sender struct {
	mailer   Mailer
	renderer *Renderer
	logs     LogRecorder
	logger   *zap.Logger
}

// NewSender creates a Sender. logs may be nil to skip delivery logging.
func NewSender(mailer Mailer, logs LogRecorder, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{mailer: mailer, renderer: NewRenderer(), logs: logs, logger: logger}
}

// SendConfirmation renders the confirmation template for c and sends it to c.To.
func (s *Sender) SendConfirmation(ctx context.Context, c Confirmation) error {
	subject, html, text, err := s.renderer.Render(confirmationTemplate, confirmationData{
		KindLabel:      c.Kind.Label(),
		KindCode:       c.Kind.Code(),
		SubEvent:       c.SubEvent,
		Name:           c.Name,
		QRID:           c.QRID.String(),
		RegistrationID: c.RegistrationID.String(),
		DownloadURL:    c.DownloadURL(),
	})
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	sendErr := s.mailer.Send(ctx, c.To, subject, html, text)
	s.record(ctx, c, subject, sendErr)
	if sendErr != nil {
		s.logger.Error("confirmation mail failed",
			zap.Error(sendErr),
			zap.String("registration_id", c.RegistrationID.String()),
			zap.String("to", c.To))
		return sendErr
	}
	return nil
}

func (s *Sender) record(ctx context.Context, c Confirmation, subject string, sendErr error) {
	if s.logs == nil {
		return
	}
	l := &models.EmailLog{
		RegistrationID: c.RegistrationID,
		Kind:           c.Kind,
		EmailType:      models.EmailTypeRegistrationConfirmation,
		RecipientEmail: c.To,
		Subject:        subject,
		Status:         models.EmailLogStatusSent,
	}
	if sendErr != nil {
		l.Status = models.EmailLogStatusFailed
		l.ErrorMessage = sendErr.Error()
	} else {
		now := time.Now()
		l.SentAt = &now
	}
	if err := s.logs.Create(ctx, l); err != nil {
		s.logger.Warn("failed to record email log", zap.Error(err), zap.String("registration_id", c.RegistrationID.String()))
	}
}
