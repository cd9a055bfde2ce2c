package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sosc-devhost/backend/internal/mail"
	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/pkg/queue"
)

// JobSource is the queue side the worker consumes.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// ConfirmationSender delivers a confirmation mail.
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, c mail.Confirmation) error
}

// EmailProcessor sends queued confirmation mails.
type EmailProcessor struct {
	queue   JobSource
	sender  ConfirmationSender
	backoff time.Duration
	logger  *zap.Logger
}

// NewEmailProcessor creates a confirmation email processor.
func NewEmailProcessor(q JobSource, sender ConfirmationSender, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{queue: q, sender: sender, backoff: queue.RetryBackoff, logger: logger}
}

// Process executes one confirmation email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeConfirmationEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ConfirmationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	kind, err := models.ParseKind(payload.Kind)
	if err != nil {
		return err
	}
	if payload.To == "" {
		return fmt.Errorf("job %s has no recipient", job.ID)
	}

	err = p.sender.SendConfirmation(ctx, mail.Confirmation{
		BaseURL:        payload.BaseURL,
		Kind:           kind,
		SubEvent:       payload.SubEvent,
		To:             payload.To,
		Name:           payload.Name,
		QRID:           payload.QRID,
		RegistrationID: payload.RegistrationID,
	})
	if err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	p.logger.Info("confirmation email sent",
		zap.String("job_id", job.ID),
		zap.String("registration_id", payload.RegistrationID.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error. It returns when ctx is cancelled.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *EmailProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
