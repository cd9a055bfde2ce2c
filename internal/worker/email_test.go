package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosc-devhost/backend/internal/mail"
	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/pkg/queue"
)

type fakeSource struct {
	mu      sync.Mutex
	jobs    []*queue.Job
	retried []*queue.Job
}

func (f *fakeSource) Dequeue(ctx context.Context) (*queue.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.jobs) == 0 {
		return nil, nil
	}
	job := f.jobs[0]
	f.jobs = f.jobs[1:]
	return job, nil
}

func (f *fakeSource) Retry(_ context.Context, job *queue.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job.Attempt++
	f.retried = append(f.retried, job)
	if job.Attempt < queue.MaxRetries {
		f.jobs = append(f.jobs, job)
	}
	return nil
}

func (f *fakeSource) retries() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.retried)
}

type fakeSender struct {
	mu   sync.Mutex
	sent []mail.Confirmation
	err  error
}

func (f *fakeSender) SendConfirmation(_ context.Context, c mail.Confirmation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, c)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func confirmationJob(t *testing.T, p queue.ConfirmationPayload) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return &queue.Job{ID: uuid.NewString(), Type: queue.JobTypeConfirmationEmail, Payload: raw}
}

func TestEmailProcessor_Process(t *testing.T) {
	sender := &fakeSender{}
	p := NewEmailProcessor(&fakeSource{}, sender, nil)
	payload := queue.ConfirmationPayload{
		Kind:           "hackathon",
		RegistrationID: uuid.New(),
		To:             "lead@x.com",
		Name:           "Null Pointers",
		QRID:           uuid.New(),
		BaseURL:        "https://devhost.test",
	}

	require.NoError(t, p.Process(context.Background(), confirmationJob(t, payload)))
	require.Len(t, sender.sent, 1)
	got := sender.sent[0]
	assert.Equal(t, models.KindHackathon, got.Kind)
	assert.Equal(t, payload.QRID, got.QRID)
	assert.Equal(t, "lead@x.com", got.To)
	assert.Equal(t, "https://devhost.test/qr/"+payload.QRID.String(), got.DownloadURL())
}

func TestEmailProcessor_ProcessRejects(t *testing.T) {
	p := NewEmailProcessor(&fakeSource{}, &fakeSender{}, nil)

	err := p.Process(context.Background(), &queue.Job{Type: "recording_upload"})
	assert.ErrorContains(t, err, "unknown job type")

	err = p.Process(context.Background(), &queue.Job{Type: queue.JobTypeConfirmationEmail, Payload: []byte("{")})
	assert.ErrorContains(t, err, "unmarshal payload")

	err = p.Process(context.Background(), confirmationJob(t, queue.ConfirmationPayload{Kind: "workshop", To: "a@x.com"}))
	assert.Error(t, err)

	err = p.Process(context.Background(), confirmationJob(t, queue.ConfirmationPayload{Kind: "event"}))
	assert.ErrorContains(t, err, "no recipient")
}

func TestEmailProcessor_RunRetriesFailures(t *testing.T) {
	src := &fakeSource{}
	src.jobs = append(src.jobs, confirmationJob(t, queue.ConfirmationPayload{Kind: "talk", To: "a@x.com", QRID: uuid.New()}))
	p := NewEmailProcessor(src, &fakeSender{err: errors.New("ses down")}, nil)
	p.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return src.retries() == queue.MaxRetries }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, queue.MaxRetries, src.retries(), "job stops cycling once it reaches the dead-letter list")
}

func TestEmailProcessor_RunSends(t *testing.T) {
	src := &fakeSource{}
	src.jobs = append(src.jobs, confirmationJob(t, queue.ConfirmationPayload{Kind: "event", To: "a@x.com", QRID: uuid.New()}))
	sender := &fakeSender{}
	p := NewEmailProcessor(src, sender, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	assert.Eventually(t, func() bool { return sender.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, src.retries())
}
