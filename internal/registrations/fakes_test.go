package registrations

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/sosc-devhost/backend/internal/auth"
	"github.com/sosc-devhost/backend/internal/mail"
	"github.com/sosc-devhost/backend/internal/models"
	"github.com/sosc-devhost/backend/internal/qrcodes"
	"github.com/sosc-devhost/backend/pkg/queue"
)

type memStore struct {
	mu         sync.Mutex
	events     map[uuid.UUID]*models.EventRegistration
	hackathons map[uuid.UUID]*models.HackathonRegistration
	createErr  error
}

func newMemStore() *memStore {
	return &memStore{
		events:     make(map[uuid.UUID]*models.EventRegistration),
		hackathons: make(map[uuid.UUID]*models.HackathonRegistration),
	}
}

func (m *memStore) CreateEvent(_ context.Context, r *models.EventRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	r.ID = uuid.New()
	cp := *r
	m.events[r.ID] = &cp
	return nil
}

func (m *memStore) CreateHackathon(_ context.Context, r *models.HackathonRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	r.ID = uuid.New()
	cp := *r
	m.hackathons[r.ID] = &cp
	return nil
}

func (m *memStore) SetEventQR(_ context.Context, id, qrID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.events[id]
	if !ok {
		return ErrNotFound
	}
	r.QRID = &qrID
	return nil
}

func (m *memStore) SetHackathonQR(_ context.Context, id, qrID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.hackathons[id]
	if !ok {
		return ErrNotFound
	}
	r.QRID = &qrID
	return nil
}

func (m *memStore) GetEvent(_ context.Context, id uuid.UUID) (*models.EventRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	cp.Participants = append([]models.Participant(nil), r.Participants...)
	return &cp, nil
}

func (m *memStore) GetHackathon(_ context.Context, id uuid.UUID) (*models.HackathonRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.hackathons[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	cp.Members = append([]models.Member(nil), r.Members...)
	return &cp, nil
}

func (m *memStore) HackathonLeadEmail(_ context.Context, id uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.hackathons[id]
	if !ok {
		return "", ErrNotFound
	}
	return r.LeadEmail(), nil
}

func (m *memStore) UpdateParticipants(_ context.Context, id uuid.UUID, fn func([]models.Participant) ([]models.Participant, error)) (*models.EventRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	next, err := fn(append([]models.Participant(nil), r.Participants...))
	if err != nil {
		return nil, err
	}
	r.Participants = next
	cp := *r
	return &cp, nil
}

func (m *memStore) UpdateMembers(_ context.Context, id uuid.UUID, fn func([]models.Member) ([]models.Member, error)) (*models.HackathonRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.hackathons[id]
	if !ok {
		return nil, ErrNotFound
	}
	next, err := fn(append([]models.Member(nil), r.Members...))
	if err != nil {
		return nil, err
	}
	r.Members = next
	cp := *r
	return &cp, nil
}

func (m *memStore) MarkVerifiedByQR(_ context.Context, qrID uuid.UUID) (*CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.events {
		if r.QRID != nil && *r.QRID == qrID {
			ci := &CheckIn{RegistrationID: r.ID, Kind: r.Kind, AlreadyVerified: r.Verify}
			r.Verify = true
			return ci, nil
		}
	}
	for _, r := range m.hackathons {
		if r.QRID != nil && *r.QRID == qrID {
			ci := &CheckIn{RegistrationID: r.ID, Kind: models.KindHackathon, AlreadyVerified: r.Verify}
			r.Verify = true
			return ci, nil
		}
	}
	return nil, ErrNotFound
}

type memUsers struct {
	users []*models.User
}

func (f *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, auth.ErrNotFound
}

type fakeQR struct {
	created map[uuid.UUID]*models.QRArtifact // by registration id
	err     error
}

func newFakeQR() *fakeQR {
	return &fakeQR{created: make(map[uuid.UUID]*models.QRArtifact)}
}

func (f *fakeQR) Create(_ context.Context, registrationID uuid.UUID, baseURL string) (*models.QRArtifact, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, dup := f.created[registrationID]; dup {
		return nil, errors.New("qr code already exists for registration")
	}
	id := uuid.New()
	a := &models.QRArtifact{
		ID:             id,
		RegistrationID: registrationID,
		Link:           qrcodes.Link(baseURL, id),
	}
	f.created[registrationID] = a
	return a, nil
}

type fakeNotifier struct {
	sent []mail.Confirmation
	err  error
}

func (f *fakeNotifier) SendConfirmation(_ context.Context, c mail.Confirmation) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, c)
	return nil
}

type fakeQueue struct {
	jobs []queue.ConfirmationPayload
	err  error
}

func (f *fakeQueue) EnqueueConfirmation(_ context.Context, p queue.ConfirmationPayload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.jobs = append(f.jobs, p)
	return "job-" + p.RegistrationID.String(), nil
}

type fixture struct {
	store    *memStore
	users    *memUsers
	qr       *fakeQR
	notifier *fakeNotifier
	queue    *fakeQueue
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		store:    newMemStore(),
		users:    &memUsers{},
		qr:       newFakeQR(),
		notifier: &fakeNotifier{},
		queue:    &fakeQueue{},
	}
	f.svc = NewService(f.store, f.users, f.qr, f.notifier, f.queue, Options{MinMembers: 2, MaxMembers: 4}, nil)
	return f
}
