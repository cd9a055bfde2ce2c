package registrations

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosc-devhost/backend/internal/models"
)

const baseURL = "https://devhost.test"

func eventInput(kind models.Kind, owner *uuid.UUID) RegisterInput {
	return RegisterInput{
		Kind:    kind,
		OwnerID: owner,
		BaseURL: baseURL,
		Event: &EventRequest{
			Email: "contact@x.com",
			Event: EventSignup{
				Eve: "ctf",
				Participants: []models.Participant{
					{Name: "Asha", Email: " asha@x.com ", Lead: true},
					{Name: "Ravi", Email: "ravi@x.com"},
				},
			},
		},
	}
}

func hackathonInput(members ...models.Member) RegisterInput {
	return RegisterInput{
		Kind:    models.KindHackathon,
		BaseURL: baseURL,
		Hackathon: &HackathonRequest{
			Name:    "Null Pointers",
			Theme:   2,
			Members: members,
			Verify:  true,
		},
	}
}

func teamOfThree() []models.Member {
	return []models.Member{
		{Name: "Lead", Email: "lead@x.com", Lead: true},
		{Name: "Two", Email: "two@x.com"},
		{Name: "Three", Email: "three@x.com"},
	}
}

func TestRegister_EventStoresQRAndMailsLead(t *testing.T) {
	for _, kind := range []models.Kind{models.KindEvent, models.KindTalk} {
		t.Run(string(kind), func(t *testing.T) {
			f := newFixture()

			receipt, err := f.svc.Register(context.Background(), eventInput(kind, nil))
			require.NoError(t, err)
			assert.NotEmpty(t, receipt.Link)

			stored, err := f.store.GetEvent(context.Background(), receipt.ID)
			require.NoError(t, err)
			require.NotNil(t, stored.QRID)
			assert.Equal(t, f.qr.created[receipt.ID].ID, *stored.QRID)
			assert.Equal(t, receipt.QRID, *stored.QRID)
			assert.False(t, stored.Verify)
			assert.Equal(t, kind, stored.Kind)
			assert.Equal(t, "asha@x.com", stored.Participants[0].Email)

			require.Len(t, f.notifier.sent, 1)
			sent := f.notifier.sent[0]
			assert.Equal(t, "asha@x.com", sent.To)
			assert.Equal(t, "Asha", sent.Name)
			assert.Equal(t, "ctf", sent.SubEvent)
			assert.Equal(t, kind, sent.Kind)
			assert.Equal(t, receipt.QRID, sent.QRID)
			assert.Equal(t, baseURL, sent.BaseURL)
		})
	}
}

func TestRegister_EventMailsOwnerAccount(t *testing.T) {
	f := newFixture()
	owner := &models.User{ID: uuid.New(), Email: "owner@x.com", FullName: "Owner"}
	f.users.users = append(f.users.users, owner)

	receipt, err := f.svc.Register(context.Background(), eventInput(models.KindEvent, &owner.ID))
	require.NoError(t, err)
	assert.Equal(t, "owner@x.com", receipt.To)

	stored, err := f.store.GetEvent(context.Background(), receipt.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, owner.ID, *stored.UserID)
}

func TestRegister_LinkIsStableDownloadRoute(t *testing.T) {
	f := newFixture()

	receipt, err := f.svc.Register(context.Background(), hackathonInput(teamOfThree()...))
	require.NoError(t, err)
	assert.Equal(t, baseURL+"/qr/"+receipt.QRID.String(), receipt.Link)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, receipt.Link, f.notifier.sent[0].DownloadURL(), "response and mail carry the same link")
}

func TestRegister_HackathonEndToEnd(t *testing.T) {
	f := newFixture()

	receipt, err := f.svc.Register(context.Background(), hackathonInput(teamOfThree()...))
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.Link)

	require.Len(t, f.notifier.sent, 1)
	sent := f.notifier.sent[0]
	assert.Equal(t, "lead@x.com", sent.To)
	assert.Equal(t, receipt.QRID, sent.QRID)
	assert.Equal(t, "Null Pointers", sent.Name)
	assert.Equal(t, models.KindHackathon, sent.Kind)
	assert.Empty(t, sent.SubEvent)

	stored, err := f.store.GetHackathon(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.False(t, stored.Verify, "verify is never taken from the request")
	require.NotNil(t, stored.QRID)
	assert.Equal(t, receipt.QRID, *stored.QRID)
}

func TestRegister_HackathonTeamSize(t *testing.T) {
	f := newFixture()
	tooMany := append(teamOfThree(), models.Member{Name: "Four", Email: "four@x.com"}, models.Member{Name: "Five", Email: "five@x.com"})

	_, err := f.svc.Register(context.Background(), hackathonInput(tooMany...))
	assert.ErrorIs(t, err, ErrTeamSize)

	_, err = f.svc.Register(context.Background(), hackathonInput(models.Member{Name: "Solo", Email: "solo@x.com", Lead: true}))
	assert.ErrorIs(t, err, ErrTeamSize)

	assert.Empty(t, f.store.hackathons)
	assert.Empty(t, f.qr.created)
}

func TestRegister_PersistenceFailureCreatesNoQR(t *testing.T) {
	f := newFixture()
	f.store.createErr = errors.New("connection refused")

	_, err := f.svc.Register(context.Background(), eventInput(models.KindEvent, nil))
	require.ErrorContains(t, err, "connection refused")

	_, err = f.svc.Register(context.Background(), hackathonInput(teamOfThree()...))
	require.Error(t, err)

	assert.Empty(t, f.qr.created)
	assert.Empty(t, f.notifier.sent)
}

func TestRegister_QRFailureSendsNoMail(t *testing.T) {
	f := newFixture()
	f.qr.err = errors.New("s3 unavailable")

	_, err := f.svc.Register(context.Background(), eventInput(models.KindTalk, nil))
	assert.ErrorIs(t, err, ErrQRFailed)

	_, err = f.svc.Register(context.Background(), hackathonInput(teamOfThree()...))
	assert.ErrorIs(t, err, ErrQRFailed)

	assert.Empty(t, f.notifier.sent)
}

func TestRegister_MailFailure(t *testing.T) {
	f := newFixture()
	f.notifier.err = errors.New("ses throttled")

	_, err := f.svc.Register(context.Background(), eventInput(models.KindEvent, nil))
	assert.ErrorIs(t, err, ErrMailFailed)
}

func TestRegister_NoRecipient(t *testing.T) {
	f := newFixture()
	members := teamOfThree()
	members[0].Lead = false

	_, err := f.svc.Register(context.Background(), hackathonInput(members...))
	assert.ErrorIs(t, err, ErrNoRecipient)
	assert.Empty(t, f.notifier.sent)
}

func TestRegister_InvalidInput(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Register(context.Background(), RegisterInput{Kind: "workshop"})
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = f.svc.Register(context.Background(), RegisterInput{Kind: models.KindHackathon})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLookup(t *testing.T) {
	f := newFixture()
	user := &models.User{ID: uuid.New(), Email: "u@x.com", Password: "hash"}
	f.users.users = append(f.users.users, user)
	ev, err := f.svc.Register(context.Background(), eventInput(models.KindEvent, nil))
	require.NoError(t, err)
	hk, err := f.svc.Register(context.Background(), hackathonInput(teamOfThree()...))
	require.NoError(t, err)

	got, err := f.svc.Lookup(context.Background(), TargetUser, user.ID)
	require.NoError(t, err)
	assert.IsType(t, models.UserPublic{}, got)

	got, err = f.svc.Lookup(context.Background(), TargetEvent, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.(*models.EventRegistration).ID)

	got, err = f.svc.Lookup(context.Background(), TargetHackathon, hk.ID)
	require.NoError(t, err)
	assert.Equal(t, hk.ID, got.(*models.HackathonRegistration).ID)

	for _, target := range []Target{TargetUser, TargetEvent, TargetHackathon} {
		_, err := f.svc.Lookup(context.Background(), target, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound, string(target))
	}
	_, err = f.svc.Lookup(context.Background(), Target("x"), uuid.New())
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestLookupAny(t *testing.T) {
	f := newFixture()
	ev, err := f.svc.Register(context.Background(), eventInput(models.KindEvent, nil))
	require.NoError(t, err)
	hk, err := f.svc.Register(context.Background(), hackathonInput(teamOfThree()...))
	require.NoError(t, err)

	got, err := f.svc.LookupAny(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.IsType(t, &models.EventRegistration{}, got)

	got, err = f.svc.LookupAny(context.Background(), hk.ID)
	require.NoError(t, err)
	assert.IsType(t, &models.HackathonRegistration{}, got)

	_, err = f.svc.LookupAny(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModify_Event(t *testing.T) {
	f := newFixture()
	ev, err := f.svc.Register(context.Background(), eventInput(models.KindEvent, nil))
	require.NoError(t, err)

	got, err := f.svc.Modify(context.Background(), models.KindEvent, ev.ID, ModifyRequest{
		Add: true,
		Events: []models.Participant{
			{Name: "Ravi again", Email: "RAVI@x.com"},
			{Name: "Meera", Email: "meera@x.com", Lead: true},
			{Name: "Meera dup", Email: "meera@x.com"},
		},
	})
	require.NoError(t, err)
	rec := got.(*models.EventRegistration)
	assert.Equal(t, []string{"asha@x.com", "ravi@x.com", "meera@x.com"}, participantEmails(rec.Participants))
	assert.False(t, rec.Participants[2].Lead)

	got, err = f.svc.Modify(context.Background(), models.KindEvent, ev.ID, ModifyRequest{
		Events: []models.Participant{{Email: "ravi@x.com"}},
		Emails: []string{"Meera@x.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"asha@x.com"}, participantEmails(got.(*models.EventRegistration).Participants))

	_, err = f.svc.Modify(context.Background(), models.KindEvent, ev.ID, ModifyRequest{Add: true})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Modify(context.Background(), models.KindEvent, uuid.New(), ModifyRequest{Emails: []string{"a@x.com"}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModify_Hackathon(t *testing.T) {
	f := newFixture()
	hk, err := f.svc.Register(context.Background(), hackathonInput(teamOfThree()...))
	require.NoError(t, err)

	got, err := f.svc.Modify(context.Background(), models.KindHackathon, hk.ID, ModifyRequest{
		Add:     true,
		Members: []models.Member{{Name: "Four", Email: "four@x.com"}},
	})
	require.NoError(t, err)
	assert.Len(t, got.(*models.HackathonRegistration).Members, 4)

	_, err = f.svc.Modify(context.Background(), models.KindHackathon, hk.ID, ModifyRequest{
		Add:     true,
		Members: []models.Member{{Name: "Five", Email: "five@x.com"}},
	})
	assert.ErrorIs(t, err, ErrTeamSize)

	_, err = f.svc.Modify(context.Background(), models.KindHackathon, hk.ID, ModifyRequest{Emails: []string{"lead@x.com"}})
	assert.ErrorIs(t, err, ErrLeadRemoval)

	got, err = f.svc.Modify(context.Background(), models.KindHackathon, hk.ID, ModifyRequest{Emails: []string{"four@x.com", "three@x.com"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"lead@x.com", "two@x.com"}, memberEmails(got.(*models.HackathonRegistration).Members))

	_, err = f.svc.Modify(context.Background(), models.KindHackathon, hk.ID, ModifyRequest{Emails: []string{"two@x.com"}})
	assert.ErrorIs(t, err, ErrTeamSize)

	stored, err := f.store.GetHackathon(context.Background(), hk.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Members, 2, "rejected modifications leave the team unchanged")
}

func TestResendConfirmation(t *testing.T) {
	f := newFixture()
	hk, err := f.svc.Register(context.Background(), hackathonInput(teamOfThree()...))
	require.NoError(t, err)

	res, err := f.svc.ResendConfirmation(context.Background(), models.KindHackathon, hk.ID, "http://localhost:8080")
	require.NoError(t, err)
	assert.True(t, res.Queued)
	assert.Equal(t, "job-"+hk.ID.String(), res.JobID)
	require.Len(t, f.queue.jobs, 1)
	job := f.queue.jobs[0]
	assert.Equal(t, "hackathon", job.Kind)
	assert.Equal(t, "lead@x.com", job.To)
	assert.Equal(t, hk.QRID, job.QRID)
	assert.Equal(t, "http://localhost:8080", job.BaseURL)

	_, err = f.svc.ResendConfirmation(context.Background(), models.KindEvent, uuid.New(), baseURL)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResendConfirmation_InlineWithoutQueue(t *testing.T) {
	f := newFixture()
	f.svc = NewService(f.store, f.users, f.qr, f.notifier, nil, Options{}, nil)
	ev, err := f.svc.Register(context.Background(), eventInput(models.KindTalk, nil))
	require.NoError(t, err)

	res, err := f.svc.ResendConfirmation(context.Background(), models.KindTalk, ev.ID, baseURL)
	require.NoError(t, err)
	assert.False(t, res.Queued)
	assert.Empty(t, res.JobID)
	assert.Len(t, f.notifier.sent, 2)
}

func TestVerify(t *testing.T) {
	f := newFixture()
	hk, err := f.svc.Register(context.Background(), hackathonInput(teamOfThree()...))
	require.NoError(t, err)

	ci, err := f.svc.Verify(context.Background(), hk.QRID)
	require.NoError(t, err)
	assert.Equal(t, hk.ID, ci.RegistrationID)
	assert.Equal(t, models.KindHackathon, ci.Kind)
	assert.False(t, ci.AlreadyVerified)

	ci, err = f.svc.Verify(context.Background(), hk.QRID)
	require.NoError(t, err)
	assert.True(t, ci.AlreadyVerified)

	_, err = f.svc.Verify(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
