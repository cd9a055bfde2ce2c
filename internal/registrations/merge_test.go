package registrations

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sosc-devhost/backend/internal/models"
)

func TestAddParticipants(t *testing.T) {
	cur := []models.Participant{{Name: "A", Email: "a@x.com", Lead: true}}

	tests := []struct {
		name string
		add  []models.Participant
		want []string
	}{
		{"nothing", nil, []string{"a@x.com"}},
		{"new entry", []models.Participant{{Name: "B", Email: "b@x.com"}}, []string{"a@x.com", "b@x.com"}},
		{"existing email differs in case", []models.Participant{{Name: "A2", Email: " A@X.com"}}, []string{"a@x.com"}},
		{"duplicates inside the batch", []models.Participant{{Email: "b@x.com"}, {Email: "B@x.com"}}, []string{"a@x.com", "b@x.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := addParticipants(cur, tt.add)
			assert.Equal(t, tt.want, participantEmails(got))
			assert.True(t, got[0].Lead)
			for _, p := range got[1:] {
				assert.False(t, p.Lead)
			}
		})
	}
	assert.Len(t, cur, 1, "input slice is not modified")
}

func TestRemoveParticipants(t *testing.T) {
	cur := []models.Participant{{Email: "a@x.com"}, {Email: "b@x.com"}, {Email: "c@x.com"}}

	got := removeParticipants(cur, emailSet([]string{"B@x.com", "zzz@x.com", ""}))
	assert.Equal(t, []string{"a@x.com", "c@x.com"}, participantEmails(got))

	got = removeParticipants(cur, emailSet())
	assert.Equal(t, participantEmails(cur), participantEmails(got))
}

func TestRemoveMembers(t *testing.T) {
	cur := []models.Member{{Email: "lead@x.com", Lead: true}, {Email: "b@x.com"}}

	got, removedLead := removeMembers(cur, emailSet([]string{"b@x.com"}))
	assert.False(t, removedLead)
	assert.Equal(t, []string{"lead@x.com"}, memberEmails(got))

	_, removedLead = removeMembers(cur, emailSet([]string{"LEAD@x.com"}))
	assert.True(t, removedLead)
}

func TestAddMembers(t *testing.T) {
	cur := []models.Member{{Email: "lead@x.com", Lead: true}}
	got := addMembers(cur, []models.Member{{Email: "b@x.com", Lead: true}, {Email: "lead@x.com"}})
	assert.Equal(t, []string{"lead@x.com", "b@x.com"}, memberEmails(got))
	assert.False(t, got[1].Lead)
}
