package registrations

import (
	"strings"

	"github.com/sosc-devhost/backend/internal/models"
)

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// addParticipants appends the entries of add whose email is not yet present.
// Added participants never carry the lead flag.
func addParticipants(cur, add []models.Participant) []models.Participant {
	seen := make(map[string]struct{}, len(cur)+len(add))
	out := make([]models.Participant, 0, len(cur)+len(add))
	for _, p := range cur {
		seen[emailKey(p.Email)] = struct{}{}
		out = append(out, p)
	}
	for _, p := range add {
		k := emailKey(p.Email)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		p.Email = strings.TrimSpace(p.Email)
		p.Lead = false
		out = append(out, p)
	}
	return out
}

// removeParticipants drops every participant whose email is in emails.
func removeParticipants(cur []models.Participant, emails map[string]struct{}) []models.Participant {
	out := make([]models.Participant, 0, len(cur))
	for _, p := range cur {
		if _, drop := emails[emailKey(p.Email)]; drop {
			continue
		}
		out = append(out, p)
	}
	return out
}

func addMembers(cur, add []models.Member) []models.Member {
	seen := make(map[string]struct{}, len(cur)+len(add))
	out := make([]models.Member, 0, len(cur)+len(add))
	for _, m := range cur {
		seen[emailKey(m.Email)] = struct{}{}
		out = append(out, m)
	}
	for _, m := range add {
		k := emailKey(m.Email)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		m.Email = strings.TrimSpace(m.Email)
		m.Lead = false
		out = append(out, m)
	}
	return out
}

// removeMembers drops members by email. removedLead reports whether the lead was among them.
func removeMembers(cur []models.Member, emails map[string]struct{}) (out []models.Member, removedLead bool) {
	out = make([]models.Member, 0, len(cur))
	for _, m := range cur {
		if _, drop := emails[emailKey(m.Email)]; drop {
			removedLead = removedLead || m.Lead
			continue
		}
		out = append(out, m)
	}
	return out, removedLead
}

// emailSet collects normalized, non-empty addresses.
func emailSet(lists ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range lists {
		for _, e := range list {
			if k := emailKey(e); k != "" {
				set[k] = struct{}{}
			}
		}
	}
	return set
}
