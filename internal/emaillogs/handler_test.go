package emaillogs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosc-devhost/backend/internal/models"
)

type fakeLister struct {
	logs map[uuid.UUID][]*models.EmailLog
	err  error
}

func (f *fakeLister) ListByRegistration(_ context.Context, id uuid.UUID) ([]*models.EmailLog, error) {
	if f.err != nil {
		return nil, f.err
	}
	if l, ok := f.logs[id]; ok {
		return l, nil
	}
	return []*models.EmailLog{}, nil
}

func TestListByRegistration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	regID := uuid.New()
	lister := &fakeLister{logs: map[uuid.UUID][]*models.EmailLog{
		regID: {{ID: uuid.New(), RegistrationID: regID, RecipientEmail: "lead@x.com", Status: models.EmailLogStatusSent}},
	}}

	tests := []struct {
		name       string
		lister     *fakeLister
		path       string
		wantStatus int
		wantCount  int
	}{
		{"existing record", lister, "/app/emails/" + regID.String(), http.StatusOK, 1},
		{"no mails yet", lister, "/app/emails/" + uuid.NewString(), http.StatusOK, 0},
		{"invalid id", lister, "/app/emails/abc", http.StatusBadRequest, 0},
		{"store error", &fakeLister{err: errors.New("boom")}, "/app/emails/" + regID.String(), http.StatusInternalServerError, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/app/emails/:id", NewHandler(tt.lister, nil).ListByRegistration)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.wantStatus, w.Code)
			var body struct {
				Success bool               `json:"success"`
				Result  []*models.EmailLog `json:"result"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus == http.StatusOK, body.Success)
			assert.Len(t, body.Result, tt.wantCount)
		})
	}
}
