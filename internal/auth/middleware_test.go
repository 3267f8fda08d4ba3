package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kurtgav/wizardmatch-sub001/internal/common/utils"
)

type adminList []string

func (a adminList) IsAdmin(email string) bool {
	for _, e := range a {
		if e == email {
			return true
		}
	}
	return false
}

func signed(t *testing.T, userID uuid.UUID, email string) string {
	t.Helper()
	token, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    userID,
		Email:     email,
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, "secret")
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	m := NewMiddleware("secret", adminList{})
	userID := uuid.New()

	var gotID uuid.UUID
	var gotEmail string
	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserIDFromContext(r.Context())
		gotEmail, _ = EmailFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, userID, "Ana@School.edu"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, userID, gotID)
	require.Equal(t, "ana@school.edu", gotEmail)
}

func TestAuthenticateRejects(t *testing.T) {
	m := NewMiddleware("secret", adminList{})
	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestRequireAdmin(t *testing.T) {
	m := NewMiddleware("secret", adminList{"admin@school.edu"})
	h := m.Authenticate(m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	tests := []struct {
		email string
		want  int
	}{
		{"admin@school.edu", http.StatusOK},
		{"student@school.edu", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signed(t, uuid.New(), tt.email))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, tt.want, rec.Code, tt.email)
	}
}
