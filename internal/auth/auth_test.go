package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/regionedit/internal/bridge"
)

func TestValidateToken(t *testing.T) {
	v := NewVerifier("s3cret")

	token, err := bridge.IssueToken([]byte("s3cret"), "42", time.Minute)
	require.NoError(t, err)
	sub, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", sub)

	wrong, err := bridge.IssueToken([]byte("other"), "42", time.Minute)
	require.NoError(t, err)
	_, err = v.ValidateToken(wrong)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := bridge.IssueToken([]byte("s3cret"), "42", -time.Minute)
	require.NoError(t, err)
	_, err = v.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "42"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = v.ValidateToken(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	token, err := bridge.IssueToken([]byte("s3cret"), "7", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		header string
		status int
		sub    string
	}{
		{"disabled", "", "", http.StatusNoContent, ""},
		{"missing header", "s3cret", "", http.StatusUnauthorized, ""},
		{"bad scheme", "s3cret", "Basic abc", http.StatusUnauthorized, ""},
		{"bad token", "s3cret", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid", "s3cret", "Bearer " + token, http.StatusNoContent, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodPost, "/multi_area_conditioning/save_config", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			NewVerifier(tt.secret).Middleware(next).ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.sub, seen)
		})
	}
}
