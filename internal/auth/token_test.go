package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestParseRejectsBadTokens(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	other, err := NewTokenIssuer("other-secret", time.Hour).Issue("alice")
	require.NoError(t, err)
	_, err = issuer.Parse(other)
	assert.Error(t, err, "token signed with another secret")

	expired, err := NewTokenIssuer("test-secret", -time.Hour).Issue("alice")
	require.NoError(t, err)
	_, err = issuer.Parse(expired)
	assert.Error(t, err, "expired token")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "alice"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Parse(unsigned)
	assert.Error(t, err, "alg none")

	_, err = issuer.Parse("garbage")
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	tests := []struct {
		name     string
		prepare  func(r *http.Request)
		wantUser string
		wantOK   bool
	}{
		{
			name:    "no credentials",
			prepare: func(r *http.Request) {},
		},
		{
			name:     "session cookie",
			prepare:  func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token}) },
			wantUser: "alice",
			wantOK:   true,
		},
		{
			name:     "bearer header",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantUser: "alice",
			wantOK:   true,
		},
		{
			name:    "tampered cookie",
			prepare: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token + "x"}) },
		},
		{
			name:    "basic auth is ignored",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Basic YWxpY2U6cHc=") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/transaction", nil)
			tt.prepare(r)
			user, ok := issuer.Authenticate(r)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantUser, user)
		})
	}
}
