package query

import (
	"errors"
	"testing"

	"github.com/eaglebank/ledger-service/internal/cqrs"
	"github.com/eaglebank/ledger-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIssuer struct {
	issued []string
	err    error
}

func (s *stubIssuer) Issue(username string) (string, error) {
	s.issued = append(s.issued, username)
	return "token-for-" + username, s.err
}

func TestLogin(t *testing.T) {
	hash, err := utils.HashPassword("hunter22")
	require.NoError(t, err)

	tests := []struct {
		name      string
		cmd       cqrs.LoginCommand
		wantToken string
		wantErr   bool
	}{
		{name: "valid credentials", cmd: cqrs.LoginCommand{Username: "admin", Password: "hunter22"}, wantToken: "token-for-admin"},
		{name: "wrong password", cmd: cqrs.LoginCommand{Username: "admin", Password: "hunter2"}, wantErr: true},
		{name: "wrong username", cmd: cqrs.LoginCommand{Username: "root", Password: "hunter22"}, wantErr: true},
		{name: "empty", cmd: cqrs.LoginCommand{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := &stubIssuer{}
			svc := NewAuthQueryService("admin", hash, issuer)

			token, err := svc.Login(tt.cmd)
			if tt.wantErr {
				assert.EqualError(t, err, "invalid credentials")
				assert.Empty(t, issuer.issued)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestLogin_IssuerError(t *testing.T) {
	hash, err := utils.HashPassword("hunter22")
	require.NoError(t, err)
	svc := NewAuthQueryService("admin", hash, &stubIssuer{err: errors.New("signing failed")})

	_, err = svc.Login(cqrs.LoginCommand{Username: "admin", Password: "hunter22"})
	assert.EqualError(t, err, "signing failed")
}
