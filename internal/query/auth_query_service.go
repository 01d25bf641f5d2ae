package query

import (
	"crypto/subtle"
	"fmt"

	"github.com/eaglebank/ledger-service/internal/cqrs"
	"github.com/eaglebank/ledger-service/internal/utils"
)

// TokenIssuer signs session tokens for a username.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// AuthQueryService checks the single configured login and issues a session
// token. Nothing is written, so there is no command side.
type AuthQueryService struct {
	username     string
	passwordHash string
	tokens       TokenIssuer
}

func NewAuthQueryService(username, passwordHash string, tokens TokenIssuer) *AuthQueryService {
	return &AuthQueryService{username: username, passwordHash: passwordHash, tokens: tokens}
}

func (s *AuthQueryService) Login(cmd cqrs.LoginCommand) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(cmd.Username), []byte(s.username)) == 1
	// bcrypt runs even when the username is wrong.
	passOK := utils.CheckPassword(cmd.Password, s.passwordHash)
	if !userOK || !passOK {
		return "", fmt.Errorf("invalid credentials")
	}
	return s.tokens.Issue(cmd.Username)
}
