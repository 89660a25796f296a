// Package auth checks credentials on protected routes and issues login tokens.
package auth

import (
	"context"
	"net/http"
	"strings"

	"usuarios-service/models"

	"github.com/umakantv/go-utils/httpserver"
)

const (
	TypeBasic  = "basic"
	TypeBearer = "bearer"
)

// CredentialVerifier returns the user owning email when password matches.
type CredentialVerifier interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// Checker authenticates requests for httpserver. It accepts
// "Authorization: Basic" with the user's email and password, or a
// "Authorization: Bearer" token returned by login.
type Checker struct {
	users  CredentialVerifier
	tokens *TokenIssuer
}

func NewChecker(users CredentialVerifier, tokens *TokenIssuer) *Checker {
	return &Checker{users: users, tokens: tokens}
}

// Check has the signature httpserver.New expects.
func (c *Checker) Check(r *http.Request) (bool, httpserver.RequestAuth) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return false, httpserver.RequestAuth{}
	}

	if email, password, ok := r.BasicAuth(); ok {
		user, err := c.users.Authenticate(r.Context(), email, password)
		if err != nil {
			return false, httpserver.RequestAuth{}
		}
		return true, httpserver.RequestAuth{
			Type:   TypeBasic,
			Client: user.Email,
			Claims: map[string]interface{}{"user_id": user.ID},
		}
	}

	scheme, token, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, "Bearer") && c.tokens != nil {
		claims, err := c.tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			return false, httpserver.RequestAuth{}
		}
		return true, httpserver.RequestAuth{
			Type:   TypeBearer,
			Client: claims.Subject,
			Claims: map[string]interface{}{"user_id": claims.UserID},
		}
	}

	return false, httpserver.RequestAuth{}
}
