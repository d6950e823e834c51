package postgrest

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// ErrInvalidCredentials is returned when the auth API rejects the password.
var ErrInvalidCredentials = errors.New("invalid login credentials")

// Session is a signed-in hosted-store user.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
	Email        string
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SignIn exchanges an email and password for an access token.
// PRE: email and password are non-empty
// POST: Returns a Session, ErrInvalidCredentials, or a DataUnavailable error
func (c *Client) SignIn(ctx context.Context, email, password string) (Session, error) {
	var tr tokenResponse
	q := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/auth/v1/token", q, body, &tr, nil)
	var rerr *responseError
	if errors.As(err, &rerr) && (rerr.Status == http.StatusBadRequest || rerr.Status == http.StatusUnauthorized) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, unavailable("sign in", err)
	}
	if tr.AccessToken == "" {
		return Session{}, ErrInvalidCredentials
	}

	s := Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		UserID:       tr.User.ID,
		Email:        tr.User.Email,
	}
	switch {
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		s.ExpiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	if s.Email == "" {
		s.Email = email
	}
	return s, nil
}

// SignOut revokes the access token. Failures are returned but callers
// usually only log them.
func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.do(WithAccessToken(ctx, token), http.MethodPost, "/auth/v1/logout", nil, nil, nil, nil)
}
