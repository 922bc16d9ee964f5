package api

import (
	"context"
	"net/http"
)

// Credentials are the login form fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration are the sign-up form fields.
type Registration struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Login exchanges credentials for an access token. The token is not stored.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var out struct {
		Authorization struct {
			AccessToken string `json:"access_token"`
		} `json:"authorization"`
	}
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: creds, anonymous: true}, &out)
	if err != nil {
		return "", err
	}
	return out.Authorization.AccessToken, nil
}

// Register creates an account. The backend may answer with a token when the
// account is usable right away.
func (c *Client) Register(ctx context.Context, reg Registration) (string, error) {
	var out struct {
		Message       string `json:"message"`
		Token         string `json:"token"`
		Authorization struct {
			AccessToken string `json:"access_token"`
		} `json:"authorization"`
	}
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/register", body: reg, anonymous: true}, &out)
	if err != nil {
		return "", err
	}
	if out.Authorization.AccessToken != "" {
		return out.Authorization.AccessToken, nil
	}
	return out.Token, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/logout"}, nil)
}

// Me returns the user the stored token belongs to.
func (c *Client) Me(ctx context.Context) (*User, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	var out envelope[User]
	if err := c.do(ctx, request{method: http.MethodGet, path: "/me"}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ResendVerification asks the backend to send the e-mail verification link again.
func (c *Client) ResendVerification(ctx context.Context) (string, error) {
	var out MessageResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: "/email/verification-notification"}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
