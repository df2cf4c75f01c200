// Package auth signs administrators in against the identity provider's
// email/password REST endpoint.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrInvalidCredentials is returned when the provider rejects the email or
// password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Identity is a signed-in user.
type Identity struct {
	UID     string
	Email   string
	IDToken string
}

type Client struct {
	client   *resty.Client
	apiKey   string
	endpoint string
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type errorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Provider messages that mean the credentials were wrong rather than the
// call failing.
var credentialErrors = []string{
	"EMAIL_NOT_FOUND",
	"INVALID_PASSWORD",
	"INVALID_LOGIN_CREDENTIALS",
	"INVALID_EMAIL",
	"USER_DISABLED",
	"MISSING_PASSWORD",
}

func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		client:   resty.New().SetTimeout(timeout),
		apiKey:   apiKey,
		endpoint: strings.TrimRight(endpoint, "/"),
	}
}

// SignIn exchanges email and password for an Identity.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	url := fmt.Sprintf("%s/accounts:signInWithPassword", c.endpoint)

	var (
		result  signInResponse
		failure errorResponse
	)
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", c.apiKey).
		SetBody(signInRequest{Email: email, Password: password, ReturnSecureToken: true}).
		SetResult(&result).
		SetError(&failure).
		Post(url)

	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}

	if resp.IsError() {
		msg := resp.Status()
		if failure.Error != nil {
			msg = failure.Error.Message
		}
		for _, code := range credentialErrors {
			// Messages may carry a suffix such as "INVALID_PASSWORD : detail".
			if strings.HasPrefix(msg, code) {
				return nil, ErrInvalidCredentials
			}
		}
		return nil, fmt.Errorf("identity provider error: %s", msg)
	}

	if result.LocalID == "" {
		return nil, fmt.Errorf("identity provider returned no user id")
	}

	return &Identity{
		UID:     result.LocalID,
		Email:   result.Email,
		IDToken: result.IDToken,
	}, nil
}
