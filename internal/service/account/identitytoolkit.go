package account

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultIdentityToolkitURL is the production Identity Toolkit v1 endpoint.
const DefaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// OOB request types.
const (
	oobEmailSignIn   = "EMAIL_SIGNIN"
	oobPasswordReset = "PASSWORD_RESET"
)

// IdentityToolkit calls the Identity Toolkit REST API for the operations the
// Admin SDK does not offer: password sign-in and sending email links.
type IdentityToolkit struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewIdentityToolkit creates a client. An empty baseURL selects production.
func NewIdentityToolkit(baseURL, apiKey string, client *http.Client) *IdentityToolkit {
	if baseURL == "" {
		baseURL = DefaultIdentityToolkitURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &IdentityToolkit{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client}
}

// APIError is an Identity Toolkit error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity toolkit: %d %s", e.Status, e.Message)
}

// Reason returns the error code without the optional " : detail" suffix.
func (e *APIError) Reason() string {
	reason, _, _ := strings.Cut(e.Message, " ")
	return reason
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
}

// SignInWithPassword exchanges credentials for tokens.
func (c *IdentityToolkit) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var resp signInResponse
	err := c.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	expires, _ := strconv.Atoi(resp.ExpiresIn)
	return &Session{
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    expires,
		User:         User{ID: resp.LocalID, Email: resp.Email},
	}, nil
}

// SendOobCode requests an email link of requestType for email.
func (c *IdentityToolkit) SendOobCode(ctx context.Context, requestType, email, continueURL string) error {
	body := map[string]any{
		"requestType": requestType,
		"email":       email,
	}
	if continueURL != "" {
		body["continueUrl"] = continueURL
	}
	return c.post(ctx, "accounts:sendOobCode", body, nil)
}

func (c *IdentityToolkit) post(ctx context.Context, method string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := c.baseURL + "/" + method + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity toolkit %s: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("identity toolkit %s: %w", method, err)
	}
	if resp.StatusCode >= 300 {
		var envelope struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(data, &envelope)
		return &APIError{Status: resp.StatusCode, Message: envelope.Error.Message}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("identity toolkit %s: decode: %w", method, err)
		}
	}
	return nil
}
