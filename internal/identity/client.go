// Package identity drives the third-party identity provider's wallet sign-in
// flow: create a sign-in attempt, obtain the challenge message, submit the
// wallet signature, and activate the resulting session. Signature checking is
// the provider's job; this client only transports it.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StatusComplete is the attempt status indicating authentication succeeded.
const StatusComplete = "complete"

// Config locates the identity provider.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is an HTTP client for the identity provider.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New builds a Client from config.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// SignInAttempt is a created sign-in with the challenge to be signed.
type SignInAttempt struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Challenge string `json:"message"`
}

// VerificationResult is the provider's verdict on a submitted signature.
type VerificationResult struct {
	Status           string `json:"status"`
	CreatedSessionID string `json:"created_session_id"`
}

// Session is an activated provider session.
type Session struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// SessionClaims are the claims carried in a session token.
type SessionClaims struct {
	Address string `json:"addr"`
	jwt.RegisteredClaims
}

// CreateSignIn starts a sign-in attempt using the wallet address as the
// identifier and the wallet-specific signature strategy.
func (c *Client) CreateSignIn(ctx context.Context, identifier, strategy string) (SignInAttempt, error) {
	var attempt SignInAttempt
	err := c.post(ctx, "/v1/client/sign_ins", map[string]any{
		"identifier": identifier,
		"strategy":   strategy,
	}, &attempt)
	if err != nil {
		return SignInAttempt{}, fmt.Errorf("create sign-in: %w", err)
	}
	return attempt, nil
}

// AttemptVerification submits the wallet signature for a sign-in attempt. The
// strategy here is the chain-family tag (ethereum, solana or cosmos).
func (c *Client) AttemptVerification(ctx context.Context, attemptID, strategy, signature string) (VerificationResult, error) {
	var result VerificationResult
	path := fmt.Sprintf("/v1/client/sign_ins/%s/attempt_verification", attemptID)
	err := c.post(ctx, path, map[string]any{
		"strategy":  strategy,
		"signature": signature,
	}, &result)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("attempt verification: %w", err)
	}
	return result, nil
}

// ActivateSession marks the created session active and returns its token.
func (c *Client) ActivateSession(ctx context.Context, sessionID string) (Session, error) {
	var sess Session
	path := fmt.Sprintf("/v1/client/sessions/%s/activate", sessionID)
	if err := c.post(ctx, path, nil, &sess); err != nil {
		return Session{}, fmt.Errorf("activate session: %w", err)
	}
	return sess, nil
}

// SessionClaims extracts the claims from a session token without verifying
// its signature; token validity is the provider's concern.
func (c *Client) SessionClaims(token string) (SessionClaims, error) {
	var claims SessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return SessionClaims{}, fmt.Errorf("parse session token: %w", err)
	}
	return claims, nil
}

type apiError struct {
	Status  int
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("identity provider: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("identity provider: status %d", e.Status)
}

func (c *Client) post(ctx context.Context, path string, body map[string]any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
