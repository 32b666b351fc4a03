package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestClient_CreateSignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/client/sign_ins" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", got)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["identifier"] != "0xabc" || body["strategy"] != "web3_metamask_signature" {
			t.Errorf("unexpected request body: %v", body)
		}

		json.NewEncoder(w).Encode(map[string]string{
			"id":      "sia_1",
			"status":  "needs_first_factor",
			"message": "Sign this message to prove ownership",
		})
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, APIKey: "test-key"})
	attempt, err := client.CreateSignIn(context.Background(), "0xabc", "web3_metamask_signature")
	if err != nil {
		t.Fatalf("create sign-in: %v", err)
	}
	if attempt.ID != "sia_1" {
		t.Errorf("id mismatch: %s", attempt.ID)
	}
	if attempt.Challenge != "Sign this message to prove ownership" {
		t.Errorf("challenge mismatch: %s", attempt.Challenge)
	}
}

func TestClient_AttemptVerificationAndActivate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/client/sign_ins/sia_1/attempt_verification":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["strategy"] != "ethereum" || body["signature"] != "0xsigned" {
				t.Errorf("unexpected verification body: %v", body)
			}
			json.NewEncoder(w).Encode(map[string]string{
				"status":             "complete",
				"created_session_id": "sess_1",
			})
		case "/v1/client/sessions/sess_1/activate":
			json.NewEncoder(w).Encode(map[string]string{"id": "sess_1", "token": "jwt-token"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL})
	ctx := context.Background()

	verdict, err := client.AttemptVerification(ctx, "sia_1", "ethereum", "0xsigned")
	if err != nil {
		t.Fatalf("attempt verification: %v", err)
	}
	if verdict.Status != StatusComplete || verdict.CreatedSessionID != "sess_1" {
		t.Errorf("unexpected verdict: %+v", verdict)
	}

	sess, err := client.ActivateSession(ctx, "sess_1")
	if err != nil {
		t.Fatalf("activate session: %v", err)
	}
	if sess.Token != "jwt-token" {
		t.Errorf("token mismatch: %s", sess.Token)
	}
}

func TestClient_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "signature mismatch"})
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL})
	_, err := client.AttemptVerification(context.Background(), "sia_1", "ethereum", "0xbad")
	if err == nil {
		t.Fatal("expected error for 422 response")
	}

	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected apiError, got %T", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity || apiErr.Message != "signature mismatch" {
		t.Errorf("unexpected error detail: %+v", apiErr)
	}
}

func TestClient_SessionClaims(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Address: "0xabc",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	client := New(Config{BaseURL: "http://localhost"})
	claims, err := client.SessionClaims(signed)
	if err != nil {
		t.Fatalf("parse claims: %v", err)
	}
	if claims.Address != "0xabc" || claims.Subject != "user-1" {
		t.Errorf("claims mismatch: %+v", claims)
	}
}

func TestClient_SessionClaimsRejectsGarbage(t *testing.T) {
	client := New(Config{BaseURL: "http://localhost"})
	if _, err := client.SessionClaims("not-a-jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
