package records

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zybl-io/passport/internal/docstore"
	"github.com/zybl-io/passport/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_EnsureUserCreatesThenReuses(t *testing.T) {
	mem := docstore.NewMemoryClient()
	store := New(mem, testLogger())
	ctx := context.Background()

	const address = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"

	first, err := store.EnsureUser(ctx, address, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected a generated user ID")
	}
	if first.WalletAddress != address {
		t.Errorf("wallet address mismatch: got %s", first.WalletAddress)
	}

	second, err := store.EnsureUser(ctx, address, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("EnsureUser not idempotent: %s vs %s", first.ID, second.ID)
	}
	if !second.LastActive.After(first.CreatedAt) && !second.LastActive.Equal(first.CreatedAt) {
		t.Errorf("lastActive not refreshed: %v", second.LastActive)
	}
}

func TestStore_EnsureUserRequiresAddress(t *testing.T) {
	store := New(docstore.NewMemoryClient(), testLogger())
	if _, err := store.EnsureUser(context.Background(), "", 1); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestStore_CompleteJourneyStepIsMonotonic(t *testing.T) {
	mem := docstore.NewMemoryClient()
	store := New(mem, testLogger())
	ctx := context.Background()

	if err := store.CompleteJourneyStep(ctx, "user-1", domain.StepSignIn, map[string]any{"walletAddress": "0xabc"}); err != nil {
		t.Fatalf("signin step: %v", err)
	}
	if err := store.CompleteJourneyStep(ctx, "user-1", domain.StepVerification, map[string]any{"score": 92}); err != nil {
		t.Fatalf("verification step: %v", err)
	}

	journey, err := store.GetJourney(ctx, "user-1")
	if err != nil {
		t.Fatalf("get journey: %v", err)
	}
	if journey.JourneyStarted.IsZero() {
		t.Error("journeyStarted not set on first step")
	}
	if !journey.Step(domain.StepSignIn).Completed {
		t.Error("signin step lost after later step write")
	}
	if !journey.Step(domain.StepVerification).Completed {
		t.Error("verification step not recorded")
	}
	if journey.Step(domain.StepPayment).Completed {
		t.Error("payment step should not be completed")
	}
}

func TestStore_GetUserSettingsCreatesDefaults(t *testing.T) {
	mem := docstore.NewMemoryClient()
	store := New(mem, testLogger())
	ctx := context.Background()

	settings, err := store.GetUserSettings(ctx, "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !settings.Notifications.Email || !settings.Notifications.SecurityAlert {
		t.Error("default notifications should all be enabled")
	}
	if settings.WalletPreferences.PreferredChain != "ethereum" {
		t.Errorf("default chain: got %s", settings.WalletPreferences.PreferredChain)
	}
	if !settings.WalletPreferences.AutoConnect {
		t.Error("default auto-connect should be enabled")
	}

	// First access persists the defaults.
	calls := mem.SetCalls()
	if len(calls) != 1 || calls[0].Collection != "userSettings" {
		t.Fatalf("expected one settings write, got %+v", calls)
	}
}

func TestStore_GetPaymentsFallsBackToUnordered(t *testing.T) {
	mem := docstore.NewMemoryClient().
		Seed("payments", "pay-1", map[string]any{
			"userId":    "user-1",
			"amount":    "2.00",
			"currency":  "USDC",
			"status":    "completed",
			"timestamp": time.Now().UTC(),
		}).
		WithOrderedQueryError(docstore.ErrMissingIndex)
	store := New(mem, testLogger())

	payments, err := store.GetPayments(context.Background(), "user-1", 5)
	if err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}
	if !payments[0].Amount.Equal(decimal.RequireFromString("2.00")) {
		t.Errorf("amount mismatch: got %s", payments[0].Amount)
	}
}

func TestStore_GetDIDDocumentControllerFallback(t *testing.T) {
	mem := docstore.NewMemoryClient().
		Seed("didDocuments", "other-key", map[string]any{
			"userId":     "user-1",
			"controller": "0xabc",
			"document":   map[string]any{"id": "did:zybl:user-1"},
		})
	store := New(mem, testLogger())
	ctx := context.Background()

	// Direct key misses; controller query finds it.
	doc, err := store.GetDIDDocument(ctx, "user-1", "0xabc")
	if err != nil {
		t.Fatalf("expected controller fallback to succeed, got %v", err)
	}
	if doc.Controller != "0xabc" {
		t.Errorf("controller mismatch: got %s", doc.Controller)
	}

	if _, err := store.GetDIDDocument(ctx, "user-2", ""); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without controller, got %v", err)
	}
}
