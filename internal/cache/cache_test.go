package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zybl-io/passport/internal/domain"
)

func TestCache_RoundTrip(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	if _, ok, err := c.Read(); err != nil || ok {
		t.Fatalf("fresh cache should be empty, got ok=%v err=%v", ok, err)
	}

	lastVerified := time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)
	want := Snapshot{
		Address:    "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		ChainID:    1,
		LastSignIn: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
		UserID:     "user-1",
		VerificationStatus: &domain.VerificationStatus{
			Status:       domain.StatusVerified,
			Score:        92,
			LastVerified: &lastVerified,
			Source:       domain.SourceJourney,
		},
	}
	if err := c.Write(want); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, ok, err := c.Read()
	if err != nil || !ok {
		t.Fatalf("read after write: ok=%v err=%v", ok, err)
	}
	if got.Address != want.Address || got.ChainID != want.ChainID || got.UserID != want.UserID {
		t.Errorf("snapshot mismatch: %+v", got)
	}
	if got.VerificationStatus == nil || got.VerificationStatus.Score != 92 {
		t.Errorf("verification status not round-tripped: %+v", got.VerificationStatus)
	}
	if !got.LastSignIn.Equal(want.LastSignIn) {
		t.Errorf("lastSignIn mismatch: %v", got.LastSignIn)
	}
}

func TestCache_CorruptSlotHealsByDeletion(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	path := filepath.Join(dir, "zybl_user_data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed corrupt slot: %v", err)
	}

	if _, ok, err := c.Read(); err != nil || ok {
		t.Fatalf("corrupt slot must read as absent, got ok=%v err=%v", ok, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt slot file should have been removed")
	}
}

func TestCache_ClearIsIdempotent(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("clearing an empty slot: %v", err)
	}

	if err := c.Write(Snapshot{Address: "0xabc", ChainID: 1, LastSignIn: time.Now().UTC()}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, err := c.Read(); err != nil || ok {
		t.Fatalf("cleared slot should be empty, got ok=%v err=%v", ok, err)
	}
}

func TestCache_WriteOverwritesSlot(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	if err := c.Write(Snapshot{Address: "0xaaa", ChainID: 1, LastSignIn: time.Now().UTC()}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := c.Write(Snapshot{Address: "0xbbb", ChainID: 137, LastSignIn: time.Now().UTC()}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, ok, err := c.Read()
	if err != nil || !ok {
		t.Fatalf("read: ok=%v err=%v", ok, err)
	}
	if got.Address != "0xbbb" || got.ChainID != 137 {
		t.Errorf("single-slot semantics violated: %+v", got)
	}
}
