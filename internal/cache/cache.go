// Package cache implements the local snapshot slot used as a last-resort data
// source when the remote record store is unreachable. It is advisory only; the
// remote store is authoritative whenever it can be reached.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zybl-io/passport/internal/domain"
)

// slotName is the single persisted slot. It matches the storage key the web
// client writes so both clients read the same snapshot shape.
const slotName = "zybl_user_data"

// Snapshot is the denormalized blob persisted after sign-in.
type Snapshot struct {
	Address            string                     `json:"address"`
	ChainID            int                        `json:"chainId"`
	LastSignIn         time.Time                  `json:"lastSignIn"`
	UserID             string                     `json:"userID,omitempty"`
	DIDDocument        *domain.DIDDocument        `json:"didDocument,omitempty"`
	VerificationStatus *domain.VerificationStatus `json:"verificationStatus,omitempty"`
}

// Cache is a single-slot JSON file store. Access is synchronized within the
// process only; concurrent processes can race to write divergent snapshots
// (last writer wins).
type Cache struct {
	mu   sync.Mutex
	path string
}

// New prepares a cache rooted at dir, creating the directory if needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Cache{path: filepath.Join(dir, slotName+".json")}, nil
}

// Read returns the stored snapshot. The second return is false when the slot
// is empty. A corrupt slot is treated as absent and deleted, never surfaced as
// an error.
func (c *Cache) Read() (Snapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("read cache slot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// Corrupt cache heals by deletion, not repair.
		_ = os.Remove(c.path)
		return Snapshot{}, false, nil
	}
	return snap, true, nil
}

// Write persists the snapshot atomically via a temp file and rename.
func (c *Cache) Write(snap Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache slot: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write cache slot: %w", err)
	}
	return os.Rename(tmp, c.path)
}

// Clear removes the slot. Clearing an empty slot is not an error.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear cache slot: %w", err)
	}
	return nil
}
