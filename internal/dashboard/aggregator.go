// Package dashboard aggregates the six record reads backing the dashboard
// view. The aggregator never fails outward: every field has a documented
// default or cache-sourced fallback, so callers always receive a complete
// DashboardData.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zybl-io/passport/internal/cache"
	"github.com/zybl-io/passport/internal/domain"
	"github.com/zybl-io/passport/internal/records"
)

// paymentHistoryLimit bounds the payment list shown on the dashboard.
const paymentHistoryLimit = 5

// Aggregator fans reads out to the record store with the local cache as the
// last-resort source.
type Aggregator struct {
	records *records.Store
	cache   *cache.Cache
	logger  *slog.Logger
}

// New wires an Aggregator.
func New(store *records.Store, c *cache.Cache, logger *slog.Logger) *Aggregator {
	return &Aggregator{records: store, cache: c, logger: logger}
}

// Load issues the six reads concurrently and joins once all have settled; a
// failed read never aborts the others and no timeout is imposed beyond the
// underlying transport's own. The returned DashboardData is always fully
// populated.
func (a *Aggregator) Load(ctx context.Context, userID string) domain.DashboardData {
	snapshot, hasSnapshot := a.readCache()

	// Controller fallback for the DID lookup comes from the cached address
	// when available.
	controller := ""
	if hasSnapshot {
		controller = snapshot.Address
	}

	var (
		user        domain.UserRecord
		userErr     error
		journey     domain.JourneyRecord
		journeyErr  error
		status      domain.VerificationStatus
		statusOK    bool
		statusErr   error
		did         domain.DIDDocument
		didErr      error
		payments    []domain.PaymentRecord
		paymentsErr error
		settings    domain.UserSettings
		settingsErr error
	)

	var wg sync.WaitGroup
	wg.Add(6)
	go func() {
		defer wg.Done()
		user, userErr = a.records.GetUser(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		journey, journeyErr = a.records.GetJourney(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		status, statusOK, statusErr = a.records.ResolveVerification(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		did, didErr = a.records.GetDIDDocument(ctx, userID, controller)
	}()
	go func() {
		defer wg.Done()
		payments, paymentsErr = a.records.GetPayments(ctx, userID, paymentHistoryLimit)
	}()
	go func() {
		defer wg.Done()
		settings, settingsErr = a.records.GetUserSettings(ctx, userID)
	}()
	wg.Wait()

	data := domain.DashboardData{}

	if userErr != nil {
		a.logger.Warn("dashboard: user read failed", "user_id", userID, "error", userErr)
		if hasSnapshot {
			data.UserData = a.userFromSnapshot(userID, snapshot)
		}
	} else {
		data.UserData = &user
	}

	if journeyErr != nil {
		a.logger.Debug("dashboard: journey read failed", "user_id", userID, "error", journeyErr)
	} else {
		data.JourneyData = &journey
	}

	// Verification never falls back to the cache: absent any resolver
	// answer the user is simply unverified.
	switch {
	case statusErr != nil:
		a.logger.Warn("dashboard: verification read failed", "user_id", userID, "error", statusErr)
		data.VerificationStatus = domain.DefaultVerificationStatus()
	case statusOK:
		data.VerificationStatus = status
	default:
		data.VerificationStatus = domain.DefaultVerificationStatus()
	}

	data.DIDDocument = a.resolveDID(userID, did, didErr, snapshot, hasSnapshot)

	if paymentsErr != nil {
		a.logger.Warn("dashboard: payments read failed", "user_id", userID, "error", paymentsErr)
	}
	data.Payments = payments
	if data.Payments == nil {
		data.Payments = []domain.PaymentRecord{}
	}

	if settingsErr != nil {
		a.logger.Warn("dashboard: settings read failed", "user_id", userID, "error", settingsErr)
		data.UserSettings = domain.DefaultUserSettings(userID)
	} else {
		data.UserSettings = settings
	}

	return data
}

func (a *Aggregator) readCache() (cache.Snapshot, bool) {
	if a.cache == nil {
		return cache.Snapshot{}, false
	}
	snapshot, ok, err := a.cache.Read()
	if err != nil {
		a.logger.Warn("dashboard: cache read failed", "error", err)
		return cache.Snapshot{}, false
	}
	return snapshot, ok
}

// userFromSnapshot reconstructs a minimal user record from the local cache.
func (a *Aggregator) userFromSnapshot(userID string, snapshot cache.Snapshot) *domain.UserRecord {
	chainID := snapshot.ChainID
	if chainID == 0 {
		chainID = 1
	}
	return &domain.UserRecord{
		ID:            userID,
		WalletAddress: snapshot.Address,
		ChainID:       chainID,
		LastActive:    time.Now().UTC(),
	}
}

// resolveDID applies the cache fallback for the DID document. When the remote
// store missed but the cache holds a document, that document is returned and
// written back to the store in a detached best-effort task whose failure is
// logged and discarded.
func (a *Aggregator) resolveDID(userID string, did domain.DIDDocument, didErr error, snapshot cache.Snapshot, hasSnapshot bool) *domain.DIDDocument {
	if didErr == nil {
		return &did
	}
	a.logger.Debug("dashboard: did read failed", "user_id", userID, "error", didErr)

	if !hasSnapshot || snapshot.DIDDocument == nil {
		return nil
	}

	cached := *snapshot.DIDDocument
	if cached.UserID == "" {
		cached.UserID = userID
	}

	go func(doc domain.DIDDocument) {
		if err := a.records.SaveDIDDocument(context.Background(), doc); err != nil {
			a.logger.Warn("dashboard: did write-back failed", "user_id", doc.UserID, "error", err)
		}
	}(cached)

	return &cached
}
