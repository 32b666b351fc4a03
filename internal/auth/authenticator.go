// Package auth runs the complete wallet sign-in flow against the identity
// provider.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zybl-io/passport/internal/cache"
	"github.com/zybl-io/passport/internal/domain"
	"github.com/zybl-io/passport/internal/identity"
	"github.com/zybl-io/passport/internal/records"
	"github.com/zybl-io/passport/internal/wallet"
)

// Authenticator orchestrates wallet connection, the identity provider's
// challenge/signature exchange, and post-sign-in bookkeeping.
type Authenticator struct {
	connector *wallet.Connector
	identity  *identity.Client
	records   *records.Store
	cache     *cache.Cache
	logger    *slog.Logger
	chainID   int
}

// New wires an Authenticator. records and cache may be nil when only session
// establishment is wanted.
func New(connector *wallet.Connector, idc *identity.Client, store *records.Store, c *cache.Cache, chainID int, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		connector: connector,
		identity:  idc,
		records:   store,
		cache:     c,
		logger:    logger,
		chainID:   chainID,
	}
}

// Result is a completed authentication.
type Result struct {
	Address string
	UserID  string
	Session identity.Session
}

// Authenticate signs a user in with the given wallet. Wallet errors surface
// as the typed errors from the wallet package; identity provider failures
// surface unchanged — there is no retry, the human must try again.
func (a *Authenticator) Authenticate(ctx context.Context, t wallet.Type) (Result, error) {
	address, err := a.connector.Connect(ctx, t)
	if err != nil {
		return Result{}, err
	}

	strategy := fmt.Sprintf("web3_%s_signature", t)
	attempt, err := a.identity.CreateSignIn(ctx, address, strategy)
	if err != nil {
		return Result{}, err
	}

	signature, err := a.connector.Sign(ctx, attempt.Challenge, t)
	if err != nil {
		return Result{}, err
	}

	verdict, err := a.identity.AttemptVerification(ctx, attempt.ID, string(t.Family()), signature)
	if err != nil {
		return Result{}, err
	}
	if verdict.Status != identity.StatusComplete {
		return Result{}, fmt.Errorf("authentication incomplete: status %q", verdict.Status)
	}

	session, err := a.identity.ActivateSession(ctx, verdict.CreatedSessionID)
	if err != nil {
		return Result{}, err
	}

	result := Result{Address: address, Session: session}
	result.UserID = a.recordSignIn(ctx, address)
	return result, nil
}

// recordSignIn ensures the user record and journey signin step exist and
// persists the local snapshot. Store failures here do not fail the sign-in:
// the session is already established and the dashboard tolerates missing
// records.
func (a *Authenticator) recordSignIn(ctx context.Context, address string) string {
	snapshot := cache.Snapshot{
		Address:    address,
		ChainID:    a.chainID,
		LastSignIn: time.Now().UTC(),
	}

	if a.records != nil {
		user, err := a.records.EnsureUser(ctx, address, a.chainID)
		if err != nil {
			a.logger.Warn("sign-in bookkeeping: ensure user failed", "error", err)
		} else {
			snapshot.UserID = user.ID
			if err := a.records.CompleteJourneyStep(ctx, user.ID, domain.StepSignIn, map[string]any{
				"walletAddress": address,
			}); err != nil {
				a.logger.Warn("sign-in bookkeeping: journey update failed", "error", err)
			}
		}
	}

	if a.cache != nil {
		if err := a.cache.Write(snapshot); err != nil {
			a.logger.Warn("sign-in bookkeeping: cache write failed", "error", err)
		}
	}
	return snapshot.UserID
}
