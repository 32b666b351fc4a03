// Package records implements the client-side operations against the hosted
// document store: user profiles, onboarding journeys, verification status,
// DID documents, payment history and user settings.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zybl-io/passport/internal/docstore"
	"github.com/zybl-io/passport/internal/domain"
)

// Logical collection names in the hosted store.
const (
	collUsers         = "users"
	collJourneys      = "userJourneys"
	collPayments      = "payments"
	collDIDDocuments  = "didDocuments"
	collVerifications = "verifications"
	collUserSettings  = "userSettings"
)

// Store encapsulates record persistence operations.
type Store struct {
	client docstore.Client
	logger *slog.Logger
	now    func() time.Time

	indexMu sync.Mutex
	noIndex map[string]bool // collections known to lack the timestamp index
}

// New instantiates a Store backed by the supplied document store client.
func New(client docstore.Client, logger *slog.Logger) *Store {
	return &Store{
		client:  client,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		noIndex: make(map[string]bool),
	}
}

// queryNewest reads the most recent matches of a timestamp-ordered query.
// When the store cannot serve the ordered form (no composite index) the same
// filter is retried unordered, trading recency for availability; degraded
// reports when that happened. The missing index is remembered per collection
// so later calls skip the doomed ordered attempt.
func (s *Store) queryNewest(ctx context.Context, collection string, filters []docstore.Filter, limit int) (docs []docstore.Document, degraded bool, err error) {
	s.indexMu.Lock()
	degraded = s.noIndex[collection]
	s.indexMu.Unlock()

	if !degraded {
		docs, err = s.client.Query(ctx, collection, docstore.Query{
			Filters:    filters,
			OrderBy:    "timestamp",
			Descending: true,
			Limit:      limit,
		})
		if err == nil {
			return docs, false, nil
		}
		if !errors.Is(err, docstore.ErrMissingIndex) {
			return nil, false, err
		}
		s.logger.Debug("ordered query unsupported, degrading to unordered",
			"collection", collection, "error", err)
		s.indexMu.Lock()
		s.noIndex[collection] = true
		s.indexMu.Unlock()
	}

	docs, err = s.client.Query(ctx, collection, docstore.Query{Filters: filters, Limit: limit})
	return docs, true, err
}

// EnsureUser returns the user record for the given wallet address, creating
// it on first sign-in. Existing users get their lastActive bumped.
func (s *Store) EnsureUser(ctx context.Context, address string, chainID int) (domain.UserRecord, error) {
	if address == "" {
		return domain.UserRecord{}, errors.New("wallet address is required")
	}

	existing, err := s.GetUserByAddress(ctx, address)
	if err == nil {
		existing.LastActive = s.now()
		if err := s.client.Set(ctx, collUsers, existing.ID, map[string]any{
			"lastActive": existing.LastActive,
		}); err != nil {
			return domain.UserRecord{}, fmt.Errorf("touch user %s: %w", existing.ID, err)
		}
		return existing, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return domain.UserRecord{}, err
	}

	user := domain.UserRecord{
		ID:            uuid.NewString(),
		WalletAddress: address,
		ChainID:       chainID,
		CreatedAt:     s.now(),
		LastActive:    s.now(),
	}
	if err := s.client.Set(ctx, collUsers, user.ID, userParams(user)); err != nil {
		return domain.UserRecord{}, fmt.Errorf("create user for %s: %w", address, err)
	}
	return user, nil
}

// GetUser fetches a user record by ID.
func (s *Store) GetUser(ctx context.Context, userID string) (domain.UserRecord, error) {
	doc, err := s.client.Get(ctx, collUsers, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return domain.UserRecord{}, err
		}
		return domain.UserRecord{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return decodeUser(doc), nil
}

// GetUserByAddress looks a user up by wallet address.
func (s *Store) GetUserByAddress(ctx context.Context, address string) (domain.UserRecord, error) {
	docs, err := s.client.Query(ctx, collUsers, docstore.Query{
		Filters: []docstore.Filter{{Field: "walletAddress", Op: "==", Value: address}},
		Limit:   1,
	})
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("query user by address: %w", err)
	}
	if len(docs) == 0 {
		return domain.UserRecord{}, docstore.ErrNotFound
	}
	return decodeUser(docs[0]), nil
}

// GetJourney fetches a user's onboarding journey record.
func (s *Store) GetJourney(ctx context.Context, userID string) (domain.JourneyRecord, error) {
	doc, err := s.client.Get(ctx, collJourneys, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return domain.JourneyRecord{}, err
		}
		return domain.JourneyRecord{}, fmt.Errorf("get journey %s: %w", userID, err)
	}
	return decodeJourney(userID, doc.Data), nil
}

// CompleteJourneyStep marks a journey step done. Steps are monotonic: the
// merge write only ever adds or refreshes fields, never clears earlier steps.
func (s *Store) CompleteJourneyStep(ctx context.Context, userID string, step domain.JourneyStep, data map[string]any) error {
	if userID == "" {
		return errors.New("user id is required")
	}

	params := map[string]any{
		"userId":                     userID,
		string(step) + "Completed":   true,
		string(step) + "CompletedAt": s.now(),
	}
	if len(data) > 0 {
		params[string(step)+"Data"] = data
	}

	if _, err := s.GetJourney(ctx, userID); errors.Is(err, docstore.ErrNotFound) {
		params["journeyStarted"] = s.now()
	}

	if err := s.client.Set(ctx, collJourneys, userID, params); err != nil {
		return fmt.Errorf("complete journey step %s/%s: %w", userID, step, err)
	}
	return nil
}

// SaveVerification appends a verification record for the user.
func (s *Store) SaveVerification(ctx context.Context, rec domain.VerificationRecord) error {
	if rec.UserID == "" {
		return errors.New("user id is required")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}
	id := uuid.NewString()
	if err := s.client.Set(ctx, collVerifications, id, map[string]any{
		"userId":    rec.UserID,
		"status":    rec.Status,
		"score":     rec.Score,
		"timestamp": rec.Timestamp,
		"source":    rec.Source,
	}); err != nil {
		return fmt.Errorf("save verification for %s: %w", rec.UserID, err)
	}
	return nil
}

// GetDIDDocument fetches the user's DID document, keyed by userID. When that
// lookup misses and a controller address is known, it falls back to a query on
// the controller field.
func (s *Store) GetDIDDocument(ctx context.Context, userID, controller string) (domain.DIDDocument, error) {
	doc, err := s.client.Get(ctx, collDIDDocuments, userID)
	if err == nil {
		return decodeDIDDocument(userID, doc.Data), nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return domain.DIDDocument{}, fmt.Errorf("get did document %s: %w", userID, err)
	}
	if controller == "" {
		return domain.DIDDocument{}, docstore.ErrNotFound
	}

	docs, err := s.client.Query(ctx, collDIDDocuments, docstore.Query{
		Filters: []docstore.Filter{{Field: "controller", Op: "==", Value: controller}},
		Limit:   1,
	})
	if err != nil {
		return domain.DIDDocument{}, fmt.Errorf("query did document by controller: %w", err)
	}
	if len(docs) == 0 {
		return domain.DIDDocument{}, docstore.ErrNotFound
	}
	return decodeDIDDocument(docs[0].ID, docs[0].Data), nil
}

// SaveDIDDocument writes the DID document keyed by its userID.
func (s *Store) SaveDIDDocument(ctx context.Context, doc domain.DIDDocument) error {
	if doc.UserID == "" {
		return errors.New("user id is required")
	}
	if doc.Created.IsZero() {
		doc.Created = s.now()
	}
	doc.Updated = s.now()
	if err := s.client.Set(ctx, collDIDDocuments, doc.UserID, map[string]any{
		"userId":     doc.UserID,
		"controller": doc.Controller,
		"created":    doc.Created,
		"updated":    doc.Updated,
		"document":   doc.Document,
	}); err != nil {
		return fmt.Errorf("save did document %s: %w", doc.UserID, err)
	}
	return nil
}

// GetPayments returns the user's most recent payments, newest first, falling
// back to an unordered read when the store lacks the timestamp index.
func (s *Store) GetPayments(ctx context.Context, userID string, limit int) ([]domain.PaymentRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	filters := []docstore.Filter{{Field: "userId", Op: "==", Value: userID}}

	docs, _, err := s.queryNewest(ctx, collPayments, filters, limit)
	if err != nil {
		return nil, fmt.Errorf("query payments for %s: %w", userID, err)
	}

	payments := make([]domain.PaymentRecord, 0, len(docs))
	for _, d := range docs {
		payments = append(payments, decodePayment(d))
	}
	return payments, nil
}

// RecordPayment appends a payment to the user's history.
func (s *Store) RecordPayment(ctx context.Context, rec domain.PaymentRecord) error {
	if rec.UserID == "" {
		return errors.New("user id is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}
	if err := s.client.Set(ctx, collPayments, rec.ID, map[string]any{
		"userId":        rec.UserID,
		"amount":        rec.Amount.String(),
		"currency":      rec.Currency,
		"status":        rec.Status,
		"transactionId": rec.TransactionID,
		"network":       rec.Network,
		"timestamp":     rec.Timestamp,
	}); err != nil {
		return fmt.Errorf("record payment %s: %w", rec.ID, err)
	}
	return nil
}

// GetUserSettings returns the user's settings, creating the defaults on first
// access.
func (s *Store) GetUserSettings(ctx context.Context, userID string) (domain.UserSettings, error) {
	doc, err := s.client.Get(ctx, collUserSettings, userID)
	if err == nil {
		return decodeSettings(userID, doc.Data), nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return domain.UserSettings{}, fmt.Errorf("get settings %s: %w", userID, err)
	}

	settings := domain.DefaultUserSettings(userID)
	settings.CreatedAt = s.now()
	settings.LastUpdated = settings.CreatedAt
	if err := s.UpdateUserSettings(ctx, settings); err != nil {
		return domain.UserSettings{}, err
	}
	return settings, nil
}

// UpdateUserSettings persists the given settings.
func (s *Store) UpdateUserSettings(ctx context.Context, settings domain.UserSettings) error {
	if settings.UserID == "" {
		return errors.New("user id is required")
	}
	settings.LastUpdated = s.now()
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = settings.LastUpdated
	}
	if err := s.client.Set(ctx, collUserSettings, settings.UserID, map[string]any{
		"userId":      settings.UserID,
		"createdAt":   settings.CreatedAt,
		"lastUpdated": settings.LastUpdated,
		"notifications": map[string]any{
			"email":         settings.Notifications.Email,
			"verification":  settings.Notifications.Verification,
			"payments":      settings.Notifications.Payments,
			"securityAlert": settings.Notifications.SecurityAlert,
		},
		"walletPreferences": map[string]any{
			"preferredChain": settings.WalletPreferences.PreferredChain,
			"autoConnect":    settings.WalletPreferences.AutoConnect,
		},
	}); err != nil {
		return fmt.Errorf("update settings %s: %w", settings.UserID, err)
	}
	return nil
}

func userParams(u domain.UserRecord) map[string]any {
	return map[string]any{
		"userId":        u.ID,
		"walletAddress": u.WalletAddress,
		"chainId":       u.ChainID,
		"createdAt":     u.CreatedAt,
		"lastActive":    u.LastActive,
	}
}

func decodeUser(doc docstore.Document) domain.UserRecord {
	u := domain.UserRecord{
		ID:            doc.ID,
		WalletAddress: toString(doc.Data["walletAddress"]),
		ChainID:       toInt(doc.Data["chainId"]),
	}
	if id := toString(doc.Data["userId"]); id != "" {
		u.ID = id
	}
	if t, ok := toTime(doc.Data["createdAt"]); ok {
		u.CreatedAt = t
	}
	if t, ok := toTime(doc.Data["lastActive"]); ok {
		u.LastActive = t
	}
	return u
}

func decodeJourney(userID string, data map[string]any) domain.JourneyRecord {
	rec := domain.JourneyRecord{
		UserID: userID,
		Steps:  make(map[domain.JourneyStep]domain.StepState, len(domain.JourneySteps)),
	}
	if t, ok := toTime(data["journeyStarted"]); ok {
		rec.JourneyStarted = t
	}
	for _, step := range domain.JourneySteps {
		state := domain.StepState{
			Completed: toBool(data[string(step)+"Completed"]),
		}
		if t, ok := toTime(data[string(step)+"CompletedAt"]); ok {
			state.CompletedAt = t
		}
		if m, ok := data[string(step)+"Data"].(map[string]any); ok {
			state.Data = m
		}
		rec.Steps[step] = state
	}
	return rec
}

func decodeDIDDocument(userID string, data map[string]any) domain.DIDDocument {
	doc := domain.DIDDocument{
		UserID:     userID,
		Controller: toString(data["controller"]),
	}
	if id := toString(data["userId"]); id != "" {
		doc.UserID = id
	}
	if t, ok := toTime(data["created"]); ok {
		doc.Created = t
	}
	if t, ok := toTime(data["updated"]); ok {
		doc.Updated = t
	}
	if m, ok := data["document"].(map[string]any); ok {
		doc.Document = m
	}
	return doc
}

func decodePayment(doc docstore.Document) domain.PaymentRecord {
	rec := domain.PaymentRecord{
		ID:            doc.ID,
		UserID:        toString(doc.Data["userId"]),
		Currency:      toString(doc.Data["currency"]),
		Status:        toString(doc.Data["status"]),
		TransactionID: toString(doc.Data["transactionId"]),
		Network:       toString(doc.Data["network"]),
		Amount:        toDecimal(doc.Data["amount"]),
	}
	if t, ok := toTime(doc.Data["timestamp"]); ok {
		rec.Timestamp = t
	}
	return rec
}

func decodeSettings(userID string, data map[string]any) domain.UserSettings {
	settings := domain.DefaultUserSettings(userID)
	if t, ok := toTime(data["createdAt"]); ok {
		settings.CreatedAt = t
	}
	if t, ok := toTime(data["lastUpdated"]); ok {
		settings.LastUpdated = t
	}
	if m, ok := data["notifications"].(map[string]any); ok {
		settings.Notifications.Email = toBool(m["email"])
		settings.Notifications.Verification = toBool(m["verification"])
		settings.Notifications.Payments = toBool(m["payments"])
		settings.Notifications.SecurityAlert = toBool(m["securityAlert"])
	}
	if m, ok := data["walletPreferences"].(map[string]any); ok {
		if chain := toString(m["preferredChain"]); chain != "" {
			settings.WalletPreferences.PreferredChain = chain
		}
		settings.WalletPreferences.AutoConnect = toBool(m["autoConnect"])
	}
	return settings
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toBool(val any) bool {
	b, _ := val.(bool)
	return b
}

func toInt(val any) int {
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func toDecimal(val any) decimal.Decimal {
	switch v := val.(type) {
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	case int64:
		return decimal.NewFromInt(v)
	case int:
		return decimal.NewFromInt(int64(v))
	}
	return decimal.Zero
}

func toTime(val any) (time.Time, bool) {
	switch v := val.(type) {
	case time.Time:
		return v, true
	case string:
		if v == "" {
			return time.Time{}, false
		}
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return parsed, true
		}
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
