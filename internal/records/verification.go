package records

import (
	"context"
	"errors"

	"github.com/zybl-io/passport/internal/docstore"
	"github.com/zybl-io/passport/internal/domain"
)

// verificationResolver is one strategy for inferring a user's verification
// status. It reports ok=false when it has no answer, leaving the decision to
// the next resolver in the chain.
type verificationResolver func(ctx context.Context, userID string) (domain.VerificationStatus, bool, error)

// ResolveVerification evaluates the ordered resolver chain and returns the
// first status produced. Resolver errors are logged and skipped so a failing
// source never masks a later one; ok=false means no source had an answer and
// the caller should apply its default.
//
// The chain deliberately treats evidence of payment as proof of verification
// when no explicit verification record exists.
func (s *Store) ResolveVerification(ctx context.Context, userID string) (domain.VerificationStatus, bool, error) {
	resolvers := []verificationResolver{
		s.resolveFromJourney,
		s.resolveFromCollection,
		s.resolveFromPayments,
		s.resolveFromLegacyUser,
	}

	for _, resolve := range resolvers {
		status, ok, err := resolve(ctx, userID)
		if err != nil {
			s.logger.Debug("verification resolver failed", "user_id", userID, "error", err)
			continue
		}
		if ok {
			return status, true, nil
		}
	}
	return domain.VerificationStatus{}, false, nil
}

// resolveFromJourney trusts the journey record's verificationCompleted flag.
func (s *Store) resolveFromJourney(ctx context.Context, userID string) (domain.VerificationStatus, bool, error) {
	journey, err := s.GetJourney(ctx, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return domain.VerificationStatus{}, false, nil
		}
		return domain.VerificationStatus{}, false, err
	}

	step := journey.Step(domain.StepVerification)
	if !step.Completed {
		return domain.VerificationStatus{}, false, nil
	}

	score := 95
	if v, ok := step.Data["score"]; ok {
		if n := toInt(v); n > 0 {
			score = n
		}
	}
	status := domain.VerificationStatus{
		Status: domain.StatusVerified,
		Score:  score,
		Source: domain.SourceJourney,
	}
	if !step.CompletedAt.IsZero() {
		t := step.CompletedAt
		status.LastVerified = &t
	}
	return status, true, nil
}

// resolveFromCollection reads the latest verification record. When the store
// cannot serve the ordered query an arbitrary match is taken instead; the
// dropped recency guarantee is made visible through the source tag.
func (s *Store) resolveFromCollection(ctx context.Context, userID string) (domain.VerificationStatus, bool, error) {
	filters := []docstore.Filter{{Field: "userId", Op: "==", Value: userID}}

	docs, degraded, err := s.queryNewest(ctx, collVerifications, filters, 1)
	if err != nil {
		return domain.VerificationStatus{}, false, err
	}
	source := domain.SourceCollection
	if degraded {
		source = domain.SourceCollectionSimple
	}

	if len(docs) == 0 {
		return domain.VerificationStatus{}, false, nil
	}

	data := docs[0].Data
	status := domain.VerificationStatus{
		Status: toString(data["status"]),
		Score:  toInt(data["score"]),
		Source: source,
	}
	if status.Status == "" {
		status.Status = domain.StatusUnverified
	}
	if t, ok := toTime(data["timestamp"]); ok {
		status.LastVerified = &t
	}
	return status, true, nil
}

// resolveFromPayments infers verification from payment existence: a user who
// has paid is treated as verified.
func (s *Store) resolveFromPayments(ctx context.Context, userID string) (domain.VerificationStatus, bool, error) {
	docs, err := s.client.Query(ctx, collPayments, docstore.Query{
		Filters: []docstore.Filter{{Field: "userId", Op: "==", Value: userID}},
		Limit:   1,
	})
	if err != nil {
		return domain.VerificationStatus{}, false, err
	}
	if len(docs) == 0 {
		return domain.VerificationStatus{}, false, nil
	}

	status := domain.VerificationStatus{
		Status: domain.StatusVerified,
		Score:  90,
		Source: domain.SourcePaymentInference,
	}
	if t, ok := toTime(docs[0].Data["timestamp"]); ok {
		status.LastVerified = &t
	}
	return status, true, nil
}

// resolveFromLegacyUser maps verification fields written directly on old user
// documents.
func (s *Store) resolveFromLegacyUser(ctx context.Context, userID string) (domain.VerificationStatus, bool, error) {
	doc, err := s.client.Get(ctx, collUsers, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return domain.VerificationStatus{}, false, nil
		}
		return domain.VerificationStatus{}, false, err
	}

	legacyStatus := toString(doc.Data["verificationStatus"])
	verified := toBool(doc.Data["verified"])
	if legacyStatus == "" && !verified {
		return domain.VerificationStatus{}, false, nil
	}

	status := domain.VerificationStatus{
		Status: legacyStatus,
		Score:  toInt(doc.Data["verificationScore"]),
		Source: domain.SourceLegacyUser,
	}
	if status.Status == "" {
		status.Status = domain.StatusVerified
	}
	if status.Score == 0 && verified {
		status.Score = 85
	}
	if t, ok := toTime(doc.Data["verifiedAt"]); ok {
		status.LastVerified = &t
	}
	return status, true, nil
}
