package domain

import "time"

// Verification status values.
const (
	StatusVerified   = "Verified"
	StatusPartial    = "Partial"
	StatusUnverified = "Unverified"
)

// Provenance tags recording which resolver produced a verification status.
const (
	SourceJourney          = "journey_data"
	SourceCollection       = "verification_collection"
	SourceCollectionSimple = "verification_collection_simple"
	SourcePaymentInference = "payment_inference"
	SourceLegacyUser       = "user_record_legacy"
)

// VerificationRecord is one stored verification result. Multiple records may
// exist per user.
type VerificationRecord struct {
	UserID    string    `json:"userID"`
	Status    string    `json:"status"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
}

// VerificationStatus is the resolved view the dashboard presents.
type VerificationStatus struct {
	Status       string     `json:"status"`
	Score        int        `json:"score"`
	LastVerified *time.Time `json:"lastVerified"`
	Source       string     `json:"source,omitempty"`
}

// DefaultVerificationStatus is the stand-in applied when no resolver produced
// a result or the remote read failed entirely.
func DefaultVerificationStatus() VerificationStatus {
	return VerificationStatus{
		Status:       StatusUnverified,
		Score:        0,
		LastVerified: nil,
	}
}
