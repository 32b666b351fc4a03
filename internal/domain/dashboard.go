package domain

// DashboardData is the aggregated view rendered by the dashboard. Every field
// is individually optional at the source and default-populated on failure, so
// a DashboardData value is always complete.
type DashboardData struct {
	UserData           *UserRecord        `json:"userData"`
	JourneyData        *JourneyRecord     `json:"journeyData"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	DIDDocument        *DIDDocument       `json:"didDocument"`
	Payments           []PaymentRecord    `json:"payments"`
	UserSettings       UserSettings       `json:"userSettings"`
}
