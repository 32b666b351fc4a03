package domain

import "time"

// NotificationSettings controls which notifications a user receives.
type NotificationSettings struct {
	Email         bool `json:"email"`
	Verification  bool `json:"verification"`
	Payments      bool `json:"payments"`
	SecurityAlert bool `json:"securityAlert"`
}

// WalletPreferences captures the user's preferred wallet behaviour.
type WalletPreferences struct {
	PreferredChain string `json:"preferredChain"`
	AutoConnect    bool   `json:"autoConnect"`
}

// UserSettings holds per-user preferences, created with defaults on first
// access.
type UserSettings struct {
	UserID            string               `json:"userID"`
	Notifications     NotificationSettings `json:"notifications"`
	WalletPreferences WalletPreferences    `json:"walletPreferences"`
	CreatedAt         time.Time            `json:"createdAt"`
	LastUpdated       time.Time            `json:"lastUpdated"`
}

// DefaultUserSettings returns the fixed defaults applied when a user has no
// stored settings or the remote read failed.
func DefaultUserSettings(userID string) UserSettings {
	return UserSettings{
		UserID: userID,
		Notifications: NotificationSettings{
			Email:         true,
			Verification:  true,
			Payments:      true,
			SecurityAlert: true,
		},
		WalletPreferences: WalletPreferences{
			PreferredChain: "ethereum",
			AutoConnect:    true,
		},
	}
}
