package domain

import "time"

// DIDDocument is the decentralized-identity descriptor for a user. At most one
// exists per user; it is keyed by userID with a controller (wallet address)
// fallback lookup.
type DIDDocument struct {
	UserID     string         `json:"userID"`
	Controller string         `json:"controller"`
	Created    time.Time      `json:"created"`
	Updated    time.Time      `json:"updated"`
	Document   map[string]any `json:"document,omitempty"`
}
