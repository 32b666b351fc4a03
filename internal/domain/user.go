package domain

import "time"

// UserRecord identifies a wallet-derived user. One record exists per wallet
// address; it is created on first sign-in and looked up by address afterwards.
type UserRecord struct {
	ID            string    `json:"userID"`
	WalletAddress string    `json:"walletAddress"`
	ChainID       int       `json:"chainId"`
	CreatedAt     time.Time `json:"createdAt"`
	LastActive    time.Time `json:"lastActive"`
}
