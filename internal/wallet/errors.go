package wallet

import "fmt"

// ProviderNotFoundError indicates the wallet's provider is not present in the
// execution environment.
type ProviderNotFoundError struct {
	Wallet Type
}

func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("%s provider not detected", e.Wallet)
}

// UserRejectedError indicates the human dismissed a connection or signing
// prompt. The only recovery is for them to retry.
type UserRejectedError struct {
	Wallet Type
	Op     string // "connect" or "sign"
}

func (e *UserRejectedError) Error() string {
	return fmt.Sprintf("%s %s request rejected by user", e.Wallet, e.Op)
}

// ProviderNotInitializedError indicates a signing attempt before a successful
// connect for that wallet type.
type ProviderNotInitializedError struct {
	Wallet Type
}

func (e *ProviderNotInitializedError) Error() string {
	return fmt.Sprintf("%s provider not initialized: connect before signing", e.Wallet)
}
