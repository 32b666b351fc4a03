// Package wallet opens connections to wallet providers and signs messages
// through them. Signing itself is always delegated to the provider; no key
// material is handled here.
package wallet

import "fmt"

// Type names a supported wallet provider.
type Type string

const (
	MetaMask      Type = "metamask"
	WalletConnect Type = "walletconnect"
	Coinbase      Type = "coinbase"
	Phantom       Type = "phantom"
	Keplr         Type = "keplr"
)

// Types lists every supported wallet.
var Types = []Type{MetaMask, WalletConnect, Coinbase, Phantom, Keplr}

// Family is the chain family a wallet belongs to, used as the identity
// provider's signature-verification strategy tag.
type Family string

const (
	FamilyEthereum Family = "ethereum"
	FamilySolana   Family = "solana"
	FamilyCosmos   Family = "cosmos"
)

// Family maps a wallet type to its chain family. MetaMask, WalletConnect and
// Coinbase are all Ethereum-family wallets.
func (t Type) Family() Family {
	switch t {
	case Phantom:
		return FamilySolana
	case Keplr:
		return FamilyCosmos
	default:
		return FamilyEthereum
	}
}

// Valid reports whether t is a known wallet type.
func (t Type) Valid() bool {
	switch t {
	case MetaMask, WalletConnect, Coinbase, Phantom, Keplr:
		return true
	}
	return false
}

// ParseType validates a wallet name from user input.
func ParseType(name string) (Type, error) {
	t := Type(name)
	if !t.Valid() {
		return "", fmt.Errorf("unsupported wallet type %q", name)
	}
	return t, nil
}
