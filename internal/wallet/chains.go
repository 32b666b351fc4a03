package wallet

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Chain describes one supported chain and the wallets that can reach it.
type Chain struct {
	ID               string
	Name             string
	SupportedWallets []Type
}

// SupportedChains is the fixed chain table the product supports.
var SupportedChains = []Chain{
	{ID: "ethereum", Name: "Ethereum", SupportedWallets: []Type{MetaMask, WalletConnect, Coinbase}},
	{ID: "solana", Name: "Solana", SupportedWallets: []Type{Phantom, WalletConnect}},
	{ID: "polygon", Name: "Polygon", SupportedWallets: []Type{MetaMask, WalletConnect, Coinbase}},
	{ID: "cosmos", Name: "Cosmos", SupportedWallets: []Type{Keplr, WalletConnect}},
}

// ChainInfo looks a chain up by ID, defaulting to the first supported chain.
func ChainInfo(id string) Chain {
	for _, c := range SupportedChains {
		if c.ID == id {
			return c
		}
	}
	return SupportedChains[0]
}

// DetectChain classifies an address by format: 0x-prefixed 40-hex addresses
// are ethereum, base58-looking 32-44 char strings are solana, bech32-style
// strings are cosmos.
func DetectChain(address string) string {
	if address == "" {
		return "unknown"
	}
	if common.IsHexAddress(address) {
		return "ethereum"
	}
	if !strings.HasPrefix(address, "0x") && len(address) >= 32 && len(address) <= 44 {
		return "solana"
	}
	if strings.Contains(address, "1") && len(address) >= 39 && len(address) <= 50 {
		return "cosmos"
	}
	return "unknown"
}

// ShortenAddress renders an address as "0x1234...abcd" for display.
func ShortenAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
