package server

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zybl-io/passport/internal/config"
)

// Split is one leg of the revenue distribution.
type Split struct {
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
	Address    string `json:"address"`
}

// Receipt is the fixed-shape payment receipt echoed by the verify endpoint.
type Receipt struct {
	TransactionHash string  `json:"transactionHash"`
	PaymentID       string  `json:"paymentId"`
	Amount          string  `json:"amount"`
	Network         string  `json:"network"`
	Splits          []Split `json:"splits"`
}

// Fixed two-party revenue split: 60% protocol, 40% user treasury.
const (
	protocolShare = 60
	treasuryShare = 40
)

// buildSplits returns the split table, guaranteeing the legs sum to exactly
// 100 percent.
func buildSplits(cfg config.PaymentConfig) ([]Split, error) {
	splits := []Split{
		{Name: "Protocol", Percentage: protocolShare, Address: cfg.ProtocolAddress},
		{Name: "User Treasury", Percentage: treasuryShare, Address: cfg.TreasuryAddress},
	}

	total := decimal.Zero
	for _, s := range splits {
		total = total.Add(decimal.NewFromInt(int64(s.Percentage)))
	}
	if !total.Equal(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("revenue splits sum to %s, want 100", total)
	}
	return splits, nil
}

// formatAmount renders the configured price ("$2.00") as a receipt amount
// ("2.00 USDC").
func formatAmount(price string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(price), "$")
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return price
	}
	return amount.StringFixed(2) + " USDC"
}
