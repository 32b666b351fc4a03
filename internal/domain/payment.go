package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecord is one entry in a user's append-only payment history.
type PaymentRecord struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userID"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transactionId"`
	Network       string          `json:"network"`
	Timestamp     time.Time       `json:"timestamp"`
}
