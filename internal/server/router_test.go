package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zybl-io/passport/internal/config"
)

func testPaymentConfig() config.PaymentConfig {
	return config.PaymentConfig{
		Price:           "$2.00",
		Network:         "base-sepolia",
		NetworkLabel:    "Base Sepolia",
		AssetAddress:    "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		ProtocolAddress: "0xDCB45e4f6762C3D7C61a00e96Fb94ADb7Cf27721",
		TreasuryAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	router, err := NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), testPaymentConfig())
	require.NoError(t, err)
	return router
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Zybl payment backend is running", body["message"])
}

func TestVerifyWithoutPaymentProof(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/verify", nil))

	require.Equal(t, http.StatusPaymentRequired, rec.Code)

	var body struct {
		Error   string `json:"error"`
		Accepts []struct {
			Price   string `json:"price"`
			Network string `json:"network"`
			Asset   string `json:"asset"`
			PayTo   string `json:"payTo"`
		} `json:"accepts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Accepts, 1)
	assert.Equal(t, "$2.00", body.Accepts[0].Price)
	assert.Equal(t, "base-sepolia", body.Accepts[0].Network)
	assert.Equal(t, "0x036CbD53842c5426634e7929541eC2318f3dCF7e", body.Accepts[0].Asset)
	assert.Equal(t, "0xDCB45e4f6762C3D7C61a00e96Fb94ADb7Cf27721", body.Accepts[0].PayTo)
}

func TestVerifyEchoesReceipt(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/verify", nil)
	req.Header.Set("X-PAYMENT-RESPONSE", "0xproof")
	req.Header.Set("X-PAYMENT-ID", "pay-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success            bool    `json:"success"`
		Message            string  `json:"message"`
		VerificationStatus string  `json:"verificationStatus"`
		Timestamp          string  `json:"timestamp"`
		Receipt            Receipt `json:"receipt"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Verification payment processed successfully", body.Message)
	assert.Equal(t, "active", body.VerificationStatus)
	assert.NotEmpty(t, body.Timestamp)

	assert.Equal(t, "0xproof", body.Receipt.TransactionHash)
	assert.Equal(t, "pay-123", body.Receipt.PaymentID)
	assert.Equal(t, "2.00 USDC", body.Receipt.Amount)
	assert.Equal(t, "Base Sepolia", body.Receipt.Network)
}

func TestVerifyReceiptSplits(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/verify", nil)
	req.Header.Set("X-PAYMENT-RESPONSE", "0xproof")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Receipt Receipt `json:"receipt"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Receipt.Splits, 2)

	total := 0
	for _, s := range body.Receipt.Splits {
		total += s.Percentage
	}
	assert.Equal(t, 100, total)
	assert.Equal(t, "Protocol", body.Receipt.Splits[0].Name)
	assert.Equal(t, 60, body.Receipt.Splits[0].Percentage)
	assert.Equal(t, "User Treasury", body.Receipt.Splits[1].Name)
	assert.Equal(t, 40, body.Receipt.Splits[1].Percentage)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/health", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "2.00 USDC", formatAmount("$2.00"))
	assert.Equal(t, "2.50 USDC", formatAmount(" $2.5 "))
	assert.Equal(t, "free", formatAmount("free"))
}
