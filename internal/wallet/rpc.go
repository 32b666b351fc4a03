package wallet

import (
	"encoding/json"
	"strings"
)

// JSON-RPC plumbing shared by the WalletConnect and Coinbase providers.

const (
	methodRequestAccounts = "eth_requestAccounts"
	methodPersonalSign    = "personal_sign"

	// EIP-1193 user-rejection code.
	codeUserRejected = 4001
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return e.Message
}

// isRejection classifies a provider error as a human declining the prompt.
func isRejection(err *rpcError) bool {
	if err == nil {
		return false
	}
	if err.Code == codeUserRejected {
		return true
	}
	msg := strings.ToLower(err.Message)
	return strings.Contains(msg, "user rejected") ||
		strings.Contains(msg, "user denied") ||
		strings.Contains(msg, "request rejected")
}
