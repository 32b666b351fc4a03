package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// CoinbaseConfig configures the SDK-style Coinbase Wallet provider, which
// speaks JSON-RPC over HTTP.
type CoinbaseConfig struct {
	RPCURL  string
	ChainID int
	AppName string
}

// CoinbaseFactory builds the Coinbase provider. An unconfigured RPC URL is
// treated as an absent provider.
func CoinbaseFactory(cfg CoinbaseConfig, client *http.Client) Factory {
	return func(context.Context) (Provider, error) {
		if cfg.RPCURL == "" {
			return nil, &ProviderNotFoundError{Wallet: Coinbase}
		}
		if client == nil {
			client = http.DefaultClient
		}
		return &coinbaseProvider{cfg: cfg, http: client}, nil
	}
}

type coinbaseProvider struct {
	mu      sync.Mutex
	cfg     CoinbaseConfig
	http    *http.Client
	address string
	nextID  int64
}

func (p *coinbaseProvider) Connect(ctx context.Context) (string, error) {
	var accounts []string
	if err := p.call(ctx, methodRequestAccounts, nil, &accounts); err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", fmt.Errorf("coinbase wallet returned no accounts")
	}

	p.mu.Lock()
	p.address = accounts[0]
	p.mu.Unlock()
	return accounts[0], nil
}

func (p *coinbaseProvider) Sign(ctx context.Context, message string) (string, error) {
	p.mu.Lock()
	address := p.address
	p.mu.Unlock()

	var signature string
	if err := p.call(ctx, methodPersonalSign, []any{message, address}, &signature); err != nil {
		return "", err
	}
	return signature, nil
}

func (p *coinbaseProvider) call(ctx context.Context, method string, params []any, result any) error {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.mu.Unlock()

	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("coinbase %s: encode request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.RPCURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("coinbase %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.AppName != "" {
		req.Header.Set("X-App-Name", p.cfg.AppName)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("coinbase %s: %w", method, err)
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("coinbase %s: decode response: %w", method, err)
	}
	if rpcResp.Error != nil {
		if isRejection(rpcResp.Error) {
			op := "connect"
			if method == methodPersonalSign {
				op = "sign"
			}
			return &UserRejectedError{Wallet: Coinbase, Op: op}
		}
		return fmt.Errorf("coinbase %s: %w", method, rpcResp.Error)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("coinbase %s: decode result: %w", method, err)
	}
	return nil
}
