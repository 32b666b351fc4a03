package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// WalletConnectConfig configures the relay-bridged WalletConnect provider.
type WalletConnectConfig struct {
	RelayURL  string
	ProjectID string
}

// WalletConnectFactory dials the configured relay and speaks JSON-RPC over the
// websocket bridge. An unconfigured relay is treated as an absent provider.
func WalletConnectFactory(cfg WalletConnectConfig) Factory {
	return func(ctx context.Context) (Provider, error) {
		if cfg.RelayURL == "" {
			return nil, &ProviderNotFoundError{Wallet: WalletConnect}
		}

		relay, err := url.Parse(cfg.RelayURL)
		if err != nil {
			return nil, fmt.Errorf("parse walletconnect relay url: %w", err)
		}
		if cfg.ProjectID != "" {
			q := relay.Query()
			q.Set("projectId", cfg.ProjectID)
			relay.RawQuery = q.Encode()
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, relay.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("dial walletconnect relay: %w", err)
		}

		return &walletConnectProvider{conn: conn}, nil
	}
}

type walletConnectProvider struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	address string
	nextID  int64
}

func (p *walletConnectProvider) Connect(ctx context.Context) (string, error) {
	var accounts []string
	if err := p.call(ctx, methodRequestAccounts, nil, &accounts); err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", fmt.Errorf("walletconnect session returned no accounts")
	}

	p.mu.Lock()
	p.address = accounts[0]
	p.mu.Unlock()
	return accounts[0], nil
}

func (p *walletConnectProvider) Sign(ctx context.Context, message string) (string, error) {
	p.mu.Lock()
	address := p.address
	p.mu.Unlock()

	var signature string
	if err := p.call(ctx, methodPersonalSign, []any{message, address}, &signature); err != nil {
		return "", err
	}
	return signature, nil
}

// call writes one request and reads frames until the matching response id
// arrives; relay keepalive frames with other ids are skipped.
func (p *walletConnectProvider) call(ctx context.Context, method string, params []any, result any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	req := rpcRequest{JSONRPC: "2.0", ID: p.nextID, Method: method, Params: params}

	if deadline, ok := ctx.Deadline(); ok {
		_ = p.conn.SetReadDeadline(deadline)
		_ = p.conn.SetWriteDeadline(deadline)
	}

	if err := p.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("walletconnect %s: %w", method, err)
	}

	for {
		var resp rpcResponse
		if err := p.conn.ReadJSON(&resp); err != nil {
			return fmt.Errorf("walletconnect %s: %w", method, err)
		}
		if resp.ID != req.ID {
			continue
		}
		if resp.Error != nil {
			if isRejection(resp.Error) {
				op := "connect"
				if method == methodPersonalSign {
					op = "sign"
				}
				return &UserRejectedError{Wallet: WalletConnect, Op: op}
			}
			return fmt.Errorf("walletconnect %s: %w", method, resp.Error)
		}
		if result == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("walletconnect %s: decode result: %w", method, err)
		}
		return nil
	}
}

// Close releases the relay connection.
func (p *walletConnectProvider) Close() error {
	_ = p.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return p.conn.Close()
}
