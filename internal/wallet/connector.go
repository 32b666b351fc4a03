package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Provider is an open connection to one wallet.
type Provider interface {
	// Connect requests account access and returns the selected address.
	Connect(ctx context.Context) (string, error)
	// Sign asks the wallet to sign an arbitrary message.
	Sign(ctx context.Context, message string) (string, error)
}

// Factory produces a Provider for a wallet type, or a *ProviderNotFoundError
// when the provider is absent from the environment.
type Factory func(ctx context.Context) (Provider, error)

type session struct {
	provider Provider
	address  string
}

// Connector opens wallet connections and signs through them. Connected
// provider handles are retained in a single slot per wallet type: connecting
// a second wallet of the same type overwrites the first.
type Connector struct {
	mu        sync.Mutex
	factories map[Type]Factory
	sessions  map[Type]*session
	logger    *slog.Logger
}

// NewConnector returns a Connector with no providers registered.
func NewConnector(logger *slog.Logger) *Connector {
	return &Connector{
		factories: make(map[Type]Factory),
		sessions:  make(map[Type]*session),
		logger:    logger,
	}
}

// Register installs the factory for a wallet type, replacing any previous one.
func (c *Connector) Register(t Type, f Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[t] = f
}

// Connect opens a connection to the given wallet and returns its address. The
// provider handle is retained for later Sign calls.
func (c *Connector) Connect(ctx context.Context, t Type) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("unsupported wallet type %q", t)
	}

	c.mu.Lock()
	factory, ok := c.factories[t]
	c.mu.Unlock()
	if !ok {
		return "", &ProviderNotFoundError{Wallet: t}
	}

	provider, err := factory(ctx)
	if err != nil {
		return "", err
	}

	address, err := provider.Connect(ctx)
	if err != nil {
		return "", err
	}

	if t.Family() == FamilyEthereum {
		if !common.IsHexAddress(address) {
			return "", fmt.Errorf("%s returned invalid ethereum address %q", t, address)
		}
		address = common.HexToAddress(address).Hex()
	}

	c.mu.Lock()
	c.sessions[t] = &session{provider: provider, address: address}
	c.mu.Unlock()

	c.logger.Info("wallet connected", "wallet", t, "address", ShortenAddress(address))
	return address, nil
}

// Sign signs a message with the provider retained by a prior Connect.
func (c *Connector) Sign(ctx context.Context, message string, t Type) (string, error) {
	c.mu.Lock()
	sess, ok := c.sessions[t]
	c.mu.Unlock()
	if !ok {
		return "", &ProviderNotInitializedError{Wallet: t}
	}
	return sess.provider.Sign(ctx, message)
}

// Address returns the connected address for a wallet type, if any.
func (c *Connector) Address(t Type) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, ok := c.sessions[t]
	if !ok {
		return "", false
	}
	return sess.address, true
}

// Disconnect drops the retained handle for a wallet type.
func (c *Connector) Disconnect(t Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, t)
}
