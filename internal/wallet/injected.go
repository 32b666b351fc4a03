package wallet

import (
	"context"
	"sync"
)

// Registry holds the injected wallet providers available in the execution
// environment, the analogue of the browser's window.* provider namespace.
// MetaMask, Phantom and Keplr are discovered here rather than dialed.
type Registry struct {
	mu        sync.Mutex
	providers map[Type]Provider
}

// NewRegistry returns an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[Type]Provider)}
}

// Install makes a provider discoverable for a wallet type.
func (r *Registry) Install(t Type, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[t] = p
}

// Lookup returns the installed provider for a wallet type.
func (r *Registry) Lookup(t Type) (Provider, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[t]
	return p, ok
}

// InjectedFactory resolves a wallet type against the registry. Absence is a
// *ProviderNotFoundError, reported before any network activity.
func InjectedFactory(reg *Registry, t Type) Factory {
	return func(context.Context) (Provider, error) {
		p, ok := reg.Lookup(t)
		if !ok {
			return nil, &ProviderNotFoundError{Wallet: t}
		}
		return p, nil
	}
}
