// Command zybl is the passport client: it signs users in with a wallet,
// renders the dashboard aggregate, and manages the local session snapshot.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zybl-io/passport/internal/auth"
	"github.com/zybl-io/passport/internal/cache"
	"github.com/zybl-io/passport/internal/config"
	"github.com/zybl-io/passport/internal/dashboard"
	"github.com/zybl-io/passport/internal/docstore"
	"github.com/zybl-io/passport/internal/identity"
	"github.com/zybl-io/passport/internal/logging"
	"github.com/zybl-io/passport/internal/records"
	"github.com/zybl-io/passport/internal/wallet"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "zybl",
		Short:         "Zybl passport client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSignInCmd(), newDashboardCmd(), newSignOutCmd())
	return root
}

// app bundles the wired client components.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	cache     *cache.Cache
	store     *records.Store
	storeConn docstore.Client
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Logging)

	c, err := cache.New(cfg.Cache.StateDir)
	if err != nil {
		return nil, err
	}

	client, err := docstore.NewFirestoreClient(ctx, docstore.Options{
		ProjectID:       cfg.Store.ProjectID,
		CredentialsFile: cfg.Store.CredentialsFile,
	})
	if err != nil {
		return nil, fmt.Errorf("connect record store: %w", err)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		cache:     c,
		store:     records.New(client, logger),
		storeConn: client,
	}, nil
}

func (a *app) close() {
	if err := a.storeConn.Close(); err != nil {
		a.logger.Warn("closing record store failed", "error", err)
	}
}

// connector wires the wallet providers reachable from a terminal session:
// WalletConnect over its relay and Coinbase over HTTP RPC. Injected browser
// wallets have no factory here and fail with ProviderNotFoundError.
func (a *app) connector() *wallet.Connector {
	conn := wallet.NewConnector(a.logger)
	conn.Register(wallet.WalletConnect, wallet.WalletConnectFactory(wallet.WalletConnectConfig{
		RelayURL:  a.cfg.Wallet.WalletConnectRelayURL,
		ProjectID: a.cfg.Wallet.WalletConnectProjectID,
	}))
	conn.Register(wallet.Coinbase, wallet.CoinbaseFactory(wallet.CoinbaseConfig{
		RPCURL:  a.cfg.Wallet.CoinbaseRPCURL,
		ChainID: a.cfg.Wallet.ChainID,
		AppName: a.cfg.Wallet.CoinbaseAppName,
	}, nil))
	return conn
}

func newSignInCmd() *cobra.Command {
	var walletName string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Connect a wallet and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			walletType, err := wallet.ParseType(walletName)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			authenticator := auth.New(
				a.connector(),
				identity.New(identity.Config{
					BaseURL: a.cfg.Identity.BaseURL,
					APIKey:  a.cfg.Identity.APIKey,
					Timeout: a.cfg.Identity.Timeout,
				}),
				a.store,
				a.cache,
				a.cfg.Wallet.ChainID,
				a.logger,
			)

			result, err := authenticator.Authenticate(ctx, walletType)
			if err != nil {
				return err
			}

			fmt.Printf("Signed in as %s (chain: %s)\n",
				wallet.ShortenAddress(result.Address), wallet.DetectChain(result.Address))
			return nil
		},
	}
	cmd.Flags().StringVar(&walletName, "wallet", string(wallet.WalletConnect),
		"wallet type (metamask, walletconnect, coinbase, phantom, keplr)")
	return cmd
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print the aggregated dashboard data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			userID, err := a.resolveUserID(ctx)
			if err != nil {
				return err
			}

			data := dashboard.New(a.store, a.cache, a.logger).Load(ctx, userID)
			out, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func newSignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Clear the local session snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c, err := cache.New(cfg.Cache.StateDir)
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return err
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

// resolveUserID finds the current user from the local snapshot, falling back
// to an address lookup when the snapshot predates user-ID tracking.
func (a *app) resolveUserID(ctx context.Context) (string, error) {
	snapshot, ok, err := a.cache.Read()
	if err != nil || !ok {
		return "", errors.New("not signed in: run `zybl signin` first")
	}
	if snapshot.UserID != "" {
		return snapshot.UserID, nil
	}
	user, err := a.store.GetUserByAddress(ctx, snapshot.Address)
	if err != nil {
		return "", fmt.Errorf("resolve user for %s: %w", wallet.ShortenAddress(snapshot.Address), err)
	}
	return user.ID, nil
}
