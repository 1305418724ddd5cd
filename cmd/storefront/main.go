package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/cart"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/client"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/config"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/discovery"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/logger"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/storage"
)

var (
	configPath string
	app        *appContext
)

// appContext holds everything a command needs. It is built once per
// invocation in PersistentPreRunE.
type appContext struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   storage.Store
	api     *client.Client
	catalog *client.CachedCatalog
	cart    *cart.Reconciler
}

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Browse the catalog, manage the cart and track orders",
	Long: `storefront is the command line client of the shop.

Cart entries are kept on this device until submitted. Order statuses can be
marked locally and are shown in place of the server status until cleared.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		app = a
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (.env, yaml or json)")
}

func newApp(ctx context.Context, path string) (*appContext, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
	})

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open device storage: %w", err)
	}

	baseURL := cfg.APIBaseURL
	if cfg.ConsulEnabled() {
		consul, err := discovery.NewConsulClient(log, cfg.ConsulHost, cfg.ConsulPort)
		if err != nil {
			log.Warn().Err(err).Msg("consul unavailable, using API_BASE_URL")
		} else {
			baseURL = discovery.ResolveBaseURL(consul, cfg.ConsulService, cfg.APIBaseURL, log)
		}
	}

	api := client.New(baseURL, store,
		client.WithTimeout(cfg.APITimeout),
		client.WithLogger(log),
	)

	a := &appContext{
		cfg:     cfg,
		log:     log,
		store:   store,
		api:     api,
		catalog: client.NewCachedCatalog(api, store),
		cart:    cart.NewReconciler(api, store, cart.WithLogger(log)),
	}
	a.cart.Subscribe(func(s cart.Snapshot) {
		log.Debug().Int("cart_items", s.ItemCount).Int("orders", len(s.Server)).Msg("state changed")
	})
	a.cart.Load(ctx)
	return a, nil
}

func (a *appContext) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close storage")
	}
}

// reportError turns a command error into the message shown to the user.
func reportError(w io.Writer, err error) {
	var (
		he     *client.HTTPError
		netErr *url.Error
	)
	switch {
	case client.IsAuthError(err):
		fmt.Fprintln(w, "You are not logged in or your session has expired.")
		fmt.Fprintln(w, "Run `storefront login` to sign in.")
	case errors.As(err, &he) && !he.Retryable():
		fmt.Fprintf(w, "Error: %v\n", err)
	case errors.As(err, &he), errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(w, "Request failed, please retry: %v\n", err)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.ExecuteContext(ctx)
	if app != nil {
		app.close()
		app = nil
	}
	if err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
