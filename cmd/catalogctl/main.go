// Command catalogctl previews and imports product sheets, inspects import
// history and manages the database schema from the command line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lpcheniris/shopify-demo/internal/bootstrap"
	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/config"
)

// Exit codes
const (
	exitOK      = 0
	exitError   = 1
	exitPartial = 2
)

// exitCodeError carries a process exit code through cobra
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitCodeError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *exitCodeError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitError
}

type rootOptions struct {
	configPath string
	logLevel   string
	shop       string
	token      string

	cfg *config.Config
	log *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Import product sheets into a Shopify shop",
		Version:       bootstrap.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "TOML config file (default: config.toml in ., ./config or /app)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default: from config)")
	flags.StringVar(&opts.shop, "shop", "", "Shop domain (default: shopify.shop)")
	flags.StringVar(&opts.token, "token", "", "Admin API access token (default: shopify.access_token)")

	cmd.AddCommand(
		newPreviewCmd(opts),
		newImportCmd(opts),
		newRetryCmd(opts),
		newHistoryCmd(opts),
		newMigrateCmd(opts),
		newLedgerCmd(opts),
	)
	return cmd
}

// load reads the configuration and builds a logger writing to stderr so
// stdout carries only command output
func (o *rootOptions) load() error {
	var err error
	if o.configPath != "" {
		o.cfg, err = config.LoadFile(o.configPath)
	} else {
		o.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg := o.cfg.Log
	logCfg.Output = "stderr"
	if o.logLevel != "" {
		logCfg.Level = o.logLevel
	}
	o.log, err = bootstrap.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// session merges the flags over the configured session
func (o *rootOptions) session() integration.Session {
	s := integration.Session{Shop: o.cfg.Shopify.Shop, AccessToken: o.cfg.Shopify.AccessToken}
	if o.shop != "" {
		s.Shop = o.shop
	}
	if o.token != "" {
		s.AccessToken = o.token
	}
	return s
}

// requireShop returns the session shop or an error naming where to set it
func (o *rootOptions) requireShop() (string, error) {
	shop := o.session().Shop
	if shop == "" {
		return "", fmt.Errorf("no shop given, set --shop or shopify.shop")
	}
	return shop, nil
}

// withApp builds the application, runs fn and releases it
func (o *rootOptions) withApp(ctx context.Context, fn func(*bootstrap.App) error) error {
	app, err := bootstrap.New(ctx, o.cfg, o.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			o.log.Warn("Error releasing resources", zap.Error(err))
		}
	}()
	if err := app.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return fn(app)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
