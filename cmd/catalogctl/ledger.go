package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lpcheniris/shopify-demo/internal/bootstrap"
)

var errLedgerDisabled = errors.New("handle ledger is disabled, set ledger.enabled")

func newLedgerCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and edit the imported-handle ledger",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "check <handle>...",
			Short: "Report whether handles are recorded as imported",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				shop, err := opts.requireShop()
				if err != nil {
					return err
				}
				return opts.withApp(cmd.Context(), func(app *bootstrap.App) error {
					if app.Ledger == nil {
						return errLedgerDisabled
					}
					imported := make(map[string]bool, len(args))
					for _, handle := range args {
						seen, err := app.Ledger.IsImported(cmd.Context(), shop, handle)
						if err != nil {
							return err
						}
						imported[handle] = seen
					}
					return writeJSON(cmd.OutOrStdout(), imported)
				})
			},
		},
		&cobra.Command{
			Use:   "forget <handle>...",
			Short: "Remove handles so the next import creates them again",
			Long:  "Use after deleting a product in the shop admin; otherwise imports keep skipping its handle.",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				shop, err := opts.requireShop()
				if err != nil {
					return err
				}
				return opts.withApp(cmd.Context(), func(app *bootstrap.App) error {
					if app.Ledger == nil {
						return errLedgerDisabled
					}
					for _, handle := range args {
						if err := app.Ledger.Forget(cmd.Context(), shop, handle); err != nil {
							return fmt.Errorf("failed to forget %q: %w", handle, err)
						}
						opts.log.Info("Handle forgotten", zap.String("shop", shop), zap.String("handle", handle))
					}
					return nil
				})
			},
		},
	)
	return cmd
}
