package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	importapp "github.com/lpcheniris/shopify-demo/internal/application/import"
	"github.com/lpcheniris/shopify-demo/internal/bootstrap"
	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
)

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preview [file.xlsx]",
		Short: "Group a sheet by handle without creating products",
		Long:  "Reads the workbook, or import.default_path when no file is given, and prints the aggregated items.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return opts.withApp(cmd.Context(), func(app *bootstrap.App) error {
				result, err := app.Imports.Preview(cmd.Context(), path)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.xlsx]",
		Short: "Create one product per handle of a sheet",
		Long: "Reads the workbook, or import.default_path when no file is given, and creates the products in sheet order.\n" +
			"Exits 2 when some items failed and 1 when none could be created.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(app *bootstrap.App) error {
				path := app.Imports.DefaultPath()
				if len(args) == 1 {
					path = args[0]
				}
				result, err := app.Imports.ImportFile(cmd.Context(), opts.session(), path)
				if err != nil {
					return err
				}
				return report(cmd, result)
			})
		},
	}
}

func newRetryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <run-id>",
		Short: "Publish the failed items of a run again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}
			return opts.withApp(cmd.Context(), func(app *bootstrap.App) error {
				result, err := app.Imports.Retry(cmd.Context(), opts.session(), runID)
				if err != nil {
					return err
				}
				return report(cmd, result)
			})
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		status string
		limit  int
		sortBy string
		order  string
		failed bool
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List import runs or show one run",
		Long:  "Without arguments lists the shop's runs, newest first. With a run id prints the run and its items, or with --failed its failed items as CSV.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var runID uuid.UUID
			if len(args) == 1 {
				var err error
				if runID, err = uuid.Parse(args[0]); err != nil {
					return fmt.Errorf("invalid run id %q: %w", args[0], err)
				}
			}
			shop, err := opts.requireShop()
			if err != nil {
				return err
			}

			return opts.withApp(cmd.Context(), func(app *bootstrap.App) error {
				ctx := cmd.Context()
				switch {
				case runID == uuid.Nil:
					runs, err := app.History.ListRuns(ctx, shop, importapp.ListRunsFilter{
						Status:    status,
						Limit:     limit,
						SortBy:    sortBy,
						SortOrder: order,
					})
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), runs)
				case failed:
					content, _, err := app.History.FailedItemsCSV(ctx, shop, runID)
					if err != nil {
						return err
					}
					_, err = cmd.OutOrStdout().Write(content)
					return err
				default:
					run, err := app.History.GetRun(ctx, shop, runID)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), run)
				}
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status: pending, processing, completed, partial, failed")
	cmd.Flags().IntVar(&limit, "limit", importapp.DefaultRunListLimit, "Maximum runs to list")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "Sort field, e.g. created_at or failed_count")
	cmd.Flags().StringVar(&order, "order", "", "Sort order: asc or desc (default desc)")
	cmd.Flags().BoolVar(&failed, "failed", false, "Print the failed items of the run as CSV")
	return cmd
}

// report prints the result and maps its status to the exit code
func report(cmd *cobra.Command, result *importapp.ImportResult) error {
	if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	switch result.Status {
	case integration.PublishStatusFailed:
		return withCode(exitError, fmt.Errorf("none of the %d products could be created", len(result.Failed)))
	case integration.PublishStatusPartial:
		return withCode(exitPartial, fmt.Errorf("%d of %d products failed",
			len(result.Failed), len(result.Failed)+len(result.Created)))
	}
	return nil
}
