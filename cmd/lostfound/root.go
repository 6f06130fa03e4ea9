package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vbonduro/lostfound/internal/config"
	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/logging"
	"github.com/vbonduro/lostfound/internal/ui"
	"github.com/vbonduro/lostfound/internal/web"
	"github.com/vbonduro/lostfound/internal/web/templates"
)

// withApp loads configuration, builds the app and runs fn with it.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return err
	}
	defer a.close()
	return fn(a)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "lostfound",
		Short:        "Lost and found item board",
		Long:         "lostfound serves a board where people report lost and found items.\n\nRun without a subcommand to start the web server.",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.AddCommand(newServeCmd(), newItemsCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		server := web.NewServer(a.service, templates.FS, a.photos, web.Options{
			RateLimitRPS:   a.cfg.RateLimitRPS,
			RateLimitBurst: a.cfg.RateLimitBurst,
		}, a.logger)
		if err := server.ListenAndServe(a.cfg.ListenAddr); err != nil {
			a.logger.Error("server error", "error", err)
			return err
		}
		return nil
	})
}

func newItemsCmd() *cobra.Command {
	items := &cobra.Command{
		Use:   "items",
		Short: "Inspect and manage reported items",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List items, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := domain.ParseFilter(status)
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app) error {
				found, err := a.service.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				return printItems(cmd, found)
			})
		},
	}
	list.Flags().StringVar(&status, "status", "All", "filter by status: All, Lost or Found")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Print one item as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				item, err := a.service.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(item)
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an item and verify it is gone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if _, err := a.service.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return err
			})
		},
	}

	items.AddCommand(list, get, del)
	return items
}

func printItems(cmd *cobra.Command, items []*domain.Item) error {
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		_, err := fmt.Fprintln(out, ui.NoItemsMessage(""))
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tNAME\tLOCATION\tDATE")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", it.ID, it.Status, ui.Truncate(it.Name, 40), ui.Truncate(it.Location, 30), ui.FormatDate(it.Date))
	}
	if err := w.Flush(); err != nil {
		slog.Error("failed to write item list", "error", err)
		return err
	}
	return nil
}
