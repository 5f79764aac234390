// Package cli holds the shortenctl commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"shortener/internal/app"
	"shortener/internal/config"
	"shortener/internal/domain/models"
	"shortener/internal/logger"

	"github.com/spf13/cobra"
)

// NewRootCmd builds shortenctl. Storage flags are persistent so every
// subcommand talks to the same backend the server would.
func NewRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "shortenctl",
		Short:         "Operate the URL shortener storage directly",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().AddFlagSet(config.FlagSet())

	root.AddCommand(newCreateCmd(), newResolveCmd(), newMigrateCmd())
	return root
}

func newCreateCmd() *cobra.Command {
	var longURL, host string

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a short code for a long URL",
		Example: `  shortenctl create --url="https://example.org/page" --host=sho.rt`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				created, err := a.Service.Create(ctx, longURL, host)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "code: %s\nshort_url: %s\n", created.Link.ShortCode, created.ShortURL)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&longURL, "url", "u", "", "Long URL to shorten (required)")
	cmd.Flags().StringVar(&host, "host", "", "Host to embed in the short URL")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <short_code>",
		Short: "Print the long URL bound to a short code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				link, err := a.Service.Resolve(ctx, args[0])
				if errors.Is(err, models.ErrNotFound) {
					return fmt.Errorf("short code %q: %w", args[0], err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), link.LongURL)
				return nil
			})
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the links table for the postgres or dynamodb backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if !a.NeedsMigration() {
					fmt.Fprintln(cmd.OutOrStdout(), "nothing to migrate for this backend")
					return nil
				}
				if err := a.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
				return nil
			})
		},
	}
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	log, closer, err := logger.NewLogger(logger.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Output:     os.Stderr,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
