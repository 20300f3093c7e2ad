// Command xpctl is the admin CLI for hustle-xp. It reads the same
// configuration as the server and talks to the postgres store directly.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/hustle-xp/internal/adapter/postgres"
	"github.com/heartmarshall/hustle-xp/internal/app"
	"github.com/heartmarshall/hustle-xp/internal/config"
	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/internal/service/progress"
	"github.com/heartmarshall/hustle-xp/pkg/ctxutil"
)

const commandTimeout = 5 * time.Minute

var errMemoryDriver = errors.New("xpctl needs storage.driver=postgres; the memory store lives inside the server process")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "xpctl",
		Short:         "hustle-xp admin tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newLevelsCmd())
	root.AddCommand(newProgressCmd())
	root.AddCommand(newResetCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newExpireCmd())
	return root
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "Print the level table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printLevels(cmd.OutOrStdout())
		},
	}
}

func printLevels(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "LEVEL\tXP\tTITLE\tLEAGUE")
	for _, t := range domain.LevelThresholds {
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", t.Level, t.XP, domain.LevelTitle(t.Level), domain.LeagueForLevel(t.Level).Title)
	}
	return tw.Flush()
}

func newProgressCmd() *cobra.Command {
	var user string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show a user's progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(func(ctx context.Context, c *app.Container) error {
				view, err := c.Progress.GetProgress(ctxutil.WithUserKey(ctx, user))
				if err != nil {
					return err
				}
				return printView(cmd.OutOrStdout(), view, asJSON)
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", domain.DefaultUserKey, "user key")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newResetCmd() *cobra.Command {
	var user string
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset a user's XP and level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset %q without --yes", user)
			}
			return withContainer(func(ctx context.Context, c *app.Container) error {
				view, err := c.Progress.Reset(ctx, user)
				if err != nil {
					return err
				}
				return printView(cmd.OutOrStdout(), view, false)
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user key")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != config.DriverPostgres {
				return errMemoryDriver
			}

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			pool, err := postgres.NewPool(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			return postgres.Migrate(ctx, pool, logger)
		},
	}
}

// newExpireCmd runs one overdue-session sweep, for deployments that disable
// the in-process scheduler and drive it from an external cron job.
func newExpireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Close focus sessions past the maximum duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(func(ctx context.Context, c *app.Container) error {
				n, err := c.Focus.ExpireOverdue(ctx, time.Now().UTC())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "expired %d session(s)\n", n)
				return nil
			})
		},
	}
}

func load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, app.NewLogger(cfg.Log), nil
}

func withContainer(fn func(ctx context.Context, c *app.Container) error) error {
	cfg, logger, err := load()
	if err != nil {
		return err
	}
	if cfg.Storage.Driver != config.DriverPostgres {
		return errMemoryDriver
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	c, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(ctx, c)
}

func printView(out io.Writer, v *progress.View, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"userId":        v.Progress.UserKey,
			"currentXP":     v.Progress.CumulativeXP,
			"currentLevel":  v.Progress.CurrentLevel,
			"todayXP":       v.Progress.TodayXP,
			"lastResetDate": v.Progress.LastResetDate,
			"title":         v.Title,
			"league":        v.League.Key,
			"toNextLevel":   v.Level.ToNextLevel,
		})
	}

	_, err := fmt.Fprintf(out, "%s: level %d (%s, %s league), %d XP total, %d XP today, %d to next level\n",
		v.Progress.UserKey, v.Progress.CurrentLevel, v.Title, v.League.Title,
		v.Progress.CumulativeXP, v.Progress.TodayXP, v.Level.ToNextLevel)
	return err
}
