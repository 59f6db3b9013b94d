package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soocke/reelbot-go/app"
	"github.com/soocke/reelbot-go/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "reelbot",
		Short:        "Keeps the fishing minigame control bar on its target",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := setup(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if headless, _ := cmd.Flags().GetBool("headless"); headless {
				return app.RunHeadless(ctx, c)
			}
			return app.Run(ctx, c)
		},
	}
	root.PersistentFlags().String("config", "reelbot.json", "path to the JSON config file")
	root.PersistentFlags().Bool("debug", false, "debug logging and runtime stats")
	root.Flags().Bool("headless", false, "run without a window; hotkeys and logs only")
	root.AddCommand(newCalibrateCmd())
	return root
}

func newCalibrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calibrate",
		Short: "Scan the screen for the control bar and store its position",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := setup(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			pair, err := c.Session.Calibrate(ctx, c.Auto)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "control %s\nprogress %s\n", pair.Control, pair.Progress)
			return nil
		},
	}
}

// setup loads the config, applies flag overrides and builds the container.
func setup(cmd *cobra.Command) (*app.Container, error) {
	path, _ := cmd.Flags().GetString("config")
	dbg, _ := cmd.Flags().GetBool("debug")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if dbg {
		cfg.Debug = true
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(cmd.ErrOrStderr(), level)
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		if err := cfg.Save(path); err != nil {
			logger.Warn("default config not written", "path", path, "error", err)
		} else {
			logger.Info("default config written", "path", path)
		}
	}
	return app.BuildContainer(cfg, path, logger), nil
}
