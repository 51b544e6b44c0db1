// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-publish/internal/app"
	"github.com/taibuivan/yomira-publish/internal/platform/config"
)

// commandContext lazily loads configuration and wires services so commands
// that need neither (gateways) start instantly.
type commandContext struct {
	jsonOutput bool
	debug      bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func (c *commandContext) logger() *slog.Logger {
	return app.NewLogger(c.debug)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load()
	})
	return c.config, c.configErr
}

// withApp wires the full service graph, runs fn and releases connections.
func (c *commandContext) withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	container, err := app.New(ctx, cfg, c.logger())
	if err != nil {
		return err
	}
	defer container.Close()
	return fn(container)
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "publishctl",
		Short:         "Operate the Yomira comic publish pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&ctx.jsonOutput, "json", false, "Print machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&ctx.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newPreflightCommand(ctx))
	rootCmd.AddCommand(newPublishCommand(ctx))
	rootCmd.AddCommand(newUnpublishCommand(ctx))
	rootCmd.AddCommand(newPinPageCommand(ctx))
	rootCmd.AddCommand(newGatewaysCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))

	return rootCmd
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
