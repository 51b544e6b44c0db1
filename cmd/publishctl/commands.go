// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-publish/internal/app"
	"github.com/taibuivan/yomira-publish/internal/contentstore"
	"github.com/taibuivan/yomira-publish/internal/platform/migration"
	"github.com/taibuivan/yomira-publish/internal/publish"
)

// errPublishFailed makes a failed run exit non-zero after its trail is printed.
var errPublishFailed = errors.New("publish failed")

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight <comic-id>",
		Short: "Check whether a comic is ready to publish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(container *app.App) error {
				report, err := container.Orchestrator.Preflight(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput {
					return writeJSON(cmd, report)
				}
				renderPreflight(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}
}

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var opts publish.Options

	cmd := &cobra.Command{
		Use:   "publish <comic-id>",
		Short: "Run the publish pipeline for a comic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(container *app.App) error {
				result, err := container.Orchestrator.Publish(cmd.Context(), args[0], opts)
				if err != nil {
					return err
				}
				if ctx.jsonOutput {
					if err := writeJSON(cmd, result); err != nil {
						return err
					}
				} else {
					renderResult(cmd.OutOrStdout(), result)
				}
				if err := result.Err(); err != nil {
					return fmt.Errorf("%w: %w", errPublishFailed, err)
				}
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.Mint, "mint", false, "Mint a token referencing the metadata")
	flags.StringVar(&opts.Network, "network", "", "Chain network name (default network when empty)")
	flags.StringVar(&opts.OwnerAddress, "owner", "", "Address receiving the token")
	flags.StringVar(&opts.ContractAddress, "contract", "", "Contract address (network default when empty)")

	return cmd
}

func newUnpublishCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unpublish <comic-id>",
		Short: "Return a comic to draft; pins and tokens are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(container *app.App) error {
				updated, err := container.Orchestrator.Unpublish(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput {
					return writeJSON(cmd, updated)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", updated.Title, updated.Status)
				return nil
			})
		},
	}
}

func newPinPageCommand(ctx *commandContext) *cobra.Command {
	var mimeType string

	cmd := &cobra.Command{
		Use:   "pin-page <comic-id> <page-number> <image-file>",
		Short: "Pin a new image for an existing page",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageNumber, err := strconv.Atoi(args[1])
			if err != nil || pageNumber < 1 {
				return fmt.Errorf("page number must be a positive integer, got %q", args[1])
			}

			data, err := os.ReadFile(args[2])
			if err != nil {
				return err
			}
			if strings.TrimSpace(mimeType) == "" {
				mimeType = http.DetectContentType(data)
			}

			return ctx.withApp(cmd.Context(), func(container *app.App) error {
				page, err := container.Pinner.AttachPageImage(cmd.Context(), args[0], pageNumber, data, filepath.Base(args[2]), mimeType)
				if err != nil {
					return err
				}
				if ctx.jsonOutput {
					return writeJSON(cmd, page)
				}
				renderPage(cmd.OutOrStdout(), page)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&mimeType, "mime", "", "Override the detected MIME type")
	return cmd
}

func newGatewaysCommand(ctx *commandContext) *cobra.Command {
	var mirrors []string

	cmd := &cobra.Command{
		Use:   "gateways <cid>",
		Short: "List the gateway URLs of a CID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(mirrors) == 0 {
				mirrors = strings.Split(os.Getenv("IPFS_GATEWAYS"), ",")
			}
			urls := contentstore.NewGateways(mirrors).ResolveAll(args[0])
			if ctx.jsonOutput {
				return writeJSON(cmd, map[string]any{"cid": args[0], "ipfs_uri": contentstore.IPFSURI(args[0]), "urls": urls})
			}
			renderGateways(cmd.OutOrStdout(), args[0], urls)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&mirrors, "mirror", nil, "Gateway base URL (repeatable); defaults to IPFS_GATEWAYS")
	return cmd
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the publish schema",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, ctx.logger()); err != nil {
				return err
			}
			state, err := migration.Status(cfg.DatabaseURL, cfg.MigrationPath, ctx.logger())
			if err != nil {
				return err
			}
			return printMigrationState(cmd, ctx, state)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			state, err := migration.Status(cfg.DatabaseURL, cfg.MigrationPath, ctx.logger())
			if err != nil {
				return err
			}
			return printMigrationState(cmd, ctx, state)
		},
	})

	return migrateCmd
}

func printMigrationState(cmd *cobra.Command, ctx *commandContext, state migration.State) error {
	if ctx.jsonOutput {
		return writeJSON(cmd, state)
	}
	fmt.Fprintln(cmd.OutOrStdout(), describeMigrationState(state))
	return nil
}
