// Package main implements the tabvault CLI: local-first bookmark
// management with optional sync to a tabvaultd server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tabvault/tabvault/internal/config"
	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/logger"
	"github.com/tabvault/tabvault/internal/manager"
	"github.com/tabvault/tabvault/internal/store"
	"github.com/tabvault/tabvault/internal/store/remote"
	"github.com/tabvault/tabvault/internal/store/sqlite"
	"github.com/tabvault/tabvault/internal/transfer"
)

var (
	// Global flags
	cfgPath       string
	workspaceFlag string

	cfg   *config.ClientConfig
	log   logger.Logger
	local *sqlite.Storage
	mgr   *manager.Manager
	xfer  *transfer.Engine
)

var rootCmd = &cobra.Command{
	Use:   "tabvault",
	Short: "tabvault - workspace-scoped bookmark manager",
	Long: `tabvault organizes bookmarks into named groups inside workspaces.

Each workspace stores its data either on this device (sqlite) or in the
encrypted cloud store behind a tabvaultd server, and can be migrated
between the two at any time.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadClient(cfgPath)
		if err != nil {
			return err
		}
		log = logger.New(cfg.LogLevel, cfg.PrettyLog)

		local, err = sqlite.New(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open local store: %w", err)
		}

		var remoteStore store.Store
		if cfg.APIBaseURL != "" {
			remoteStore = remote.New(cfg.APIBaseURL, cfg.APIToken)
		}

		mgr = manager.New(cfg.UserID, local, remoteStore, nil, log)
		xfer = transfer.New(log)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if local != nil {
			_ = local.Close()
		}
		if log != nil {
			_ = log.Sync()
		}
	},
}

// resolveWorkspace maps the -w flag (workspace name or ID) to a
// registry record.
func resolveWorkspace(cmd *cobra.Command) (domain.Workspace, error) {
	if workspaceFlag == "" {
		return domain.Workspace{}, fmt.Errorf("no workspace selected (use -w <name>)")
	}
	workspaces, err := mgr.ListWorkspaces(cmd.Context())
	if err != nil {
		return domain.Workspace{}, err
	}
	for _, ws := range workspaces {
		if ws.ID == workspaceFlag || ws.Name == workspaceFlag {
			return ws, nil
		}
	}
	return domain.Workspace{}, fmt.Errorf("workspace %q not found", workspaceFlag)
}

// resolveGroup maps a group name or ID to its index in the list, the
// placeholder included.
func resolveGroup(groups []domain.Group, ref string) (int, error) {
	for i := range groups {
		if groups[i].ID == ref || groups[i].GroupName == ref {
			return i, nil
		}
	}
	return -1, fmt.Errorf("group %q not found", ref)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default: "+config.DefaultClientConfigPath()+")")
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "", "Workspace name or ID")

	rootCmd.AddCommand(workspaceCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(bookmarkCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
