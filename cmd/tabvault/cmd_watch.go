package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/logger"
	syncbus "github.com/tabvault/tabvault/internal/sync"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the selected workspace and print it on every change",
	Long: `Follow writes other tabvault processes make to the local store and
re-print the workspace each time. Stale notifications (out-of-order
bursts from the filesystem) are dropped by timestamp.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		print := func() {
			groups, err := mgr.Groups(ctx, ws.ID)
			if err != nil {
				log.Warn("failed to reload workspace", logger.Error(err))
				return
			}
			fmt.Printf("-- %s: %d groups, %d bookmarks\n",
				ws.Name, len(groups), domain.CountBookmarks(groups))
		}

		guard := syncbus.NewGuard()
		apply := syncbus.Guarded(guard, func(s syncbus.Signal) {
			if s.WorkspaceID != ws.ID {
				return
			}
			print()
		})

		watcher, err := syncbus.NewStoreWatcher(mgr.Local().Path(), cfg.WatchDebounce, func() {
			apply(syncbus.NewSignal(syncbus.TypeGroupsChanged, cfg.UserID, ws.ID, ""))
		}, log)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()

		print()
		fmt.Println("watching... (ctrl-c to stop)")
		<-ctx.Done()
		return nil
	},
}
