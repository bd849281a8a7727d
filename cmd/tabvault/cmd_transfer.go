package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/store"
	"github.com/tabvault/tabvault/internal/transfer"
)

var (
	transferToFlag        string
	transferGroupFlag     string
	transferBookmarksFlag []string
	transferToGroupFlag   string
	transferDedupeFlag    bool
	transferChunkFlag     int
)

var copyCmd = &cobra.Command{
	Use:   "copy --to <workspace>",
	Short: "Copy bookmarks from the selected workspace into another",
	Long: `Copy the whole workspace, one group (--group), or an explicit bookmark
list (--bookmark, repeatable) into another workspace. Copies get fresh
IDs; with --dedupe, bookmarks whose URL already exists at the
destination are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, false)
	},
}

var moveCmd = &cobra.Command{
	Use:   "move --to <workspace>",
	Short: "Move bookmarks from the selected workspace into another",
	Long: `Like copy, but bookmarks are removed from the source once their chunk
has been written to the destination.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, true)
	},
}

func runTransfer(cmd *cobra.Command, move bool) error {
	if transferToFlag == "" {
		return fmt.Errorf("no destination workspace (use --to <name>)")
	}
	src, err := resolveWorkspace(cmd)
	if err != nil {
		return err
	}
	saved := workspaceFlag
	workspaceFlag = transferToFlag
	dst, err := resolveWorkspace(cmd)
	workspaceFlag = saved
	if err != nil {
		return err
	}
	if src.ID == dst.ID {
		return fmt.Errorf("source and destination are the same workspace")
	}

	ctx := cmd.Context()
	srcStore, from, err := mgr.Resolve(ctx, src.ID)
	if err != nil {
		return err
	}
	dstStore, to, err := mgr.Resolve(ctx, dst.ID)
	if err != nil {
		return err
	}

	res, err := dispatchTransfer(ctx, srcStore, from, dstStore, to, transferOptions(move))
	if err != nil {
		return err
	}
	verb := "copied"
	if move {
		verb = "moved"
	}
	fmt.Printf("%s %d bookmarks to %q (%d skipped)\n", verb, res.Added, dst.Name, res.Skipped)
	return nil
}

// transferOptions combines the flags with the configured defaults: an
// unset --chunk falls back to the config file's chunkSize.
func transferOptions(move bool) transfer.Options {
	chunk := transferChunkFlag
	if chunk <= 0 {
		chunk = cfg.ChunkSize
	}
	return transfer.Options{
		DedupeByURL: transferDedupeFlag,
		ChunkSize:   chunk,
		Move:        move,
	}
}

func dispatchTransfer(ctx context.Context, srcStore store.Store, from store.Scope, dstStore store.Store, to store.Scope, opts transfer.Options) (transfer.Result, error) {
	switch {
	case len(transferBookmarksFlag) > 0:
		return xfer.CopyBookmarks(ctx, srcStore, from, transferBookmarksFlag, dstStore, to, transferToGroupFlag, opts)
	case transferGroupFlag != "":
		groups, err := srcStore.Load(ctx, from)
		if err != nil {
			return transfer.Result{}, err
		}
		groups = domain.Normalize(groups)
		gi, err := resolveGroup(groups, transferGroupFlag)
		if err != nil {
			return transfer.Result{}, err
		}
		return xfer.CopyGroup(ctx, srcStore, from, groups[gi].ID, dstStore, to, opts)
	default:
		return xfer.CopyWorkspace(ctx, srcStore, from, dstStore, to, opts)
	}
}

func registerTransferFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&transferToFlag, "to", "", "Destination workspace name or ID")
	cmd.Flags().StringVar(&transferGroupFlag, "group", "", "Transfer only this group")
	cmd.Flags().StringArrayVar(&transferBookmarksFlag, "bookmark", nil, "Transfer only this bookmark ID (repeatable)")
	cmd.Flags().StringVar(&transferToGroupFlag, "to-group", "", "Destination group ID for --bookmark transfers")
	cmd.Flags().BoolVar(&transferDedupeFlag, "dedupe", false, "Skip bookmarks whose URL already exists at the destination")
	cmd.Flags().IntVar(&transferChunkFlag, "chunk", 0, "Bookmarks per destination write (default: configured chunkSize)")
}

func init() {
	registerTransferFlags(copyCmd)
	registerTransferFlags(moveCmd)
}
