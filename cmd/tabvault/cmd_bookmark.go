package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tabvault/tabvault/internal/domain"
)

var bookmarkGroupFlag string

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "Manage bookmarks in a workspace",
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add <url> [name]",
	Short: "Add a bookmark (lands in the empty group unless --group is set)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 2 {
			name = args[1]
		}

		groupID := ""
		if bookmarkGroupFlag != "" {
			groups, err := mgr.Groups(cmd.Context(), ws.ID)
			if err != nil {
				return err
			}
			gi, err := resolveGroup(groups, bookmarkGroupFlag)
			if err != nil {
				return err
			}
			groupID = groups[gi].ID
		}

		b, err := mgr.AddBookmark(cmd.Context(), ws.ID, groupID, name, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("added %q (%s)\n", b.Name, b.ID)
		return nil
	},
}

var bookmarkRenameCmd = &cobra.Command{
	Use:   "rename <bookmark-id> <new-name>",
	Short: "Rename a bookmark",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		return mgr.RenameBookmark(cmd.Context(), ws.ID, args[0], args[1])
	},
}

var bookmarkDeleteCmd = &cobra.Command{
	Use:   "delete <bookmark-id>",
	Short: "Delete a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		return mgr.DeleteBookmark(cmd.Context(), ws.ID, args[0])
	},
}

var bookmarkMoveCmd = &cobra.Command{
	Use:   "move <bookmark-id> <group>",
	Short: "Move a bookmark into another group of the same workspace",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		groups, err := mgr.Groups(cmd.Context(), ws.ID)
		if err != nil {
			return err
		}
		gi, err := resolveGroup(groups, args[1])
		if err != nil {
			return err
		}
		return mgr.MoveBookmark(cmd.Context(), ws.ID, args[0], groups[gi].ID)
	},
}

var bookmarkReorderCmd = &cobra.Command{
	Use:   "reorder <bookmark-id> <index>",
	Short: "Move a bookmark to a new position within its group (0-based)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("index must be a number: %w", err)
		}
		return mgr.ReorderBookmark(cmd.Context(), ws.ID, args[0], idx)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the groups and bookmarks of the selected workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		groups, err := mgr.Groups(cmd.Context(), ws.ID)
		if err != nil {
			return err
		}
		selected, _ := mgr.SelectedGroup(cmd.Context(), ws.ID)

		for _, g := range groups {
			name := g.GroupName
			if g.IsPlaceholder() {
				name = "(unsorted)"
			}
			marker := " "
			if g.ID == selected {
				marker = "*"
			}
			fmt.Printf("%s %s (%d)\n", marker, name, len(g.Bookmarks))
			for _, b := range g.Bookmarks {
				fmt.Printf("    %-30s %s  [%s]\n", b.Name, b.URL, b.ID)
			}
		}
		fmt.Printf("%d bookmarks total\n", domain.CountBookmarks(groups))
		return nil
	},
}

func init() {
	bookmarkAddCmd.Flags().StringVarP(&bookmarkGroupFlag, "group", "g", "", "Target group name or ID")

	bookmarkCmd.AddCommand(bookmarkAddCmd)
	bookmarkCmd.AddCommand(bookmarkRenameCmd)
	bookmarkCmd.AddCommand(bookmarkDeleteCmd)
	bookmarkCmd.AddCommand(bookmarkMoveCmd)
	bookmarkCmd.AddCommand(bookmarkReorderCmd)
}
