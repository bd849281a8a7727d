package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage groups in a workspace",
}

var groupAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		g, err := mgr.AddGroup(cmd.Context(), ws.ID, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("created group %q (%s)\n", g.GroupName, g.ID)
		return nil
	},
}

var groupRenameCmd = &cobra.Command{
	Use:   "rename <group> <new-name>",
	Short: "Rename a group",
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
		gi, err := resolveGroup(groups, args[0])
		if err != nil {
			return err
		}
		return mgr.RenameGroup(cmd.Context(), ws.ID, groups[gi].ID, args[1])
	},
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete <group>",
	Short: "Delete a group and its bookmarks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		groups, err := mgr.Groups(cmd.Context(), ws.ID)
		if err != nil {
			return err
		}
		gi, err := resolveGroup(groups, args[0])
		if err != nil {
			return err
		}
		return mgr.DeleteGroup(cmd.Context(), ws.ID, groups[gi].ID)
	},
}

var groupReorderCmd = &cobra.Command{
	Use:   "reorder <group> <index>",
	Short: "Move a group to a new position (0-based)",
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
		groups, err := mgr.Groups(cmd.Context(), ws.ID)
		if err != nil {
			return err
		}
		gi, err := resolveGroup(groups, args[0])
		if err != nil {
			return err
		}
		return mgr.ReorderGroup(cmd.Context(), ws.ID, groups[gi].ID, idx)
	},
}

var groupSelectCmd = &cobra.Command{
	Use:   "select <group>",
	Short: "Record the active group so other views follow it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		groups, err := mgr.Groups(cmd.Context(), ws.ID)
		if err != nil {
			return err
		}
		gi, err := resolveGroup(groups, args[0])
		if err != nil {
			return err
		}
		return mgr.SelectGroup(cmd.Context(), ws.ID, groups[gi].ID)
	},
}

func init() {
	groupCmd.AddCommand(groupAddCmd)
	groupCmd.AddCommand(groupRenameCmd)
	groupCmd.AddCommand(groupDeleteCmd)
	groupCmd.AddCommand(groupReorderCmd)
	groupCmd.AddCommand(groupSelectCmd)
}
