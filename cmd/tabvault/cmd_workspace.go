package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tabvault/tabvault/internal/domain"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage workspaces",
}

var workspaceCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a workspace (local mode)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := mgr.CreateWorkspace(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("created workspace %q (%s)\n", ws.Name, ws.ID)
		return nil
	},
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaces, err := mgr.ListWorkspaces(cmd.Context())
		if err != nil {
			return err
		}
		if len(workspaces) == 0 {
			fmt.Println("No workspaces yet. Create one with: tabvault workspace create <name>")
			return nil
		}
		for _, ws := range workspaces {
			fmt.Printf("%-20s %-8s %s\n", ws.Name, ws.StorageMode, ws.ID)
		}
		return nil
	},
}

var workspaceDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the selected workspace and its data",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		if err := mgr.DeleteWorkspace(cmd.Context(), ws.ID); err != nil {
			return err
		}
		fmt.Printf("deleted workspace %q\n", ws.Name)
		return nil
	},
}

var workspaceModeCmd = &cobra.Command{
	Use:   "mode <local|remote>",
	Short: "Migrate the selected workspace between local and remote storage",
	Long: `Migrate a workspace's data between the on-device sqlite store and the
encrypted cloud store. The destination is checked for availability
before any data moves; on success the data lives only at the
destination and the workspace's mode flag is updated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := domain.ParseStorageMode(args[0])
		if err != nil {
			return err
		}
		ws, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		if err := mgr.ChangeStorageMode(cmd.Context(), ws.ID, mode); err != nil {
			return err
		}
		fmt.Printf("workspace %q now stored in %s mode\n", ws.Name, mode)
		return nil
	},
}

func init() {
	workspaceCmd.AddCommand(workspaceCreateCmd)
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceDeleteCmd)
	workspaceCmd.AddCommand(workspaceModeCmd)
}
