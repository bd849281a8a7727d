package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/exporter"
	"github.com/tabvault/tabvault/internal/importer"
)

var devtoolsFlag string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import bookmarks into the selected workspace",
}

// runImport splices pipeline output into the workspace and reports
// what landed.
func runImport(cmd *cobra.Command, imported []domain.Group) error {
	ws, err := resolveWorkspace(cmd)
	if err != nil {
		return err
	}
	n := domain.CountBookmarks(imported)
	if n == 0 {
		fmt.Println("nothing to import")
		return nil
	}
	if _, err := mgr.Import(cmd.Context(), ws.ID, imported); err != nil {
		return err
	}
	fmt.Printf("imported %d bookmarks in %d groups into %q\n", n, len(imported), ws.Name)
	return nil
}

var importChromeCmd = &cobra.Command{
	Use:   "chrome <file>",
	Short: "Import a Chrome/Chromium Bookmarks file",
	Long: `Import from a Chromium Bookmarks file (usually found under the browser
profile directory). Folders become groups; nested folders are
flattened.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := importer.ReadChromeFile(args[0])
		if err != nil {
			return err
		}
		return runImport(cmd, groups)
	},
}

var importHTMLCmd = &cobra.Command{
	Use:   "html <file>",
	Short: "Import a Netscape bookmarks.html export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := importer.ReadHTMLFile(args[0])
		if err != nil {
			return err
		}
		return runImport(cmd, groups)
	},
}

var importJSONCmd = &cobra.Command{
	Use:   "json <file>",
	Short: "Import a tabvault JSON export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := importer.ReadJSONFile(args[0])
		if err != nil {
			return err
		}
		return runImport(cmd, groups)
	},
}

var importTabsCmd = &cobra.Command{
	Use:   "tabs",
	Short: "Import the open tabs of a running browser",
	Long: `Import every open page of a browser started with remote debugging
enabled (e.g. chromium --remote-debugging-port=9222). Internal pages
(chrome://, devtools) are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		base := devtoolsFlag
		if base == "" {
			base = cfg.DevToolsURL
		}
		groups, err := importer.ReadTabs(cmd.Context(), http.DefaultClient, base)
		if err != nil {
			return err
		}
		return runImport(cmd, groups)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the selected workspace as JSON (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		groups, err := mgr.Groups(cmd.Context(), ws.ID)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return exporter.WriteJSON(os.Stdout, groups)
		}
		if err := exporter.WriteJSONFile(args[0], groups); err != nil {
			return err
		}
		fmt.Printf("exported %d bookmarks to %s\n", domain.CountBookmarks(groups), args[0])
		return nil
	},
}

func init() {
	importTabsCmd.Flags().StringVar(&devtoolsFlag, "devtools", "", "Browser debugging endpoint (default "+importer.DefaultDevToolsURL+")")

	importCmd.AddCommand(importChromeCmd)
	importCmd.AddCommand(importHTMLCmd)
	importCmd.AddCommand(importJSONCmd)
	importCmd.AddCommand(importTabsCmd)
}
