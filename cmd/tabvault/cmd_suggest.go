package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/grouping"
)

var suggestApplyFlag bool

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest a grouping for the unsorted bookmarks of a workspace",
	Long: `Ask the server to propose named groups for the bookmarks still sitting
in the empty group. Without a configured server (or when it is
unreachable) everything lands in a single "` + grouping.DefaultGroupName + `" group.

With --apply the suggestion is written back: groups are created as
needed and the bookmarks are moved into them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		groups, err := mgr.Groups(ctx, ws.ID)
		if err != nil {
			return err
		}

		// Only the placeholder's content is up for regrouping; named
		// groups reflect explicit user intent.
		var unsorted []domain.Bookmark
		for _, g := range groups {
			if g.IsPlaceholder() {
				unsorted = g.Bookmarks
			}
		}
		if len(unsorted) == 0 {
			fmt.Println("no unsorted bookmarks")
			return nil
		}

		items := make([]grouping.Item, 0, len(unsorted))
		byURL := make(map[string]string, len(unsorted)) // url -> bookmark ID
		for _, b := range unsorted {
			items = append(items, grouping.Item{Name: b.Name, URL: b.URL})
			byURL[b.URL] = b.ID
		}

		var suggestion []grouping.ResultGroup
		if cfg.APIBaseURL != "" {
			suggestion = grouping.NewClient(cfg.APIBaseURL, cfg.APIToken, log).Group(ctx, items)
		} else {
			suggestion = grouping.Fallback(items)
		}

		for _, g := range suggestion {
			fmt.Printf("%s (%d)\n", g.GroupName, len(g.Bookmarks))
			for _, it := range g.Bookmarks {
				fmt.Printf("    %-30s %s\n", it.Name, it.URL)
			}
		}
		if !suggestApplyFlag {
			return nil
		}

		for _, sg := range suggestion {
			target, err := findOrCreateGroup(cmd, ws.ID, sg.GroupName)
			if err != nil {
				return err
			}
			for _, it := range sg.Bookmarks {
				id, ok := byURL[it.URL]
				if !ok {
					continue
				}
				if err := mgr.MoveBookmark(ctx, ws.ID, id, target); err != nil {
					return err
				}
			}
		}
		fmt.Println("suggestion applied")
		return nil
	},
}

func findOrCreateGroup(cmd *cobra.Command, workspaceID, name string) (string, error) {
	groups, err := mgr.Groups(cmd.Context(), workspaceID)
	if err != nil {
		return "", err
	}
	if gi, err := resolveGroup(groups, name); err == nil {
		return groups[gi].ID, nil
	}
	g, err := mgr.AddGroup(cmd.Context(), workspaceID, name)
	if err != nil {
		return "", err
	}
	return g.ID, nil
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestApplyFlag, "apply", false, "Create the suggested groups and move the bookmarks into them")
}
