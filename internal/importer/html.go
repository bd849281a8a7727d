package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/tabvault/tabvault/internal/domain"
)

// ErrInvalidHTML is the user-facing error for files the HTML parser
// rejects outright.
var ErrInvalidHTML = errors.New("file is not a valid bookmark export (expected Netscape bookmark HTML)")

// ReadHTML parses Netscape bookmark HTML, the format browsers produce
// via "Export bookmarks". Folders become groups; nesting is flattened,
// each folder turning into its own group. Anchors outside any folder
// land in an "Imported" group.
func ReadHTML(r io.Reader) ([]domain.Group, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, ErrInvalidHTML
	}

	var groups []domain.Group
	var stack []int // indexes into groups, innermost folder last
	pending := -1   // group awaiting its <DL> contents
	loose := -1     // synthesized group for folderless anchors

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := textContent(n)
				if name == "" {
					name = "Imported"
				}
				if g, err := domain.NewGroup(name); err == nil {
					groups = append(groups, g)
					pending = len(groups) - 1
				}
				return

			case "a":
				href := attr(n, "href")
				if href == "" {
					return
				}
				b, err := domain.NewBookmark(textContent(n), href)
				if err != nil {
					return
				}
				gi := loose
				if len(stack) > 0 {
					gi = stack[len(stack)-1]
				} else if gi < 0 {
					if g, err := domain.NewGroup("Imported"); err == nil {
						groups = append(groups, g)
						loose = len(groups) - 1
						gi = loose
					}
				}
				if gi >= 0 {
					groups[gi].Bookmarks = append(groups[gi].Bookmarks, b)
				}
				return

			case "dl":
				pushed := false
				if pending >= 0 {
					stack = append(stack, pending)
					pending = -1
					pushed = true
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}
				if pushed {
					stack = stack[:len(stack)-1]
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}
	parse(doc)

	// Folders that ended up empty carry no information.
	out := groups[:0]
	for _, g := range groups {
		if len(g.Bookmarks) > 0 {
			out = append(out, g)
		}
	}
	return out, nil
}

// ReadHTMLFile reads a Netscape bookmark export from disk.
func ReadHTMLFile(path string) ([]domain.Group, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bookmark export: %w", err)
	}
	defer f.Close()
	return ReadHTML(f)
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
