package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
	"github.com/riccilnl/linkgenie/internal/core/styles"
)

// bookmarkMarkdown formats a bookmark as a markdown document.
func bookmarkMarkdown(b bookmark.Bookmark) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", b.DisplayTitle())
	fmt.Fprintf(&sb, "<%s>\n\n", b.URL)

	if b.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", b.Description)
	}

	if len(b.TagNames) > 0 {
		tags := make([]string, len(b.TagNames))
		for i, t := range b.TagNames {
			tags[i] = "`#" + t + "`"
		}
		fmt.Fprintf(&sb, "%s\n\n", strings.Join(tags, " "))
	}

	if b.Notes != "" {
		fmt.Fprintf(&sb, "## Notes\n\n%s\n\n", b.Notes)
	}

	var meta []string
	meta = append(meta, fmt.Sprintf("id %d", b.ID))
	if !b.DateAdded.IsZero() {
		meta = append(meta, "added "+b.DateAdded.Format("2006-01-02"))
	}
	if b.IsFavorite {
		meta = append(meta, "favorite")
	}
	if b.Unread {
		meta = append(meta, "unread")
	}
	fmt.Fprintf(&sb, "*%s*\n", strings.Join(meta, " · "))

	return sb.String()
}

func renderMarkdown(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
