// Package styles provides shared lipgloss styles for CLI output.
package styles

import (
	"hash/fnv"

	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports, rebuilt by SetTheme.
var (
	HeaderStyle  lipgloss.Style
	TitleStyle   lipgloss.Style
	URLStyle     lipgloss.Style
	MutedStyle   lipgloss.Style
	DividerStyle lipgloss.Style

	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	InfoStyle    lipgloss.Style

	// PendingStyle marks bookmarks with an enhancement in flight.
	PendingStyle lipgloss.Style
	TagStyle     lipgloss.Style
	EnabledStyle lipgloss.Style
)

// tagColors is used for deterministic tag coloring.
var tagColors []lipgloss.Color

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Foreground)
	URLStyle = lipgloss.NewStyle().Foreground(p.Secondary).Underline(true)
	MutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	DividerStyle = lipgloss.NewStyle().Foreground(p.Surface)

	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	WarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error).Bold(true)
	InfoStyle = lipgloss.NewStyle().Foreground(p.Primary)

	PendingStyle = lipgloss.NewStyle().Foreground(p.Warning).Italic(true)
	TagStyle = lipgloss.NewStyle().Foreground(p.Secondary)
	EnabledStyle = lipgloss.NewStyle().Foreground(p.Success).Bold(true)

	tagColors = []lipgloss.Color{p.Primary, p.Secondary, p.Success, p.Warning, p.Error}
}

// TagColor returns a stable color for a tag name.
func TagColor(tag string) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tag))
	return tagColors[h.Sum32()%uint32(len(tagColors))]
}

func init() {
	p, _ := GetPalette(DefaultTheme)
	SetTheme(p)
}

func hexPtr(c lipgloss.Color) *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() ansi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := hexPtr(CurrentPalette.Foreground)
	primary := hexPtr(CurrentPalette.Primary)
	secondary := hexPtr(CurrentPalette.Secondary)
	muted := hexPtr(CurrentPalette.Muted)
	surface := hexPtr(CurrentPalette.Surface)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = surface
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	return cfg
}
