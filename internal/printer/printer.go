// Package printer writes styled, human oriented command output.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/riccilnl/linkgenie/internal/core/styles"
)

type ctxKey struct{}

// Printer writes status lines. Styling is applied only when the writer is a
// terminal.
type Printer struct {
	w     io.Writer
	color bool
}

// New creates a Printer for w.
func New(w io.Writer) *Printer {
	return &Printer{w: w, color: IsTerminal(w)}
}

// NewPlain creates a Printer that never styles its output.
func NewPlain(w io.Writer) *Printer {
	return &Printer{w: w}
}

// NewContext returns a context carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or a stderr Printer.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok && p != nil {
		return p
	}
	return New(os.Stderr)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of w, or fallback when unknown.
func Width(w io.Writer, fallback int) int {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.w }

// Color reports whether output is styled.
func (p *Printer) Color() bool { return p.color }

// Render applies style when color is enabled.
func (p *Printer) Render(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

func (p *Printer) line(icon string, style lipgloss.Style, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if icon != "" {
		msg = p.Render(style, icon) + " " + msg
	}
	_, _ = fmt.Fprintln(p.w, msg)
}

// Printf writes an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// Infof writes an informational line.
func (p *Printer) Infof(format string, args ...any) {
	p.line("•", styles.InfoStyle, format, args...)
}

// Success writes a success line.
func (p *Printer) Success(msg string) {
	p.line(styles.IconCheck, styles.SuccessStyle, "%s", msg)
}

// Successf writes a formatted success line.
func (p *Printer) Successf(format string, args ...any) {
	p.line(styles.IconCheck, styles.SuccessStyle, format, args...)
}

// Warnf writes a warning line.
func (p *Printer) Warnf(format string, args ...any) {
	p.line(styles.IconWarning, styles.WarningStyle, format, args...)
}

// Errorf writes an error line.
func (p *Printer) Errorf(format string, args ...any) {
	p.line(styles.IconCross, styles.ErrorStyle, format, args...)
}

// Pendingf writes a line for work still in progress.
func (p *Printer) Pendingf(format string, args ...any) {
	p.line(styles.IconPending, styles.PendingStyle, format, args...)
}

// Section writes a bold heading followed by a divider.
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintln(p.w, p.Render(styles.HeaderStyle, title))
	_, _ = fmt.Fprintln(p.w, p.Render(styles.DividerStyle, strings.Repeat("─", 40)))
}

// CheckItem writes an indented passing item.
func (p *Printer) CheckItem(label, detail string) {
	p.item(styles.IconCheck, styles.SuccessStyle, label, detail)
}

// WarnItem writes an indented warning item.
func (p *Printer) WarnItem(label, detail string) {
	p.item("●", styles.WarningStyle, label, detail)
}

// FailItem writes an indented failing item.
func (p *Printer) FailItem(label, detail string) {
	p.item(styles.IconCross, styles.ErrorStyle, label, detail)
}

func (p *Printer) item(icon string, style lipgloss.Style, label, detail string) {
	if detail != "" {
		detail = " " + p.Render(styles.MutedStyle, detail)
	}
	_, _ = fmt.Fprintf(p.w, "  %s %s%s\n", p.Render(style, icon), label, detail)
}
