// Package tmpl renders user supplied Go templates for list output, such as
// `linkgenie ls --format '{{ .ID }} {{ .URL | shq }}'`.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"
)

// shellQuote returns a shell-safe quoted string. It wraps the string in single
// quotes and escapes any existing single quotes using the '\” technique.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	escaped := strings.ReplaceAll(s, "'", `'\''`)
	return "'" + escaped + "'"
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(n int, s string) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}

func orDefault(def, s string) string {
	if s != "" {
		return s
	}
	return def
}

func date(layout string, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(layout)
}

var funcs = template.FuncMap{
	"shq":      shellQuote,
	"join":     strings.Join,
	"truncate": truncate,
	"default":  orDefault,
	"upper":    strings.ToUpper,
	"lower":    strings.ToLower,
	"date":     date,
}

// Template is a parsed template that can be executed many times, once per
// row of output.
type Template struct {
	t *template.Template
}

// Parse compiles a template string. References to undefined map keys fail
// at execution time.
func Parse(text string) (*Template, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return &Template{t: t}, nil
}

// Execute renders the template with data.
func (t *Template) Execute(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// Render parses and executes a template string in one step.
//
// Available template functions:
//   - shq: Shell-quote a string for safe use in shell commands
//   - join: Join string slice with separator (e.g., join .TagNames ",")
//   - truncate: Cut to N runes (e.g., .Title | truncate 40)
//   - default: Fallback for empty strings (e.g., .Title | default .URL)
//   - upper, lower: Change case
//   - date: Format a time (e.g., .DateAdded | date "2006-01-02")
func Render(text string, data any) (string, error) {
	t, err := Parse(text)
	if err != nil {
		return "", err
	}
	return t.Execute(data)
}

// Validate checks that text parses and executes against sample.
func Validate(text string, sample any) error {
	_, err := Render(text, sample)
	return err
}
