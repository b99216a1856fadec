package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
	"github.com/riccilnl/linkgenie/internal/core/styles"
	"github.com/riccilnl/linkgenie/pkg/tmpl"
)

// ValidationError is a configuration problem that must be fixed.
type ValidationError struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidationCheck is a passing check reported for visibility.
type ValidationCheck struct {
	Category string   `json:"category"`
	Message  string   `json:"message"`
	Details  []string `json:"details,omitempty"`
}

// ValidationResult aggregates the outcome of `linkgenie config validate`.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
	Checks   []ValidationCheck
}

// IsValid reports whether no errors were found.
func (r *ValidationResult) IsValid() bool { return len(r.Errors) == 0 }

// ErrorCount returns the number of errors.
func (r *ValidationResult) ErrorCount() int { return len(r.Errors) }

// listFormatSample is rendered against ui.list_format during validation.
var listFormatSample = bookmark.Bookmark{
	ID:          1,
	URL:         "https://example.com",
	Title:       "Example",
	Description: "An example bookmark",
	TagNames:    []string{"example"},
	DateAdded:   time.Unix(0, 0),
}

// ValidateDeep performs comprehensive validation of the configuration including
// template syntax, theme names, and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		criterio.Run("ui.theme", c.UI.Theme, isKnownTheme),
		criterio.Run("ui.list_format", c.UI.ListFormat, validateListFormat),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.API.Token == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "API",
			Item:     "api.token",
			Message:  "no API token configured; requests will be unauthenticated",
		})
	}

	if strings.HasPrefix(c.API.BaseURL, "http://") && c.API.Token != "" && !isLoopback(c.API.BaseURL) {
		warnings = append(warnings, ValidationWarning{
			Category: "API",
			Item:     "api.base_url",
			Message:  "API token is sent over plain http",
		})
	}

	if !c.Cache.IsEnabled() {
		warnings = append(warnings, ValidationWarning{
			Category: "Cache",
			Message:  "offline cache disabled; reads fail when the backend is unreachable",
		})
	}

	return warnings
}

// Check runs every validation and groups the outcome for display.
func (c *Config) Check(configPath string) *ValidationResult {
	result := &ValidationResult{Warnings: c.Warnings()}

	err := c.ValidateDeep(configPath)

	var fieldErrs criterio.FieldErrors
	switch {
	case err == nil:
		result.Checks = append(result.Checks,
			ValidationCheck{
				Category: "Config",
				Message:  "configuration is well formed",
				Details:  configDetails(configPath),
			},
			ValidationCheck{
				Category: "API",
				Message:  "base url " + c.API.BaseURL,
			},
		)
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			result.Errors = append(result.Errors, ValidationError{
				Category: categoryFor(fe.Field),
				Item:     fe.Field,
				Message:  fe.Err.Error(),
				Fix:      fixFor(fe.Field),
			})
		}
	default:
		result.Errors = append(result.Errors, ValidationError{
			Category: "Config",
			Message:  err.Error(),
		})
	}

	return result
}

func configDetails(configPath string) []string {
	if configPath == "" {
		return nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return []string{"no config file at " + configPath + ", using defaults"}
	}
	return []string{"loaded " + configPath}
}

func categoryFor(field string) string {
	switch {
	case strings.HasPrefix(field, "ui."):
		return "UI"
	case field == "data_dir":
		return "Data"
	default:
		return "Config"
	}
}

func fixFor(field string) string {
	switch field {
	case "ui.theme":
		return "use one of: " + strings.Join(styles.ThemeNames(), ", ")
	case "ui.list_format":
		return "fields are those of a bookmark, e.g. {{ .ID }} {{ .Title }}"
	default:
		return ""
	}
}

// validateFileAccess checks config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func isKnownTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q", name)
	}
	return nil
}

func validateListFormat(format string) error {
	if err := tmpl.Validate(format, listFormatSample); err != nil {
		return fmt.Errorf("template error: %w", err)
	}
	return nil
}

func isLoopback(baseURL string) bool {
	rest := strings.TrimPrefix(baseURL, "http://")
	return strings.HasPrefix(rest, "localhost") || strings.HasPrefix(rest, "127.0.0.1") || strings.HasPrefix(rest, "[::1]")
}
