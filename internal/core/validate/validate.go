// Package validate provides shared validation functions for bookmark input.
package validate

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/hay-kot/criterio"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
)

// URL validates that raw is an absolute http or https URL.
func URL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must use http or https, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}

// TagName validates a tag is non-empty and contains no whitespace.
func TagName(tag string) error {
	if tag == "" {
		return fmt.Errorf("tag is required")
	}
	if strings.IndexFunc(tag, unicode.IsSpace) >= 0 {
		return fmt.Errorf("tag %q must not contain whitespace", tag)
	}
	return nil
}

// TagNames validates every tag in tags.
func TagNames(tags []string) error {
	for _, t := range tags {
		if err := TagName(t); err != nil {
			return err
		}
	}
	return nil
}

// Create validates a bookmark creation request, reporting every invalid
// field.
func Create(in bookmark.Create) error {
	return criterio.ValidateStruct(
		criterio.Run("url", in.URL, URL),
		criterio.Run("tag_names", in.TagNames, TagNames),
	)
}
