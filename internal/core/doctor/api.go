package doctor

import (
	"context"
	"errors"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
)

// Backend is the subset of the API client the API check exercises.
type Backend interface {
	BaseURL() string
	HealthStatus(ctx context.Context) (string, error)
	AIEnabled(ctx context.Context) (bool, error)
	bookmark.Reader
}

// APICheck verifies the backend is reachable, accepts the token and has AI
// enhancement turned on.
type APICheck struct {
	backend      Backend
	unauthorized error
}

// NewAPICheck creates a new API check. Errors matching unauthorized are
// reported as a rejected token.
func NewAPICheck(backend Backend, unauthorized error) *APICheck {
	return &APICheck{backend: backend, unauthorized: unauthorized}
}

func (c *APICheck) Name() string {
	return "API"
}

func (c *APICheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}
	base := c.backend.BaseURL()

	status, err := c.backend.HealthStatus(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  base,
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}
	result.Items = append(result.Items, CheckItem{
		Label:  base,
		Status: StatusPass,
		Detail: status,
	})

	_, err = c.backend.Bookmarks(ctx, bookmark.Query{Limit: 1})
	switch {
	case err == nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "auth",
			Status: StatusPass,
		})
	case c.unauthorized != nil && errors.Is(err, c.unauthorized):
		result.Items = append(result.Items, CheckItem{
			Label:  "auth",
			Status: StatusFail,
			Detail: "token rejected; set api.token or LINKGENIE_TOKEN",
		})
		return result
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "auth",
			Status: StatusWarn,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, c.aiItem(ctx))
	return result
}

func (c *APICheck) aiItem(ctx context.Context) CheckItem {
	enabled, err := c.backend.AIEnabled(ctx)
	switch {
	case err != nil:
		return CheckItem{Label: "ai", Status: StatusWarn, Detail: err.Error()}
	case !enabled:
		return CheckItem{
			Label:  "ai",
			Status: StatusFail,
			Detail: "AI enhancement is disabled on the backend; enhance requests will not fill in content",
		}
	default:
		return CheckItem{Label: "ai", Status: StatusPass, Detail: "enabled"}
	}
}
