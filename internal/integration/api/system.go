package api

import (
	"context"
	"errors"
	"net/http"
)

// SystemStatus is the response of the backend status endpoint.
type SystemStatus struct {
	Status         string `json:"status"`
	Database       string `json:"database"`
	BookmarksCount int    `json:"bookmarks_count"`
	AIEnabled      *bool  `json:"ai_enabled"`
	Initialized    bool   `json:"initialized"`
}

// SystemStatus reports database state and whether AI enhancement is on.
func (c *Client) SystemStatus(ctx context.Context) (SystemStatus, error) {
	return get[SystemStatus](ctx, c, request{
		method: http.MethodGet,
		path:   "/api/system/status",
	})
}

// AIEnabled reports the ai_enabled flag of SystemStatus. A backend that does
// not report the flag is an error.
func (c *Client) AIEnabled(ctx context.Context) (bool, error) {
	st, err := c.SystemStatus(ctx)
	if err != nil {
		return false, err
	}
	if st.AIEnabled == nil {
		return false, errors.New("system status: ai_enabled not reported")
	}
	return *st.AIEnabled, nil
}

// TagStats summarises the tag vocabulary by category.
type TagStats struct {
	Total              int        `json:"total"`
	Core               int        `json:"core"`
	Fixed              int        `json:"fixed"`
	Dynamic            int        `json:"dynamic"`
	Candidate          int        `json:"candidate"`
	OptimizationNeeded bool       `json:"optimization_needed"`
	TopTags            []TagCount `json:"top_tags"`
}

// TagCount is a tag and how many bookmarks carry it.
type TagCount struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Category string `json:"category"`
}

// TagStats fetches tag statistics.
func (c *Client) TagStats(ctx context.Context) (TagStats, error) {
	return get[TagStats](ctx, c, request{
		method: http.MethodGet,
		path:   "/api/tags/stats",
	})
}
