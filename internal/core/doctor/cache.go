package doctor

import (
	"context"
	"fmt"
)

// CacheStore is the subset of the KV store the cache check needs.
type CacheStore interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	SweepExpired(ctx context.Context) (int64, error)
}

// CacheCheck reports the size of the offline cache. With autofix expired
// entries are removed.
type CacheCheck struct {
	store   CacheStore
	prefix  string
	enabled bool
	autofix bool
}

// NewCacheCheck creates a new offline cache check.
func NewCacheCheck(store CacheStore, prefix string, enabled, autofix bool) *CacheCheck {
	return &CacheCheck{store: store, prefix: prefix, enabled: enabled, autofix: autofix}
}

func (c *CacheCheck) Name() string {
	return "Offline Cache"
}

func (c *CacheCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if !c.enabled || c.store == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "cache",
			Status: StatusPass,
			Detail: "disabled",
		})
		return result
	}

	if c.autofix {
		n, err := c.store.SweepExpired(ctx)
		if err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  "sweep",
				Status: StatusFail,
				Detail: err.Error(),
			})
		} else {
			result.Items = append(result.Items, CheckItem{
				Label:  "sweep",
				Status: StatusPass,
				Detail: fmt.Sprintf("removed %d expired entries", n),
			})
		}
	}

	keys, err := c.store.ListKeys(ctx, c.prefix)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "entries",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "entries",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d cached", len(keys)),
	})
	return result
}
