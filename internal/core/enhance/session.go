package enhance

import (
	"context"

	"k8s.io/utils/clock"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
)

// session is the state of one enhancement run. Only the session goroutine
// reads or writes the fields below the channel.
type session struct {
	id         string
	bookmarkID int
	cancel     context.CancelFunc
	ticker     clock.Ticker
	triggered  chan error

	previous bookmark.Bookmark // last state reported to the presenter
	last     bookmark.Bookmark // last fetched state
	known    bool              // last holds a real snapshot

	requestFinished bool
	attempts        int
	pollFailures    int
}
