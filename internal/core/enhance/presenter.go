package enhance

import (
	"github.com/riccilnl/linkgenie/internal/core/bookmark"
)

// Message is the terminal status of one enhancement session.
type Message struct {
	SessionID  string
	BookmarkID int
	Outcome    Outcome
	Text       string
	Attempts   int
	Err        error // cause for failure outcomes, nil otherwise
}

// Presenter receives the observable progress of enhancement sessions.
//
// ItemUpdated is called one or more times per session; the last call is
// authoritative. StatusMessage is called exactly once, at termination.
// Both may be called from tracker goroutines and must not block for long.
type Presenter interface {
	ItemUpdated(b bookmark.Bookmark)
	StatusMessage(msg Message)
}

// Presenters fans calls out to every presenter in order.
type Presenters []Presenter

var _ Presenter = Presenters(nil)

func (ps Presenters) ItemUpdated(b bookmark.Bookmark) {
	for _, p := range ps {
		p.ItemUpdated(b)
	}
}

func (ps Presenters) StatusMessage(msg Message) {
	for _, p := range ps {
		p.StatusMessage(msg)
	}
}
