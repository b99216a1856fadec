package logging

import (
	"github.com/rs/zerolog"
)

// ContextHook tags events logged with a session context with session_id and
// bookmark_id.
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	s, ok := SessionFrom(ctx)
	if !ok {
		return
	}
	if s.ID != "" {
		e.Str("session_id", s.ID)
	}
	e.Int("bookmark_id", s.BookmarkID)
}
