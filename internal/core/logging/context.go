package logging

import "context"

type sessionKey struct{}

// Session identifies one enhancement session in log output.
type Session struct {
	ID         string
	BookmarkID int
}

// WithSession attaches s to ctx so ContextHook can tag every event logged
// with that context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session attached to ctx, if any.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
