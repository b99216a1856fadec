// Package enhance drives asynchronous AI enhancement of bookmarks.
//
// The backend enhances a bookmark out of band after an enhance request is
// accepted; the only way to observe progress is to poll the bookmark. A
// Tracker owns one session per bookmark, polls until the enhanced content
// shows up or a bound is hit, and reports every observed change plus exactly
// one terminal status to a Presenter.
package enhance

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"k8s.io/utils/clock"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
	"github.com/riccilnl/linkgenie/internal/core/logging"
	"github.com/riccilnl/linkgenie/pkg/kv"
)

var (
	// ErrAlreadyPending is returned by Start when the bookmark already has an active session.
	ErrAlreadyPending = errors.New("enhancement already pending")

	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("tracker closed")
)

// Remote is the part of the bookmark API the tracker drives.
type Remote interface {
	Bookmark(ctx context.Context, id int) (bookmark.Bookmark, error)
	Enhance(ctx context.Context, id int) error
}

// Clock schedules poll ticks and the grace delay.
type Clock = clock.WithTicker

// Options bounds a session.
type Options struct {
	// PollInterval is the period between fetches.
	PollInterval time.Duration
	// GraceDelay is how long after the enhance request succeeds before the
	// request counts as finished, letting in-flight server writes settle.
	GraceDelay time.Duration
	// MaxAttempts is the number of successful fetches after which the
	// session ends with a timeout, keeping the last fetched state.
	MaxAttempts int
	// MaxPollFailures is the number of consecutive fetch errors that abort
	// the session.
	MaxPollFailures int
}

// DefaultOptions returns the bounds used by the web client.
func DefaultOptions() Options {
	return Options{
		PollInterval:    time.Second,
		GraceDelay:      500 * time.Millisecond,
		MaxAttempts:     30,
		MaxPollFailures: 5,
	}
}

// withDefaults replaces non-positive fields with their DefaultOptions value.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PollInterval <= 0 {
		o.PollInterval = d.PollInterval
	}
	if o.GraceDelay <= 0 {
		o.GraceDelay = d.GraceDelay
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = d.MaxAttempts
	}
	if o.MaxPollFailures <= 0 {
		o.MaxPollFailures = d.MaxPollFailures
	}
	return o
}

// Tracker runs enhancement sessions. It is safe for concurrent use.
//
// Each session is a single goroutine that consumes the enhance result, the
// grace timer, poll ticks and cancellation from one select loop, so session
// state is never touched concurrently. The pending set and the item cache are
// shared across sessions and guarded separately.
type Tracker struct {
	remote    Remote
	presenter Presenter
	clock     Clock
	opts      Options
	log       zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	sessions map[int]*session
	closed   bool

	items *kv.Store[int, bookmark.Bookmark]
}

// New creates a Tracker. A nil clock uses the wall clock and non-positive
// option fields take their DefaultOptions value.
func New(remote Remote, presenter Presenter, clk Clock, opts Options, log zerolog.Logger) *Tracker {
	if clk == nil {
		clk = clock.RealClock{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		remote:    remote,
		presenter: presenter,
		clock:     clk,
		opts:      opts.withDefaults(),
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		sessions:  make(map[int]*session),
		items:     kv.New[int, bookmark.Bookmark](),
	}
}

// Seed stores bookmark snapshots in the item cache. Start uses the cached
// snapshot as the pre-enhancement state.
func (t *Tracker) Seed(items ...bookmark.Bookmark) {
	for _, b := range items {
		t.items.Set(b.ID, b)
	}
}

// Item returns the cached snapshot for id.
func (t *Tracker) Item(id int) (bookmark.Bookmark, bool) {
	return t.items.Get(id)
}

// Items returns all cached snapshots ordered by ID.
func (t *Tracker) Items() []bookmark.Bookmark {
	return t.items.Values()
}

// IsPending reports whether id has an active session.
func (t *Tracker) IsPending(id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[id]
	return ok
}

// Pending returns the IDs with active sessions in ascending order.
func (t *Tracker) Pending() []int {
	t.mu.Lock()
	ids := make([]int, 0, len(t.sessions))
	for id := range t.sessions {
		ids = append(ids, id)
	}
	t.mu.Unlock()

	slices.Sort(ids)
	return ids
}

// Start begins an enhancement session for id and returns immediately.
//
// Session failures are reported to the Presenter, never returned. Start only
// fails when id already has an active session or the tracker is closed.
func (t *Tracker) Start(id int) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if _, ok := t.sessions[id]; ok {
		t.mu.Unlock()
		return fmt.Errorf("bookmark %d: %w", id, ErrAlreadyPending)
	}

	s := &session{
		id:         uuid.NewString(),
		bookmarkID: id,
		last:       bookmark.Bookmark{ID: id},
		triggered:  make(chan error, 1),
	}
	if snap, ok := t.items.Get(id); ok {
		s.previous = snap
		s.last = snap
		s.known = true
	}

	logCtx := logging.WithSession(t.ctx, logging.Session{ID: s.id, BookmarkID: id})
	ctx, cancel := context.WithCancel(logCtx)
	s.cancel = cancel
	s.ticker = t.clock.NewTicker(t.opts.PollInterval)

	t.sessions[id] = s
	t.wg.Add(2)
	t.mu.Unlock()

	t.log.Info().Ctx(ctx).Msg("enhancement started")

	if s.known {
		t.presenter.ItemUpdated(s.last)
	}

	// The enhance request runs on the tracker context so a session ending on
	// timeout does not abort a request the backend may still be accepting.
	go func() {
		defer t.wg.Done()
		s.triggered <- t.remote.Enhance(logCtx, id)
	}()

	go t.run(ctx, s)
	return nil
}

// Cancel aborts the session for id. The session reports OutcomeCancelled.
// Returns false if id has no active session.
func (t *Tracker) Cancel(id int) bool {
	t.mu.Lock()
	s, ok := t.sessions[id]
	t.mu.Unlock()

	if ok {
		s.cancel()
	}
	return ok
}

// Wait blocks until every started session has terminated. Start must not be
// called concurrently with Wait.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Close cancels all active sessions, waits for them to report and rejects
// further Start calls.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.cancel()
	t.wg.Wait()
}

func (t *Tracker) run(ctx context.Context, s *session) {
	defer t.wg.Done()

	var (
		grace  clock.Timer
		graceC <-chan time.Time
	)
	defer func() {
		if grace != nil {
			grace.Stop()
		}
	}()

	triggered := s.triggered
	for {
		select {
		case <-ctx.Done():
			t.finish(ctx, s, OutcomeCancelled, ctx.Err())
			return

		case err := <-triggered:
			triggered = nil
			if err != nil {
				s.requestFinished = true
				t.finish(ctx, s, OutcomeTriggerFailed, err)
				return
			}
			grace = t.clock.NewTimer(t.opts.GraceDelay)
			graceC = grace.C()

		case <-graceC:
			graceC = nil
			s.requestFinished = true
			t.log.Debug().Ctx(ctx).Msg("enhance request settled")

		case <-s.ticker.C():
			if t.poll(ctx, s) {
				return
			}
		}
	}
}

// poll fetches the bookmark once and reports whether the session ended.
func (t *Tracker) poll(ctx context.Context, s *session) bool {
	item, err := t.remote.Bookmark(ctx, s.bookmarkID)
	if err != nil {
		if ctx.Err() != nil {
			// cancellation is reported by the run loop
			return false
		}

		s.pollFailures++
		t.log.Warn().Ctx(ctx).Err(err).
			Int("failures", s.pollFailures).
			Msg("status check failed")

		if s.pollFailures >= t.opts.MaxPollFailures {
			t.finish(ctx, s, OutcomePollFailed, err)
			return true
		}
		return false
	}

	s.pollFailures = 0
	s.attempts++
	s.last = item
	s.known = true

	changed := !item.SameContent(s.previous)
	t.log.Debug().Ctx(ctx).
		Int("attempt", s.attempts).
		Bool("changed", changed).
		Bool("request_finished", s.requestFinished).
		Msg("poll")

	if changed {
		s.previous = item
		t.items.Set(s.bookmarkID, item)
		t.presenter.ItemUpdated(item)
	}

	ready := s.requestFinished && item.HasContent()
	if ready || s.attempts >= t.opts.MaxAttempts {
		outcome := OutcomeTimedOut
		if ready {
			outcome = OutcomeCompleted
		}
		t.finish(ctx, s, outcome, nil)
		return true
	}

	return false
}

// finish stops the ticker and clears the pending flag before any presenter
// call, so observers never see a finished session still marked pending.
func (t *Tracker) finish(ctx context.Context, s *session, outcome Outcome, cause error) {
	s.ticker.Stop()

	t.mu.Lock()
	if t.sessions[s.bookmarkID] == s {
		delete(t.sessions, s.bookmarkID)
	}
	t.mu.Unlock()

	s.cancel()

	if s.known {
		t.items.Set(s.bookmarkID, s.last)
		t.presenter.ItemUpdated(s.last)
	}

	msg := Message{
		SessionID:  s.id,
		BookmarkID: s.bookmarkID,
		Outcome:    outcome,
		Text:       outcome.Text(),
		Attempts:   s.attempts,
	}
	if outcome.IsFailure() {
		msg.Err = cause
	}

	ev := t.log.Info()
	if outcome.IsFailure() {
		ev = t.log.Error().Err(cause)
	}
	ev.Ctx(ctx).
		Str("outcome", string(outcome)).
		Int("attempts", s.attempts).
		Msg("enhancement finished")

	t.presenter.StatusMessage(msg)
}
