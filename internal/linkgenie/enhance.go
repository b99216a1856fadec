package linkgenie

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
	"github.com/riccilnl/linkgenie/internal/core/enhance"
	"github.com/riccilnl/linkgenie/internal/core/eventbus"
)

// maxSnapshotFetches bounds concurrent pre-enhancement fetches.
const maxSnapshotFetches = 4

// EnhanceService runs AI enhancement for a batch of bookmarks and fans the
// progress out to the caller, the event bus and the offline cache.
type EnhanceService struct {
	bookmarks *BookmarkService
	remote    enhance.Remote
	bus       *eventbus.EventBus
	clock     enhance.Clock
	opts      enhance.Options
	log       zerolog.Logger
}

// NewEnhanceService creates an EnhanceService. Polling goes to remote
// directly so an unreachable backend counts as a poll failure instead of
// being masked by the cache. A nil clock uses the wall clock.
func NewEnhanceService(
	bookmarks *BookmarkService,
	remote enhance.Remote,
	bus *eventbus.EventBus,
	clk enhance.Clock,
	opts enhance.Options,
	log zerolog.Logger,
) *EnhanceService {
	return &EnhanceService{
		bookmarks: bookmarks,
		remote:    remote,
		bus:       bus,
		clock:     clk,
		opts:      opts,
		log:       log,
	}
}

// Run enhances every id and blocks until all sessions have terminated or ctx
// is cancelled, in which case the remaining sessions end as cancelled. It
// returns the terminal message of each session in completion order.
func (s *EnhanceService) Run(ctx context.Context, ids []int, presenter enhance.Presenter) ([]enhance.Message, error) {
	collect := &collector{}
	busp := &busPresenter{bus: s.bus}

	presenters := enhance.Presenters{collect, busp, &cachePresenter{ctx: context.WithoutCancel(ctx), bookmarks: s.bookmarks}}
	if presenter != nil {
		presenters = append(enhance.Presenters{presenter}, presenters...)
	}

	tracker := enhance.New(s.remote, presenters, s.clock, s.opts, s.log)
	defer tracker.Close()
	busp.pending = tracker.IsPending

	tracker.Seed(s.snapshots(ctx, ids)...)

	var errs []error
	for _, id := range ids {
		if err := tracker.Start(id); err != nil {
			errs = append(errs, err)
			continue
		}
		if s.bus != nil {
			s.bus.PublishEnhanceStarted(eventbus.EnhanceStartedPayload{BookmarkID: id})
		}
	}

	done := make(chan struct{})
	go func() {
		tracker.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		tracker.Close()
		<-done
	}

	return collect.messages(), errors.Join(errs...)
}

// snapshots fetches the current state of each bookmark so sessions start from
// a known snapshot. Failures are logged and the bookmark starts unseeded.
func (s *EnhanceService) snapshots(ctx context.Context, ids []int) []bookmark.Bookmark {
	var (
		mu  sync.Mutex
		out []bookmark.Bookmark
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxSnapshotFetches)
	for _, id := range ids {
		g.Go(func() error {
			b, err := s.bookmarks.Bookmark(gctx, id)
			if err != nil {
				s.log.Debug().Err(err).Int("bookmark_id", id).Msg("pre-enhancement fetch failed")
				return nil
			}
			mu.Lock()
			out = append(out, b)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// collector records terminal messages.
type collector struct {
	mu   sync.Mutex
	msgs []enhance.Message
}

func (c *collector) ItemUpdated(bookmark.Bookmark) {}

func (c *collector) StatusMessage(msg enhance.Message) {
	c.mu.Lock()
	c.msgs = append(c.msgs, msg)
	c.mu.Unlock()
}

func (c *collector) messages() []enhance.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]enhance.Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// busPresenter publishes tracker progress on the event bus.
type busPresenter struct {
	bus     *eventbus.EventBus
	pending func(id int) bool
}

func (p *busPresenter) ItemUpdated(b bookmark.Bookmark) {
	if p.bus == nil {
		return
	}
	p.bus.PublishBookmarkUpdated(eventbus.BookmarkUpdatedPayload{
		Bookmark: b,
		Pending:  p.pending != nil && p.pending(b.ID),
	})
}

func (p *busPresenter) StatusMessage(msg enhance.Message) {
	if p.bus == nil {
		return
	}
	p.bus.PublishEnhanceFinished(eventbus.EnhanceFinishedPayload{Message: msg})
}

// cachePresenter writes every observed snapshot to the offline cache.
type cachePresenter struct {
	ctx       context.Context
	bookmarks *BookmarkService
}

func (p *cachePresenter) ItemUpdated(b bookmark.Bookmark) {
	p.bookmarks.Remember(p.ctx, b)
}

func (p *cachePresenter) StatusMessage(enhance.Message) {}
