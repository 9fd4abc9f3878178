// Package coordinator keeps a client-side view of the ordered list in sync with the server.
//
// Every mutation is applied to a copy of the current view and published before the request is
// sent. A confirmed mutation keeps the optimistic view; a failed one restores the snapshot taken
// before it was applied and replays every newer outstanding mutation on top of it. When the last outstanding mutation of a kind settles, every loaded page
// is fetched again so the view converges on the authoritative state.
package coordinator

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-ordered-list/config"
	"github.com/gcbaptista/go-ordered-list/model"
	"github.com/gcbaptista/go-ordered-list/services"
)

// Listener is told about every view the coordinator publishes.
// It is called while local applies are serialized, so it must not issue mutations itself;
// reading View is fine.
type Listener interface {
	ViewChanged(View)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(View)

// ViewChanged calls f(v).
func (f ListenerFunc) ViewChanged(v View) { f(v) }

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithNotifier reports mutation outcomes to n.
func WithNotifier(n services.Notifier) Option {
	return func(c *Coordinator) { c.notifier = n }
}

// WithListener publishes every new view to l.
func WithListener(l Listener) Option {
	return func(c *Coordinator) { c.listener = l }
}

// WithLogger sets the logger used for mutation lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithPageSize sets the number of records requested per page.
func WithPageSize(size int) Option {
	return func(c *Coordinator) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithMutationTimeout bounds each mutation round trip. A timed out mutation is rolled back.
func WithMutationTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

// Coordinator owns the local view. It is safe for concurrent use.
type Coordinator struct {
	transport services.Transport
	notifier  services.Notifier
	listener  Listener
	logger    zerolog.Logger
	pageSize  int
	timeout   time.Duration

	// mu serializes local applies; readers load view without it.
	mu      sync.Mutex
	view    atomic.Pointer[View]
	version uint64
	pending []*pendingMutation // applied mutations in apply order, guarded by mu

	inflight *xsync.MapOf[model.MutationKind, *atomic.Int64]
}

// New creates a coordinator with an empty view for the empty search term.
func New(transport services.Transport, opts ...Option) (*Coordinator, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport cannot be nil")
	}

	c := &Coordinator{
		transport: transport,
		notifier:  nopNotifier{},
		logger:    zerolog.Nop(),
		pageSize:  config.DefaultPageSize,
		inflight:  xsync.NewMapOf[model.MutationKind, *atomic.Int64](),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.view.Store(&View{})
	return c, nil
}

// View returns the current snapshot.
func (c *Coordinator) View() View {
	return *c.view.Load()
}

// Items returns the loaded records of the current snapshot in display order.
func (c *Coordinator) Items() []model.Record {
	return c.View().Items()
}

// Busy reports whether a mutation of the given kind is outstanding.
func (c *Coordinator) Busy(kind model.MutationKind) bool {
	return c.counter(kind).Load() > 0
}

// Load replaces the view with the first page for the current search term.
func (c *Coordinator) Load(ctx context.Context) error {
	search := c.View().Search
	page, err := c.transport.FetchItems(ctx, 1, c.pageSize, search)
	if err != nil {
		return fmt.Errorf("failed to load first page: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.View().Search != search {
		return nil
	}
	c.publishLocked(View{Search: search, Pages: []model.PagedView{page}})
	return nil
}

// FetchNextPage appends the next page when the server reported more. It returns false when
// nothing was fetched.
func (c *Coordinator) FetchNextPage(ctx context.Context) (bool, error) {
	current := c.View()
	if !current.HasMore() {
		return false, nil
	}

	page, err := c.transport.FetchItems(ctx, current.NextPage(), c.pageSize, current.Search)
	if err != nil {
		return false, fmt.Errorf("failed to fetch page %d: %w", current.NextPage(), err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	latest := c.View()
	if latest.Search != current.Search || len(latest.Pages) != len(current.Pages) {
		// the view moved on while the page was in flight
		return false, nil
	}
	c.publishLocked(latest.withPage(page))
	return true, nil
}

// SetSearch switches to a new search term and loads its first page.
func (c *Coordinator) SetSearch(ctx context.Context, term string) error {
	c.mu.Lock()
	c.publishLocked(View{Search: term})
	c.mu.Unlock()
	return c.Load(ctx)
}

// Refresh fetches every loaded page again. The result is dropped if a local apply happened or a
// mutation was outstanding meanwhile; the settlement of that mutation refreshes again.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	current := c.View()
	version := c.version
	c.mu.Unlock()

	pages := make([]model.PagedView, max(1, len(current.Pages)))
	g, gctx := errgroup.WithContext(ctx)
	for i := range pages {
		i := i
		g.Go(func() error {
			page, err := c.transport.FetchItems(gctx, i+1, c.pageSize, current.Search)
			if err != nil {
				return fmt.Errorf("failed to refetch page %d: %w", i+1, err)
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != version || c.anyInflight() {
		c.logger.Debug().Str("search", current.Search).Msg("Discarding stale refresh")
		return nil
	}
	c.publishLocked(View{Search: current.Search, Pages: pages})
	return nil
}

// Move moves the record at local position from to local position to. Positions index the
// flattened view; they are resolved to effective indices before the request is sent.
func (c *Coordinator) Move(ctx context.Context, from, to int) error {
	var op model.MoveOperation
	return c.mutate(ctx, mutation{
		kind:         model.MutationKindOrder,
		successTitle: "Order updated",
		failureTitle: "Error updating order",
		apply: func(v View) (View, func(View) View, error) {
			next, resolved, err := applyMove(v, from, to)
			if err != nil {
				return v, nil, err
			}
			op = resolved
			movedID, targetID := v.idAt(from), v.idAt(to)
			return next, func(base View) View { return applyMoveByID(base, movedID, targetID) }, nil
		},
		send: func(ctx context.Context) (string, error) {
			res, err := c.transport.UpdateOrder(ctx, op)
			return res.Message, err
		},
	})
}

// UpdateSelection applies a selection change. Ids in both lists end up selected.
func (c *Coordinator) UpdateSelection(ctx context.Context, update model.SelectionUpdate) error {
	return c.mutate(ctx, mutation{
		kind:         model.MutationKindSelection,
		successTitle: "Selection updated",
		failureTitle: "Error updating selection",
		apply: func(v View) (View, func(View) View, error) {
			replay := func(base View) View { return applySelection(base, update) }
			return replay(v), replay, nil
		},
		send: func(ctx context.Context) (string, error) {
			res, err := c.transport.UpdateSelection(ctx, update)
			return fmt.Sprintf("%d items selected", res.SelectedCount), err
		},
	})
}

// Select toggles a single record.
func (c *Coordinator) Select(ctx context.Context, id int, selected bool) error {
	update := model.SelectionUpdate{SelectedIDs: []int{}, UnselectedIDs: []int{}}
	if selected {
		update.SelectedIDs = []int{id}
	} else {
		update.UnselectedIDs = []int{id}
	}
	return c.UpdateSelection(ctx, update)
}

// ResetOrder drops every custom position. It counts as an order mutation.
func (c *Coordinator) ResetOrder(ctx context.Context) error {
	return c.mutate(ctx, mutation{
		kind:         model.MutationKindOrder,
		successTitle: "Order reset",
		failureTitle: "Error resetting order",
		apply: func(v View) (View, func(View) View, error) {
			return applyReset(v), applyReset, nil
		},
		send: func(ctx context.Context) (string, error) {
			res, err := c.transport.ResetOrder(ctx)
			return res.Message, err
		},
	})
}

// Stats reads the server-side summary. It does not touch the view.
func (c *Coordinator) Stats(ctx context.Context) (model.Stats, error) {
	return c.transport.FetchStats(ctx)
}

type mutation struct {
	kind         model.MutationKind
	successTitle string
	failureTitle string
	// apply transforms the current view and returns the transform to replay on a rebased view.
	apply func(View) (View, func(View) View, error)
	send  func(context.Context) (string, error)
}

// pendingMutation is an applied mutation. A confirmed one stays listed while an older mutation
// is outstanding, since rolling that one back has to replay it.
type pendingMutation struct {
	snapshot  View
	replay    func(View) View
	confirmed bool
}

func (c *Coordinator) mutate(ctx context.Context, m mutation) error {
	id := uuid.New().String()
	log := c.logger.With().Str("mutation_id", id).Str("kind", string(m.kind)).Logger()
	counter := c.counter(m.kind)

	c.mu.Lock()
	snapshot := c.View()
	next, replay, err := m.apply(snapshot)
	if err != nil {
		c.mu.Unlock()
		log.Debug().Err(err).Msg("Mutation rejected locally")
		c.notifier.Failure(m.failureTitle, err)
		return err
	}
	pending := &pendingMutation{snapshot: snapshot, replay: replay}
	c.pending = append(c.pending, pending)
	counter.Add(1)
	c.publishLocked(next)
	c.mu.Unlock()
	log.Debug().Str("state", string(model.MutationStateApplied)).Msg("Mutation applied")

	sendCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	description, err := m.send(sendCtx)
	if err != nil {
		c.rollback(pending)
		log.Warn().Err(err).Str("state", string(model.MutationStateRolledBack)).Msg("Mutation rolled back")
		c.notifier.Failure(m.failureTitle, err)
	} else {
		c.confirm(pending)
		log.Debug().Str("state", string(model.MutationStateConfirmed)).Msg("Mutation confirmed")
		c.notifier.Success(m.successTitle, description)
	}

	if counter.Add(-1) == 0 {
		if rerr := c.Refresh(context.WithoutCancel(ctx)); rerr != nil {
			log.Warn().Err(rerr).Msg("Failed to refresh after settlement")
		}
	}
	return err
}

// confirm marks p settled. Newer snapshots already include its effect.
func (c *Coordinator) confirm(p *pendingMutation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.confirmed = true
	c.trimPendingLocked()
}

// rollback restores the snapshot taken before p was applied and replays every newer mutation of
// the same search on top of it, outstanding or confirmed, so only p's effect disappears. With
// nothing newer the snapshot is restored verbatim. Nothing is published if the user switched
// to another search meanwhile.
func (c *Coordinator) rollback(p *pendingMutation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.removePendingLocked(p)
	base := p.snapshot
	for _, newer := range c.pending[i:] {
		if newer.snapshot.Search != base.Search {
			continue
		}
		newer.snapshot = base
		base = newer.replay(base)
	}
	c.trimPendingLocked()

	if c.View().Search != p.snapshot.Search {
		return
	}
	c.publishLocked(base)
}

// removePendingLocked removes p and returns the index it occupied.
func (c *Coordinator) removePendingLocked(p *pendingMutation) int {
	i := slices.Index(c.pending, p)
	if i < 0 {
		return len(c.pending)
	}
	c.pending = slices.Delete(c.pending, i, i+1)
	return i
}

// trimPendingLocked drops confirmed mutations that no outstanding mutation precedes.
func (c *Coordinator) trimPendingLocked() {
	n := 0
	for n < len(c.pending) && c.pending[n].confirmed {
		n++
	}
	c.pending = slices.Delete(c.pending, 0, n)
}

func (c *Coordinator) publishLocked(v View) {
	c.version++
	c.view.Store(&v)
	if c.listener != nil {
		c.listener.ViewChanged(v)
	}
}

func (c *Coordinator) counter(kind model.MutationKind) *atomic.Int64 {
	counter, _ := c.inflight.LoadOrCompute(kind, func() *atomic.Int64 {
		return new(atomic.Int64)
	})
	return counter
}

func (c *Coordinator) anyInflight() bool {
	busy := false
	c.inflight.Range(func(_ model.MutationKind, counter *atomic.Int64) bool {
		busy = counter.Load() > 0
		return !busy
	})
	return busy
}
