package remotetable

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/notification"
	"github.com/iota-uz/staff-console/pkg/serrors"
)

const (
	defaultTableName = "table"
	defaultPageSize  = 10
)

var (
	ErrClosed         = serrors.NewError("TABLE_CLOSED", "table is closed", "")
	ErrPageOutOfRange = serrors.NewError("TABLE_PAGE_OUT_OF_RANGE", "page is out of range", "")
	ErrNoRowKey       = serrors.NewError("TABLE_NO_ROW_KEY", "patch-in-place requires a row key", "")
)

// Fetcher loads one page for a translated request.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, req Request) (Result[T], error)
}

type FetcherFunc[T any] func(ctx context.Context, req Request) (Result[T], error)

func (f FetcherFunc[T]) Fetch(ctx context.Context, req Request) (Result[T], error) {
	return f(ctx, req)
}

// Ticket identifies one issued fetch. Only the ticket with the highest
// sequence number may update the row cache.
type Ticket struct {
	Seq     uint64
	State   QueryState
	Request Request
}

// MutationStrategy decides how a saved record reaches the grid.
type MutationStrategy int

const (
	// Refetch reloads the current page. Always consistent with server-side
	// filters and ordering.
	Refetch MutationStrategy = iota
	// PatchInPlace rewrites the matching cached row without a round trip.
	// Created records still trigger a refetch.
	PatchInPlace
)

type MutationKind int

const (
	Created MutationKind = iota + 1
	Updated
	Deleted
)

func (k MutationKind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Mutation reports a successful create, update or delete. Key may be set
// instead of Row for deletions.
type Mutation[T any] struct {
	Kind MutationKind
	Row  T
	Key  string
}

type Snapshot[T any] struct {
	State      QueryState
	Rows       []T
	TotalCount int
	PageCount  int
	Loading    bool
	// Err is the failure of the latest fetch, nil after a success.
	Err error
}

type Options[T any] struct {
	// Name labels logs and metrics.
	Name       string
	Initial    QueryState
	Translator Translator
	Notifier   notification.Notifier
	Logger     *logrus.Logger
	Strategy   MutationStrategy
	RowKey     func(T) string
	// OnChange runs after every applied resolution or in-place patch. Calls
	// never overlap and never deliver an older snapshot after a newer one.
	OnChange     func(Snapshot[T])
	ErrorMessage func(error) string
}

func (o *Options[T]) setDefaults() {
	if o.Name == "" {
		o.Name = defaultTableName
	}
	if o.Initial.Page.PageSize == 0 {
		o.Initial.Page.PageSize = defaultPageSize
	}
	if o.Notifier == nil {
		o.Notifier = notification.Discard
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.ErrorMessage == nil {
		o.ErrorMessage = apiclient.UserMessage
	}
}

// Pending tracks one fetch started by the controller.
type Pending struct {
	ticket  Ticket
	done    chan struct{}
	applied bool
	err     error
}

func newPending(t Ticket) *Pending {
	return &Pending{ticket: t, done: make(chan struct{})}
}

func resolvedPending(t Ticket, applied bool, err error) *Pending {
	p := newPending(t)
	p.resolve(applied, err)
	return p
}

func (p *Pending) resolve(applied bool, err error) {
	p.applied = applied
	p.err = err
	close(p.done)
}

func (p *Pending) Ticket() Ticket {
	return p.ticket
}

func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the fetch resolves and returns its error. A stale
// success returns nil; use Applied to tell whether it reached the cache.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pending) Applied() bool {
	<-p.done
	return p.applied
}

// Controller drives one remote table. Handlers may be called from any
// goroutine; fetches run in the background and resolve under
// last-request-wins.
type Controller[T any] struct {
	name         string
	store        *Store
	translator   Translator
	fetcher      Fetcher[T]
	notifier     notification.Notifier
	log          *logrus.Entry
	metrics      *metrics
	strategy     MutationStrategy
	rowKey       func(T) string
	onChange     func(Snapshot[T])
	errorMessage func(error) string

	// actions serializes store mutations with ticket issuance so tickets
	// follow the order of state changes.
	actions sync.Mutex

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	loading bool
	lastErr error
	cache   RowCache[T]
	closed  bool
	latest  *Pending
	// version counts cache changes; it orders observer deliveries.
	version uint64

	notifyMu sync.Mutex
	notified uint64
}

func New[T any](fetcher Fetcher[T], opts Options[T]) (*Controller[T], error) {
	opts.setDefaults()
	if opts.Strategy == PatchInPlace && opts.RowKey == nil {
		return nil, ErrNoRowKey
	}
	store, err := NewStore(opts.Initial)
	if err != nil {
		return nil, err
	}
	return &Controller[T]{
		name:         opts.Name,
		store:        store,
		translator:   opts.Translator,
		fetcher:      fetcher,
		notifier:     opts.Notifier,
		log:          opts.Logger.WithFields(logrus.Fields{"component": "remotetable", "table": opts.Name}),
		metrics:      getMetrics(),
		strategy:     opts.Strategy,
		rowKey:       opts.RowKey,
		onChange:     opts.OnChange,
		errorMessage: opts.ErrorMessage,
	}, nil
}

func (c *Controller[T]) Name() string {
	return c.name
}

func (c *Controller[T]) State() QueryState {
	return c.store.State()
}

func (c *Controller[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller[T]) Rows() Result[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Result()
}

func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	res := c.cache.Result()
	state := c.store.State()
	return Snapshot[T]{
		State:      state,
		Rows:       res.Rows,
		TotalCount: res.TotalCount,
		PageCount:  state.PageCount(res.TotalCount),
		Loading:    c.loading,
		Err:        c.lastErr,
	}
}

// OnStateChange marks the table as loading and fetches the page described
// by state in the background. Any earlier fetch is superseded.
func (c *Controller[T]) OnStateChange(ctx context.Context, state QueryState) *Pending {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return resolvedPending(Ticket{State: state.Clone()}, false, ErrClosed)
	}
	c.seq++
	ticket := Ticket{Seq: c.seq, State: state.Clone(), Request: c.translator.Translate(state)}
	if c.cancel != nil {
		c.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.loading = true
	p := newPending(ticket)
	c.latest = p
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"seq":    ticket.Seq,
		"limit":  ticket.Request.Limit,
		"offset": ticket.Request.Offset,
	}).Debug("fetch issued")

	m := c.metrics
	m.inFlight.WithLabelValues(c.name).Inc()
	go func() {
		defer cancel()
		defer m.inFlight.WithLabelValues(c.name).Dec()

		started := time.Now()
		result, err := c.fetcher.Fetch(fetchCtx, ticket.Request)
		var applied bool
		if err != nil {
			applied = c.OnFetchFailure(err, ticket)
		} else {
			applied = c.OnFetchSuccess(result, ticket)
		}
		switch {
		case !applied:
			m.observe(c.name, outcomeStale, started)
		case err != nil:
			m.observe(c.name, outcomeFailed, started)
		default:
			m.observe(c.name, outcomeApplied, started)
		}
		p.resolve(applied, err)
	}()
	return p
}

// OnFetchSuccess replaces the row cache when ticket is still the latest
// one and reports whether it did.
func (c *Controller[T]) OnFetchSuccess(result Result[T], ticket Ticket) bool {
	c.mu.Lock()
	if ticket.Seq != c.seq || c.closed {
		current := c.seq
		c.mu.Unlock()
		c.log.WithFields(logrus.Fields{"seq": ticket.Seq, "current": current}).Debug("stale response discarded")
		return false
	}
	c.cache.replace(result)
	c.loading = false
	c.lastErr = nil
	snap, version := c.changeLocked()
	c.mu.Unlock()

	c.changed(snap, version)
	return true
}

// OnFetchFailure clears the loading flag and notifies the user when ticket
// is still the latest one. The row cache is left as it was.
func (c *Controller[T]) OnFetchFailure(err error, ticket Ticket) bool {
	c.mu.Lock()
	if ticket.Seq != c.seq || c.closed {
		c.mu.Unlock()
		c.log.WithError(err).WithField("seq", ticket.Seq).Debug("stale failure discarded")
		return false
	}
	c.loading = false
	c.lastErr = err
	snap, version := c.changeLocked()
	c.mu.Unlock()

	if errors.Is(err, context.Canceled) {
		c.log.WithField("seq", ticket.Seq).Debug("fetch canceled")
	} else {
		c.log.WithError(err).WithField("seq", ticket.Seq).Warn("fetch failed")
		c.notifier.OpenNotification(c.errorMessage(err), notification.Error)
	}
	c.changed(snap, version)
	return true
}

func (c *Controller[T]) changeLocked() (Snapshot[T], uint64) {
	c.version++
	return c.snapshotLocked(), c.version
}

// changed hands snap to the observer unless a newer snapshot already went
// out.
func (c *Controller[T]) changed(snap Snapshot[T], version uint64) {
	if c.onChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if version <= c.notified {
		return
	}
	c.notified = version
	c.onChange(snap)
}

func (c *Controller[T]) mutate(ctx context.Context, fn func() (QueryState, error)) (*Pending, error) {
	c.actions.Lock()
	defer c.actions.Unlock()
	state, err := fn()
	if err != nil {
		return nil, err
	}
	return c.OnStateChange(ctx, state), nil
}

// Latest returns the most recently issued fetch or patch, nil before Mount.
func (c *Controller[T]) Latest() *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Mount issues the initial fetch.
func (c *Controller[T]) Mount(ctx context.Context) *Pending {
	return c.Reload(ctx)
}

func (c *Controller[T]) Reload(ctx context.Context) *Pending {
	p, _ := c.mutate(ctx, func() (QueryState, error) { return c.store.State(), nil })
	return p
}

func (c *Controller[T]) SetPage(ctx context.Context, index int) (*Pending, error) {
	return c.mutate(ctx, func() (QueryState, error) { return c.store.SetPageIndex(index) })
}

// NextPage moves forward when the cached total says another page exists.
func (c *Controller[T]) NextPage(ctx context.Context) (*Pending, error) {
	return c.mutate(ctx, func() (QueryState, error) {
		c.mu.Lock()
		total := c.cache.total
		c.mu.Unlock()
		state := c.store.State()
		if state.Page.PageIndex+1 >= state.PageCount(total) {
			return state, ErrPageOutOfRange
		}
		return c.store.SetPageIndex(state.Page.PageIndex + 1)
	})
}

func (c *Controller[T]) PrevPage(ctx context.Context) (*Pending, error) {
	return c.mutate(ctx, func() (QueryState, error) {
		state := c.store.State()
		if state.Page.PageIndex == 0 {
			return state, ErrPageOutOfRange
		}
		return c.store.SetPageIndex(state.Page.PageIndex - 1)
	})
}

func (c *Controller[T]) SetPageSize(ctx context.Context, size int) (*Pending, error) {
	return c.mutate(ctx, func() (QueryState, error) { return c.store.SetPageSize(size) })
}

func (c *Controller[T]) SetFilter(ctx context.Context, f ColumnFilter) (*Pending, error) {
	return c.mutate(ctx, func() (QueryState, error) { return c.store.SetFilter(f) })
}

func (c *Controller[T]) SetFilters(ctx context.Context, filters []ColumnFilter) (*Pending, error) {
	return c.mutate(ctx, func() (QueryState, error) { return c.store.SetFilters(filters) })
}

func (c *Controller[T]) RemoveFilter(ctx context.Context, column string) *Pending {
	p, _ := c.mutate(ctx, func() (QueryState, error) { return c.store.RemoveFilter(column), nil })
	return p
}

func (c *Controller[T]) ClearFilters(ctx context.Context) *Pending {
	p, _ := c.mutate(ctx, func() (QueryState, error) { return c.store.ClearFilters(), nil })
	return p
}

func (c *Controller[T]) SetSorting(ctx context.Context, rules []SortRule) (*Pending, error) {
	return c.mutate(ctx, func() (QueryState, error) { return c.store.SetSorting(rules) })
}

// ApplyMutation is the callback handed to record forms after a successful
// save or delete.
func (c *Controller[T]) ApplyMutation(ctx context.Context, m Mutation[T]) *Pending {
	if c.strategy == PatchInPlace && m.Kind != Created {
		if p, ok := c.patch(m); ok {
			return p
		}
	}
	c.log.WithField("mutation", m.Kind.String()).Debug("refetching after mutation")
	return c.Reload(ctx)
}

func (c *Controller[T]) patch(m Mutation[T]) (*Pending, bool) {
	c.mu.Lock()
	var ok bool
	switch m.Kind {
	case Updated:
		ok = c.cache.patch(c.rowKey, m.Row)
	case Deleted:
		key := m.Key
		if key == "" {
			key = c.rowKey(m.Row)
		}
		i := c.cache.index(c.rowKey, key)
		// Emptying a page that has rows behind it needs the server.
		ok = i >= 0 && (c.cache.Len() > 1 || c.cache.total <= 1)
		if ok {
			c.cache.removeAt(i)
		}
	}
	if !ok {
		c.mu.Unlock()
		return nil, false
	}
	ticket := Ticket{Seq: c.seq, State: c.store.State()}
	ticket.Request = c.translator.Translate(ticket.State)
	snap, version := c.changeLocked()
	p := resolvedPending(ticket, true, nil)
	c.latest = p
	c.mu.Unlock()

	c.changed(snap, version)
	return p, true
}

// Close cancels the in-flight fetch and discards every later resolution.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.seq++
	c.loading = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
