package container

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/braude/garage/pkg/types"
)

// Transport issues the REST calls for one entity resource. Every failure is
// reported as a *types.RequestFailed.
type Transport[E any, ID comparable] interface {
	// List reads the collection. The zero Page asks for the default
	// collection; criteria may be nil.
	List(ctx context.Context, criteria types.Criteria, page types.Page) (types.Listing[E], error)
	// Search reads the search endpoint.
	Search(ctx context.Context, query string, page types.Page) (types.Listing[E], error)
	// Get reads one entity.
	Get(ctx context.Context, id ID) (E, error)
	// Create posts a cleaned entity and returns the stored version.
	Create(ctx context.Context, payload types.Payload) (E, error)
	// Update puts a cleaned entity and returns the stored version.
	Update(ctx context.Context, payload types.Payload) (E, error)
	// Delete removes one entity.
	Delete(ctx context.Context, id ID) error
	// Count returns the number of entities matching criteria.
	Count(ctx context.Context, criteria types.Criteria) (int64, error)
}

// Spec describes one entity type.
type Spec[E any, ID comparable] struct {
	Name string             // Resource name, used in logs and errors.
	ID   func(E) (ID, bool) // Returns the entity's ID and whether it is assigned.
}

// Option configures a Container.
type Option func(*options)

type options struct {
	sequencing Sequencing
	log        zerolog.Logger
}

// WithSequencing selects how settled responses are reconciled.
func WithSequencing(s Sequencing) Option {
	return func(o *options) { o.sequencing = s }
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// Container holds the client-side state of one entity type and mediates every
// read and write against its REST resource. It is safe for concurrent use.
type Container[E any, ID comparable] struct {
	spec       Spec[E, ID]
	transport  Transport[E, ID]
	sequencing Sequencing
	log        zerolog.Logger

	mu     sync.Mutex
	state  State[E]
	epoch  uint64 // Advanced by Reset.
	issued uint64 // Token of the most recently issued request.
	reads  int    // In-flight reads of the current epoch.
	writes int    // In-flight writes of the current epoch.

	observers map[uint64]func(State[E]) // Guarded by mu.
	nextObs   uint64

	// notifyMu is taken before mu is released so observers see states in
	// the order they were committed.
	notifyMu sync.Mutex
}

// ticket identifies one issued request.
type ticket struct {
	op    string
	epoch uint64
	token uint64
	write bool
}

// New creates a container in the initial state. It panics if spec.ID is nil.
func New[E any, ID comparable](spec Spec[E, ID], transport Transport[E, ID], opts ...Option) *Container[E, ID] {
	if spec.ID == nil {
		panic("container: Spec.ID is required")
	}
	o := options{sequencing: LatestWins, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Container[E, ID]{
		spec:       spec,
		transport:  transport,
		sequencing: o.sequencing,
		log:        o.log.With().Str("container", spec.Name).Logger(),
		observers:  make(map[uint64]func(State[E])),
	}
}

// Name returns the resource name from the Spec.
func (c *Container[E, ID]) Name() string { return c.spec.Name }

// Snapshot returns the current state.
func (c *Container[E, ID]) Snapshot() State[E] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Observe registers fn to receive every committed state, in commit order.
// fn runs on the goroutine that caused the change and must not call back
// into the container synchronously. The returned function unregisters fn.
func (c *Container[E, ID]) Observe(fn func(State[E])) (cancel func()) {
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// List reads the collection and, if applied, replaces Entities and
// TotalItems. A failure records Err and leaves the cached collection intact.
// The return values are the request's own outcome even when the response is
// discarded by sequencing.
func (c *Container[E, ID]) List(ctx context.Context, page types.Page) ([]E, error) {
	return c.fetch(ctx, "list", func(ctx context.Context) (types.Listing[E], error) {
		return c.transport.List(ctx, nil, page)
	})
}

// Filter is List restricted by criteria.
func (c *Container[E, ID]) Filter(ctx context.Context, criteria types.Criteria, page types.Page) ([]E, error) {
	return c.fetch(ctx, "filter", func(ctx context.Context) (types.Listing[E], error) {
		return c.transport.List(ctx, criteria, page)
	})
}

// Search reads the search endpoint with List semantics.
func (c *Container[E, ID]) Search(ctx context.Context, query string, page types.Page) ([]E, error) {
	return c.fetch(ctx, "search", func(ctx context.Context) (types.Listing[E], error) {
		return c.transport.Search(ctx, query, page)
	})
}

// Get reads one entity and, if applied, makes it the focused Entity.
func (c *Container[E, ID]) Get(ctx context.Context, id ID) (E, error) {
	t := c.begin(ticket{op: "get"})
	e, err := c.transport.Get(ctx, id)
	c.settle(t, err, func(s *State[E]) {
		s.Entity = e
	})
	if err != nil {
		var zero E
		return zero, err
	}
	return e, nil
}

// Create cleans e, posts it, and on success focuses the stored entity, sets
// UpdateSuccess and refreshes the collection with one List.
func (c *Container[E, ID]) Create(ctx context.Context, e E) (E, error) {
	return c.write(ctx, "create", e, c.transport.Create)
}

// Update is Create with PUT. The entity's ID must be assigned; otherwise
// Update returns types.ErrInvalidID without issuing a request.
func (c *Container[E, ID]) Update(ctx context.Context, e E) (E, error) {
	if _, ok := c.spec.ID(e); !ok {
		var zero E
		return zero, fmt.Errorf("update %s: %w", c.spec.Name, types.ErrInvalidID)
	}
	return c.write(ctx, "update", e, c.transport.Update)
}

// Remove deletes one entity and on success clears the focused Entity, sets
// UpdateSuccess and refreshes the collection with one List.
func (c *Container[E, ID]) Remove(ctx context.Context, id ID) error {
	t := c.begin(ticket{op: "remove", write: true})
	err := c.transport.Delete(ctx, id)
	applied := c.settle(t, err, func(s *State[E]) {
		var zero E
		s.Entity = zero
		s.UpdateSuccess = true
	})
	if err != nil {
		return err
	}
	if applied {
		c.refresh(ctx)
	}
	return nil
}

// Count returns the number of entities matching criteria. It does not touch
// the state.
func (c *Container[E, ID]) Count(ctx context.Context, criteria types.Criteria) (int64, error) {
	return c.transport.Count(ctx, criteria)
}

// Reset restores the initial state. Requests in flight keep running but
// their responses are dropped when they land.
func (c *Container[E, ID]) Reset() {
	c.mu.Lock()
	c.epoch++
	c.reads, c.writes = 0, 0
	c.state = State[E]{}
	c.log.Debug().Uint64("epoch", c.epoch).Msg("reset")
	c.unlockAndPublish()
}

// ConsumeUpdateSuccess reports whether UpdateSuccess was set and clears it.
func (c *Container[E, ID]) ConsumeUpdateSuccess() bool {
	c.mu.Lock()
	if !c.state.UpdateSuccess {
		c.mu.Unlock()
		return false
	}
	c.state.UpdateSuccess = false
	c.unlockAndPublish()
	return true
}

func (c *Container[E, ID]) fetch(ctx context.Context, op string, call func(context.Context) (types.Listing[E], error)) ([]E, error) {
	t := c.begin(ticket{op: op})
	listing, err := call(ctx)
	c.settle(t, err, func(s *State[E]) {
		s.Entities = listing.Items
		s.TotalItems = listing.TotalItems
	})
	if err != nil {
		return nil, err
	}
	return listing.Items, nil
}

func (c *Container[E, ID]) write(ctx context.Context, op string, e E, send func(context.Context, types.Payload) (E, error)) (E, error) {
	var zero E
	payload, err := Clean(e)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", op, c.spec.Name, err)
	}

	t := c.begin(ticket{op: op, write: true})
	saved, err := send(ctx, payload)
	applied := c.settle(t, err, func(s *State[E]) {
		s.Entity = saved
		s.UpdateSuccess = true
	})
	if err != nil {
		return zero, err
	}
	if applied {
		c.refresh(ctx)
	}
	return saved, nil
}

// refresh re-lists the default collection after a write. Its failure is
// recorded in the state only.
func (c *Container[E, ID]) refresh(ctx context.Context) {
	if _, err := c.List(ctx, types.Page{}); err != nil {
		c.log.Debug().Err(err).Msg("refresh after write failed")
	}
}

// begin issues a token and moves the state to Pending.
func (c *Container[E, ID]) begin(t ticket) ticket {
	c.mu.Lock()
	c.issued++
	t.epoch = c.epoch
	t.token = c.issued
	c.state.Err = nil
	if t.write {
		c.writes++
		c.state.Updating = true
		c.state.UpdateSuccess = false
	} else {
		c.reads++
		c.state.Loading = true
	}
	c.log.Debug().Str("op", t.op).Uint64("token", t.token).Msg("pending")
	c.unlockAndPublish()
	return t
}

// settle applies the outcome of t. On failure err is recorded instead of
// calling apply. It reports whether the outcome was applied: responses from
// before a Reset are dropped entirely, and under LatestWins a superseded read
// only releases its pending flag. Writes of the current epoch always land.
func (c *Container[E, ID]) settle(t ticket, err error, apply func(*State[E])) bool {
	c.mu.Lock()
	if t.epoch != c.epoch {
		c.mu.Unlock()
		c.log.Debug().Str("op", t.op).Uint64("token", t.token).Msg("dropped after reset")
		return false
	}

	if t.write {
		c.writes--
	} else {
		c.reads--
	}

	applied := t.write || c.sequencing == ArrivalOrder || t.token == c.issued
	if applied {
		if err != nil {
			c.state.Err = err
			if t.write {
				c.state.UpdateSuccess = false
			}
		} else {
			apply(&c.state)
		}
	}
	c.state.Loading = c.reads > 0
	c.state.Updating = c.writes > 0

	ev := c.log.Debug().Str("op", t.op).Uint64("token", t.token).Bool("applied", applied)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("settled")

	c.unlockAndPublish()
	return applied
}

// unlockAndPublish must be called with mu held. It releases mu and delivers
// the committed state to the observers.
func (c *Container[E, ID]) unlockAndPublish() {
	snap := c.state
	fns := make([]func(State[E]), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
