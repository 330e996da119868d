package livesync

import (
	"context"
	"sync"
	"time"

	"deckcast/internal/domain"
	"deckcast/pkg/logger"
)

// Store is the narrow persistence contract the controller drives. The
// backing implementation must preserve slide content strings verbatim.
type Store interface {
	Load(ctx context.Context, id string) (domain.Presentation, error)
	Save(ctx context.Context, p domain.Presentation) error
}

// Options configure a Controller.
type Options struct {
	// Debounce is how long the push loop waits after the last mutation
	// before persisting.
	Debounce time.Duration
	// PullInterval is the fixed polling interval for remote state.
	PullInterval time.Duration
}

// DefaultOptions returns the intervals the editor ships with.
func DefaultOptions() Options {
	return Options{
		Debounce:     1500 * time.Millisecond,
		PullInterval: time.Second,
	}
}

// Controller keeps one client's document converged with the persisted
// copy using two independent loops over a shared document reference:
//
// Push: each local mutation (re)arms a debounce timer; on expiry the
// full document is persisted with a fresh updatedAt. An explicit Flush
// bypasses the debounce, draining the before-flush hook first.
//
// Pull: on a fixed interval the persisted document is fetched and
// adopted only when its updatedAt differs from the last-known value and
// no push debounce is armed. Last write wins; the gate only prevents a
// stale poll from clobbering an edit in flight, it does not merge true
// concurrent edits.
type Controller struct {
	store Store
	log   *logger.Logger
	opts  Options

	mu        sync.Mutex
	doc       domain.Presentation
	timer     *time.Timer
	armed     bool
	lastKnown time.Time

	beforeFlush func()
	onRemote    func(domain.Presentation)
}

// New builds a controller around the client's current document value.
func New(store Store, doc domain.Presentation, opts Options, log *logger.Logger) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultOptions().Debounce
	}
	if opts.PullInterval <= 0 {
		opts.PullInterval = DefaultOptions().PullInterval
	}
	return &Controller{
		store:     store,
		log:       log,
		opts:      opts,
		doc:       doc,
		lastKnown: doc.UpdatedAt,
	}
}

// BeforeFlush registers the hook run before an explicit save, used to
// force an open editing buffer into the document first.
func (c *Controller) BeforeFlush(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.beforeFlush = fn
}

// OnRemote registers the callback that adopts a pulled document.
func (c *Controller) OnRemote(fn func(domain.Presentation)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRemote = fn
}

// Document returns the controller's current document value.
func (c *Controller) Document() domain.Presentation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc
}

// PushPending reports whether a debounced save is armed.
func (c *Controller) PushPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

// MarkDirty adopts the mutated document and (re)arms the debounce
// timer. Wire it to the editing session's mutation callback.
func (c *Controller) MarkDirty(doc domain.Presentation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc = doc
	if c.timer != nil {
		c.timer.Stop()
	}
	c.armed = true
	c.timer = time.AfterFunc(c.opts.Debounce, func() {
		c.push(context.Background())
	})
}

// Flush persists immediately, bypassing the debounce. The before-flush
// hook runs first so a not-yet-committed editing buffer lands in the
// document before it is serialized.
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	hook := c.beforeFlush
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	return c.push(ctx)
}

// push persists the document with a fresh updatedAt. A failed push is
// logged and the debounce is not rearmed: the next local mutation
// retries.
func (c *Controller) push(ctx context.Context) error {
	c.mu.Lock()
	doc := c.doc.Touch()
	c.doc = doc
	c.mu.Unlock()

	err := c.store.Save(ctx, doc)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.armed = false
	if err != nil {
		c.log.WithError(err).WithField("presentation_id", doc.ID).Warn("autosave push failed")
		return err
	}
	c.lastKnown = doc.UpdatedAt
	return nil
}

// Run drives the pull loop until the context is cancelled. A failed
// pull is logged and retried on the next tick, without backoff.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			if c.timer != nil {
				c.timer.Stop()
			}
			c.mu.Unlock()
			return
		case <-ticker.C:
			c.pull(ctx)
		}
	}
}

// Pull performs one fetch-and-maybe-adopt cycle. Exported so viewer
// surfaces without a background goroutine can drive it on their own
// cadence.
func (c *Controller) Pull(ctx context.Context) {
	c.pull(ctx)
}

func (c *Controller) pull(ctx context.Context) {
	c.mu.Lock()
	id := c.doc.ID
	c.mu.Unlock()

	fetched, err := c.store.Load(ctx, id)
	if err != nil {
		c.log.WithError(err).WithField("presentation_id", id).Warn("pull failed, retrying next tick")
		return
	}

	c.mu.Lock()
	// Unchanged timestamp: nothing new to adopt. Armed debounce: local
	// edits are ahead of the store, adopting now would clobber them.
	if fetched.UpdatedAt.Equal(c.lastKnown) || c.armed {
		c.mu.Unlock()
		return
	}
	c.doc = fetched
	c.lastKnown = fetched.UpdatedAt
	apply := c.onRemote
	c.mu.Unlock()

	if apply != nil {
		apply(fetched)
	}
}
