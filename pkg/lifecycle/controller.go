package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Option configures a Controller.
type Option func(*Controller)

// WithObserver registers observers notified after every applied event.
func WithObserver(observers ...Observer) Option {
	return func(c *Controller) {
		for _, obs := range observers {
			if obs != nil {
				c.observers = append(c.observers, obs)
			}
		}
	}
}

// WithSubmitGuard makes Submit reject invalid forms with ErrInvalidForm
// instead of sending them.
func WithSubmitGuard() Option {
	return func(c *Controller) {
		c.submitGuard = true
	}
}

// Controller owns the lifecycle of one form. All state changes go through
// Reduce while holding mu, so events are applied one at a time in arrival
// order. Load and submit run in their own goroutines and report back through
// the same path; their results are dropped once the controller is disposed.
type Controller struct {
	loader      DataLoader
	transport   SubmitTransport
	observers   []Observer
	submitGuard bool

	mu           sync.Mutex
	snapshot     Snapshot
	changed      chan struct{}
	done         chan struct{}
	ctx          context.Context
	cancel       context.CancelFunc
	started      bool
	disposed     bool
	loadSeq      uint64
	submitSeq    uint64
	submitCancel context.CancelFunc
	lastErr      error
}

// New builds a controller in status loading with default field values. The
// loader may be nil when the caller reports load results through
// LoadComplete itself.
func New(loader DataLoader, transport SubmitTransport, options ...Option) *Controller {
	c := &Controller{
		loader:    loader,
		transport: transport,
		snapshot:  NewSnapshot(),
		changed:   make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Start begins loading. Cancelling ctx has the same effect as Dispose.
// Calling Start more than once is a no-op.
func (c *Controller) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("lifecycle: context is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrDisposed
	}
	if c.started {
		return nil
	}

	// A caller that already reported load data through LoadComplete gets a
	// started controller without a second load.
	loading := c.snapshot.Status == StatusLoading
	if loading {
		if err := c.applyLocked(Started{}); err != nil {
			return err
		}
	}

	c.started = true
	c.ctx, c.cancel = context.WithCancel(ctx)

	go func(ctx context.Context) {
		<-ctx.Done()
		c.Dispose()
	}(c.ctx)

	if loading {
		c.beginLoadLocked()
	}
	return nil
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// LastError returns the error behind the most recent load or submit failure.
// It is cleared by the next successful submit.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Done is closed once the controller is disposed.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// LoadComplete merges data into the fields and enables them. It only applies
// while loading; otherwise the call is ignored and ErrInvalidTransition is
// returned.
func (c *Controller) LoadComplete(data Patch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrDisposed
	}
	return c.applyLocked(LoadCompleted{Data: data})
}

// Reload restarts loading after a load failure.
func (c *Controller) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrDisposed
	}
	if !c.started {
		return ErrNotStarted
	}
	if err := c.applyLocked(ReloadRequested{}); err != nil {
		return err
	}
	c.beginLoadLocked()
	return nil
}

// ChangeField records a user edit. Editing likesSignals re-derives whether
// the explanation is required; that re-derivation emits no extra event.
func (c *Controller) ChangeField(key FieldKey, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrDisposed
	}
	return c.applyLocked(FieldChanged{Field: key, Value: value})
}

// ChangeFields records several edits at once. Either every edit applies, in
// key order, or none does and the first error is returned.
func (c *Controller) ChangeFields(patch Patch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrDisposed
	}
	if _, err := c.snapshot.Fields.Merge(patch); err != nil {
		return err
	}
	events := make([]Event, 0, len(patch))
	next := c.snapshot
	for _, key := range patch.Keys() {
		e := FieldChanged{Field: key, Value: patch[key]}
		var err error
		if next, err = Reduce(next, e); err != nil {
			return err
		}
		events = append(events, e)
	}
	for _, e := range events {
		if err := c.applyLocked(e); err != nil {
			return err
		}
	}
	return nil
}

// Submit moves the form to submitting before returning and sends the current
// values in the background. A submit issued while another is in flight
// supersedes it: the older request is cancelled and its outcome ignored.
func (c *Controller) Submit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrDisposed
	}
	if !c.started {
		return ErrNotStarted
	}
	if c.transport == nil {
		return errors.New("lifecycle: submit transport is not configured")
	}
	if c.submitGuard && !c.snapshot.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidForm, c.snapshot.Errors)
	}
	if err := c.applyLocked(SubmitRequested{}); err != nil {
		return err
	}

	if c.submitCancel != nil {
		c.submitCancel()
	}
	c.submitSeq++
	seq := c.submitSeq
	ctx, cancel := context.WithCancel(c.ctx)
	c.submitCancel = cancel
	payload := c.snapshot.Fields

	go func() {
		defer cancel()
		err := c.transport.Submit(ctx, payload)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.disposed || seq != c.submitSeq || c.ctx.Err() != nil {
			return
		}
		c.submitCancel = nil
		c.lastErr = err
		if err != nil {
			_ = c.applyLocked(SubmitFailed{Err: err})
			return
		}
		_ = c.applyLocked(SubmitSucceeded{})
	}()
	return nil
}

// Await blocks until cond holds for the current snapshot, ctx ends, or the
// controller is disposed.
func (c *Controller) Await(ctx context.Context, cond func(Snapshot) bool) (Snapshot, error) {
	for {
		c.mu.Lock()
		snap, changed, disposed := c.snapshot, c.changed, c.disposed
		c.mu.Unlock()

		if cond(snap) {
			return snap, nil
		}
		if disposed {
			return snap, ErrDisposed
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

// Dispose severs pending load and submit work. No state change and no
// observer notification happens after Dispose returns. Safe to call more than
// once.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return
	}
	c.disposed = true
	if c.cancel != nil {
		c.cancel()
	}
	if c.submitCancel != nil {
		c.submitCancel()
		c.submitCancel = nil
	}
	close(c.changed)
	close(c.done)
}

func (c *Controller) beginLoadLocked() {
	c.loadSeq++
	if c.loader == nil {
		return
	}
	seq := c.loadSeq
	ctx := c.ctx

	go func() {
		patch, err := c.loader.Load(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.disposed || seq != c.loadSeq || ctx.Err() != nil {
			return
		}
		if err == nil {
			err = c.applyLocked(LoadCompleted{Data: patch})
			if err == nil || errors.Is(err, ErrInvalidTransition) {
				return
			}
		}
		c.lastErr = err
		_ = c.applyLocked(LoadFailed{Err: err})
	}()
}

func (c *Controller) applyLocked(e Event) error {
	next, err := Reduce(c.snapshot, e)
	if err != nil {
		return err
	}
	change := Change{Event: e, Previous: c.snapshot, Current: next}
	c.snapshot = next

	close(c.changed)
	c.changed = make(chan struct{})

	for _, obs := range c.observers {
		obs.OnChange(change)
	}
	return nil
}
