package lifecycle

import "context"

// DataLoader fetches the initial form data. Load is called once per loading
// attempt and must honour ctx cancellation.
type DataLoader interface {
	Load(ctx context.Context) (Patch, error)
}

// LoaderFunc adapts a function to DataLoader.
type LoaderFunc func(ctx context.Context) (Patch, error)

// Load calls f(ctx).
func (f LoaderFunc) Load(ctx context.Context) (Patch, error) {
	return f(ctx)
}

// SubmitTransport sends the full field mapping to the remote endpoint. Any
// returned error is treated as a submit failure.
type SubmitTransport interface {
	Submit(ctx context.Context, fields Fields) error
}

// TransportFunc adapts a function to SubmitTransport.
type TransportFunc func(ctx context.Context, fields Fields) error

// Submit calls f(ctx, fields).
func (f TransportFunc) Submit(ctx context.Context, fields Fields) error {
	return f(ctx, fields)
}

// Change describes one applied event.
type Change struct {
	Event    Event
	Previous Snapshot
	Current  Snapshot
}

// StatusChanged reports whether the event moved the form to another status.
// Started counts as a change so the initial status is observed too.
func (c Change) StatusChanged() bool {
	if _, ok := c.Event.(Started); ok {
		return true
	}
	return c.Previous.Status != c.Current.Status
}

// Observer is notified of every applied event, in order. Observers run while
// the controller is locked and must not call back into it.
type Observer interface {
	OnChange(change Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(change Change)

// OnChange calls f(change).
func (f ObserverFunc) OnChange(change Change) {
	f(change)
}
