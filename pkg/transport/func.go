package transport

import (
	"context"
	"sync"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
)

// Recorder is an in-memory transport that stores every payload and answers
// with the configured error. Useful for demos and tests.
type Recorder struct {
	mu       sync.Mutex
	err      error
	payloads []lifecycle.Fields
}

var _ lifecycle.SubmitTransport = (*Recorder)(nil)

// NewRecorder returns a Recorder that fails every submit with err (nil
// accepts everything).
func NewRecorder(err error) *Recorder {
	return &Recorder{err: err}
}

// Submit records fields and returns the configured error.
func (r *Recorder) Submit(ctx context.Context, fields lifecycle.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, fields)
	return r.err
}

// SetError changes the outcome of subsequent submits.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Payloads returns a copy of the recorded payloads.
func (r *Recorder) Payloads() []lifecycle.Fields {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]lifecycle.Fields(nil), r.payloads...)
}
