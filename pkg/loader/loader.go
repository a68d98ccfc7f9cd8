package loader

import (
	"context"
	"time"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
)

// DefaultDelay is the artificial latency of the canned loader.
const DefaultDelay = 2 * time.Second

// DefaultPatch is the canned payload the reference form loads.
func DefaultPatch() lifecycle.Patch {
	return lifecycle.Patch{lifecycle.FieldName: "Josh"}
}

// Canned returns a loader that resolves with patch after delay. It never
// fails; cancelling ctx before the delay elapses returns ctx.Err().
func Canned(patch lifecycle.Patch, delay time.Duration) lifecycle.DataLoader {
	return &cannedLoader{patch: clonePatch(patch), delay: delay}
}

// Default returns the canned loader used by the reference form:
// {name: "Josh"} after two seconds.
func Default() lifecycle.DataLoader {
	return Canned(DefaultPatch(), DefaultDelay)
}

type cannedLoader struct {
	patch lifecycle.Patch
	delay time.Duration
}

func (l *cannedLoader) Load(ctx context.Context) (lifecycle.Patch, error) {
	if l.delay > 0 {
		timer := time.NewTimer(l.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}
	return clonePatch(l.patch), nil
}

func clonePatch(src lifecycle.Patch) lifecycle.Patch {
	out := make(lifecycle.Patch, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
