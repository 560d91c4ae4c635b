// Package livestatus is an edge-detecting poller over external broadcast
// status: it reports each tracked handle exactly once when it transitions
// offline -> live.
package livestatus

import (
	"context"
	"sort"
	"sync"

	logx "crobot/pkg/logx"
)

// Checker polls one handle's live state. Implementations apply their own
// call timeout.
type Checker interface {
	IsLive(ctx context.Context, handle string) (bool, error)
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context, handle string) (bool, error)

func (f CheckerFunc) IsLive(ctx context.Context, handle string) (bool, error) {
	return f(ctx, handle)
}

// Tracker keeps the last observed state per handle. The cache is in-memory
// only: after a restart a still-live handle is re-announced once, which is
// accepted over persisting transient poll state.
type Tracker struct {
	log     logx.Logger
	checker Checker

	mu    sync.Mutex
	cache map[string]bool
}

func New(checker Checker, log logx.Logger) *Tracker {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Tracker{
		log:     log,
		checker: checker,
		cache:   make(map[string]bool),
	}
}

// Scan polls every handle once and returns the handles that transitioned to
// live, in sorted order. live -> offline transitions update the cache
// silently. A poll error skips that handle without touching its cached state,
// and never aborts the rest of the scan.
func (t *Tracker) Scan(ctx context.Context, handles []string) []string {
	seen := make(map[string]bool, len(handles))
	var wentLive []string

	for _, handle := range handles {
		if handle == "" || seen[handle] {
			continue
		}
		seen[handle] = true

		if ctx.Err() != nil {
			return wentLive
		}

		live, err := t.checker.IsLive(ctx, handle)
		if err != nil {
			t.log.Warn("live check failed", logx.String("handle", handle), logx.Err(err))
			continue
		}

		t.mu.Lock()
		prev := t.cache[handle]
		t.cache[handle] = live
		t.mu.Unlock()

		if live && !prev {
			wentLive = append(wentLive, handle)
		} else if !live && prev {
			t.log.Info("handle went offline", logx.String("handle", handle))
		}
	}

	sort.Strings(wentLive)
	return wentLive
}

// Known returns the cached state for a handle (false if never observed).
func (t *Tracker) Known(handle string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cache[handle]
}
