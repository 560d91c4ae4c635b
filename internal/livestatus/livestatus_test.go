package livestatus

import (
	"context"
	"errors"
	"testing"

	logx "crobot/pkg/logx"
)

// scriptChecker replays a fixed sequence of states per handle.
type scriptChecker struct {
	states map[string][]bool
	calls  map[string]int
	errs   map[string]error
}

func (c *scriptChecker) IsLive(ctx context.Context, handle string) (bool, error) {
	if err := c.errs[handle]; err != nil {
		return false, err
	}
	seq := c.states[handle]
	n := c.calls[handle]
	c.calls[handle] = n + 1
	if n >= len(seq) {
		return seq[len(seq)-1], nil
	}
	return seq[n], nil
}

func TestScanEdgeDetection(t *testing.T) {
	c := &scriptChecker{
		states: map[string][]bool{"streamer": {false, true, true, false, true}},
		calls:  map[string]int{},
	}
	tr := New(c, logx.Nop())

	events := 0
	for range c.states["streamer"] {
		if got := tr.Scan(context.Background(), []string{"streamer"}); len(got) == 1 {
			events++
		}
	}
	// Two offline->live transitions in the sequence, so exactly two events.
	if events != 2 {
		t.Fatalf("events = %d, want 2", events)
	}
}

func TestScanErrorLeavesCacheUntouched(t *testing.T) {
	c := &scriptChecker{
		states: map[string][]bool{"a": {true}, "b": {true}},
		calls:  map[string]int{},
		errs:   map[string]error{},
	}
	tr := New(c, logx.Nop())

	tr.Scan(context.Background(), []string{"a", "b"})
	if !tr.Known("a") || !tr.Known("b") {
		t.Fatalf("initial scan did not cache live state")
	}

	// b starts failing; its cached state must not change and a must still
	// be polled.
	c.errs["b"] = errors.New("boom")
	got := tr.Scan(context.Background(), []string{"b", "a"})
	if len(got) != 0 {
		t.Fatalf("unexpected events: %v", got)
	}
	if !tr.Known("b") {
		t.Fatalf("error clobbered cached state")
	}
}

func TestScanDedupesAndSorts(t *testing.T) {
	c := &scriptChecker{
		states: map[string][]bool{"zeta": {true}, "alpha": {true}},
		calls:  map[string]int{},
	}
	tr := New(c, logx.Nop())

	got := tr.Scan(context.Background(), []string{"zeta", "alpha", "zeta", ""})
	if len(got) != 2 || got[0] != "alpha" || got[1] != "zeta" {
		t.Fatalf("got %v", got)
	}
	if c.calls["zeta"] != 1 {
		t.Fatalf("duplicate handle polled %d times", c.calls["zeta"])
	}
}
