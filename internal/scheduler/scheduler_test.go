package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	logx "crobot/pkg/logx"
)

func TestAddRejectsDuplicateNames(t *testing.T) {
	s := New(Config{}, logx.Nop())
	noop := func(ctx context.Context) error { return nil }

	if err := s.Add("job", "@every 1m", noop); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := s.Add("job", "@every 5m", noop); err == nil {
		t.Fatalf("duplicate name accepted")
	}
}

func TestAddRejectsBadSpec(t *testing.T) {
	s := New(Config{}, logx.Nop())
	noop := func(ctx context.Context) error { return nil }

	for _, spec := range []string{"", "every 1m", "* * *"} {
		if err := s.Add("j-"+spec, spec, noop); err == nil {
			t.Fatalf("accepted spec %q", spec)
		}
	}
	if err := s.Add("", "@every 1m", noop); err == nil {
		t.Fatalf("accepted empty name")
	}
}

func TestExecOneSkipsOverlappingTick(t *testing.T) {
	s := New(Config{}, logx.Nop())
	s.runCtx, s.runCancel = context.WithCancel(context.Background())
	defer s.runCancel()

	started := make(chan struct{})
	release := make(chan struct{})
	var runs int
	var mu sync.Mutex

	run := func(ctx context.Context) error {
		mu.Lock()
		runs++
		mu.Unlock()
		close(started)
		<-release
		return nil
	}

	state := &runState{}
	go s.execOne("slow", run, state)
	<-started

	// Second tick while the first is still in flight: must be dropped.
	s.execOne("slow", run, state)
	close(release)

	mu.Lock()
	defer mu.Unlock()
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
}

func TestExecOneContainsPanicsAndErrors(t *testing.T) {
	s := New(Config{}, logx.Nop())
	s.runCtx, s.runCancel = context.WithCancel(context.Background())
	defer s.runCancel()

	state := &runState{}
	s.execOne("panicky", func(ctx context.Context) error { panic("boom") }, state)
	s.execOne("failing", func(ctx context.Context) error { return errors.New("bad tick") }, state)

	// The same state must be reusable after a panic and an error.
	ran := false
	s.execOne("healthy", func(ctx context.Context) error { ran = true; return nil }, state)
	if !ran {
		t.Fatalf("job blocked after earlier panic/error")
	}
}

func TestStartRunsJobs(t *testing.T) {
	s := New(Config{}, logx.Nop())
	ticked := make(chan struct{}, 1)
	err := s.Add("fast", "@every 1s", func(ctx context.Context) error {
		select {
		case ticked <- struct{}{}:
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop(context.Background())

	select {
	case <-ticked:
	case <-time.After(3 * time.Second):
		t.Fatalf("job never ticked")
	}

	jobs := s.Jobs()
	if len(jobs) != 1 || jobs[0].Name != "fast" {
		t.Fatalf("jobs = %+v", jobs)
	}
	if jobs[0].Next.IsZero() {
		t.Fatalf("started job has no next run time")
	}
}
