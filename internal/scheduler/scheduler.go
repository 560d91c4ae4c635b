// Package scheduler runs the bot's fixed set of named periodic jobs, each on
// its own cadence. Jobs are mutually independent: ticks interleave freely,
// one job's failure never reaches another, and a job whose previous tick is
// still running is skipped rather than started twice.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "crobot/pkg/logx"
)

type Config struct {
	// Timezone is an IANA name applied to cron triggers (daily jobs).
	// Empty means local time.
	Timezone string
}

type jobDef struct {
	name    string
	spec    string
	run     func(ctx context.Context) error
	entryID cron.EntryID
	state   *runState
}

type runState struct {
	mu      sync.Mutex
	running bool
}

// tryAcquire marks the job running; false means a previous tick is still live.
func (r *runState) tryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return false
	}
	r.running = true
	return true
}

func (r *runState) release() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

// Service owns the cron runner and the job definitions.
type Service struct {
	mu sync.Mutex

	log    logx.Logger
	loc    *time.Location
	parser cron.Parser
	c      *cron.Cron
	defs   []jobDef

	runCtx    context.Context
	runCancel context.CancelFunc
}

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	loc := time.Local
	if cfg.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = l
		} else {
			log.Warn("invalid timezone; using local", logx.String("tz", cfg.Timezone), logx.Err(err))
		}
	}
	return &Service{
		log:    log,
		loc:    loc,
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// Add registers a named job with a cron spec ("@every 30s", "0 0 * * *", ...).
// Names are unique; re-adding an existing name is rejected.
func (s *Service) Add(name, spec string, run func(ctx context.Context) error) error {
	if name == "" || run == nil {
		return fmt.Errorf("scheduler: job needs a name and a func")
	}
	if _, err := s.parser.Parse(spec); err != nil {
		return fmt.Errorf("scheduler: job %s: bad spec %q: %w", name, spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.defs {
		if d.name == name {
			return fmt.Errorf("scheduler: job %s already registered", name)
		}
	}
	s.defs = append(s.defs, jobDef{name: name, spec: spec, run: run, state: &runState{}})
	if s.c != nil {
		// Service already started; schedule immediately.
		return s.scheduleLocked(&s.defs[len(s.defs)-1])
	}
	return nil
}

// Start begins ticking all registered jobs. Starting an already-started
// service is a no-op.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	s.runCtx, s.runCancel = context.WithCancel(ctx)
	s.c = cron.New(cron.WithParser(s.parser), cron.WithLocation(s.loc))
	for i := range s.defs {
		if err := s.scheduleLocked(&s.defs[i]); err != nil {
			s.log.Error("job schedule failed", logx.String("job", s.defs[i].name), logx.Err(err))
		}
	}
	s.c.Start()
	s.log.Info("scheduler started", logx.Int("jobs", len(s.defs)))
}

func (s *Service) scheduleLocked(d *jobDef) error {
	name, spec, run, state := d.name, d.spec, d.run, d.state
	id, err := s.c.AddFunc(spec, func() {
		s.execOne(name, run, state)
	})
	if err != nil {
		return err
	}
	d.entryID = id
	return nil
}

// execOne is the per-tick fault boundary: panics and errors are logged here
// and go no further.
func (s *Service) execOne(name string, run func(ctx context.Context) error, state *runState) {
	if !state.tryAcquire() {
		s.log.Debug("job tick skipped; previous tick still running", logx.String("job", name))
		return
	}
	defer state.release()

	s.mu.Lock()
	ctx := s.runCtx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("job tick panicked",
				logx.String("job", name),
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())))
		}
	}()

	err := run(ctx)
	dur := time.Since(start)
	if err != nil && ctx.Err() == nil {
		s.log.Warn("job tick failed", logx.String("job", name), logx.Err(err), logx.Duration("dur", dur))
		return
	}
	// Avoid noisy logs for frequent jobs: only elevate when a tick took
	// noticeable time.
	if dur >= 750*time.Millisecond {
		s.log.Info("job tick completed", logx.String("job", name), logx.Duration("dur", dur))
	} else {
		s.log.Debug("job tick completed", logx.String("job", name), logx.Duration("dur", dur))
	}
}

// JobInfo is a point-in-time view of one job's schedule.
type JobInfo struct {
	Name string
	Spec string
	Next time.Time
	Prev time.Time
}

// Jobs returns schedule info for every registered job (heartbeat logging).
func (s *Service) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobInfo, 0, len(s.defs))
	for _, d := range s.defs {
		info := JobInfo{Name: d.name, Spec: d.spec}
		if s.c != nil {
			e := s.c.Entry(d.entryID)
			info.Next, info.Prev = e.Next, e.Prev
		}
		out = append(out, info)
	}
	return out
}

// Stop halts triggering and waits for in-flight ticks, bounded by ctx.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	cancel := s.runCancel
	s.c = nil
	s.runCtx = nil
	s.runCancel = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	if cancel != nil {
		cancel()
	}
	stopCtx := c.Stop() // completes when running jobs finish
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop deadline reached; ticks may still be draining")
	}
}
