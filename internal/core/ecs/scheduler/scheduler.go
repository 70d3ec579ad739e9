// Package scheduler runs the per-tick system pipeline: a priority-ordered
// list of systems plus a one-shot auxiliary task queue drained before
// each tick's systems run.
package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InputSystemPriority is the reserved priority slot for the built-in
// input system, which always runs before any user-registered system.
const InputSystemPriority = 1 << 20

// SystemFunc is one tick's worth of work for a registered system. It
// must run to completion synchronously; a system that needs to hand
// work to a goroutine owns joining it before returning; handing the
// scheduler something still in flight is a programming error the
// scheduler has no way to detect and will not wait for.
type SystemFunc func(dt float32)

type system struct {
	name     string
	priority int
	fn       SystemFunc
}

// Scheduler holds the registered systems and the pending one-shot task
// queue, and drives one tick at a time.
type Scheduler struct {
	mu      sync.Mutex
	systems []system
	byName  map[string]bool
	tasks   []func()

	tickDuration prometheus.Histogram
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{
		byName: make(map[string]bool),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scenecore_tick_duration_seconds",
			Help:    "Wall-clock duration of one scheduler tick.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Collectors returns the scheduler's prometheus collectors.
func (s *Scheduler) Collectors() []prometheus.Collector {
	return []prometheus.Collector{s.tickDuration}
}

// Register adds a system at the given priority; higher priorities run
// first, and systems at equal priority run in registration order
// (stable sort). Registering the same name twice is a fatal
// misconfiguration.
func (s *Scheduler) Register(name string, priority int, fn SystemFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byName[name] {
		return fmt.Errorf("scheduler: system %q already registered", name)
	}
	s.byName[name] = true
	s.systems = append(s.systems, system{name: name, priority: priority, fn: fn})
	sort.SliceStable(s.systems, func(i, j int) bool { return s.systems[i].priority > s.systems[j].priority })
	return nil
}

// Enqueue schedules a one-shot task to run once, before the next tick's
// systems, then be discarded.
func (s *Scheduler) Enqueue(task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
}

// Tick drains the pending task queue, then runs every registered system
// in priority order, timing the whole pass.
func (s *Scheduler) Tick(dt float32) {
	start := time.Now()
	defer func() { s.tickDuration.Observe(time.Since(start).Seconds()) }()

	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	systems := make([]system, len(s.systems))
	copy(systems, s.systems)
	s.mu.Unlock()

	for _, task := range tasks {
		task()
	}
	for _, sys := range systems {
		sys.fn(dt)
	}
}
