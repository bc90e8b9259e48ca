// File: fiberloop.go
// Unified facade layer for the fiberloop runtime.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the Runtime struct, which aggregates the scheduler,
// reactor, and control-plane components behind a single facade:
// immutable Config in, a handful of lifecycle methods out.
package fiberloop

import (
	"fmt"
	"sync"
	"time"

	"github.com/momentics/fiberloop/api"
	"github.com/momentics/fiberloop/control"
	"github.com/momentics/fiberloop/fiber"
	"github.com/momentics/fiberloop/reactor"
	"github.com/momentics/fiberloop/scheduler"
	"github.com/sirupsen/logrus"
)

// Config holds parameters immutable per run.
type Config struct {
	RingCapacity    int           // advisory batch-size hint for the reactor's epoll_wait buffer
	MaxEvents       int           // advisory cap on events drained per Poll call
	EnableMetrics   bool          // whether to install control.MetricsRegistry
	EnableDebug     bool          // whether to install control.DebugProbes
	ShutdownTimeout time.Duration // advisory upper bound a host may wait for Shutdown
	Logger          *logrus.Logger
}

// DefaultConfig returns sane defaults for typical use.
func DefaultConfig() *Config {
	return &Config{
		RingCapacity:    1024,
		MaxEvents:       128,
		EnableMetrics:   true,
		EnableDebug:     true,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Runtime is the main facade type. It implements api.GracefulShutdown.
type Runtime struct {
	sched    *scheduler.Scheduler
	react    reactor.Reactor
	metrics  *control.MetricsRegistry
	debug    *control.DebugProbes
	cfgStore *control.ConfigStore
	log      *logrus.Logger

	config  *Config
	mu      sync.RWMutex
	started bool
}

var (
	_ api.GracefulShutdown = (*Runtime)(nil)
	_ api.Control          = (*Runtime)(nil)
)

// New constructs a Runtime from cfg (DefaultConfig() if nil), creating the
// platform reactor and binding a scheduler to it.
func New(cfg *Config) (*Runtime, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := &Runtime{config: cfg, log: log, cfgStore: control.NewConfigStore()}

	var enq reactor.Enqueuer = enqueuerFunc(func(f *fiber.Fiber, reason reactor.ResumeReason) {
		r.sched.Enqueue(f, reason)
	})
	react, err := reactor.New(enq)
	if err != nil {
		return nil, fmt.Errorf("fiberloop: reactor init failure: %w", err)
	}
	r.react = react
	r.sched = scheduler.New(react, log)

	if cfg.EnableMetrics {
		r.metrics = control.NewMetricsRegistry()
	}
	if cfg.EnableDebug {
		r.debug = control.NewDebugProbes()
		control.RegisterPlatformProbes(r.debug)
		r.debug.RegisterProbe("scheduler.active", func() any { return r.sched.Active() })
		r.debug.RegisterProbe("reactor.waiters", func() any { return r.react.WaiterCount() })
	}

	return r, nil
}

// enqueuerFunc adapts a plain function to reactor.Enqueuer, letting New
// close over the not-yet-constructed scheduler without an import cycle.
type enqueuerFunc func(f *fiber.Fiber, reason reactor.ResumeReason)

func (fn enqueuerFunc) Enqueue(f *fiber.Fiber, reason reactor.ResumeReason) { fn(f, reason) }

// Spawn schedules entry to run as a fiber. It may be called before Run,
// or from within a fiber already running under Run.
func (r *Runtime) Spawn(entry func()) *fiber.Fiber {
	return r.sched.Spawn(entry)
}

// Scheduler exposes the bound scheduler for awaitables in the future and
// netio packages.
func (r *Runtime) Scheduler() *scheduler.Scheduler { return r.sched }

// Metrics returns the runtime's metrics registry, or nil if disabled.
func (r *Runtime) Metrics() *control.MetricsRegistry { return r.metrics }

// Debug returns the runtime's debug-probe registry, or nil if disabled.
func (r *Runtime) Debug() *control.DebugProbes { return r.debug }

// Run starts the scheduler's main loop. It blocks until shutdown is
// requested or every fiber and waiter has drained.
func (r *Runtime) Run() {
	r.mu.Lock()
	r.started = true
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.Set("runtime.started_at", time.Now())
	}
	r.log.Info("fiberloop: runtime starting")
	r.sched.Run()
	r.log.Info("fiberloop: runtime stopped")
}

// RequestShutdown asks the running loop to exit after its current fiber
// yields or terminates. Safe to call from outside the loop thread.
func (r *Runtime) RequestShutdown() {
	r.sched.RequestShutdown()
}

// GetConfig implements api.Control.
func (r *Runtime) GetConfig() map[string]any { return r.cfgStore.GetSnapshot() }

// SetConfig implements api.Control. The underlying ConfigStore dispatches
// OnReload listeners asynchronously on every call.
func (r *Runtime) SetConfig(cfg map[string]any) error {
	r.cfgStore.SetConfig(cfg)
	return nil
}

// Stats implements api.Control, combining metrics and debug-probe output
// into one map (debug entries prefixed with "debug." to keep the two
// namespaces apart).
func (r *Runtime) Stats() map[string]any {
	combined := make(map[string]any)
	if r.metrics != nil {
		for k, v := range r.metrics.GetSnapshot() {
			combined[k] = v
		}
	}
	if r.debug != nil {
		for k, v := range r.debug.DumpState() {
			combined["debug."+k] = v
		}
	}
	return combined
}

// OnReload implements api.Control. The listener is registered both on
// this Runtime's own ConfigStore and on the package-wide hook list, so
// both per-instance and global reload observers see it.
func (r *Runtime) OnReload(fn func()) {
	r.cfgStore.OnReload(fn)
	control.RegisterReloadHook(fn)
}

// RegisterDebugProbe implements api.Control; a no-op if debug is disabled.
func (r *Runtime) RegisterDebugProbe(name string, fn func() any) {
	if r.debug != nil {
		r.debug.RegisterProbe(name, fn)
	}
}

// Shutdown implements api.GracefulShutdown: it requests a stop and
// releases the reactor's kernel resources. It does not wait for Run to
// return — the caller owns that synchronization if it needs it.
func (r *Runtime) Shutdown() error {
	r.sched.RequestShutdown()
	return r.react.Close()
}
