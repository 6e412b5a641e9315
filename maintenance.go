package authcore

import (
	"context"
	"sync"
	"time"
)

// SweepReport counts what one maintenance pass removed.
type SweepReport struct {
	SessionsRemoved    int
	RevocationsRemoved int
	AuditRemoved       int
}

// Sweep runs one maintenance pass: expired sessions, revocation
// entries past the horizon, and audit events past retention age. The
// sweeper calls this on its interval; tests and operators may call it
// directly.
func (e *Engine) Sweep(ctx context.Context) SweepReport {
	now := time.Now()
	report := SweepReport{}

	if removed, err := e.sessions.SweepExpired(ctx, now); err == nil {
		report.SessionsRemoved = removed
	}
	report.RevocationsRemoved = e.registry.SweepExpired(now)
	report.AuditRemoved = e.audit.SweepOlderThan(e.config.Maintenance.AuditMaxAge)

	e.metrics.SweepRemovals("sessions", report.SessionsRemoved)
	e.metrics.SweepRemovals("revocations", report.RevocationsRemoved)
	e.metrics.SweepRemovals("audit", report.AuditRemoved)

	return report
}

// sweeper runs Engine.Sweep on a fixed interval until closed. A pass
// in flight finishes before close returns; stores are never left
// mid-call.
type sweeper struct {
	engine   *Engine
	interval time.Duration

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newSweeper(e *Engine, cfg MaintenanceConfig) *sweeper {
	return &sweeper{
		engine:   e,
		interval: cfg.Interval,
		done:     make(chan struct{}),
	}
}

func (s *sweeper) start() {
	s.wg.Add(1)
	go s.run()
}

func (s *sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.engine.Sweep(context.Background())
		}
	}
}

// close stops the sweeper and waits for any pass in flight. Idempotent.
func (s *sweeper) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}
