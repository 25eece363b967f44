// Package scheduler wires up the cron job that periodically reclaims stream
// deliveries a crashed consumer left unacknowledged.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// Reclaimer takes over and processes stalled deliveries.
type Reclaimer interface {
	ReclaimStale(ctx context.Context) (int, error)
}

// Target is a named Reclaimer swept on every tick.
type Target struct {
	Name      string
	Reclaimer Reclaimer
}

// Scheduler wraps robfig/cron and manages the reclaim sweep.
type Scheduler struct {
	cron    *cron.Cron
	targets []Target
	spec    string // cron spec, e.g. "@every 5m"

	running atomic.Bool
	wg      sync.WaitGroup
}

// New creates a Scheduler that sweeps targets every intervalMinutes minutes.
func New(intervalMinutes int, targets ...Target) *Scheduler {
	if intervalMinutes < 1 {
		intervalMinutes = 1
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cron.DefaultLogger),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		targets: targets,
		spec:    fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Spec returns the cron schedule.
func (s *Scheduler) Spec() string { return s.spec }

// Start registers the sweep and starts the scheduler. It also sweeps once
// immediately so deliveries orphaned by a previous crash are picked up
// without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Println("[scheduler] Cron started")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RunOnce(ctx)
	}()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	log.Println("[scheduler] Cron stopped")
}

// RunOnce sweeps every target, logging and continuing past errors. At most
// one sweep runs at a time; a call made while another sweep is in progress
// returns false without touching any target.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		log.Println("[scheduler] Previous sweep still running, skipping")
		return false
	}
	defer s.running.Store(false)

	for _, t := range s.targets {
		n, err := t.Reclaimer.ReclaimStale(ctx)
		if err != nil {
			log.Printf("[scheduler] Reclaim %s error: %v", t.Name, err)
		}
		if n > 0 {
			log.Printf("[scheduler] Reclaimed %d %s deliveries", n, t.Name)
		}
	}
	return true
}
