// Package simulator drives periodic random status changes.
//
// Each tick picks one module in the configured environment and moves it to
// a different random status through the same quick-update policy a user
// would trigger, answering every prompt with its default.
package simulator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/fentz26/qatrack/internal/logging"
	"github.com/fentz26/qatrack/internal/models"
	"github.com/fentz26/qatrack/internal/policy"
	"github.com/fentz26/qatrack/internal/registry"
)

// Simulator applies random quick updates on a fixed interval.
type Simulator struct {
	reg      *registry.Registry
	env      models.Environment
	interval time.Duration
	rng      *rand.Rand

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a simulator for the given environment.
func New(reg *registry.Registry, env models.Environment, interval time.Duration) *Simulator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Simulator{
		reg:      reg,
		env:      env,
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the tick loop.
func (s *Simulator) Start() {
	s.wg.Add(1)
	go s.loop()
	logging.Info("simulator started", "environment", s.env, "interval", s.interval)
}

// Stop gracefully stops the simulator.
func (s *Simulator) Stop() {
	s.cancel()
	s.wg.Wait()
	logging.Info("simulator stopped")
}

func (s *Simulator) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick applies one random status change. Ticks on an empty environment do
// nothing.
func (s *Simulator) tick() {
	var scoped []models.Module
	for _, m := range s.reg.All() {
		if m.Environment == s.env {
			scoped = append(scoped, m)
		}
	}
	if len(scoped) == 0 {
		return
	}

	m := scoped[s.rng.Intn(len(scoped))]
	target := s.randomStatusOtherThan(m.Status)

	if err := policy.Apply(s.reg, m.ID, target, policy.AutoAccept); err != nil {
		logging.Error("simulated update failed", "module", m.Name, "err", err)
		return
	}
	logging.Debug("simulated update", "module", m.Name, "from", m.Status, "to", target)
}

// randomStatusOtherThan picks a status different from current so every
// tick changes something.
func (s *Simulator) randomStatusOtherThan(current models.Status) models.Status {
	for {
		target := models.Statuses[s.rng.Intn(len(models.Statuses))]
		if target != current {
			return target
		}
	}
}
