// Package engine provides the faction orchestrator and its fixed-interval
// tick loop: the single scheduler and source of truth for territory and
// diplomacy.
package engine

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Cadences, expressed in ticks of the base interval.
const (
	DefaultTickInterval = 5 * time.Second

	// DiplomacyEveryTicks recomputes inter-faction relations every 5 minutes.
	DiplomacyEveryTicks = 60

	// EventsEveryTicks processes and prunes events every minute.
	EventsEveryTicks = 12

	// SaveEveryTicks persists world state every 5 minutes.
	SaveEveryTicks = 60
)

// Loop drives the orchestrator forward at a fixed interval.
type Loop struct {
	Interval time.Duration
	Speed    float64 // multiplier: 1.0 = real time, 0 = paused

	// OnTick advances the simulation by one tick.
	OnTick func()

	// OnSave, when set, runs every SaveEveryTicks ticks.
	OnSave func()

	// running is read by Run and written by Stop, usually from another
	// goroutine.
	running atomic.Bool

	ticks uint64
}

// NewLoop creates a loop with default settings.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultTickInterval, Speed: 1.0}
}

// Run starts the loop. Blocks until Stop is called.
func (l *Loop) Run() {
	l.running.Store(true)
	slog.Info("simulation loop started", "interval", l.Interval, "speed", l.Speed)

	for l.running.Load() {
		if l.Speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		l.step()

		elapsed := time.Since(start)
		target := time.Duration(float64(l.Interval) / l.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation loop stopped", "ticks", l.ticks)
}

// Stop halts the loop after the current tick.
func (l *Loop) Stop() {
	l.running.Store(false)
}

func (l *Loop) step() {
	l.ticks++
	if l.OnTick != nil {
		l.OnTick()
	}
	if l.ticks%SaveEveryTicks == 0 && l.OnSave != nil {
		l.OnSave()
	}
}
