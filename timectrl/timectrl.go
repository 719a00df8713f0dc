// Package timectrl drives simulation time for live runs, decoupling the
// per-step evaluation loop from wall-clock pacing.
package timectrl

import (
	"context"
	"sync"
	"time"
)

// SimClock gives consumers read access to simulation time without tying them
// to a concrete controller type.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime paces ticks against wall-clock time.
	RealTime Mode = iota
	// Accelerated advances as quickly as the loop can run while still
	// stepping simulation time by Tick.
	Accelerated
)

// TimeController advances simulation time in fixed ticks and notifies
// registered listeners. It implements SimClock.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time

	listeners []func(step int, now time.Time)
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// AddListener registers a callback invoked on every tick with the completed
// step index and the simulation time after the step. Listeners run on the
// controller goroutine; register before Run.
func (tc *TimeController) AddListener(fn func(step int, now time.Time)) {
	tc.listeners = append(tc.listeners, fn)
}

// Run advances simulation time by Tick for the given number of steps,
// invoking listeners after each step. In RealTime mode each step waits one
// Tick of wall-clock time; Accelerated mode runs back to back. Run returns
// early with the context error when ctx is cancelled.
func (tc *TimeController) Run(ctx context.Context, steps int) error {
	tc.mu.Lock()
	simTime := tc.StartTime
	tc.currentTime = simTime
	tc.mu.Unlock()

	var ticker *time.Ticker
	if tc.Mode == RealTime {
		ticker = time.NewTicker(tc.Tick)
		defer ticker.Stop()
	}

	for step := 0; step < steps; step++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		simTime = simTime.Add(tc.Tick)
		tc.mu.Lock()
		tc.currentTime = simTime
		tc.mu.Unlock()

		for _, fn := range tc.listeners {
			fn(step, simTime)
		}
	}
	return nil
}
