// Package clock drives the current-time line of day columns.
package clock

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"webcal/internal/calendar"
	appLog "webcal/internal/log"
)

// EveryMinute is the cron schedule of the indicator tick.
const EveryMinute = "* * * * *"

// Reading is the latest computed indicator position.
type Reading struct {
	At     time.Time `json:"at"`
	Offset float64   `json:"offset"`
}

// Indicator recomputes the current-time offset once a minute. The tick is
// fire-and-forget; Stop ends it when the view is torn down.
type Indicator struct {
	mapper calendar.Mapper
	now    func() time.Time

	mu      sync.RWMutex
	reading Reading

	cron      *cron.Cron
	scheduled bool
	started   bool
}

// NewIndicator constructs an Indicator. A nil now selects time.Now.
func NewIndicator(m calendar.Mapper, now func() time.Time) *Indicator {
	if now == nil {
		now = time.Now
	}
	return &Indicator{
		mapper: m,
		now:    now,
		cron:   cron.New(),
	}
}

// Start computes an initial reading and schedules the minute tick.
func (i *Indicator) Start() error {
	i.Tick()

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.started {
		return nil
	}
	if !i.scheduled {
		if _, err := i.cron.AddFunc(EveryMinute, func() { i.Tick() }); err != nil {
			return err
		}
		i.scheduled = true
	}
	i.cron.Start()
	i.started = true
	appLog.Debug("clock: indicator started", "schedule", EveryMinute)
	return nil
}

// Stop halts the schedule and waits for a running tick, or for ctx.
func (i *Indicator) Stop(ctx context.Context) {
	i.mu.Lock()
	if !i.started {
		i.mu.Unlock()
		return
	}
	i.started = false
	i.mu.Unlock()

	done := i.cron.Stop()
	select {
	case <-done.Done():
		appLog.Debug("clock: indicator stopped")
	case <-ctx.Done():
		appLog.Error("clock: indicator stop interrupted", ctx.Err())
	}
}

// Tick recomputes the reading immediately.
func (i *Indicator) Tick() Reading {
	now := i.now()
	r := Reading{At: now, Offset: i.mapper.CurrentTimeOffset(now)}

	i.mu.Lock()
	i.reading = r
	i.mu.Unlock()
	return r
}

// Reading returns the latest reading without recomputing it.
func (i *Indicator) Reading() Reading {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.reading
}
