package watch

import (
	"time"

	"github.com/billmal071/epubpress/internal/config"
)

// Schedule decides how long to wait between status checks
type Schedule struct {
	Interval    time.Duration
	MaxInterval time.Duration
	Multiplier  float64
}

// DefaultSchedule returns the schedule from app settings
func DefaultSchedule() Schedule {
	cfg := config.Get()
	return Schedule{
		Interval:    cfg.Watch.Interval,
		MaxInterval: cfg.Watch.MaxInterval,
		Multiplier:  cfg.Watch.Multiplier,
	}
}

// Next returns the wait after the given zero-based attempt:
// Interval * Multiplier^attempt, capped at MaxInterval
func (s Schedule) Next(attempt int) time.Duration {
	if s.Interval <= 0 {
		s.Interval = time.Second
	}
	if attempt <= 0 || s.Multiplier <= 1 {
		return s.capped(float64(s.Interval))
	}

	delay := float64(s.Interval)
	for i := 0; i < attempt; i++ {
		delay *= s.Multiplier
		if s.MaxInterval > 0 && delay > float64(s.MaxInterval) {
			break
		}
	}
	return s.capped(delay)
}

func (s Schedule) capped(delay float64) time.Duration {
	if s.MaxInterval > 0 && delay > float64(s.MaxInterval) {
		return s.MaxInterval
	}
	return time.Duration(delay)
}
