package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Target is the session whose selected place is refreshed.
type Target interface {
	Selected() (weather.Place, bool)
	FetchWeather(coords weather.Coordinates, displayName string) uint64
}

// Scheduler periodically re-fetches the weather for the selected place.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Target
	interval  time.Duration
}

// New creates a new Scheduler. An interval <= 0 disables it.
func New(target Target, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		target:    target,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		slog.Info("scheduler: refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.refresh)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	slog.Info("scheduler: started", "interval", s.interval)
	return nil
}

func (s *Scheduler) refresh() {
	place, ok := s.target.Selected()
	if !ok {
		slog.Debug("scheduler: nothing selected; skipping refresh")
		return
	}
	token := s.target.FetchWeather(place.Coords, place.Name)
	slog.Info("scheduler: refreshing selected place", "place", place.Name, "token", token)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
