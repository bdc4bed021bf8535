package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-dashboard/internal/history"
)

// Scheduler periodically prunes the search-history store to its configured
// retention bounds.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	store      *history.Store
	interval   time.Duration
	maxAge     time.Duration
	maxEntries int
}

// New creates a new Scheduler.
func New(store *history.Store, interval, maxAge time.Duration, maxEntries int) *Scheduler {
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		store:      store,
		interval:   interval,
		maxAge:     maxAge,
		maxEntries: maxEntries,
	}
}

// Start schedules the periodic prune job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.maxAge <= 0 && s.maxEntries <= 0 {
		log.Println("scheduler: history retention disabled; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = time.Hour
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		removed, err := s.store.Prune(s.maxAge, s.maxEntries)
		if err != nil {
			log.Printf("scheduler: history prune failed: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("scheduler: pruned %d search history entries", removed)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
