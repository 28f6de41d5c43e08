package chat

import (
	"fmt"
	"time"

	"searchbot/conversation"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sweeper periodically evicts sessions that have been idle too long
type Sweeper struct {
	cron   *cron.Cron
	cronID cron.EntryID
	store  *conversation.Store
	idle   time.Duration
	log    zerolog.Logger
}

// NewSweeper creates a sweeper for store; call Start to schedule it
func NewSweeper(store *conversation.Store, idle time.Duration, logger *zerolog.Logger) *Sweeper {
	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "sweeper").Logger()
	}
	return &Sweeper{cron: cron.New(), store: store, idle: idle, log: log}
}

// Start schedules the sweep with a cron spec such as "@every 10m"
func (s *Sweeper) Start(schedule string) error {
	id, err := s.cron.AddFunc(schedule, func() { s.RunOnce() })
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	s.cronID = id
	s.cron.Start()
	s.log.Info().Str("schedule", schedule).Dur("idle_ttl", s.idle).Msg("Session sweeper started")
	return nil
}

// RunOnce sweeps immediately and returns the number of evicted sessions
func (s *Sweeper) RunOnce() int {
	removed := s.store.Sweep(s.idle)
	if removed > 0 {
		s.log.Info().Int("removed", removed).Int("remaining", s.store.Len()).Msg("Evicted idle sessions")
	}
	return removed
}

// Stop halts scheduling and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
