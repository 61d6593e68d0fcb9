// Package service implements the dialer business logic: dispositions,
// queue building, caller-ID rotation and stats.
package service

import (
	"math/rand"
	"time"

	"dialer_portal_backend/internal/dialer/repository"
	"dialer_portal_backend/internal/events"
	"dialer_portal_backend/platform/config"
	"dialer_portal_backend/platform/logger"
)

// Service provides business logic for the power dialer.
type Service struct {
	leads        repository.LeadManager
	dispositions repository.DispositionStore
	queue        repository.QueueReader
	history      repository.HistoryStore
	pool         repository.PoolStore
	stats        repository.StatsStore

	bus events.Bus
	log *logger.Logger
	cfg config.DialerConfig

	// injected for deterministic tests
	now       func() time.Time
	randFloat func() float64
}

// New creates a dialer service backed by the repository.
func New(repo *repository.Repository, bus events.Bus, log *logger.Logger, cfg config.DialerConfig) *Service {
	return &Service{
		leads:        repo,
		dispositions: repo,
		queue:        repo,
		history:      repo,
		pool:         repo,
		stats:        repo,
		bus:          bus,
		log:          log,
		cfg:          cfg,
		now:          time.Now,
		randFloat:    rand.Float64,
	}
}
