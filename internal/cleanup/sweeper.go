package cleanup

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bidboard/bidboard-backend/internal/projects/domain"
)

// ProjectDeleter deletes an owned project; the sweeper goes through the same
// gateway as interactive deletes so owner scoping still applies.
type ProjectDeleter interface {
	Delete(ctx context.Context, ownerID, id string) error
}

// Sweeper periodically deletes projects registered as orphans.
type Sweeper struct {
	registry *Registry
	projects ProjectDeleter
	cron     *cron.Cron
}

// NewSweeper creates a new orphan sweeper
func NewSweeper(registry *Registry, projects ProjectDeleter) *Sweeper {
	return &Sweeper{
		registry: registry,
		projects: projects,
		cron:     cron.New(),
	}
}

// Start schedules the hourly sweep.
func (s *Sweeper) Start() {
	_, err := s.cron.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		s.Sweep(ctx)
	})
	if err != nil {
		log.Printf("Failed to create sweep job: %v", err)
		return
	}

	log.Println("Orphan sweeper started (running hourly)")
	s.cron.Start()
}

// Stop halts the schedule; a running sweep finishes first.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep deletes every registered orphan and removes it from the registry.
// A row that is already gone still counts as cleaned up.
func (s *Sweeper) Sweep(ctx context.Context) {
	orphans, err := s.registry.List(ctx)
	if err != nil {
		log.Printf("[sweep] list orphans: %v", err)
		return
	}
	if len(orphans) == 0 {
		return
	}

	log.Printf("[sweep] cleaning up %d orphaned project(s)", len(orphans))
	for _, o := range orphans {
		err := s.projects.Delete(ctx, o.OwnerID, o.ProjectID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			log.Printf("[sweep] delete project %s: %v", o.ProjectID, err)
			continue
		}
		if err := s.registry.Remove(ctx, o.ProjectID); err != nil {
			log.Printf("[sweep] remove orphan %s: %v", o.ProjectID, err)
		}
	}
}
