package service

import (
	"context"
	"fmt"
	"log"

	"github.com/bidboard/bidboard-backend/internal/projects/domain"
	"github.com/bidboard/bidboard-backend/internal/projects/repository"
)

// ProjectStore is the gateway capability set for the projects collection.
type ProjectStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error)
	GetByID(ctx context.Context, ownerID, id string) (*domain.Project, error)
	Insert(ctx context.Context, ownerID string, p *domain.Project) (*domain.Project, error)
	Update(ctx context.Context, ownerID, id string, fields repository.ProjectUpdate) (*domain.Project, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// LineItemStore is the gateway capability set for the line items collection.
type LineItemStore interface {
	Get(ctx context.Context, ownerID, id string) (*domain.LineItem, error)
	Insert(ctx context.Context, ownerID string, li *domain.LineItem) (*domain.LineItem, error)
	InsertBatch(ctx context.Context, ownerID, projectID string, items []domain.LineItem) ([]domain.LineItem, error)
	Update(ctx context.Context, ownerID, id string, fields repository.LineItemUpdate) (*domain.LineItem, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// OrphanRecorder records a project left without its children after a failed
// duplication, for the scheduled sweeper to clean up.
type OrphanRecorder interface {
	Record(ctx context.Context, projectID, ownerID, reason string) error
}

// ProjectService handles project-related business logic
type ProjectService struct {
	projects ProjectStore
	items    LineItemStore
	orphans  OrphanRecorder
}

// NewProjectService creates a new project service
func NewProjectService(projects ProjectStore, items LineItemStore, orphans OrphanRecorder) *ProjectService {
	return &ProjectService{
		projects: projects,
		items:    items,
		orphans:  orphans,
	}
}

// List returns all projects for a user, each with its line items
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	return s.projects.ListByOwner(ctx, ownerID)
}

// Get returns one project with its line items
func (s *ProjectService) Get(ctx context.Context, ownerID, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, ownerID, id)
}

// Create creates a new empty project
func (s *ProjectService) Create(ctx context.Context, ownerID string, p *domain.Project) (*domain.Project, error) {
	return s.projects.Insert(ctx, ownerID, p)
}

// Update applies a partial update to a project's fields
func (s *ProjectService) Update(ctx context.Context, ownerID, id string, fields repository.ProjectUpdate) (*domain.Project, error) {
	return s.projects.Update(ctx, ownerID, id, fields)
}

// Delete removes a project and all of its line items
func (s *ProjectService) Delete(ctx context.Context, ownerID, id string) error {
	return s.projects.Delete(ctx, ownerID, id)
}

// Duplicate deep-copies a project and its line items under a new identity.
//
// The clone runs as three dependent store calls: insert the header copy,
// batch-insert the children, re-fetch the result. If the child batch fails the
// header is deleted again (compensation). If that delete also fails the new
// project exists with zero line items; the orphan is recorded for the sweeper
// and the original error is returned.
func (s *ProjectService) Duplicate(ctx context.Context, ownerID, id string) (*domain.Project, error) {
	src, err := s.projects.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	header := &domain.Project{
		Name:    src.Name + " (Copy)",
		GC:      src.GC,
		Contact: src.Contact,
		DueDate: src.DueDate,
		Status:  src.Status,
	}
	clone, err := s.projects.Insert(ctx, ownerID, header)
	if err != nil {
		return nil, err
	}

	if len(src.LineItems) > 0 {
		copies := make([]domain.LineItem, len(src.LineItems))
		for i, li := range src.LineItems {
			copies[i] = domain.LineItem{
				ProjectID: clone.ID,
				Service:   li.Service,
				Quantity:  li.Quantity,
				Unit:      li.Unit,
				UnitPrice: li.UnitPrice,
			}
		}
		if _, err := s.items.InsertBatch(ctx, ownerID, clone.ID, copies); err != nil {
			if delErr := s.projects.Delete(ctx, ownerID, clone.ID); delErr != nil {
				log.Printf("[duplicate] project %s orphaned without line items: %v", clone.ID, delErr)
				if s.orphans != nil {
					if recErr := s.orphans.Record(ctx, clone.ID, ownerID, err.Error()); recErr != nil {
						log.Printf("[duplicate] failed to record orphan %s: %v", clone.ID, recErr)
					}
				}
			}
			return nil, fmt.Errorf("duplicate line items: %w", err)
		}
	}

	return s.projects.GetByID(ctx, ownerID, clone.ID)
}
