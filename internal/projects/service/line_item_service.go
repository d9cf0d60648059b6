package service

import (
	"context"

	"github.com/bidboard/bidboard-backend/internal/projects/domain"
	"github.com/bidboard/bidboard-backend/internal/projects/repository"
)

// LineItemService handles line-item business logic
type LineItemService struct {
	items LineItemStore
}

// NewLineItemService creates a new line item service
func NewLineItemService(items LineItemStore) *LineItemService {
	return &LineItemService{items: items}
}

// Add creates a line item under the given project
func (s *LineItemService) Add(ctx context.Context, ownerID, projectID string, li *domain.LineItem) (*domain.LineItem, error) {
	li.ProjectID = projectID
	return s.items.Insert(ctx, ownerID, li)
}

// Update applies a partial update to a line item
func (s *LineItemService) Update(ctx context.Context, ownerID, id string, fields repository.LineItemUpdate) (*domain.LineItem, error) {
	return s.items.Update(ctx, ownerID, id, fields)
}

// Delete removes a line item
func (s *LineItemService) Delete(ctx context.Context, ownerID, id string) error {
	return s.items.Delete(ctx, ownerID, id)
}

// Duplicate copies one line item within its project, marking the copy's
// service label with " (Copy)".
func (s *LineItemService) Duplicate(ctx context.Context, ownerID, id string) (*domain.LineItem, error) {
	src, err := s.items.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	copy := &domain.LineItem{
		ProjectID: src.ProjectID,
		Service:   src.Service + " (Copy)",
		Quantity:  src.Quantity,
		Unit:      src.Unit,
		UnitPrice: src.UnitPrice,
	}
	return s.items.Insert(ctx, ownerID, copy)
}
