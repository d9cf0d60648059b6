package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Project is a single cost-tracking job/bid owned by one user.
// It is storage-agnostic and shared across repository and HTTP layers.
type Project struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	GC        string     `json:"gc"`
	Contact   string     `json:"contact,omitempty"`
	DueDate   string     `json:"dueDate,omitempty"` // ISO date (2006-01-02)
	Status    Status     `json:"status"`
	LineItems []LineItem `json:"lineItems"`
	CreatedAt time.Time  `json:"createdAt"`
}

// LineItem is one priced work item belonging to exactly one project.
type LineItem struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"projectId"`
	Service   string  `json:"service"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit,omitempty"`
	UnitPrice float64 `json:"unitPrice"`
}

// ExtendedPrice is the line's contribution to the project total.
// Call ValidateLineItem first; this does no checking of its own.
func (li LineItem) ExtendedPrice() float64 {
	return li.Quantity * li.UnitPrice
}

// ComputeTotal sums quantity × unitPrice over the collection.
// An empty collection totals 0. Non-finite or negative numeric fields are a
// validation error, never silently coerced to zero.
func ComputeTotal(items []LineItem) (float64, error) {
	var total float64
	for _, li := range items {
		if err := validateNumbers(li); err != nil {
			return 0, err
		}
		total += li.ExtendedPrice()
	}
	return total, nil
}

// Total recomputes the project total from its current line items.
// The result is derived and never persisted.
func (p *Project) Total() (float64, error) {
	return ComputeTotal(p.LineItems)
}

// ValidateProject checks required fields before any store call.
func ValidateProject(p *Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(p.GC) == "" {
		return fmt.Errorf("%w: gc is required", ErrValidation)
	}
	if p.DueDate != "" {
		if _, err := time.Parse("2006-01-02", p.DueDate); err != nil {
			return fmt.Errorf("%w: dueDate must be an ISO date", ErrValidation)
		}
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, p.Status)
	}
	return nil
}

// ValidateLineItem checks required fields and numeric sanity before any store call.
func ValidateLineItem(li *LineItem) error {
	if strings.TrimSpace(li.Service) == "" {
		return fmt.Errorf("%w: service is required", ErrValidation)
	}
	return validateNumbers(*li)
}

func validateNumbers(li LineItem) error {
	if math.IsNaN(li.Quantity) || math.IsInf(li.Quantity, 0) || li.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be a non-negative number", ErrValidation)
	}
	if math.IsNaN(li.UnitPrice) || math.IsInf(li.UnitPrice, 0) || li.UnitPrice < 0 {
		return fmt.Errorf("%w: unitPrice must be a non-negative number", ErrValidation)
	}
	return nil
}
