package http

import (
	"github.com/bidboard/bidboard-backend/internal/projects/domain"
)

type lineItemView struct {
	domain.LineItem
	ExtendedPrice float64 `json:"extendedPrice"`
}

// projectView is a project plus its derived fields. The total is recomputed
// from the current line items on every response, never read from storage.
type projectView struct {
	domain.Project
	Total        float64 `json:"total"`
	TotalDisplay string  `json:"totalDisplay"`
	StatusTone   string  `json:"statusTone"`
}

func newProjectView(p *domain.Project) (*projectView, error) {
	total, err := p.Total()
	if err != nil {
		return nil, err
	}
	v := &projectView{
		Project:      *p,
		Total:        total,
		TotalDisplay: domain.FormatCurrency(total),
		StatusTone:   domain.StatusTone(p.Status),
	}
	if v.Project.LineItems == nil {
		v.Project.LineItems = []domain.LineItem{}
	}
	return v, nil
}

func newLineItemView(li *domain.LineItem) lineItemView {
	return lineItemView{LineItem: *li, ExtendedPrice: li.ExtendedPrice()}
}

type createProjectReq struct {
	Name    string `json:"name"`
	GC      string `json:"gc"`
	Contact string `json:"contact"`
	DueDate string `json:"dueDate"`
	Status  string `json:"status"`
}

type updateProjectReq struct {
	Name    *string `json:"name"`
	GC      *string `json:"gc"`
	Contact *string `json:"contact"`
	DueDate *string `json:"dueDate"`
	Status  *string `json:"status"`
}

type createLineItemReq struct {
	Service   string   `json:"service"`
	Quantity  *float64 `json:"quantity"`
	Unit      string   `json:"unit"`
	UnitPrice *float64 `json:"unitPrice"`
}

type updateLineItemReq struct {
	Service   *string  `json:"service"`
	Quantity  *float64 `json:"quantity"`
	Unit      *string  `json:"unit"`
	UnitPrice *float64 `json:"unitPrice"`
}
