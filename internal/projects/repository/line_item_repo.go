package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bidboard/bidboard-backend/internal/projects/domain"
)

// LineItemRepository provides persistence operations for line items.
// Ownership is always checked through the parent project row.
type LineItemRepository struct {
	db *sql.DB
}

// NewLineItemRepository creates a new line item repository
func NewLineItemRepository(db *sql.DB) *LineItemRepository {
	return &LineItemRepository{db: db}
}

// Get returns one line item owned (via its project) by ownerID.
func (r *LineItemRepository) Get(ctx context.Context, ownerID, id string) (*domain.LineItem, error) {
	const q = `
SELECT li.id, li.project_id, li.service, li.quantity, li.unit, li.unit_price, p.user_id
FROM line_items li
JOIN projects p ON p.id = li.project_id
WHERE li.id = $1;
`
	var (
		li       domain.LineItem
		unit     sql.NullString
		rowOwner string
	)
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&li.ID, &li.ProjectID, &li.Service, &li.Quantity, &unit, &li.UnitPrice, &rowOwner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("get line item", err)
	}
	if rowOwner != ownerID {
		return nil, domain.ErrNotAuthorized
	}
	li.Unit = unit.String
	return &li, nil
}

// Insert adds a line item to a project the owner controls.
func (r *LineItemRepository) Insert(ctx context.Context, ownerID string, li *domain.LineItem) (*domain.LineItem, error) {
	if err := domain.ValidateLineItem(li); err != nil {
		return nil, err
	}
	if err := r.checkParent(ctx, ownerID, li.ProjectID); err != nil {
		return nil, err
	}

	const q = `
INSERT INTO line_items (id, project_id, service, quantity, unit, unit_price)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
RETURNING id, project_id, service, quantity, unit, unit_price;
`
	row := r.db.QueryRowContext(ctx, q,
		uuid.New().String(), li.ProjectID, strings.TrimSpace(li.Service),
		li.Quantity, strings.TrimSpace(li.Unit), li.UnitPrice)
	created, err := scanLineItem(row)
	if err != nil {
		return nil, storeErr("insert line item", err)
	}
	return created, nil
}

// InsertBatch inserts many line items for one project in a single transaction.
// Either every row commits or none do; callers may treat any error as
// "batch not committed".
func (r *LineItemRepository) InsertBatch(ctx context.Context, ownerID, projectID string, items []domain.LineItem) ([]domain.LineItem, error) {
	for i := range items {
		if err := domain.ValidateLineItem(&items[i]); err != nil {
			return nil, err
		}
	}
	if err := r.checkParent(ctx, ownerID, projectID); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("begin batch insert", err)
	}
	defer tx.Rollback()

	const q = `
INSERT INTO line_items (id, project_id, service, quantity, unit, unit_price)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
RETURNING id, project_id, service, quantity, unit, unit_price;
`
	out := make([]domain.LineItem, 0, len(items))
	for _, li := range items {
		row := tx.QueryRowContext(ctx, q,
			uuid.New().String(), projectID, strings.TrimSpace(li.Service),
			li.Quantity, strings.TrimSpace(li.Unit), li.UnitPrice)
		created, err := scanLineItem(row)
		if err != nil {
			return nil, storeErr("batch insert line item", err)
		}
		out = append(out, *created)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit batch insert", err)
	}
	return out, nil
}

// LineItemUpdate carries partial field changes; nil fields are left untouched.
type LineItemUpdate struct {
	Service   *string
	Quantity  *float64
	Unit      *string
	UnitPrice *float64
}

func (u *LineItemUpdate) validate() error {
	if u.Service != nil && strings.TrimSpace(*u.Service) == "" {
		return fmt.Errorf("%w: service is required", domain.ErrValidation)
	}
	probe := domain.LineItem{}
	if u.Quantity != nil {
		probe.Quantity = *u.Quantity
	}
	if u.UnitPrice != nil {
		probe.UnitPrice = *u.UnitPrice
	}
	probe.Service = "x"
	return domain.ValidateLineItem(&probe)
}

// Update applies a partial update to a line item the owner controls.
func (r *LineItemRepository) Update(ctx context.Context, ownerID, id string, fields LineItemUpdate) (*domain.LineItem, error) {
	if err := fields.validate(); err != nil {
		return nil, err
	}

	const q = `
UPDATE line_items li
SET service    = COALESCE($3, li.service),
    quantity   = COALESCE($4, li.quantity),
    unit       = COALESCE($5, li.unit),
    unit_price = COALESCE($6, li.unit_price)
FROM projects p
WHERE li.id = $1 AND p.id = li.project_id AND p.user_id = $2;
`
	res, err := r.db.ExecContext(ctx, q, id, ownerID,
		trimmed(fields.Service), nullFloat(fields.Quantity), trimmed(fields.Unit), nullFloat(fields.UnitPrice))
	if err != nil {
		return nil, storeErr("update line item", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, storeErr("update line item", err)
	}
	if n == 0 {
		return nil, r.itemOwnershipErr(ctx, id)
	}
	return r.Get(ctx, ownerID, id)
}

// Delete removes a line item the owner controls.
// Deleting an id that is already gone succeeds (idempotent).
func (r *LineItemRepository) Delete(ctx context.Context, ownerID, id string) error {
	const q = `
DELETE FROM line_items li
USING projects p
WHERE li.id = $1 AND p.id = li.project_id AND p.user_id = $2;
`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return storeErr("delete line item", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete line item", err)
	}
	if n == 0 {
		if err := r.itemOwnershipErr(ctx, id); errors.Is(err, domain.ErrNotAuthorized) {
			return err
		}
	}
	return nil
}

func (r *LineItemRepository) checkParent(ctx context.Context, ownerID, projectID string) error {
	const q = `SELECT user_id FROM projects WHERE id = $1;`
	var owner string
	err := r.db.QueryRowContext(ctx, q, projectID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return storeErr("probe project", err)
	}
	if owner != ownerID {
		return domain.ErrNotAuthorized
	}
	return nil
}

func (r *LineItemRepository) itemOwnershipErr(ctx context.Context, id string) error {
	const q = `
SELECT p.user_id
FROM line_items li
JOIN projects p ON p.id = li.project_id
WHERE li.id = $1;
`
	var owner string
	err := r.db.QueryRowContext(ctx, q, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return storeErr("probe line item", err)
	}
	return domain.ErrNotAuthorized
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
