package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bidboard/bidboard-backend/internal/projects/domain"
)

// ProjectRepository provides persistence operations for projects.
// It owns the camelCase<->snake_case column mapping and the owner-scoping
// predicate; callers never see another account's rows.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// ListByOwner returns all projects for the given owner, newest first,
// each populated with its line items.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error) {
	const q = `
SELECT id, name, gc, contact, due_date, status, created_at
FROM projects
WHERE user_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, storeErr("list projects", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	index := make(map[string]int)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, storeErr("scan project", err)
		}
		index[p.ID] = len(out)
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list projects", err)
	}

	const iq = `
SELECT li.id, li.project_id, li.service, li.quantity, li.unit, li.unit_price
FROM line_items li
JOIN projects p ON p.id = li.project_id
WHERE p.user_id = $1;
`
	irows, err := r.db.QueryContext(ctx, iq, ownerID)
	if err != nil {
		return nil, storeErr("list line items", err)
	}
	defer irows.Close()

	for irows.Next() {
		li, err := scanLineItem(irows)
		if err != nil {
			return nil, storeErr("scan line item", err)
		}
		if i, ok := index[li.ProjectID]; ok {
			out[i].LineItems = append(out[i].LineItems, *li)
		}
	}
	if err := irows.Err(); err != nil {
		return nil, storeErr("list line items", err)
	}
	return out, nil
}

// GetByID returns one project with its line items.
// Absent id yields ErrNotFound; a row owned by another account yields ErrNotAuthorized.
func (r *ProjectRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Project, error) {
	const q = `
SELECT id, user_id, name, gc, contact, due_date, status, created_at
FROM projects
WHERE id = $1;
`
	var (
		p        domain.Project
		rowOwner string
		contact  sql.NullString
		due      sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &rowOwner, &p.Name, &p.GC, &contact, &due, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("get project", err)
	}
	if rowOwner != ownerID {
		return nil, domain.ErrNotAuthorized
	}
	p.Contact = contact.String
	if due.Valid {
		p.DueDate = due.Time.Format("2006-01-02")
	}

	const iq = `
SELECT id, project_id, service, quantity, unit, unit_price
FROM line_items
WHERE project_id = $1;
`
	rows, err := r.db.QueryContext(ctx, iq, id)
	if err != nil {
		return nil, storeErr("get line items", err)
	}
	defer rows.Close()

	p.LineItems = make([]domain.LineItem, 0, 8)
	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, storeErr("scan line item", err)
		}
		p.LineItems = append(p.LineItems, *li)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("get line items", err)
	}
	return &p, nil
}

// Insert creates a new project for the owner and returns it with its assigned id.
func (r *ProjectRepository) Insert(ctx context.Context, ownerID string, p *domain.Project) (*domain.Project, error) {
	if p.Status == "" {
		p.Status = domain.StatusPending
	}
	if err := domain.ValidateProject(p); err != nil {
		return nil, err
	}

	const q = `
INSERT INTO projects (id, user_id, name, gc, contact, due_date, status)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
RETURNING id, name, gc, contact, due_date, status, created_at;
`
	var due sql.NullTime
	if p.DueDate != "" {
		t, err := time.Parse("2006-01-02", p.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: dueDate must be an ISO date", domain.ErrValidation)
		}
		due = sql.NullTime{Time: t, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, q,
		uuid.New().String(), ownerID, strings.TrimSpace(p.Name), strings.TrimSpace(p.GC),
		strings.TrimSpace(p.Contact), due, string(p.Status))

	created, err := scanProject(row)
	if err != nil {
		return nil, storeErr("insert project", err)
	}
	created.LineItems = []domain.LineItem{}
	return created, nil
}

// ProjectUpdate carries partial field changes; nil fields are left untouched.
type ProjectUpdate struct {
	Name    *string
	GC      *string
	Contact *string
	DueDate *string
	Status  *domain.Status
}

func (u *ProjectUpdate) validate() error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if u.GC != nil && strings.TrimSpace(*u.GC) == "" {
		return fmt.Errorf("%w: gc is required", domain.ErrValidation)
	}
	if u.DueDate != nil && *u.DueDate != "" {
		if _, err := time.Parse("2006-01-02", *u.DueDate); err != nil {
			return fmt.Errorf("%w: dueDate must be an ISO date", domain.ErrValidation)
		}
	}
	if u.Status != nil && !u.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *u.Status)
	}
	return nil
}

// Update applies a partial update to an owned project.
func (r *ProjectRepository) Update(ctx context.Context, ownerID, id string, fields ProjectUpdate) (*domain.Project, error) {
	if err := fields.validate(); err != nil {
		return nil, err
	}

	const q = `
UPDATE projects
SET name     = COALESCE($3, name),
    gc       = COALESCE($4, gc),
    contact  = COALESCE($5, contact),
    due_date = COALESCE($6, due_date),
    status   = COALESCE($7, status)
WHERE id = $1 AND user_id = $2;
`
	var due sql.NullTime
	if fields.DueDate != nil && *fields.DueDate != "" {
		t, _ := time.Parse("2006-01-02", *fields.DueDate)
		due = sql.NullTime{Time: t, Valid: true}
	}
	var status sql.NullString
	if fields.Status != nil {
		status = sql.NullString{String: string(*fields.Status), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, q, id, ownerID,
		trimmed(fields.Name), trimmed(fields.GC), trimmed(fields.Contact), due, status)
	if err != nil {
		return nil, storeErr("update project", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, storeErr("update project", err)
	}
	if n == 0 {
		return nil, r.ownershipErr(ctx, id)
	}
	return r.GetByID(ctx, ownerID, id)
}

// Delete removes an owned project and all of its line items.
// Deleting an id that is already gone succeeds (idempotent).
func (r *ProjectRepository) Delete(ctx context.Context, ownerID, id string) error {
	const dq = `
DELETE FROM line_items
WHERE project_id IN (SELECT id FROM projects WHERE id = $1 AND user_id = $2);
`
	if _, err := r.db.ExecContext(ctx, dq, id, ownerID); err != nil {
		return storeErr("delete line items", err)
	}

	const q = `DELETE FROM projects WHERE id = $1 AND user_id = $2;`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return storeErr("delete project", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete project", err)
	}
	if n == 0 {
		// Absent row is fine; a row owned by someone else is not.
		if err := r.ownershipErr(ctx, id); errors.Is(err, domain.ErrNotAuthorized) {
			return err
		}
	}
	return nil
}

// ownershipErr distinguishes a missing row from one owned by another account.
func (r *ProjectRepository) ownershipErr(ctx context.Context, id string) error {
	const q = `SELECT user_id FROM projects WHERE id = $1;`
	var owner string
	err := r.db.QueryRowContext(ctx, q, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return storeErr("probe project", err)
	}
	return domain.ErrNotAuthorized
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p       domain.Project
		contact sql.NullString
		due     sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Name, &p.GC, &contact, &due, &p.Status, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Contact = contact.String
	if due.Valid {
		p.DueDate = due.Time.Format("2006-01-02")
	}
	return &p, nil
}

func scanLineItem(row rowScanner) (*domain.LineItem, error) {
	var (
		li   domain.LineItem
		unit sql.NullString
	)
	if err := row.Scan(&li.ID, &li.ProjectID, &li.Service, &li.Quantity, &unit, &li.UnitPrice); err != nil {
		return nil, err
	}
	li.Unit = unit.String
	return &li, nil
}

func trimmed(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.TrimSpace(*s), Valid: true}
}

// storeErr tags raw store failures with the gateway error taxonomy.
func storeErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign key violation: parent row is gone
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		case "23505":
			return fmt.Errorf("%s: %w: duplicate id", op, domain.ErrValidation)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
}
