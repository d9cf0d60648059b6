package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bidboard/bidboard-backend/internal/projects/domain"
)

// Profile holds the account settings shown on the settings page.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email,omitempty"`
	FirstName   string    `json:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty"`
	CompanyName string    `json:"companyName,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Ensure upserts the profile row for an authenticated user.
func (r *Repo) Ensure(ctx context.Context, userID, email string) error {
	if userID == "" {
		return fmt.Errorf("user id required")
	}

	const q = `
INSERT INTO profiles (id, email, updated_at)
VALUES ($1, NULLIF($2, ''), now())
ON CONFLICT (id) DO UPDATE
SET email = COALESCE(EXCLUDED.email, profiles.email);
`
	if _, err := r.db.ExecContext(ctx, q, userID, email); err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}
	return nil
}

// Get returns the profile for a user.
func (r *Repo) Get(ctx context.Context, userID string) (*Profile, error) {
	const q = `
SELECT id, email, first_name, last_name, company_name, updated_at
FROM profiles
WHERE id = $1;
`
	var (
		p                       Profile
		email, first, last, com sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, userID).
		Scan(&p.ID, &email, &first, &last, &com, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.Email = email.String
	p.FirstName = first.String
	p.LastName = last.String
	p.CompanyName = com.String
	return &p, nil
}

// Update replaces the editable profile fields.
func (r *Repo) Update(ctx context.Context, userID, firstName, lastName, companyName string) (*Profile, error) {
	const q = `
UPDATE profiles
SET first_name = NULLIF($2, ''), last_name = NULLIF($3, ''),
    company_name = NULLIF($4, ''), updated_at = now()
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID, firstName, lastName, companyName)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrNotFound
	}
	return r.Get(ctx, userID)
}
