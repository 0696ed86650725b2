package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/openstay/marketplace/backend/internal/models"
)

func (s *PostgresStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListSubcategories returns the subcategories of one category; a newly
// selected category narrows the available choices to exactly this set.
func (s *PostgresStore) ListSubcategories(ctx context.Context, categoryID int64) ([]models.Subcategory, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, category_id, name, description FROM subcategories
		WHERE category_id = $1 ORDER BY id`,
		categoryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Subcategory{}
	for rows.Next() {
		var sc models.Subcategory
		if err := rows.Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.Description); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetSubcategory(ctx context.Context, id int64) (*models.Subcategory, error) {
	var sc models.Subcategory
	err := s.pool.QueryRow(ctx,
		`SELECT id, category_id, name, description FROM subcategories WHERE id = $1`, id,
	).Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sc, nil
}

func (s *PostgresStore) ListAmenities(ctx context.Context) ([]models.Amenity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description FROM amenities ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Amenity{}
	for rows.Next() {
		var a models.Amenity
		if err := rows.Scan(&a.ID, &a.Name, &a.Description); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Seed helpers used by cmd/seed. Upserting by name keeps the command
// idempotent across runs.

func (s *PostgresStore) UpsertCategory(ctx context.Context, name, description string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO categories (name, description) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		RETURNING id`,
		name, description,
	).Scan(&id)
	return id, err
}

func (s *PostgresStore) UpsertSubcategory(ctx context.Context, categoryID int64, name, description string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO subcategories (category_id, name, description) VALUES ($1, $2, $3)
		ON CONFLICT (category_id, name) DO UPDATE SET description = EXCLUDED.description`,
		categoryID, name, description,
	)
	return err
}

func (s *PostgresStore) UpsertAmenity(ctx context.Context, name, description string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO amenities (name, description) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description`,
		name, description,
	)
	return err
}

func (s *PostgresStore) UpsertInterestCategory(ctx context.Context, name, description string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO interest_categories (name, description) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		RETURNING id`,
		name, description,
	).Scan(&id)
	return id, err
}

func (s *PostgresStore) UpsertInterest(ctx context.Context, categoryID int64, name string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO interests (category_id, name) VALUES ($1, $2)
		ON CONFLICT (category_id, name) DO NOTHING`,
		categoryID, name,
	)
	return err
}
