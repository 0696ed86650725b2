package store

import (
	"context"
	"fmt"

	"github.com/openstay/marketplace/backend/internal/models"
)

func (s *PostgresStore) ListInterestCategories(ctx context.Context) ([]models.InterestCategory, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description FROM interest_categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.InterestCategory{}
	for rows.Next() {
		var c models.InterestCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListInterests(ctx context.Context) ([]models.Interest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, category_id, name FROM interests ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Interest{}
	for rows.Next() {
		var i models.Interest
		if err := rows.Scan(&i.ID, &i.CategoryID, &i.Name); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetUserInterests(ctx context.Context, userID string) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT interest_id FROM user_interests WHERE user_id = $1 ORDER BY interest_id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ReplaceUserInterests swaps the user's full selection for the given
// set. Delete and insert run in one transaction, so a crash mid-save
// cannot leave the user with zero interests.
func (s *PostgresStore) ReplaceUserInterests(ctx context.Context, userID string, interestIDs []int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("replace interests: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM user_interests WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("replace interests: delete: %w", err)
	}
	if len(interestIDs) > 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_interests (user_id, interest_id)
			SELECT $1, unnest($2::bigint[])
			ON CONFLICT DO NOTHING`,
			userID, interestIDs); err != nil {
			return fmt.Errorf("replace interests: insert: %w", err)
		}
	}
	return tx.Commit(ctx)
}
