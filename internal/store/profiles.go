package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/openstay/marketplace/backend/internal/models"
)

// UpsertProfile creates or updates the caller's profile in one
// statement; profiles are keyed by user id, one per user.
func (s *PostgresStore) UpsertProfile(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	var out models.Profile
	err := s.pool.QueryRow(ctx, `
		INSERT INTO profiles (user_id, first_name, last_name, phone_number, username,
			about, profile_picture, location, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			first_name      = EXCLUDED.first_name,
			last_name       = EXCLUDED.last_name,
			phone_number    = EXCLUDED.phone_number,
			username        = EXCLUDED.username,
			about           = EXCLUDED.about,
			profile_picture = EXCLUDED.profile_picture,
			location        = EXCLUDED.location,
			updated_at      = NOW()
		RETURNING user_id, first_name, last_name, phone_number, username,
			about, profile_picture, location, updated_at`,
		p.UserID, p.FirstName, p.LastName, p.PhoneNumber, p.Username,
		p.About, p.ProfilePicture, p.Location,
	).Scan(
		&out.UserID, &out.FirstName, &out.LastName, &out.PhoneNumber, &out.Username,
		&out.About, &out.ProfilePicture, &out.Location, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return &out, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, first_name, last_name, phone_number, username,
			about, profile_picture, location, updated_at
		FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(
		&p.UserID, &p.FirstName, &p.LastName, &p.PhoneNumber, &p.Username,
		&p.About, &p.ProfilePicture, &p.Location, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
