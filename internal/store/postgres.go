package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openstay/marketplace/backend/internal/models"
)

// ErrNotFound marks the distinct "no such row" condition. Handlers map
// it to 404 so clients can route (e.g. missing profile -> onboarding)
// instead of treating it as a generic failure.
var ErrNotFound = errors.New("not found")

// PostgresStore owns all relational persistence: users, listings,
// taxonomy, profiles and interests. Methods are split across files in
// this package by entity.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the schema if it doesn't exist. Reference tables are
// populated separately by cmd/seed.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username   VARCHAR(50)  UNIQUE NOT NULL,
			email      VARCHAR(255) UNIQUE NOT NULL,
			password   VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ  DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS categories (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT UNIQUE NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS subcategories (
			id          BIGSERIAL PRIMARY KEY,
			category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			UNIQUE (category_id, name)
		);

		CREATE TABLE IF NOT EXISTS amenities (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT UNIQUE NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS listings (
			id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id        UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title          TEXT NOT NULL,
			description    TEXT NOT NULL,
			category_id    BIGINT REFERENCES categories(id),
			subcategory_id BIGINT REFERENCES subcategories(id),
			price          NUMERIC(12,2) NOT NULL,
			currency       VARCHAR(3) NOT NULL,
			featured_image JSONB NOT NULL,
			images         JSONB NOT NULL DEFAULT '[]',
			address        TEXT NOT NULL DEFAULT '',
			city           TEXT NOT NULL DEFAULT '',
			state          TEXT NOT NULL DEFAULT '',
			country        TEXT NOT NULL DEFAULT '',
			postal_code    TEXT NOT NULL DEFAULT '',
			rules          TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS listings_created_at_idx ON listings (created_at DESC, id DESC);
		CREATE INDEX IF NOT EXISTS listings_user_id_idx ON listings (user_id);

		CREATE TABLE IF NOT EXISTS listing_amenities (
			listing_id UUID   NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
			amenity_id BIGINT NOT NULL REFERENCES amenities(id) ON DELETE CASCADE,
			PRIMARY KEY (listing_id, amenity_id)
		);

		CREATE TABLE IF NOT EXISTS profiles (
			user_id         UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			first_name      TEXT NOT NULL DEFAULT '',
			last_name       TEXT NOT NULL DEFAULT '',
			phone_number    TEXT NOT NULL DEFAULT '',
			username        TEXT NOT NULL DEFAULT '',
			about           TEXT NOT NULL DEFAULT '',
			profile_picture TEXT NOT NULL DEFAULT '',
			location        JSONB NOT NULL DEFAULT '{}',
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS interest_categories (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT UNIQUE NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS interests (
			id          BIGSERIAL PRIMARY KEY,
			category_id BIGINT NOT NULL REFERENCES interest_categories(id) ON DELETE CASCADE,
			name        TEXT NOT NULL,
			UNIQUE (category_id, name)
		);

		CREATE TABLE IF NOT EXISTS user_interests (
			user_id     UUID   NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			interest_id BIGINT NOT NULL REFERENCES interests(id) ON DELETE CASCADE,
			PRIMARY KEY (user_id, interest_id)
		)
	`)
	return err
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, email, hashedPassword string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password)
		 VALUES ($1, $2, $3)
		 RETURNING id, username, email, created_at`,
		username, email, hashedPassword,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password, created_at FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
