package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/openstay/marketplace/backend/internal/models"
)

const listingColumns = `id, user_id, title, description, category_id, subcategory_id,
	price::text, currency, featured_image, images,
	address, city, state, country, postal_code, rules, created_at`

func scanListing(row pgx.Row) (*models.Listing, error) {
	var l models.Listing
	err := row.Scan(
		&l.ID, &l.UserID, &l.Title, &l.Description, &l.CategoryID, &l.SubcategoryID,
		&l.Price, &l.Currency, &l.FeaturedImage, &l.Images,
		&l.Address, &l.City, &l.State, &l.Country, &l.PostalCode, &l.Rules, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if l.Images == nil {
		l.Images = []models.ImageMetadata{}
	}
	return &l, nil
}

// InsertListing persists a new listing and returns it with the
// database-assigned id and creation timestamp.
func (s *PostgresStore) InsertListing(ctx context.Context, l *models.Listing) (*models.Listing, error) {
	images := l.Images
	if images == nil {
		images = []models.ImageMetadata{}
	}
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO listings (user_id, title, description, category_id, subcategory_id,
			price, currency, featured_image, images,
			address, city, state, country, postal_code, rules)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING %s`, listingColumns),
		l.UserID, l.Title, l.Description, l.CategoryID, l.SubcategoryID,
		l.Price, l.Currency, l.FeaturedImage, images,
		l.Address, l.City, l.State, l.Country, l.PostalCode, l.Rules,
	)
	out, err := scanListing(row)
	if err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	return out, nil
}

// ListListings returns one page of the feed, newest first.
func (s *PostgresStore) ListListings(ctx context.Context, limit, offset int) ([]models.Listing, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM listings
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, listingColumns),
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

// ListListingsByUser returns every listing owned by userID, newest first.
func (s *PostgresStore) ListListingsByUser(ctx context.Context, userID string) ([]models.Listing, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM listings
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, listingColumns),
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

func collectListings(rows pgx.Rows) ([]models.Listing, error) {
	out := []models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM listings WHERE id = $1`, listingColumns), id)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// DeleteListing removes an owned listing and returns the deleted row so
// the caller can clean up its stored image objects. ErrNotFound covers
// both a missing id and an id owned by someone else.
func (s *PostgresStore) DeleteListing(ctx context.Context, id, userID string) (*models.Listing, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		DELETE FROM listings WHERE id = $1 AND user_id = $2
		RETURNING %s`, listingColumns),
		id, userID,
	)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// LinkAmenities associates a listing with the given amenity ids, the
// relational stand-in for the insert_listing_amenities procedure.
func (s *PostgresStore) LinkAmenities(ctx context.Context, listingID string, amenityIDs []int64) error {
	if len(amenityIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO listing_amenities (listing_id, amenity_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`,
		listingID, amenityIDs,
	)
	if err != nil {
		return fmt.Errorf("link amenities: %w", err)
	}
	return nil
}

// ListListingAmenities returns the amenities linked to one listing.
func (s *PostgresStore) ListListingAmenities(ctx context.Context, listingID string) ([]models.Amenity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.name, a.description
		FROM amenities a
		JOIN listing_amenities la ON la.amenity_id = a.id
		WHERE la.listing_id = $1
		ORDER BY a.id`,
		listingID,
	)
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
