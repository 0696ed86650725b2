package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/openstay/marketplace/backend/internal/config"
	"github.com/openstay/marketplace/backend/internal/observability"
	"github.com/openstay/marketplace/backend/internal/store"
)

// Reference data loaded into a fresh database. Safe to run repeatedly.

var categories = []struct {
	name, description string
	subcategories     []string
}{
	{"Housing", "Places to stay", []string{"Apartment", "House", "Room", "Studio", "Shared flat"}},
	{"Vehicles", "Cars, bikes and more", []string{"Car", "Motorcycle", "Bicycle", "Scooter"}},
	{"Electronics", "Devices and gadgets", []string{"Phone", "Laptop", "Camera", "Audio"}},
	{"Furniture", "Home and office furniture", []string{"Sofa", "Table", "Chair", "Bed", "Storage"}},
	{"Services", "Things people do for you", []string{"Cleaning", "Tutoring", "Moving", "Repair"}},
}

var amenities = []struct{ name, description string }{
	{"WiFi", "Wireless internet included"},
	{"Parking", "Dedicated parking spot"},
	{"Air conditioning", "Cooling available"},
	{"Heating", "Central or room heating"},
	{"Washer", "In-unit laundry"},
	{"Kitchen", "Access to a kitchen"},
	{"Balcony", "Private balcony or terrace"},
	{"Elevator", "Building has an elevator"},
	{"Pets allowed", "Pets welcome"},
	{"Furnished", "Comes furnished"},
}

var interestGroups = []struct {
	name, description string
	interests         []string
}{
	{"Sports", "Staying active", []string{"Running", "Cycling", "Swimming", "Football", "Climbing", "Yoga"}},
	{"Arts", "Creative pursuits", []string{"Photography", "Painting", "Music", "Writing", "Theater"}},
	{"Food", "Eating and cooking", []string{"Cooking", "Baking", "Wine", "Coffee", "Street food"}},
	{"Tech", "Science and technology", []string{"Programming", "Gaming", "AI", "Robotics"}},
	{"Outdoors", "Getting out there", []string{"Hiking", "Camping", "Travel", "Gardening", "Fishing"}},
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	pg := store.NewPostgresStore(pool)
	if err := pg.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	for _, c := range categories {
		id, err := pg.UpsertCategory(ctx, c.name, c.description)
		if err != nil {
			log.Fatal().Err(err).Str("category", c.name).Msg("seed category failed")
		}
		for _, sub := range c.subcategories {
			if err := pg.UpsertSubcategory(ctx, id, sub, ""); err != nil {
				log.Fatal().Err(err).Str("subcategory", sub).Msg("seed subcategory failed")
			}
		}
	}

	for _, a := range amenities {
		if err := pg.UpsertAmenity(ctx, a.name, a.description); err != nil {
			log.Fatal().Err(err).Str("amenity", a.name).Msg("seed amenity failed")
		}
	}

	for _, g := range interestGroups {
		id, err := pg.UpsertInterestCategory(ctx, g.name, g.description)
		if err != nil {
			log.Fatal().Err(err).Str("group", g.name).Msg("seed interest category failed")
		}
		for _, name := range g.interests {
			if err := pg.UpsertInterest(ctx, id, name); err != nil {
				log.Fatal().Err(err).Str("interest", name).Msg("seed interest failed")
			}
		}
	}

	log.Info().Msg("seed complete")
}
