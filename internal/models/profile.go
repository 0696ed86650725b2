package models

import "time"

// Address is the structured value produced by the geocoding
// autocomplete. A profile carries exactly one.
type Address struct {
	FormattedAddress string `json:"formatted_address"`
	Country          string `json:"country"`
	City             string `json:"city"`
	State            string `json:"state"`
}

// Profile is one-to-one with an authenticated user and upserted by
// its owner only.
type Profile struct {
	UserID         string    `json:"user_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	PhoneNumber    string    `json:"phone_number"`
	Username       string    `json:"username"`
	About          string    `json:"about"`
	ProfilePicture string    `json:"profile_picture"`
	Location       Address   `json:"location"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProfileRequest is the JSON body for PUT /api/profile.
type ProfileRequest struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	PhoneNumber string  `json:"phone_number"`
	Username    string  `json:"username"`
	About       string  `json:"about"`
	Location    Address `json:"location"`
}
