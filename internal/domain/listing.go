package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ListingSource names where a listing came from. Listings entered by hand
// use ListingSourceUser; every other value is the name of an MLS feed.
type ListingSource string

// ListingSourceUser marks listings created through the admin API.
const ListingSourceUser ListingSource = "user"

// IsFeed reports whether listings from this source are owned by a feed.
func (s ListingSource) IsFeed() bool {
	return s != "" && s != ListingSourceUser
}

// Address is a listing's location.
type Address struct {
	Street     string   `json:"street"`
	City       string   `json:"city"`
	Province   string   `json:"province"`
	PostalCode string   `json:"postal_code"`
	Country    string   `json:"country"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// Listing is a property offered for sale or lease.
type Listing struct {
	ID          uuid.UUID     `json:"id"`
	Source      ListingSource `json:"source"`
	ExternalID  string        `json:"external_id,omitempty"`
	Address     Address       `json:"address"`
	Price       float64       `json:"price"`
	Bedrooms    int           `json:"bedrooms"`
	Bathrooms   int           `json:"bathrooms"`
	Description string        `json:"description"`
	Featured    bool          `json:"featured"`
	Disabled    bool          `json:"disabled"`
	LastUpdated time.Time     `json:"last_updated"`
}

// NewUserListing creates a hand-entered listing with a fresh ID.
func NewUserListing(address Address, price float64, bedrooms, bathrooms int, description string) (*Listing, error) {
	listing := &Listing{
		ID:          uuid.New(),
		Source:      ListingSourceUser,
		Address:     address,
		Price:       price,
		Bedrooms:    bedrooms,
		Bathrooms:   bathrooms,
		Description: description,
		LastUpdated: time.Now().UTC(),
	}

	if err := listing.Validate(); err != nil {
		return nil, err
	}
	return listing, nil
}

// Validate checks the listing's invariants.
func (l *Listing) Validate() error {
	if l.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if l.Source == "" {
		return NewValidationError("source", "cannot be empty", nil)
	}
	if l.Source.IsFeed() && strings.TrimSpace(l.ExternalID) == "" {
		return NewValidationError("external_id", "is required for feed listings", nil)
	}
	if strings.TrimSpace(l.Address.Street) == "" {
		return NewValidationError("address.street", "cannot be empty", nil)
	}
	if strings.TrimSpace(l.Address.City) == "" {
		return NewValidationError("address.city", "cannot be empty", nil)
	}
	if l.Price < 0 {
		return NewValidationError("price", "cannot be negative", nil)
	}
	if l.Bedrooms < 0 || l.Bathrooms < 0 {
		return NewValidationError("rooms", "cannot be negative", nil)
	}
	if (l.Address.Latitude == nil) != (l.Address.Longitude == nil) {
		return NewValidationError("address", "needs both latitude and longitude", nil)
	}
	return nil
}

// CheckEditable returns ErrReadOnlyListing for feed-owned listings.
func (l *Listing) CheckEditable() error {
	if l.Source.IsFeed() {
		return ErrReadOnlyListing
	}
	return nil
}
