package api

import (
	"time"

	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/service"
)

// LoginRequest defines the payload for the admin login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	Token string `json:"token"`

	// ExpiresAt is the RFC 3339 timestamp when the token expires
	ExpiresAt string `json:"expires_at"`
}

// ChangePasswordRequest defines the payload for the change-password endpoint.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	Password    string `json:"password"     validate:"required,min=8,max=72"`
}

// AddressRequest is the address part of a listing payload.
type AddressRequest struct {
	Street     string   `json:"street"      validate:"required"`
	City       string   `json:"city"        validate:"required"`
	Province   string   `json:"province"`
	PostalCode string   `json:"postal_code"`
	Country    string   `json:"country"`
	Latitude   *float64 `json:"latitude"    validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude"   validate:"omitempty,gte=-180,lte=180"`
}

// ListingRequest defines the payload for creating or updating a hand-entered listing.
type ListingRequest struct {
	Address     AddressRequest `json:"address"     validate:"required"`
	Price       float64        `json:"price"       validate:"gte=0"`
	Bedrooms    int            `json:"bedrooms"    validate:"gte=0"`
	Bathrooms   int            `json:"bathrooms"   validate:"gte=0"`
	Description string         `json:"description" validate:"max=10000"`
}

func (req ListingRequest) toInput() service.ListingInput {
	return service.ListingInput{
		Address: domain.Address{
			Street:     req.Address.Street,
			City:       req.Address.City,
			Province:   req.Address.Province,
			PostalCode: req.Address.PostalCode,
			Country:    req.Address.Country,
			Latitude:   req.Address.Latitude,
			Longitude:  req.Address.Longitude,
		},
		Price:       req.Price,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Description: req.Description,
	}
}

// CreateListingResponse returns the ID of a created listing.
type CreateListingResponse struct {
	ID string `json:"id"`
}

// UpdateRequest asks for an on-demand feed update. Only ListingSource is
// required when the source has a configured feed.
type UpdateRequest struct {
	ListingSource string `json:"listing_source" validate:"required"`
	URL           string `json:"url"            validate:"omitempty,url"`
	Username      string `json:"username"`
	Password      string `json:"password"`
}

// UpdateAcceptedResponse acknowledges a queued update.
type UpdateAcceptedResponse struct {
	ListingSource string    `json:"listing_source"`
	QueuedAt      time.Time `json:"queued_at"`
}

// PageResponse is one page of a paginated collection.
type PageResponse[T any] struct {
	Results    []T   `json:"results"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"total_count"`
}

// DeleteEventsResponse reports how many events were removed.
type DeleteEventsResponse struct {
	Deleted int64 `json:"deleted"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	QueuedTasks  int    `json:"queued_tasks"`
	WorkerStatus string `json:"worker_status"`
}
