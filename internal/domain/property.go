package domain

import (
	"context"
	"time"
)

// Property represents a real-estate listing.
//
// Every property carries a native identifier assigned by the store layer at
// creation time. Older records imported from the previous catalog also carry
// a short human-readable identifier in PropertyID ("1", "2", ...); newer
// records leave it empty. The two identifier spaces are disjoint by format:
// native identifiers are always 24 hex characters.
type Property struct {
	ID           string // Native identifier (24-char hex)
	PropertyID   string // Optional human-readable identifier, unique when present
	Title        string
	Address      string
	City         string
	Price        float64
	Description  string
	Bedrooms     int
	Bathrooms    int
	Area         float64
	PropertyType string
	Features     []string
	ImageURLs    []string
	ListedBy     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayID returns the identifier the frontend should show: the
// human-readable one when present, the native one otherwise.
func (p *Property) DisplayID() string {
	if p.PropertyID != "" {
		return p.PropertyID
	}
	return p.ID
}

// PropertyProjection is the slice of a property joined into offer responses
type PropertyProjection struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Address      string   `json:"address"`
	Price        float64  `json:"price"`
	PropertyID   string   `json:"propertyId,omitempty"`
	ImageURLs    []string `json:"imageUrls,omitempty"`
	PropertyType string   `json:"propertyType,omitempty"`
}

// Projection returns the property fields embedded in offer responses
func (p *Property) Projection() PropertyProjection {
	return PropertyProjection{
		ID:           p.ID,
		Title:        p.Title,
		Address:      p.Address,
		Price:        p.Price,
		PropertyID:   p.PropertyID,
		ImageURLs:    p.ImageURLs,
		PropertyType: p.PropertyType,
	}
}

// PropertyFilter narrows property listing queries. Zero values mean
// "no constraint".
type PropertyFilter struct {
	Query        string // free-text match over title, description, address
	City         string // case-insensitive substring match
	MinPrice     float64
	MaxPrice     float64
	Bedrooms     int
	Bathrooms    int
	PropertyType string
	Features     []string // match any
}

// PropertyRepository defines data access for properties
type PropertyRepository interface {
	Create(ctx context.Context, property *Property) error
	GetByID(ctx context.Context, id string) (*Property, error)
	GetByPropertyID(ctx context.Context, propertyID string) (*Property, error)
	List(ctx context.Context, filter PropertyFilter) ([]*Property, error)
	Count(ctx context.Context) (int, error)
}
