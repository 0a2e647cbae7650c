package domain

import (
	"context"
	"time"
)

// Offer statuses. An offer starts PENDING and may move to any status,
// including back again; the store never restricts the transition graph.
const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

// ValidStatus reports whether s belongs to the closed status set
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}

// Offer is a monetary proposal by a user against a property. PropertyRef and
// UserRef hold native identifiers and are immutable after creation; only
// Status changes over an offer's lifetime.
type Offer struct {
	ID          string
	PropertyRef string // Property native identifier
	UserRef     string // User native identifier
	Amount      float64
	Message     string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OfferView is an offer joined with its property and user projections,
// the shape every offer endpoint responds with.
type OfferView struct {
	ID        string             `json:"id"`
	Property  PropertyProjection `json:"property"`
	User      UserProjection     `json:"user"`
	Amount    float64            `json:"amount"`
	Message   string             `json:"message"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// OfferRepository defines data access for offers
type OfferRepository interface {
	Create(ctx context.Context, offer *Offer) error
	GetByID(ctx context.Context, id string) (*Offer, error)
	// GetView returns the offer joined with property and user projections.
	GetView(ctx context.Context, id string) (*OfferView, error)
	// ListByUser returns a user's offers, newest first.
	ListByUser(ctx context.Context, userRef string) ([]*OfferView, error)
	// ListByProperty matches the native property reference directly.
	ListByProperty(ctx context.Context, propertyRef string) ([]*OfferView, error)
	UpdateStatus(ctx context.Context, id, status string) error
	CountByStatus(ctx context.Context, status string) (int, error)
}
