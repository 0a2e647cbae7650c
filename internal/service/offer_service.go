package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/internal/featureflags"
	"github.com/yourorg/estatehub/internal/notify"
	"github.com/yourorg/estatehub/internal/observability/metrics"
)

// OfferService implements the offer workflow: creating offers against a
// resolved property, listing them, and moving them through their status
// lifecycle.
type OfferService struct {
	offerRepo  domain.OfferRepository
	userRepo   domain.UserRepository
	properties *PropertyService
	broker     *notify.Broker
	logger     *slog.Logger
}

// NewOfferService creates a new offer service
func NewOfferService(
	offerRepo domain.OfferRepository,
	userRepo domain.UserRepository,
	properties *PropertyService,
	broker *notify.Broker,
	logger *slog.Logger,
) *OfferService {
	if logger == nil {
		logger = slog.Default()
	}

	return &OfferService{
		offerRepo:  offerRepo,
		userRepo:   userRepo,
		properties: properties,
		broker:     broker,
		logger:     logger,
	}
}

// CreateInput carries an offer submission
type CreateInput struct {
	UserID             string
	PropertyIdentifier string // native or human-readable
	Amount             float64
	Message            string
}

// Create resolves the property reference, checks referential integrity and
// persists a new PENDING offer. The returned view joins the property and
// user projections.
func (s *OfferService) Create(ctx context.Context, in CreateInput) (*domain.OfferView, error) {
	if in.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if in.PropertyIdentifier == "" || in.Amount == 0 {
		metrics.ObserveOfferCreated("invalid")
		return nil, fmt.Errorf("%w: property and amount are required", ErrInvalidInput)
	}

	property, err := s.properties.Resolve(ctx, in.PropertyIdentifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.ObserveOfferCreated("property_not_found")
		}
		return nil, err
	}

	// Referential integrity is checked here, not by the schema: the token
	// may outlive the account it was issued for.
	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	offer := &domain.Offer{
		ID:          domain.NewID(),
		PropertyRef: property.ID,
		UserRef:     in.UserID,
		Amount:      in.Amount,
		Message:     in.Message,
		Status:      domain.StatusPending,
	}

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		metrics.ObserveOfferCreated("error")
		return nil, err
	}

	view, err := s.offerRepo.GetView(ctx, offer.ID)
	if err != nil {
		return nil, err
	}

	metrics.ObserveOfferCreated("success")
	s.logger.Info("offer created",
		slog.String("offer_id", offer.ID),
		slog.String("property_ref", offer.PropertyRef),
		slog.String("user_id", in.UserID),
		slog.Float64("amount", in.Amount),
	)

	s.broker.Publish(notify.Event{
		Type:        notify.EventOfferCreated,
		PropertyRef: offer.PropertyRef,
		Offer:       *view,
	})

	return view, nil
}

// ListMine returns the caller's offers, newest first
func (s *OfferService) ListMine(ctx context.Context, userID string) ([]*domain.OfferView, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.offerRepo.ListByUser(ctx, userID)
}

// ListForProperty returns all offers whose property reference equals the
// given identifier. The identifier is matched against the native reference
// directly and is not routed through the resolver.
func (s *OfferService) ListForProperty(ctx context.Context, propertyID string) ([]*domain.OfferView, error) {
	return s.offerRepo.ListByProperty(ctx, propertyID)
}

// UpdateStatus overwrites an offer's status. The transition graph is
// unrestricted (any status to any status, including itself) unless the
// strict_offer_transitions flag locks ACCEPTED and REJECTED as terminal.
func (s *OfferService) UpdateStatus(ctx context.Context, offerID, status string) (*domain.OfferView, error) {
	if !domain.ValidStatus(status) {
		return nil, fmt.Errorf("%w: status must be PENDING, ACCEPTED, or REJECTED", ErrInvalidInput)
	}

	if featureflags.Enabled(featureflags.StrictOfferTransitions) {
		current, err := s.offerRepo.GetByID(ctx, offerID)
		if err != nil {
			return nil, err
		}
		if current.Status != domain.StatusPending && current.Status != status {
			return nil, fmt.Errorf("%w: offer already %s", ErrInvalidInput, current.Status)
		}
	}

	if err := s.offerRepo.UpdateStatus(ctx, offerID, status); err != nil {
		return nil, err
	}

	view, err := s.offerRepo.GetView(ctx, offerID)
	if err != nil {
		return nil, err
	}

	metrics.ObserveStatusChange(status)
	s.logger.Info("offer status updated",
		slog.String("offer_id", offerID),
		slog.String("status", status),
	)

	s.broker.Publish(notify.Event{
		Type:        notify.EventStatusChanged,
		PropertyRef: view.Property.ID,
		Offer:       *view,
	})

	return view, nil
}
