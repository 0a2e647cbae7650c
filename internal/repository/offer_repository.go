package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
	"github.com/yourorg/estatehub/internal/domain"
)

// offerViewQuery joins each offer with its property and user projections.
// Offers carry no foreign keys, so LEFT JOINs tolerate a reference that has
// gone missing and the projections come back zero-valued instead of
// failing the whole query.
const offerViewQuery = `
	SELECT o.id, o.amount, o.message, o.status, o.created_at, o.updated_at,
		o.property_ref, COALESCE(p.title, ''), COALESCE(p.address, ''),
		COALESCE(p.price, 0), COALESCE(p.property_id, ''),
		COALESCE(p.image_urls, '{}'), COALESCE(p.property_type, ''),
		o.user_ref, COALESCE(u.name, ''), COALESCE(u.email, '')
	FROM offers o
	LEFT JOIN properties p ON p.id = o.property_ref
	LEFT JOIN users u ON u.id = o.user_ref
`

// PostgresOfferRepository implements domain.OfferRepository using PostgreSQL
type PostgresOfferRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresOfferRepository creates a new offer repository
func NewPostgresOfferRepository(db *sql.DB, logger *slog.Logger) *PostgresOfferRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresOfferRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new offer
func (r *PostgresOfferRepository) Create(ctx context.Context, offer *domain.Offer) error {
	query := `
		INSERT INTO offers (id, property_ref, user_ref, amount, message, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		offer.ID,
		offer.PropertyRef,
		offer.UserRef,
		offer.Amount,
		offer.Message,
		offer.Status,
	).Scan(&offer.CreatedAt, &offer.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create offer",
			slog.String("property_ref", offer.PropertyRef),
			slog.String("user_ref", offer.UserRef),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create offer: %w", err)
	}

	return nil
}

// GetByID retrieves a bare offer by identifier
func (r *PostgresOfferRepository) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	offer := &domain.Offer{}

	query := `
		SELECT id, property_ref, user_ref, amount, message, status, created_at, updated_at
		FROM offers
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&offer.ID,
		&offer.PropertyRef,
		&offer.UserRef,
		&offer.Amount,
		&offer.Message,
		&offer.Status,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("offer %s: %w", id, domain.ErrNotFound)
		}
		r.logger.Error("failed to get offer",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	return offer, nil
}

// GetView retrieves an offer joined with property and user projections
func (r *PostgresOfferRepository) GetView(ctx context.Context, id string) (*domain.OfferView, error) {
	row := r.db.QueryRowContext(ctx, offerViewQuery+` WHERE o.id = $1`, id)

	view, err := scanOfferView(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("offer %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get offer view: %w", err)
	}

	return view, nil
}

// ListByUser returns a user's offers joined with projections, newest first
func (r *PostgresOfferRepository) ListByUser(ctx context.Context, userRef string) ([]*domain.OfferView, error) {
	return r.listViews(ctx, `WHERE o.user_ref = $1 ORDER BY o.created_at DESC`, userRef)
}

// ListByProperty returns all offers whose native property reference matches
func (r *PostgresOfferRepository) ListByProperty(ctx context.Context, propertyRef string) ([]*domain.OfferView, error) {
	return r.listViews(ctx, `WHERE o.property_ref = $1 ORDER BY o.created_at DESC`, propertyRef)
}

func (r *PostgresOfferRepository) listViews(ctx context.Context, clause string, arg interface{}) ([]*domain.OfferView, error) {
	rows, err := r.db.QueryContext(ctx, offerViewQuery+" "+clause, arg)
	if err != nil {
		r.logger.Error("failed to list offers", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	var views []*domain.OfferView
	for rows.Next() {
		view, err := scanOfferView(rows)
		if err != nil {
			r.logger.Error("failed to scan offer row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		views = append(views, view)
	}

	return views, rows.Err()
}

// UpdateStatus overwrites the status field unconditionally (last writer wins)
func (r *PostgresOfferRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE offers
		SET status = $1, updated_at = now()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update offer status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("offer %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// CountByStatus returns the number of offers in a status
func (r *PostgresOfferRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM offers WHERE status = $1`, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count offers: %w", err)
	}
	return count, nil
}

func scanOfferView(row rowScanner) (*domain.OfferView, error) {
	view := &domain.OfferView{}

	err := row.Scan(
		&view.ID,
		&view.Amount,
		&view.Message,
		&view.Status,
		&view.CreatedAt,
		&view.UpdatedAt,
		&view.Property.ID,
		&view.Property.Title,
		&view.Property.Address,
		&view.Property.Price,
		&view.Property.PropertyID,
		pq.Array(&view.Property.ImageURLs),
		&view.Property.PropertyType,
		&view.User.ID,
		&view.User.Name,
		&view.User.Email,
	)
	if err != nil {
		return nil, err
	}

	return view, nil
}
