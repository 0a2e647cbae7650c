package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"
	"github.com/yourorg/estatehub/internal/domain"
)

const propertyColumns = `id, property_id, title, address, city, price, description,
	bedrooms, bathrooms, area, property_type, features, image_urls, listed_by,
	created_at, updated_at`

// PostgresPropertyRepository implements domain.PropertyRepository using PostgreSQL
type PostgresPropertyRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPropertyRepository creates a new property repository
func NewPostgresPropertyRepository(db *sql.DB, logger *slog.Logger) *PostgresPropertyRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPropertyRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new property listing
func (r *PostgresPropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	query := `
		INSERT INTO properties (id, property_id, title, address, city, price, description,
			bedrooms, bathrooms, area, property_type, features, image_urls, listed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	// property_id is sparse-unique: store NULL, not "", when absent
	var propertyID sql.NullString
	if p.PropertyID != "" {
		propertyID = sql.NullString{String: p.PropertyID, Valid: true}
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		p.ID,
		propertyID,
		p.Title,
		p.Address,
		p.City,
		p.Price,
		p.Description,
		p.Bedrooms,
		p.Bathrooms,
		p.Area,
		p.PropertyType,
		pq.Array(p.Features),
		pq.Array(p.ImageURLs),
		p.ListedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("property %s: %w", p.PropertyID, domain.ErrDuplicate)
		}
		r.logger.Error("failed to create property",
			slog.String("title", p.Title),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create property: %w", err)
	}

	return nil
}

// GetByID retrieves a property by native identifier
func (r *PostgresPropertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	return r.getBy(ctx, "id", id)
}

// GetByPropertyID retrieves a property by its human-readable identifier
func (r *PostgresPropertyRepository) GetByPropertyID(ctx context.Context, propertyID string) (*domain.Property, error) {
	return r.getBy(ctx, "property_id", propertyID)
}

func (r *PostgresPropertyRepository) getBy(ctx context.Context, column, value string) (*domain.Property, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties WHERE %s = $1`, propertyColumns, column)

	p, err := scanProperty(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("property %s: %w", value, domain.ErrNotFound)
		}
		r.logger.Error("failed to get property",
			slog.String(column, value),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return p, nil
}

// List returns properties matching the filter, newest first
func (r *PostgresPropertyRepository) List(ctx context.Context, filter domain.PropertyFilter) ([]*domain.Property, error) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Query != "" {
		like := arg("%" + filter.Query + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s OR address ILIKE %s)", like, like, like))
	}
	if filter.City != "" {
		conds = append(conds, fmt.Sprintf("city ILIKE %s", arg("%"+filter.City+"%")))
	}
	if filter.MinPrice > 0 {
		conds = append(conds, fmt.Sprintf("price >= %s", arg(filter.MinPrice)))
	}
	if filter.MaxPrice > 0 {
		conds = append(conds, fmt.Sprintf("price <= %s", arg(filter.MaxPrice)))
	}
	if filter.Bedrooms > 0 {
		conds = append(conds, fmt.Sprintf("bedrooms = %s", arg(filter.Bedrooms)))
	}
	if filter.Bathrooms > 0 {
		conds = append(conds, fmt.Sprintf("bathrooms = %s", arg(filter.Bathrooms)))
	}
	if filter.PropertyType != "" {
		conds = append(conds, fmt.Sprintf("property_type = %s", arg(filter.PropertyType)))
	}
	if len(filter.Features) > 0 {
		conds = append(conds, fmt.Sprintf("features && %s", arg(pq.Array(filter.Features))))
	}

	query := fmt.Sprintf(`SELECT %s FROM properties`, propertyColumns)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list properties", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	var properties []*domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			r.logger.Error("failed to scan property row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}

	return properties, rows.Err()
}

// Count returns the total number of listed properties
func (r *PostgresPropertyRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM properties`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row rowScanner) (*domain.Property, error) {
	p := &domain.Property{}
	var propertyID sql.NullString

	err := row.Scan(
		&p.ID,
		&propertyID,
		&p.Title,
		&p.Address,
		&p.City,
		&p.Price,
		&p.Description,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.Area,
		&p.PropertyType,
		pq.Array(&p.Features),
		pq.Array(&p.ImageURLs),
		&p.ListedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.PropertyID = propertyID.String
	return p, nil
}
