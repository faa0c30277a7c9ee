package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/vedantkulkarni1234/website/internal/domain"
	"github.com/vedantkulkarni1234/website/pkg/database"
	apperrors "github.com/vedantkulkarni1234/website/pkg/errors"
)

// Prices are selected as text so they decode losslessly into decimal.Decimal.
const extensionColumns = `id, slug, name, tagline, description, features, category,
	price::text, sale_price::text, icon, color, compatibility, version, featured, download_url`

const bundleColumns = `id, slug, name, description, price::text, sale_price::text,
	original_price::text, savings, color, popular`

// CatalogRepository implements repository.CatalogRepository using PostgreSQL.
type CatalogRepository struct {
	db     database.DBTX
	tracer *database.QueryTracer
}

// NewCatalogRepository creates a PostgreSQL-backed catalog repository.
// tracer may be nil.
func NewCatalogRepository(db database.DBTX, tracer *database.QueryTracer) *CatalogRepository {
	return &CatalogRepository{db: db, tracer: tracer}
}

// ListExtensions returns the extensions matching filter ordered by position.
func (r *CatalogRepository) ListExtensions(ctx context.Context, filter domain.ExtensionFilter) (_ []domain.Extension, err error) {
	query := `SELECT ` + extensionColumns + `
		FROM extensions
		WHERE ($1 = '' OR LOWER(category) = LOWER($1))
		  AND (NOT $2 OR featured)
		ORDER BY position, slug`

	ctx, end := r.tracer.Start(ctx, "ListExtensions", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, filter.Category, filter.FeaturedOnly)
	if err != nil {
		return nil, fmt.Errorf("query extensions: %w", err)
	}
	defer rows.Close()

	exts := []domain.Extension{}
	for rows.Next() {
		ext, err := scanExtension(rows)
		if err != nil {
			return nil, err
		}
		exts = append(exts, *ext)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate extensions: %w", err)
	}
	return exts, nil
}

// GetExtension retrieves an extension by slug.
func (r *CatalogRepository) GetExtension(ctx context.Context, slug string) (_ *domain.Extension, err error) {
	query := `SELECT ` + extensionColumns + ` FROM extensions WHERE slug = $1`

	ctx, end := r.tracer.Start(ctx, "GetExtension", query)
	defer func() { end(err) }()

	ext, err := scanExtension(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("extension", slug)
		}
		return nil, err
	}
	return ext, nil
}

// ListBundles returns every bundle with its member slugs, ordered by position.
func (r *CatalogRepository) ListBundles(ctx context.Context) (_ []domain.Bundle, err error) {
	query := `SELECT ` + bundleColumns + ` FROM bundles ORDER BY position, slug`

	ctx, end := r.tracer.Start(ctx, "ListBundles", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query bundles: %w", err)
	}

	bundles := []domain.Bundle{}
	for rows.Next() {
		b, err := scanBundle(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		bundles = append(bundles, *b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bundles: %w", err)
	}

	members, err := r.bundleMembers(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range bundles {
		if m, ok := members[bundles[i].ID]; ok {
			bundles[i].Extensions = m
		}
	}
	return bundles, nil
}

// GetBundle retrieves a bundle and its member slugs.
func (r *CatalogRepository) GetBundle(ctx context.Context, slug string) (_ *domain.Bundle, err error) {
	query := `SELECT ` + bundleColumns + ` FROM bundles WHERE slug = $1`

	ctx, end := r.tracer.Start(ctx, "GetBundle", query)
	defer func() { end(err) }()

	b, err := scanBundle(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("bundle", slug)
		}
		return nil, err
	}

	members, err := r.bundleMembers(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if m, ok := members[b.ID]; ok {
		b.Extensions = m
	}
	return b, nil
}

// bundleMembers maps bundle id to ordered extension slugs. An empty
// bundleID loads every bundle.
func (r *CatalogRepository) bundleMembers(ctx context.Context, bundleID string) (map[string][]string, error) {
	query := `SELECT bundle_id, extension_slug
		FROM bundle_extensions
		WHERE ($1 = '' OR bundle_id = $1)
		ORDER BY bundle_id, position`

	rows, err := r.db.Query(ctx, query, bundleID)
	if err != nil {
		return nil, fmt.Errorf("query bundle members: %w", err)
	}
	defer rows.Close()

	members := make(map[string][]string)
	for rows.Next() {
		var id, slug string
		if err := rows.Scan(&id, &slug); err != nil {
			return nil, fmt.Errorf("scan bundle member: %w", err)
		}
		members[id] = append(members[id], slug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bundle members: %w", err)
	}
	return members, nil
}

func scanExtension(row pgx.Row) (*domain.Extension, error) {
	var (
		ext       domain.Extension
		price     string
		salePrice *string
	)
	err := row.Scan(
		&ext.ID, &ext.Slug, &ext.Name, &ext.Tagline, &ext.Description, &ext.Features, &ext.Category,
		&price, &salePrice, &ext.Icon, &ext.Color, &ext.Compatibility, &ext.Version, &ext.Featured, &ext.DownloadURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan extension: %w", err)
	}

	if ext.Price, err = parsePrice(price); err != nil {
		return nil, fmt.Errorf("extension %s price: %w", ext.Slug, err)
	}
	if ext.SalePrice, err = parseOptionalPrice(salePrice); err != nil {
		return nil, fmt.Errorf("extension %s sale price: %w", ext.Slug, err)
	}
	return &ext, nil
}

func scanBundle(row pgx.Row) (*domain.Bundle, error) {
	var (
		b             domain.Bundle
		price         string
		salePrice     *string
		originalPrice string
	)
	err := row.Scan(&b.ID, &b.Slug, &b.Name, &b.Description, &price, &salePrice, &originalPrice, &b.Savings, &b.Color, &b.Popular)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan bundle: %w", err)
	}

	if b.Price, err = parsePrice(price); err != nil {
		return nil, fmt.Errorf("bundle %s price: %w", b.Slug, err)
	}
	if b.SalePrice, err = parseOptionalPrice(salePrice); err != nil {
		return nil, fmt.Errorf("bundle %s sale price: %w", b.Slug, err)
	}
	if b.OriginalPrice, err = parsePrice(originalPrice); err != nil {
		return nil, fmt.Errorf("bundle %s original price: %w", b.Slug, err)
	}
	b.Extensions = []string{}
	return &b, nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

func parseOptionalPrice(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
