package memory

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/vedantkulkarni1234/website/internal/domain"
	apperrors "github.com/vedantkulkarni1234/website/pkg/errors"
	"github.com/vedantkulkarni1234/website/pkg/slug"
)

//go:embed catalog.yaml
var seedCatalog []byte

// SeedCatalog returns the embedded catalog document.
func SeedCatalog() []byte {
	return seedCatalog
}

type catalogDocument struct {
	Extensions []domain.Extension `yaml:"extensions"`
	Bundles    []domain.Bundle    `yaml:"bundles"`
}

// CatalogRepository implements repository.CatalogRepository over an
// immutable in-memory catalog.
type CatalogRepository struct {
	extensions []domain.Extension
	bundles    []domain.Bundle
	extBySlug  map[string]int
	bndBySlug  map[string]int
}

// NewCatalogRepository loads the embedded seed catalog.
func NewCatalogRepository() (*CatalogRepository, error) {
	return LoadCatalog(bytes.NewReader(seedCatalog))
}

// LoadCatalog parses a YAML catalog document and checks its integrity:
// unique ids and slugs, non-negative prices, and bundles that only reference
// known extensions.
func LoadCatalog(r io.Reader) (*CatalogRepository, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc catalogDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	repo := &CatalogRepository{
		extensions: doc.Extensions,
		bundles:    doc.Bundles,
		extBySlug:  make(map[string]int, len(doc.Extensions)),
		bndBySlug:  make(map[string]int, len(doc.Bundles)),
	}

	ids := make(map[string]struct{})
	checkEntry := func(e domain.CatalogEntry) error {
		if e.ID == "" {
			return fmt.Errorf("catalog %s %q has no id", e.Kind, e.Slug)
		}
		if _, dup := ids[e.ID]; dup {
			return fmt.Errorf("duplicate catalog id %q", e.ID)
		}
		ids[e.ID] = struct{}{}
		if !slug.Valid(e.Slug) {
			return fmt.Errorf("catalog %s %q has an invalid slug", e.Kind, e.Slug)
		}
		if e.Price.IsNegative() || (e.SalePrice != nil && e.SalePrice.IsNegative()) {
			return fmt.Errorf("catalog %s %q has a negative price", e.Kind, e.Slug)
		}
		return nil
	}

	for i, ext := range doc.Extensions {
		if err := checkEntry(ext.Entry()); err != nil {
			return nil, err
		}
		if _, dup := repo.extBySlug[ext.Slug]; dup {
			return nil, fmt.Errorf("duplicate extension slug %q", ext.Slug)
		}
		repo.extBySlug[ext.Slug] = i
	}

	for i, b := range doc.Bundles {
		if err := checkEntry(b.Entry()); err != nil {
			return nil, err
		}
		if _, dup := repo.bndBySlug[b.Slug]; dup {
			return nil, fmt.Errorf("duplicate bundle slug %q", b.Slug)
		}
		for _, member := range b.Extensions {
			if _, ok := repo.extBySlug[member]; !ok {
				return nil, fmt.Errorf("bundle %q references unknown extension %q", b.Slug, member)
			}
		}
		repo.bndBySlug[b.Slug] = i
	}

	return repo, nil
}

// ListExtensions returns the extensions matching filter in catalog order.
func (r *CatalogRepository) ListExtensions(_ context.Context, filter domain.ExtensionFilter) ([]domain.Extension, error) {
	out := make([]domain.Extension, 0, len(r.extensions))
	for _, ext := range r.extensions {
		if filter.Matches(ext) {
			out = append(out, ext)
		}
	}
	return out, nil
}

// GetExtension returns the extension with the given slug.
func (r *CatalogRepository) GetExtension(_ context.Context, s string) (*domain.Extension, error) {
	i, ok := r.extBySlug[s]
	if !ok {
		return nil, apperrors.NotFound("extension", s)
	}
	ext := r.extensions[i]
	return &ext, nil
}

// ListBundles returns every bundle in catalog order.
func (r *CatalogRepository) ListBundles(_ context.Context) ([]domain.Bundle, error) {
	out := make([]domain.Bundle, len(r.bundles))
	copy(out, r.bundles)
	return out, nil
}

// GetBundle returns the bundle with the given slug.
func (r *CatalogRepository) GetBundle(_ context.Context, s string) (*domain.Bundle, error) {
	i, ok := r.bndBySlug[s]
	if !ok {
		return nil, apperrors.NotFound("bundle", s)
	}
	b := r.bundles[i]
	return &b, nil
}
