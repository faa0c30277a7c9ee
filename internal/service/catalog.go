package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vedantkulkarni1234/website/internal/domain"
	"github.com/vedantkulkarni1234/website/internal/repository"
	apperrors "github.com/vedantkulkarni1234/website/pkg/errors"
	"github.com/vedantkulkarni1234/website/pkg/pagination"
	"github.com/vedantkulkarni1234/website/pkg/slug"
)

// relatedLimit caps the "more in this category" list on a detail page.
const relatedLimit = 3

// ExtensionDetail is an extension plus other extensions in its category.
type ExtensionDetail struct {
	Extension domain.Extension
	Related   []domain.Extension
}

// BundleDetail is a bundle with its member extensions resolved.
type BundleDetail struct {
	Bundle           domain.Bundle
	ExtensionDetails []domain.Extension
}

// CatalogService answers read-only catalog queries.
type CatalogService struct {
	repo   repository.CatalogRepository
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.CatalogRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// ListExtensions returns the extensions matching filter, windowed by page.
func (s *CatalogService) ListExtensions(ctx context.Context, filter domain.ExtensionFilter, page pagination.Params) ([]domain.Extension, error) {
	exts, err := s.repo.ListExtensions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list extensions: %w", err)
	}
	return pagination.Apply(exts, page), nil
}

// GetExtension returns an extension and up to three related extensions.
func (s *CatalogService) GetExtension(ctx context.Context, extSlug string) (*ExtensionDetail, error) {
	extSlug = slug.Normalize(extSlug)
	if !slug.Valid(extSlug) {
		return nil, apperrors.NotFound("extension", extSlug)
	}

	ext, err := s.repo.GetExtension(ctx, extSlug)
	if err != nil {
		return nil, err
	}

	peers, err := s.repo.ListExtensions(ctx, domain.ExtensionFilter{Category: ext.Category})
	if err != nil {
		return nil, fmt.Errorf("list related extensions: %w", err)
	}
	related := make([]domain.Extension, 0, relatedLimit)
	for _, p := range peers {
		if p.Slug == ext.Slug {
			continue
		}
		related = append(related, p)
		if len(related) == relatedLimit {
			break
		}
	}

	return &ExtensionDetail{Extension: *ext, Related: related}, nil
}

// ListBundles returns every bundle with its member extensions.
func (s *CatalogService) ListBundles(ctx context.Context) ([]BundleDetail, error) {
	bundles, err := s.repo.ListBundles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	exts, err := s.repo.ListExtensions(ctx, domain.ExtensionFilter{})
	if err != nil {
		return nil, fmt.Errorf("list bundle extensions: %w", err)
	}

	out := make([]BundleDetail, len(bundles))
	for i, b := range bundles {
		out[i] = BundleDetail{Bundle: b, ExtensionDetails: members(b, exts)}
	}
	return out, nil
}

// GetBundle returns one bundle with its member extensions.
func (s *CatalogService) GetBundle(ctx context.Context, bundleSlug string) (*BundleDetail, error) {
	bundleSlug = slug.Normalize(bundleSlug)
	if !slug.Valid(bundleSlug) {
		return nil, apperrors.NotFound("bundle", bundleSlug)
	}

	b, err := s.repo.GetBundle(ctx, bundleSlug)
	if err != nil {
		return nil, err
	}
	exts, err := s.repo.ListExtensions(ctx, domain.ExtensionFilter{})
	if err != nil {
		return nil, fmt.Errorf("list bundle extensions: %w", err)
	}
	return &BundleDetail{Bundle: *b, ExtensionDetails: members(*b, exts)}, nil
}

// Lookup resolves a purchasable catalog entry by kind and slug.
func (s *CatalogService) Lookup(ctx context.Context, kind domain.Kind, entrySlug string) (domain.CatalogEntry, error) {
	entrySlug = slug.Normalize(entrySlug)
	switch kind {
	case domain.KindExtension:
		if !slug.Valid(entrySlug) {
			return domain.CatalogEntry{}, apperrors.NotFound("extension", entrySlug)
		}
		ext, err := s.repo.GetExtension(ctx, entrySlug)
		if err != nil {
			return domain.CatalogEntry{}, err
		}
		return ext.Entry(), nil
	case domain.KindBundle:
		if !slug.Valid(entrySlug) {
			return domain.CatalogEntry{}, apperrors.NotFound("bundle", entrySlug)
		}
		b, err := s.repo.GetBundle(ctx, entrySlug)
		if err != nil {
			return domain.CatalogEntry{}, err
		}
		return b.Entry(), nil
	default:
		return domain.CatalogEntry{}, apperrors.InvalidInput(fmt.Sprintf("unknown item type %q", kind))
	}
}

// members keeps catalog order, matching the extension list rather than the
// bundle's own ordering.
func members(b domain.Bundle, exts []domain.Extension) []domain.Extension {
	out := make([]domain.Extension, 0, len(b.Extensions))
	for _, e := range exts {
		if b.Includes(e.Slug) {
			out = append(out, e)
		}
	}
	return out
}
