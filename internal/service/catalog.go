package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/furniture_shop/internal/events"
	"github.com/Skotchmaster/furniture_shop/internal/logging"
	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/repo"
	"github.com/Skotchmaster/furniture_shop/internal/search"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	// Search is optional; without it search runs against the database.
	Search search.Index
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID, includeInactive bool) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id, includeInactive)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter, offset, limit int) (int64, []models.Product, error) {
	if f.Category != "" && !f.Category.Valid() {
		return 0, nil, fmt.Errorf("unknown category %q: %w", f.Category, ErrValidation)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return 0, nil, fmt.Errorf("min_price above max_price: %w", ErrValidation)
	}
	return s.Repo.ListProducts(ctx, f, offset, limit)
}

// SearchProducts uses the search index when configured and falls back to a
// database text match when the index is missing or failing.
func (s *CatalogService) SearchProducts(ctx context.Context, q search.Query, offset, limit int) (int64, []models.Product, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return 0, nil, fmt.Errorf("query required: %w", ErrValidation)
	}
	if q.Category != "" && !q.Category.Valid() {
		return 0, nil, fmt.Errorf("unknown category %q: %w", q.Category, ErrValidation)
	}

	if s.Search != nil {
		total, ids, err := s.Search.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.ProductsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "reason", "falling back to database", "error", err)
	}
	return s.Repo.ListProducts(ctx, repo.ProductFilter{Text: q.Text, Category: q.Category}, offset, limit)
}

func (s *CatalogService) Categories(ctx context.Context) ([]repo.CategoryCount, error) {
	counts, err := s.Repo.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	byCat := make(map[models.Category]int64, len(counts))
	for _, c := range counts {
		byCat[c.Category] = c.Count
	}
	out := make([]repo.CategoryCount, 0, len(models.Categories))
	for _, c := range models.Categories {
		out = append(out, repo.CategoryCount{Category: c, Count: byCat[c]})
	}
	return out, nil
}

func images(urls []string) []models.ProductImage {
	out := make([]models.ProductImage, 0, len(urls))
	for i, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, models.ProductImage{URL: u, Position: i})
		}
	}
	return out
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name required: %w", ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative: %w", ErrValidation)
	}
	if !req.Category.Valid() {
		return nil, fmt.Errorf("unknown category %q: %w", req.Category, ErrValidation)
	}

	p := &models.Product{
		Name:        name,
		Description: req.Description,
		Price:       req.Price.Round(2),
		Category:    req.Category,
		Material:    strings.TrimSpace(req.Material),
		Dimensions:  req.Dimensions,
		Active:      true,
		Images:      images(req.Images),
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.index(ctx, p)
	events.Emit(ctx, s.Events, events.TopicProducts, p.ID.String(), "product_created", p)
	return p, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id, true)
	if err != nil {
		return nil, notFound(err, "product")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("name required: %w", ErrValidation)
		}
		p.Name = name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("price cannot be negative: %w", ErrValidation)
		}
		p.Price = req.Price.Round(2)
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, fmt.Errorf("unknown category %q: %w", *req.Category, ErrValidation)
		}
		p.Category = *req.Category
	}
	if req.Material != nil {
		p.Material = strings.TrimSpace(*req.Material)
	}
	if req.Dimensions != nil {
		p.Dimensions = *req.Dimensions
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	var imgs []models.ProductImage
	if req.Images != nil {
		imgs = images(*req.Images)
	}

	if err := s.Repo.SaveProduct(ctx, p, imgs); err != nil {
		return nil, err
	}
	p, err = s.Repo.GetProduct(ctx, id, true)
	if err != nil {
		return nil, err
	}

	s.index(ctx, p)
	events.Emit(ctx, s.Events, events.TopicProducts, p.ID.String(), "product_updated", p)
	return p, nil
}

// DeleteProduct deactivates the product. Orders and carts keep referencing it.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.SetProductActive(ctx, id, false); err != nil {
		return notFound(err, "product")
	}
	if s.Search != nil {
		if err := s.Search.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_error", "product_id", id, "error", err)
		}
	}
	events.Emit(ctx, s.Events, events.TopicProducts, id.String(), "product_deactivated", map[string]any{"product_id": id})
	return nil
}

func (s *CatalogService) index(ctx context.Context, p *models.Product) {
	if s.Search == nil {
		return
	}
	if err := s.Search.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID, "error", err)
	}
}

// Reindex pushes every product into the search index.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Search == nil {
		return 0, fmt.Errorf("search index not configured: %w", ErrValidation)
	}
	const batch = 100
	n := 0
	for offset := 0; ; offset += batch {
		_, items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{IncludeInactive: true}, offset, batch)
		if err != nil {
			return n, err
		}
		for i := range items {
			if err := s.Search.IndexProduct(ctx, &items[i]); err != nil {
				return n, err
			}
			n++
		}
		if len(items) < batch {
			return n, nil
		}
	}
}
