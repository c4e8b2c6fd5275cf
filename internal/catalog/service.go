package catalog

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	errors "github.com/frahmantamala/shopping-list/internal"
)

type ProductRepository interface {
	Search(ctx context.Context, q SearchQuery) ([]*Product, int64, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	IncrementPopularity(ctx context.Context, id string) error
	AddPrice(ctx context.Context, p *Product, point PricePoint) error
}

type CategoryRepository interface {
	TopLevel(ctx context.Context) ([]*Category, error)
	GetByCode(ctx context.Context, code string) (*Category, error)
	Children(ctx context.Context, code string) ([]*Category, error)
	Create(ctx context.Context, c *Category) error
}

type ServiceAPI interface {
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*Product, error)
	CreateProduct(ctx context.Context, dto CreateProductDTO) (*Product, error)
	UpdatePrice(ctx context.Context, id string, dto UpdatePriceDTO) (*Product, bool, error)
	GetCategories(ctx context.Context) ([]*Category, error)
	GetSubcategories(ctx context.Context, code string) ([]*Category, error)
	CreateCategory(ctx context.Context, dto CreateCategoryDTO) (*Category, error)
}

type Service struct {
	products   ProductRepository
	categories CategoryRepository
	cache      *ProductCache
	logger     *slog.Logger
}

func NewService(products ProductRepository, categories CategoryRepository, cache *ProductCache, logger *slog.Logger) *Service {
	return &Service{
		products:   products,
		categories: categories,
		cache:      cache,
		logger:     logger,
	}
}

// Search matches q against name, barcode and tags, most popular first.
func (s *Service) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	q = q.Normalize()
	q.Query = strings.TrimSpace(q.Query)

	products, total, err := s.products.Search(ctx, q)
	if err != nil {
		s.logger.Error("failed to search catalog", "error", err, "query", q.Query)
		return nil, errors.WrapStorage(err)
	}
	if products == nil {
		products = []*Product{}
	}

	return &SearchResult{
		Products: products,
		Pagination: Pagination{
			Total:      total,
			Page:       q.Page,
			Limit:      q.Limit,
			TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
		},
	}, nil
}

// GetProduct returns the product and counts the view toward its popularity.
func (s *Service) GetProduct(ctx context.Context, id string) (*Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, errors.WrapStorage(err)
	}
	return s.viewed(ctx, p), nil
}

func (s *Service) GetProductByBarcode(ctx context.Context, barcode string) (*Product, error) {
	p, err := s.products.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, errors.WrapStorage(err)
	}
	return s.viewed(ctx, p), nil
}

func (s *Service) viewed(ctx context.Context, p *Product) *Product {
	if err := s.products.IncrementPopularity(ctx, p.ID); err != nil {
		s.logger.Warn("failed to bump product popularity", "error", err, "product_id", p.ID)
	} else {
		p.Popularity++
	}
	s.cacheSet(p)
	return p
}

// Lookup resolves a product for item fill-in. It reads through the cache and
// does not count toward popularity.
func (s *Service) Lookup(ctx context.Context, id string) (*Product, error) {
	if s.cache != nil {
		if p, ok := s.cache.Get(id); ok {
			return p, nil
		}
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, errors.WrapStorage(err)
	}
	s.cacheSet(p)
	return p, nil
}

func (s *Service) CreateProduct(ctx context.Context, dto CreateProductDTO) (*Product, error) {
	dto.Barcode = strings.TrimSpace(dto.Barcode)
	dto.Name = strings.TrimSpace(dto.Name)
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.products.GetByBarcode(ctx, dto.Barcode); err == nil {
		return nil, errors.ErrBarcodeExists
	} else if !errors.IsType(err, errors.ErrorTypeNotFound) {
		return nil, errors.WrapStorage(err)
	}

	p := NewProduct(dto, time.Now().UTC())
	if err := s.products.Create(ctx, p); err != nil {
		s.logger.Error("failed to create product", "error", err, "barcode", dto.Barcode)
		return nil, errors.WrapStorage(err)
	}
	s.logger.Info("product created", "product_id", p.ID, "barcode", p.Barcode)
	return p, nil
}

// UpdatePrice records a price observation. The bool reports whether the
// product changed.
func (s *Service) UpdatePrice(ctx context.Context, id string, dto UpdatePriceDTO) (*Product, bool, error) {
	if err := dto.Validate(); err != nil {
		return nil, false, err
	}

	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, false, errors.WrapStorage(err)
	}

	point, changed := p.AddPrice(*dto.Price, strings.TrimSpace(dto.Supermarket), time.Now().UTC())
	if !changed {
		return p, false, nil
	}
	if err := s.products.AddPrice(ctx, p, point); err != nil {
		s.logger.Error("failed to store product price", "error", err, "product_id", id)
		return nil, false, errors.WrapStorage(err)
	}
	if s.cache != nil {
		s.cache.Delete(id)
	}

	s.logger.Info("product price updated", "product_id", id, "price", point.Price, "supermarket", point.Supermarket)
	return p, true, nil
}

func (s *Service) GetCategories(ctx context.Context) ([]*Category, error) {
	cats, err := s.categories.TopLevel(ctx)
	if err != nil {
		s.logger.Error("failed to get categories", "error", err)
		return nil, errors.WrapStorage(err)
	}
	return cats, nil
}

func (s *Service) GetSubcategories(ctx context.Context, code string) ([]*Category, error) {
	if _, err := s.categories.GetByCode(ctx, code); err != nil {
		return nil, errors.WrapStorage(err)
	}
	cats, err := s.categories.Children(ctx, code)
	if err != nil {
		s.logger.Error("failed to get subcategories", "error", err, "code", code)
		return nil, errors.WrapStorage(err)
	}
	return cats, nil
}

func (s *Service) CreateCategory(ctx context.Context, dto CreateCategoryDTO) (*Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.Parent != nil {
		if _, err := s.categories.GetByCode(ctx, *dto.Parent); err != nil {
			return nil, errors.WrapStorage(err)
		}
	}

	c := &Category{
		Code:         strings.TrimSpace(dto.Code),
		Name:         strings.TrimSpace(dto.Name),
		Icon:         dto.Icon,
		Color:        dto.Color,
		Parent:       dto.Parent,
		DefaultUnits: nonNil(dto.DefaultUnits),
		CustomOrder:  dto.CustomOrder,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, errors.WrapStorage(err)
	}
	return c, nil
}

func (s *Service) cacheSet(p *Product) {
	if s.cache != nil {
		s.cache.Set(p)
	}
}
