package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/menuboard/api/internal/domain"
	"github.com/menuboard/api/internal/store"
)

const (
	catalogEventProductCreated  = "catalog.product.created"
	catalogEventProductUpdated  = "catalog.product.updated"
	catalogEventProductDeleted  = "catalog.product.deleted"
	catalogEventCategoryCreated = "catalog.category.created"
	catalogEventCategoryDeleted = "catalog.category.deleted"
)

// ProductCommand carries the add/edit product form fields. PriceRaw stays
// untyped because the form submits it as a string or a number.
type ProductCommand struct {
	Name        string
	Description string
	Category    string
	PriceRaw    any
	Tags        []string
	ImageURL    string
	ImageData   string
}

// CatalogService manages products and the explicit category list.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, cmd ProductCommand) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, cmd ProductCommand) error
	DeleteProduct(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	// AddCategory appends a category. With ensureUnique the current list is
	// read first and a case-insensitive duplicate is rejected; the
	// read-then-write window is accepted.
	AddCategory(ctx context.Context, name string, ensureUnique bool) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// CatalogServiceDeps wires dependencies for the catalog service.
type CatalogServiceDeps struct {
	Store  store.Store
	Clock  func() time.Time
	Logger LogFunc
}

type catalogService struct {
	store  store.Store
	clock  func() time.Time
	logger LogFunc
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Store == nil {
		return nil, errors.New("catalog service: store is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = nopLog
	}
	return &catalogService{store: deps.Store, clock: clock, logger: logger}, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var value any
	if err := s.store.Get(ctx, productsPath, &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return domain.DecodeProducts(value), nil
}

func (s *catalogService) CreateProduct(ctx context.Context, cmd ProductCommand) (domain.Product, error) {
	payload, err := BuildProductPayload(cmd)
	if err != nil {
		return domain.Product{}, err
	}
	id, err := s.store.Push(ctx, productsPath, payload)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	s.logger(ctx, catalogEventProductCreated, map[string]any{"productId": id, "category": cmd.Category})

	products := domain.DecodeProducts(map[string]any{id: payload})
	return products[0], nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id string, cmd ProductCommand) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	payload, err := BuildProductPayload(cmd)
	if err != nil {
		return err
	}
	if err := s.store.Update(ctx, productsPath+"/"+id, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	s.logger(ctx, catalogEventProductUpdated, map[string]any{"productId": id})
	return nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	if err := s.store.Delete(ctx, productsPath+"/"+id); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	s.logger(ctx, catalogEventProductDeleted, map[string]any{"productId": id})
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var value any
	if err := s.store.Get(ctx, categoriesPath, &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return domain.DecodeCategories(value), nil
}

func (s *catalogService) AddCategory(ctx context.Context, name string, ensureUnique bool) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	if ensureUnique {
		existing, err := s.ListCategories(ctx)
		if err != nil {
			return domain.Category{}, err
		}
		for _, c := range existing {
			if strings.EqualFold(c.Name, name) {
				return domain.Category{}, fmt.Errorf("%w: %q", ErrCategoryExists, name)
			}
		}
	}
	id, err := s.store.Push(ctx, categoriesPath, map[string]any{"name": name})
	if err != nil {
		return domain.Category{}, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	s.logger(ctx, catalogEventCategoryCreated, map[string]any{"categoryId": id, "name": name})
	return domain.Category{ID: id, Name: name}, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: category id is required", ErrInvalidInput)
	}
	if err := s.store.Delete(ctx, categoriesPath+"/"+id); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	s.logger(ctx, catalogEventCategoryDeleted, map[string]any{"categoryId": id})
	return nil
}

// BuildProductPayload turns the form fields into the field map written to
// the store. Name and description are trimmed; the price is coerced to a
// number and omitted when coercion yields zero or NaN, which also makes an
// exact price of 0 unstorable; tags default to an empty list; image fields
// are included only when non-empty. Absent fields stay absent rather than
// being written as empty values.
func BuildProductPayload(cmd ProductCommand) (map[string]any, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	category := strings.TrimSpace(cmd.Category)
	if category == "" {
		return nil, fmt.Errorf("%w: product category is required", ErrInvalidInput)
	}

	payload := map[string]any{
		"name":        name,
		"description": strings.TrimSpace(cmd.Description),
		"category":    category,
	}

	if price, err := cast.ToFloat64E(cmd.PriceRaw); err == nil && price != 0 && !math.IsNaN(price) {
		payload["price"] = price
	}

	tags := cmd.Tags
	if tags == nil {
		tags = []string{}
	}
	payload["tags"] = tags

	if url := strings.TrimSpace(cmd.ImageURL); url != "" {
		payload["image"] = url
	}
	if cmd.ImageData != "" {
		payload["imageBase64"] = cmd.ImageData
	}
	return payload, nil
}
