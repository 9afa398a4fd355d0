// Package services implements the application layer between the HTTP
// handlers and the store: catalog (products and categories), gallery and
// hero background, site settings, and the live public menu view.
package services

import (
	"context"
	"errors"
)

// Store paths. The store assigns child identifiers under the collection
// paths; siteSettings is a singleton document.
const (
	productsPath   = "products"
	categoriesPath = "categories"
	galleryPath    = "gallery"
	backgroundPath = "background"
	settingsPath   = "siteSettings"
)

var (
	// ErrInvalidInput indicates the caller provided an invalid argument.
	ErrInvalidInput = errors.New("services: invalid input")
	// ErrCategoryExists indicates a case-insensitive duplicate category name.
	ErrCategoryExists = errors.New("services: category already exists")
	// ErrBackgroundExists indicates the background record is already present.
	ErrBackgroundExists = errors.New("services: background already exists")
	// ErrStoreFailure wraps unexpected store failures.
	ErrStoreFailure = errors.New("services: store failure")
)

// LogFunc receives structured service events; cmd/api adapts zap into it.
type LogFunc func(ctx context.Context, event string, fields map[string]any)

func nopLog(context.Context, string, map[string]any) {}
