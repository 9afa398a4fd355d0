package services

import (
	"context"
	"errors"
	"sync"

	"github.com/menuboard/api/internal/domain"
	"github.com/menuboard/api/internal/store"
)

// HeroView is the computed hero presentation for the public page.
type HeroView struct {
	Image        string `json:"image,omitempty"`
	TextColor    string `json:"textColor"`
	OverlayColor string `json:"overlayColor"`
}

// FooterView is the public footer contact block.
type FooterView struct {
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Address    string `json:"address,omitempty"`
	About      string `json:"about,omitempty"`
	MapURL     string `json:"mapUrl,omitempty"`
	ShowBadges bool   `json:"showBadges,omitempty"`
}

// MenuView is the assembled public menu response.
type MenuView struct {
	Title    string           `json:"title,omitempty"`
	Hero     HeroView         `json:"hero"`
	Labels   []string         `json:"labels"`
	Products []domain.Product `json:"products"`
	Footer   FooterView       `json:"footer"`
}

// MenuService serves the public page from local caches fed by store
// subscriptions. Each snapshot replaces its cache in full; the caches are
// disposable read replicas, the store stays the source of truth. The four
// subscriptions are independent and unordered relative to each other.
type MenuService struct {
	watcher *store.Watcher
	logger  LogFunc

	mu          sync.RWMutex
	products    []domain.Product
	categories  []domain.Category
	backgrounds []domain.BackgroundItem
	settings    domain.SiteSettings

	subs    []*store.Subscription
	started bool
}

// MenuServiceDeps wires dependencies for the menu service.
type MenuServiceDeps struct {
	Watcher *store.Watcher
	Logger  LogFunc
}

// NewMenuService constructs a MenuService. Call Start before serving.
func NewMenuService(deps MenuServiceDeps) (*MenuService, error) {
	if deps.Watcher == nil {
		return nil, errors.New("menu service: watcher is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = nopLog
	}
	return &MenuService{watcher: deps.Watcher, logger: logger}, nil
}

// Start establishes the live subscriptions and blocks until each has
// delivered its initial snapshot.
func (m *MenuService) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return errors.New("menu service: already started")
	}
	m.started = true
	m.mu.Unlock()

	watches := []struct {
		path  string
		apply func(any)
	}{
		{productsPath, func(v any) { m.setProducts(domain.DecodeProducts(v)) }},
		{categoriesPath, func(v any) { m.setCategories(domain.DecodeCategories(v)) }},
		{backgroundPath, func(v any) { m.setBackgrounds(domain.DecodeBackgrounds(v)) }},
		{settingsPath, func(v any) { m.setSettings(domain.DecodeSettings(v)) }},
	}
	for _, w := range watches {
		apply := w.apply
		sub, err := m.watcher.Subscribe(ctx, w.path, func(snap store.Snapshot) {
			apply(snap.Value)
			m.logger(ctx, "menu.cache.refreshed", map[string]any{"path": snap.Path})
		})
		if err != nil {
			m.Close()
			return err
		}
		m.subs = append(m.subs, sub)
	}
	return nil
}

// Close tears the subscriptions down. No cache update runs after it returns.
func (m *MenuService) Close() {
	for _, sub := range m.subs {
		sub.Close()
	}
	m.subs = nil
	m.mu.Lock()
	m.started = false
	m.mu.Unlock()
}

// Ready reports whether the live caches are being fed.
func (m *MenuService) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.started
}

func (m *MenuService) setProducts(products []domain.Product) {
	m.mu.Lock()
	m.products = products
	m.mu.Unlock()
}

func (m *MenuService) setCategories(categories []domain.Category) {
	m.mu.Lock()
	m.categories = categories
	m.mu.Unlock()
}

func (m *MenuService) setBackgrounds(items []domain.BackgroundItem) {
	m.mu.Lock()
	m.backgrounds = items
	m.mu.Unlock()
}

func (m *MenuService) setSettings(settings domain.SiteSettings) {
	m.mu.Lock()
	m.settings = settings
	m.mu.Unlock()
}

// View assembles the public menu, optionally filtered to one category
// label. Labels and the hero presentation are derived on every call; they
// are views over the caches, not stored state.
func (m *MenuService) View(category string) MenuView {
	m.mu.RLock()
	products := m.products
	categories := m.categories
	backgrounds := m.backgrounds
	settings := m.settings
	m.mu.RUnlock()

	hero := HeroView{
		Image:        settings.HeroImage,
		TextColor:    domain.HeroTextColor(settings.HeroTextColor),
		OverlayColor: domain.Overlay(settings.HeroOverlayColor, settings.HeroOverlayOpacity),
	}
	if len(backgrounds) > 0 {
		if img := backgrounds[0].DisplayImage(); img != "" {
			hero.Image = img
		}
	}

	filtered := domain.FilterProducts(products, category)
	if filtered == nil {
		filtered = []domain.Product{}
	}

	return MenuView{
		Title:    settings.Title,
		Hero:     hero,
		Labels:   domain.FilterLabels(categories, products),
		Products: filtered,
		Footer: FooterView{
			Name:       settings.FooterName(),
			Phone:      settings.Phone,
			Email:      settings.Email,
			Address:    settings.Address,
			About:      settings.About,
			MapURL:     settings.MapURL,
			ShowBadges: settings.ShowBadges,
		},
	}
}
