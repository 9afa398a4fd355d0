package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/menuboard/api/internal/domain"
	"github.com/menuboard/api/internal/store"
)

const settingsEventSaved = "settings.saved"

// SettingsCommand carries the settings form. String fields left empty are
// not written, preserving whatever the document already holds; the save is
// a merge, never a replace, so a stored value can be changed but not
// cleared through this command.
type SettingsCommand struct {
	Title              string
	CompanyName        string
	Phone              string
	Email              string
	Address            string
	About              string
	MapURL             string
	HeroImage          string
	HeroTextColor      string
	HeroOverlayColor   string
	HeroOverlayOpacity any
	ShowBadges         *bool
}

// SettingsService reads and merge-saves the siteSettings document.
type SettingsService interface {
	Get(ctx context.Context) (domain.SiteSettings, error)
	Save(ctx context.Context, cmd SettingsCommand) error
}

// SettingsServiceDeps wires dependencies for the settings service.
type SettingsServiceDeps struct {
	Store  store.Store
	Clock  func() time.Time
	Logger LogFunc
}

type settingsService struct {
	store     store.Store
	clock     func() time.Time
	logger    LogFunc
	sanitizer *bluemonday.Policy
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(deps SettingsServiceDeps) (SettingsService, error) {
	if deps.Store == nil {
		return nil, errors.New("settings service: store is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = nopLog
	}
	return &settingsService{
		store:     deps.Store,
		clock:     clock,
		logger:    logger,
		sanitizer: bluemonday.UGCPolicy(),
	}, nil
}

func (s *settingsService) Get(ctx context.Context) (domain.SiteSettings, error) {
	var value any
	if err := s.store.Get(ctx, settingsPath, &value); err != nil {
		return domain.SiteSettings{}, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return domain.DecodeSettings(value), nil
}

func (s *settingsService) Save(ctx context.Context, cmd SettingsCommand) error {
	fields := make(map[string]any)
	setString := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fields[key] = value
		}
	}
	setString("title", cmd.Title)
	setString("companyName", cmd.CompanyName)
	setString("phone", cmd.Phone)
	setString("email", cmd.Email)
	setString("address", cmd.Address)
	setString("heroImage", cmd.HeroImage)
	setString("heroTextColor", cmd.HeroTextColor)
	setString("heroOverlayColor", cmd.HeroOverlayColor)

	if about := strings.TrimSpace(cmd.About); about != "" {
		fields["about"] = s.sanitizer.Sanitize(about)
	}
	if mapURL := strings.TrimSpace(cmd.MapURL); mapURL != "" {
		if err := validateMapURL(mapURL); err != nil {
			return err
		}
		fields["mapUrl"] = mapURL
	}
	if cmd.HeroOverlayOpacity != nil {
		fields["heroOverlayOpacity"] = cmd.HeroOverlayOpacity
	}
	if cmd.ShowBadges != nil {
		fields["showBadges"] = *cmd.ShowBadges
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: nothing to save", ErrInvalidInput)
	}

	if err := s.store.Update(ctx, settingsPath, fields); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	s.logger(ctx, settingsEventSaved, map[string]any{"fields": len(fields)})
	return nil
}

// validateMapURL requires an absolute http(s) URL since the value ends up as
// an embed source on the public page.
func validateMapURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: map url is not a valid url", ErrInvalidInput)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: map url must be http or https", ErrInvalidInput)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: map url must be absolute", ErrInvalidInput)
	}
	return nil
}
