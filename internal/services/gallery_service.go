package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/menuboard/api/internal/domain"
	"github.com/menuboard/api/internal/store"
)

const (
	galleryEventItemCreated       = "gallery.item.created"
	galleryEventItemDeleted       = "gallery.item.deleted"
	galleryEventBackgroundCreated = "gallery.background.created"
	galleryEventBackgroundUpdated = "gallery.background.updated"
	galleryEventBackgroundDeleted = "gallery.background.deleted"
)

// ImageCommand carries a gallery or background form submission. ImageData is
// the inlined upload (a data URL); ImageURL an externally hosted image.
type ImageCommand struct {
	Title       string
	Description string
	ImageURL    string
	ImageData   string
}

// MediaStore offloads inlined uploads to object storage, returning the URL
// to reference instead. Optional; without one uploads stay inlined.
type MediaStore interface {
	Store(ctx context.Context, kind, value string) (string, error)
}

// GalleryService manages the photo gallery and the hero background record.
type GalleryService interface {
	ListGallery(ctx context.Context) ([]domain.GalleryItem, error)
	AddGalleryItem(ctx context.Context, cmd ImageCommand) (domain.GalleryItem, error)
	DeleteGalleryItem(ctx context.Context, id string) error

	ListBackgrounds(ctx context.Context) ([]domain.BackgroundItem, error)
	// AddBackground rejects the write while any background record exists.
	// The check reads the current list, so two concurrent submissions can
	// still both land; that window is accepted.
	AddBackground(ctx context.Context, cmd ImageCommand) (domain.BackgroundItem, error)
	UpdateBackground(ctx context.Context, id string, cmd ImageCommand) error
	DeleteBackground(ctx context.Context, id string) error
}

// GalleryServiceDeps wires dependencies for the gallery service.
type GalleryServiceDeps struct {
	Store  store.Store
	Media  MediaStore
	Clock  func() time.Time
	Logger LogFunc
}

type galleryService struct {
	store  store.Store
	media  MediaStore
	clock  func() time.Time
	logger LogFunc
}

// NewGalleryService constructs a GalleryService. Media is optional.
func NewGalleryService(deps GalleryServiceDeps) (GalleryService, error) {
	if deps.Store == nil {
		return nil, errors.New("gallery service: store is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = nopLog
	}
	return &galleryService{store: deps.Store, media: deps.Media, clock: clock, logger: logger}, nil
}

func (s *galleryService) ListGallery(ctx context.Context) ([]domain.GalleryItem, error) {
	var value any
	if err := s.store.Get(ctx, galleryPath, &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return domain.DecodeGallery(value), nil
}

func (s *galleryService) AddGalleryItem(ctx context.Context, cmd ImageCommand) (domain.GalleryItem, error) {
	payload, err := s.imagePayload(ctx, "gallery", cmd, true)
	if err != nil {
		return domain.GalleryItem{}, err
	}
	id, err := s.store.Push(ctx, galleryPath, payload)
	if err != nil {
		return domain.GalleryItem{}, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	s.logger(ctx, galleryEventItemCreated, map[string]any{"itemId": id})
	items := domain.DecodeGallery(map[string]any{id: payload})
	return items[0], nil
}

func (s *galleryService) DeleteGalleryItem(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: gallery item id is required", ErrInvalidInput)
	}
	if err := s.store.Delete(ctx, galleryPath+"/"+id); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	s.logger(ctx, galleryEventItemDeleted, map[string]any{"itemId": id})
	return nil
}

func (s *galleryService) ListBackgrounds(ctx context.Context) ([]domain.BackgroundItem, error) {
	var value any
	if err := s.store.Get(ctx, backgroundPath, &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return domain.DecodeBackgrounds(value), nil
}

func (s *galleryService) AddBackground(ctx context.Context, cmd ImageCommand) (domain.BackgroundItem, error) {
	existing, err := s.ListBackgrounds(ctx)
	if err != nil {
		return domain.BackgroundItem{}, err
	}
	if len(existing) > 0 {
		return domain.BackgroundItem{}, ErrBackgroundExists
	}
	payload, err := s.imagePayload(ctx, "background", cmd, true)
	if err != nil {
		return domain.BackgroundItem{}, err
	}
	id, err := s.store.Push(ctx, backgroundPath, payload)
	if err != nil {
		return domain.BackgroundItem{}, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	s.logger(ctx, galleryEventBackgroundCreated, map[string]any{"backgroundId": id})
	items := domain.DecodeBackgrounds(map[string]any{id: payload})
	return items[0], nil
}

func (s *galleryService) UpdateBackground(ctx context.Context, id string, cmd ImageCommand) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: background id is required", ErrInvalidInput)
	}
	payload, err := s.imagePayload(ctx, "background", cmd, false)
	if err != nil {
		return err
	}
	if err := s.store.Update(ctx, backgroundPath+"/"+id, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	s.logger(ctx, galleryEventBackgroundUpdated, map[string]any{"backgroundId": id})
	return nil
}

func (s *galleryService) DeleteBackground(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: background id is required", ErrInvalidInput)
	}
	if err := s.store.Delete(ctx, backgroundPath+"/"+id); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	s.logger(ctx, galleryEventBackgroundDeleted, map[string]any{"backgroundId": id})
	return nil
}

// imagePayload builds the stored field map. With a media store configured,
// inlined uploads land in the bucket and the record keeps the object URL;
// otherwise the data URL is stored inline. Image fields are included only
// when non-empty; on edits an absent image leaves the stored one untouched.
func (s *galleryService) imagePayload(ctx context.Context, kind string, cmd ImageCommand, requireImage bool) (map[string]any, error) {
	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	payload := map[string]any{"title": title}
	if desc := strings.TrimSpace(cmd.Description); desc != "" {
		payload["description"] = desc
	}

	imageURL := strings.TrimSpace(cmd.ImageURL)
	imageData := cmd.ImageData
	if imageData != "" && s.media != nil {
		stored, err := s.media.Store(ctx, kind, imageData)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
		}
		if stored != imageData {
			imageURL = stored
			imageData = ""
		}
	}
	if requireImage && imageURL == "" && imageData == "" {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidInput)
	}
	if imageURL != "" {
		payload["image"] = imageURL
	}
	if imageData != "" {
		payload["imageBase64"] = imageData
	}
	return payload, nil
}
