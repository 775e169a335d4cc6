package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"artforge/internal/models"
	"artforge/internal/repository"
	"artforge/internal/storage"
)

// ImageStore is the metadata persistence the gallery and generation services need.
type ImageStore interface {
	Create(ctx context.Context, image models.GeneratedImage) (models.GeneratedImage, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (models.GeneratedImage, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.GeneratedImage, error)
	DeleteByID(ctx context.Context, id string) error
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	ListStoredFilenames(ctx context.Context) ([]string, error)
}

type GalleryItem struct {
	ID        string
	Prompt    string
	Filename  string
	URL       string
	Config    models.GenerationConfig
	CreatedAt time.Time
}

type GalleryService struct {
	images    ImageStore
	artifacts storage.ArtifactStore
	quota     *QuotaGate
	log       zerolog.Logger
}

func NewGalleryService(images ImageStore, artifacts storage.ArtifactStore, quota *QuotaGate, log zerolog.Logger) *GalleryService {
	return &GalleryService{
		images:    images,
		artifacts: artifacts,
		quota:     quota,
		log:       log,
	}
}

// List returns the owner's images newest first.
func (s *GalleryService) List(ctx context.Context, ownerID string) ([]GalleryItem, error) {
	rows, err := s.images.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, newError(KindInternal, "list images", err)
	}

	items := make([]GalleryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.toItem(row))
	}
	return items, nil
}

func (s *GalleryService) Get(ctx context.Context, id, ownerID string) (GalleryItem, error) {
	row, err := s.images.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return GalleryItem{}, lookupError(err)
	}
	return s.toItem(row), nil
}

// Delete removes the artifact before the row, so a failure part way leaves a row
// whose file is missing rather than an unreferenced file.
func (s *GalleryService) Delete(ctx context.Context, id, ownerID string) error {
	row, err := s.images.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return lookupError(err)
	}

	if err := s.artifacts.Delete(ctx, row.StoredFilename); err != nil {
		return newError(KindInternal, "delete artifact", err)
	}

	if err := s.images.DeleteByID(ctx, row.ID); err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return newError(KindNotFoundOrForbidden, "image not found", err)
		}
		return newError(KindInternal, "delete image", err)
	}

	s.log.Info().
		Str("image_id", row.ID).
		Str("owner_id", ownerID).
		Str("filename", row.StoredFilename).
		Msg("image deleted")
	return nil
}

func (s *GalleryService) Count(ctx context.Context, ownerID string) (int, error) {
	count, err := s.images.CountByOwner(ctx, ownerID)
	if err != nil {
		return 0, newError(KindInternal, "count images", err)
	}
	return count, nil
}

func (s *GalleryService) Limit() int {
	return s.quota.Limit()
}

func (s *GalleryService) toItem(row models.GeneratedImage) GalleryItem {
	var cfg models.GenerationConfig
	if err := json.Unmarshal([]byte(row.ConfigJSON), &cfg); err != nil {
		s.log.Warn().Err(err).Str("image_id", row.ID).Msg("malformed generation config")
		cfg = models.GenerationConfig{}
	}

	return GalleryItem{
		ID:        row.ID,
		Prompt:    row.PromptText,
		Filename:  row.StoredFilename,
		URL:       s.artifacts.PublicURL(row.StoredFilename),
		Config:    cfg,
		CreatedAt: row.CreatedAt,
	}
}

func lookupError(err error) error {
	if errors.Is(err, repository.ErrImageNotFound) {
		return newError(KindNotFoundOrForbidden, "image not found", err)
	}
	return newError(KindInternal, "find image", err)
}
