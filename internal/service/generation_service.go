package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"artforge/internal/config"
	"artforge/internal/generation"
	"artforge/internal/ids"
	"artforge/internal/models"
	"artforge/internal/prompt"
	"artforge/internal/storage"
)

// Generator fetches rendered image bytes for an encoded prompt.
type Generator interface {
	Generate(ctx context.Context, encodedPrompt string, width, height int, timeout time.Duration) ([]byte, error)
}

type GenerateInput struct {
	Prompt  string
	Style   string
	OwnerID string
}

type GenerateResult struct {
	Image GalleryItem
	URL   string
}

type GenerationService struct {
	sanitizer prompt.Sanitizer
	quota     *QuotaGate
	generator Generator
	artifacts storage.ArtifactStore
	images    ImageStore
	cfg       config.GenerationConfig
	log       zerolog.Logger
}

func NewGenerationService(
	sanitizer prompt.Sanitizer,
	quota *QuotaGate,
	generator Generator,
	artifacts storage.ArtifactStore,
	images ImageStore,
	cfg config.GenerationConfig,
	log zerolog.Logger,
) *GenerationService {
	return &GenerationService{
		sanitizer: sanitizer,
		quota:     quota,
		generator: generator,
		artifacts: artifacts,
		images:    images,
		cfg:       cfg,
		log:       log,
	}
}

// Generate validates the prompt, checks the owner's quota, calls the provider and
// stores the result. A row is only inserted after its artifact was saved.
func (s *GenerationService) Generate(ctx context.Context, input GenerateInput) (GenerateResult, error) {
	req, err := s.sanitizer.Sanitize(input.Prompt, input.Style)
	if err != nil {
		return GenerateResult{}, promptError(err)
	}

	if err := s.quota.Check(ctx, input.OwnerID); err != nil {
		return GenerateResult{}, err
	}

	start := time.Now()
	data, err := s.generator.Generate(ctx, req.Encoded, s.cfg.Width, s.cfg.Height, s.cfg.Timeout)
	if err != nil {
		s.log.Warn().Err(err).Str("owner_id", input.OwnerID).Msg("generation provider failed")
		return GenerateResult{}, providerError(err)
	}

	filename, err := s.artifacts.Save(ctx, input.OwnerID, data)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", input.OwnerID).Msg("artifact save failed")
		return GenerateResult{}, newError(KindWriteFailure, "save artifact", err)
	}

	configJSON, err := json.Marshal(models.GenerationConfig{
		Prompt: req.Prompt,
		Style:  req.Style.ID,
		Width:  s.cfg.Width,
		Height: s.cfg.Height,
	})
	if err != nil {
		return GenerateResult{}, newError(KindInternal, "encode config", err)
	}

	row, err := s.images.Create(ctx, models.GeneratedImage{
		ID:             ids.New(),
		OwnerID:        input.OwnerID,
		PromptText:     req.Prompt,
		StoredFilename: filename,
		ConfigJSON:     string(configJSON),
	})
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("owner_id", input.OwnerID).
			Str("filename", filename).
			Msg("metadata insert failed, artifact left orphaned")
		return GenerateResult{}, newError(KindPersistence, "store image metadata", err)
	}

	s.log.Info().
		Str("image_id", row.ID).
		Str("owner_id", input.OwnerID).
		Str("style", req.Style.ID).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("image generated")

	url := s.artifacts.PublicURL(filename)
	return GenerateResult{
		Image: GalleryItem{
			ID:       row.ID,
			Prompt:   row.PromptText,
			Filename: filename,
			URL:      url,
			Config: models.GenerationConfig{
				Prompt: req.Prompt,
				Style:  req.Style.ID,
				Width:  s.cfg.Width,
				Height: s.cfg.Height,
			},
			CreatedAt: row.CreatedAt,
		},
		URL: url,
	}, nil
}

func promptError(err error) error {
	switch {
	case errors.Is(err, prompt.ErrEmpty):
		return newError(KindEmptyPrompt, "prompt is empty", err)
	case errors.Is(err, prompt.ErrTooShort):
		return newError(KindPromptTooShort, "prompt is too short", err)
	case errors.Is(err, prompt.ErrTooLong):
		return newError(KindPromptTooLong, "prompt is too long", err)
	case errors.Is(err, prompt.ErrUnknownStyle):
		return newError(KindUnknownStyle, "unknown style", err)
	default:
		return newError(KindInternal, "sanitize prompt", err)
	}
}

func providerError(err error) error {
	kind, ok := generation.KindOf(err)
	if !ok {
		return newError(KindTransport, "generation provider", err)
	}
	switch kind {
	case generation.KindUpstreamStatus:
		svcErr := newError(KindUpstreamStatus, "generation provider", err)
		var genErr *generation.Error
		if errors.As(err, &genErr) {
			svcErr.UpstreamStatus = genErr.StatusCode
		}
		return svcErr
	case generation.KindEmptyPayload:
		return newError(KindEmptyPayload, "generation provider", err)
	default:
		return newError(KindTransport, "generation provider", err)
	}
}
