package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"artforge/internal/config"
)

var (
	ErrWriteFailure    = errors.New("artifact write failed")
	ErrInvalidFilename = errors.New("invalid artifact filename")
)

// Artifact is a stored file as seen by the backend, independent of any metadata row.
type Artifact struct {
	Name    string
	ModTime time.Time
}

// ArtifactStore persists generated image bytes under unique filenames.
type ArtifactStore interface {
	Save(ctx context.Context, ownerID string, data []byte) (string, error)
	// Delete treats an already-missing artifact as success.
	Delete(ctx context.Context, filename string) error
	PublicURL(filename string) string
	List(ctx context.Context) ([]Artifact, error)
}

// TempSweeper is implemented by backends that stage writes in temp files.
type TempSweeper interface {
	RemoveStaleTemp(ctx context.Context, olderThan time.Time) ([]string, error)
}

var artifactNamePattern = regexp.MustCompile(`^img_[A-Za-z0-9-]*_[0-9]+_[0-9a-f]{13}\.png$`)

// IsArtifactName reports whether name has the shape NewFilename produces.
func IsArtifactName(name string) bool {
	return artifactNamePattern.MatchString(name)
}

// New builds the backend selected by cfg.Driver. The s3 driver creates its bucket when missing.
func New(ctx context.Context, cfg config.StorageConfig) (ArtifactStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.Dir, cfg.PublicBaseURL), nil
	case "s3":
		store, err := NewObjectStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// NewFilename returns img_<owner>_<unix-seconds>_<uniq>.png.
func NewFilename(ownerID string, now time.Time) string {
	uniq := strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
	return fmt.Sprintf("img_%s_%d_%s.png", sanitizeOwner(ownerID), now.Unix(), uniq)
}

func sanitizeOwner(ownerID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return -1
		}
	}, ownerID)
}

func validateFilename(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return nil
}

func joinURL(base, filename string) string {
	return strings.TrimRight(base, "/") + "/" + filename
}
