package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"artforge/internal/storage"
)

type filenameLister interface {
	ListStoredFilenames(ctx context.Context) ([]string, error)
}

type ReconcileReport struct {
	Scanned         int
	OrphansDeleted  []string
	OrphansPending  int
	MissingArtifact []string
	DeleteFailures  int
	Foreign         int
	TempRemoved     int
}

// Reconciler removes artifacts that no row references and reports rows whose
// artifact is gone. Only names shaped like generated artifacts are candidates;
// anything else sharing the directory or bucket is left alone. Orphans younger than grace are kept because a generation may
// still be between saving the artifact and inserting its row.
type Reconciler struct {
	images    filenameLister
	artifacts storage.ArtifactStore
	grace     time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

func NewReconciler(images filenameLister, artifacts storage.ArtifactStore, grace time.Duration, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		images:    images,
		artifacts: artifacts,
		grace:     grace,
		now:       time.Now,
		log:       log,
	}
}

func (r *Reconciler) Sweep(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	artifacts, err := r.artifacts.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list artifacts: %w", err)
	}
	names, err := r.images.ListStoredFilenames(ctx)
	if err != nil {
		return report, fmt.Errorf("list stored filenames: %w", err)
	}

	referenced := make(map[string]struct{}, len(names))
	for _, name := range names {
		referenced[name] = struct{}{}
	}

	present := make(map[string]struct{}, len(artifacts))
	cutoff := r.now().Add(-r.grace)
	for _, artifact := range artifacts {
		report.Scanned++
		present[artifact.Name] = struct{}{}

		if _, ok := referenced[artifact.Name]; ok {
			continue
		}
		if !storage.IsArtifactName(artifact.Name) {
			report.Foreign++
			r.log.Debug().Str("filename", artifact.Name).Msg("skipping foreign file")
			continue
		}
		if artifact.ModTime.After(cutoff) {
			report.OrphansPending++
			continue
		}
		if err := r.artifacts.Delete(ctx, artifact.Name); err != nil {
			report.DeleteFailures++
			r.log.Warn().Err(err).Str("filename", artifact.Name).Msg("orphan delete failed")
			continue
		}
		report.OrphansDeleted = append(report.OrphansDeleted, artifact.Name)
	}

	for _, name := range names {
		if _, ok := present[name]; !ok {
			report.MissingArtifact = append(report.MissingArtifact, name)
			r.log.Warn().Str("filename", name).Msg("image row references missing artifact")
		}
	}

	if sweeper, ok := r.artifacts.(storage.TempSweeper); ok {
		removed, err := sweeper.RemoveStaleTemp(ctx, cutoff)
		report.TempRemoved = len(removed)
		if err != nil {
			report.DeleteFailures++
			r.log.Warn().Err(err).Msg("stale temp cleanup failed")
		}
	}

	r.log.Info().
		Int("scanned", report.Scanned).
		Int("orphans_deleted", len(report.OrphansDeleted)).
		Int("orphans_pending", report.OrphansPending).
		Int("missing_artifacts", len(report.MissingArtifact)).
		Int("delete_failures", report.DeleteFailures).
		Int("foreign", report.Foreign).
		Int("temp_removed", report.TempRemoved).
		Msg("reconcile sweep finished")

	return report, nil
}
