package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"artforge/internal/service"
)

const (
	TypeReconcile    = "reconcile"
	TypeSessionPrune = "session_prune"
)

type sweeper interface {
	Sweep(ctx context.Context) (service.ReconcileReport, error)
}

type sessionPruner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type Processor struct {
	reconciler sweeper
	sessions   sessionPruner
	logger     zerolog.Logger
}

type TaskPayload struct {
	Type        string `json:"type"`
	RequestedAt string `json:"requestedAt"`
}

func NewProcessor(reconciler sweeper, sessions sessionPruner, logger zerolog.Logger) *Processor {
	return &Processor{
		reconciler: reconciler,
		sessions:   sessions,
		logger:     logger,
	}
}

// Handle dispatches one stream message. Unknown task types are logged and
// acknowledged so they do not block the group.
func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case TypeReconcile:
		return p.handleReconcile(ctx, msg.ID)
	case TypeSessionPrune:
		return p.handleSessionPrune(ctx, msg.ID)
	default:
		p.logger.Warn().Str("type", payload.Type).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

func (p *Processor) handleReconcile(ctx context.Context, messageID string) error {
	start := time.Now()
	report, err := p.reconciler.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	p.logger.Info().
		Str("message_id", messageID).
		Int("orphans_deleted", len(report.OrphansDeleted)).
		Int("missing_artifacts", len(report.MissingArtifact)).
		Dur("elapsed", time.Since(start)).
		Msg("reconcile task done")
	return nil
}

func (p *Processor) handleSessionPrune(ctx context.Context, messageID string) error {
	removed, err := p.sessions.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("prune sessions: %w", err)
	}
	p.logger.Info().Str("message_id", messageID).Int64("removed", removed).Msg("expired sessions pruned")
	return nil
}
