package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"artforge/internal/config"
	"artforge/internal/tasks"
)

// Scheduler enqueues periodic maintenance tasks onto the worker stream.
type Scheduler struct {
	cron  *cron.Cron
	queue *redis.Client
	cfg   config.WorkerConfig
	log   zerolog.Logger
}

func NewScheduler(queue *redis.Client, cfg config.WorkerConfig, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		queue: queue,
		cfg:   cfg,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.ReconcileCron, func() { s.enqueueLogged(tasks.TypeReconcile) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.SessionPruneCron, func() { s.enqueueLogged(tasks.TypeSessionPrune) }); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().
		Str("reconcile", s.cfg.ReconcileCron).
		Str("session_prune", s.cfg.SessionPruneCron).
		Msg("maintenance scheduler started")
	return nil
}

// Stop halts the cron loop. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) enqueueLogged(taskType string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Enqueue(ctx, taskType); err != nil {
		s.log.Error().Err(err).Str("type", taskType).Msg("enqueue task failed")
	}
}

// Enqueue appends one task of the given type to the worker stream.
func (s *Scheduler) Enqueue(ctx context.Context, taskType string) error {
	if s.queue == nil {
		return nil
	}
	return s.queue.XAdd(ctx, &redis.XAddArgs{
		Stream: s.cfg.Stream,
		Values: map[string]any{
			"type":        taskType,
			"requestedAt": time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
}
