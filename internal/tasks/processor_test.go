package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"artforge/internal/service"
)

type stubSweeper struct {
	calls int
	err   error
}

func (s *stubSweeper) Sweep(context.Context) (service.ReconcileReport, error) {
	s.calls++
	return service.ReconcileReport{OrphansDeleted: []string{"a.png"}}, s.err
}

type stubPruner struct {
	calls int
}

func (s *stubPruner) DeleteExpired(context.Context) (int64, error) {
	s.calls++
	return 2, nil
}

func TestProcessorDispatch(t *testing.T) {
	sweeper := &stubSweeper{}
	pruner := &stubPruner{}
	p := NewProcessor(sweeper, pruner, zerolog.Nop())
	ctx := context.Background()

	if err := p.Handle(ctx, redis.XMessage{ID: "1-0", Values: map[string]interface{}{"type": TypeReconcile}}); err != nil {
		t.Fatalf("reconcile Handle() error = %v", err)
	}
	if err := p.Handle(ctx, redis.XMessage{ID: "2-0", Values: map[string]interface{}{"type": TypeSessionPrune}}); err != nil {
		t.Fatalf("prune Handle() error = %v", err)
	}
	if err := p.Handle(ctx, redis.XMessage{ID: "3-0", Values: map[string]interface{}{"type": "thumbnail"}}); err != nil {
		t.Fatalf("unknown type should be acked, got %v", err)
	}

	if sweeper.calls != 1 || pruner.calls != 1 {
		t.Errorf("calls: sweep=%d prune=%d", sweeper.calls, pruner.calls)
	}
}

func TestProcessorPropagatesSweepError(t *testing.T) {
	boom := errors.New("listing failed")
	p := NewProcessor(&stubSweeper{err: boom}, &stubPruner{}, zerolog.Nop())

	err := p.Handle(context.Background(), redis.XMessage{ID: "1-0", Values: map[string]interface{}{"type": TypeReconcile}})
	if !errors.Is(err, boom) {
		t.Fatalf("Handle() error = %v, want %v", err, boom)
	}
}
