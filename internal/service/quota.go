package service

import (
	"context"
	"fmt"
)

type imageCounter interface {
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

// QuotaGate caps the number of stored images per owner. The check does not reserve
// a slot, so concurrent generations by one owner can overshoot the limit.
type QuotaGate struct {
	images imageCounter
	max    int
}

func NewQuotaGate(images imageCounter, max int) *QuotaGate {
	return &QuotaGate{images: images, max: max}
}

func (q *QuotaGate) Limit() int {
	return q.max
}

func (q *QuotaGate) Check(ctx context.Context, ownerID string) error {
	count, err := q.images.CountByOwner(ctx, ownerID)
	if err != nil {
		return newError(KindInternal, "count images", err)
	}
	if count >= q.max {
		return newError(KindQuotaExceeded, fmt.Sprintf("limit of %d images reached", q.max), nil)
	}
	return nil
}
