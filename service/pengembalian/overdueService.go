package pengembalian

import (
	"context"
	"time"
)

type OverdueRepo interface {
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

type Scanner interface {
	ScanOverdue(ctx context.Context) (int64, error)
}

type scanner struct {
	r OverdueRepo
}

func NewScanner(r OverdueRepo) Scanner { return &scanner{r: r} }

func (s *scanner) ScanOverdue(ctx context.Context) (int64, error) {
	return s.r.MarkOverdue(ctx, time.Now().UTC())
}
