package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/unkn0wn-root/bookcache"
)

// queryHook logs failed and slow queries through the catalog Logger.
type queryHook struct {
	log  bookcache.Logger
	slow time.Duration
}

var _ bun.QueryHook = (*queryHook)(nil)

func (h *queryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryHook) AfterQuery(_ context.Context, ev *bun.QueryEvent) {
	took := time.Since(ev.StartTime)
	switch {
	case ev.Err != nil && !errors.Is(ev.Err, sql.ErrNoRows):
		h.log.Warn("query failed", bookcache.Fields{
			"op":    ev.Operation(),
			"query": ev.Query,
			"took":  took,
			"err":   ev.Err,
		})
	case h.slow > 0 && took >= h.slow:
		h.log.Info("slow query", bookcache.Fields{
			"op":    ev.Operation(),
			"query": ev.Query,
			"took":  took,
		})
	}
}
