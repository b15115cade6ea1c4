package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// queryTracer logs every statement at debug level.
type queryTracer struct {
	log *zap.Logger
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	t.log.Debug("running query", zap.String("sql", data.SQL), zap.Any("args", data.Args))
	return ctx
}

func (t *queryTracer) TraceQueryEnd(_ context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	if data.Err != nil {
		t.log.Debug("query failed", zap.Error(data.Err))
	}
}
