package obs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "req_id"
	CycleIDKey   ctxKey = "cycle_id"
)

// WithCycleID tags ctx with the id of the assignment cycle it belongs to.
func WithCycleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CycleIDKey, id)
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Time logs the duration of an operation. Use as
//
//	defer obs.Time(ctx, log, "op")(&err)
func Time(ctx context.Context, log *zap.Logger, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)
	cycleID, _ := ctx.Value(CycleIDKey).(string)

	return func(errp *error) {
		fields := []zap.Field{
			zap.String("op", name),
			zap.Duration("dur", time.Since(start)),
		}
		if reqID != "" {
			fields = append(fields, zap.String("req_id", reqID))
		}
		if cycleID != "" {
			fields = append(fields, zap.String("cycle_id", cycleID))
		}

		if errp != nil && *errp != nil {
			log.Debug("op failed", append(fields, zap.Error(*errp))...)
			return
		}
		log.Debug("op done", fields...)
	}
}
