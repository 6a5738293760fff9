package obs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID stores the request id for downstream timing logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time logs how long an operation took once the returned func is deferred.
//
//	defer obs.Time(ctx, "ors.Optimize")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	reqID := RequestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Warn().
				Str("req_id", reqID).
				Str("op", name).
				Int64("dur_ms", dur.Milliseconds()).
				Err(*errp).
				Msg("operation failed")
			return
		}
		log.Debug().
			Str("req_id", reqID).
			Str("op", name).
			Int64("dur_ms", dur.Milliseconds()).
			Msg("operation done")
	}
}
