package telemetry

import (
	"context"
	"time"

	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PipelineHook opens a span per pipeline step and debug-logs its outcome
func PipelineHook(base *zap.Logger) shared.StepHook {
	return func(ctx context.Context, pipeline, step string) (context.Context, func(error)) {
		start := time.Now()
		ctx, span := StartSpan(ctx, pipeline+"."+step,
			WithAttribute("pipeline", pipeline),
			WithAttribute("pipeline.step", step),
		)
		return ctx, func(err error) {
			defer span.End()
			fields := []zap.Field{
				zap.String("pipeline", pipeline),
				zap.String("step", step),
				zap.Duration("latency", time.Since(start)),
			}
			log := logger.FromContextOr(ctx, base)
			if err != nil {
				RecordError(span, err)
				log.Debug("Pipeline step failed", append(fields,
					zap.String("kind", shared.KindOf(err).String()), zap.Error(err))...)
				return
			}
			log.Debug("Pipeline step done", fields...)
		}
	}
}
