package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/dependents/pkg/domain"
)

// LogHooks returns lifecycle hooks writing one record per event to logger.
// Enter, leave and cache hits are logged at debug level, errors at warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	debug := func(ctx context.Context, e *domain.NodeEvent) {
		logger.DebugContext(ctx, string(e.Type),
			"run_id", e.RunID,
			"node", e.Key,
			"depth", e.Depth,
			"duration", e.Duration,
		)
	}
	return domain.LifecycleHooks{
		OnNodeEnter: debug,
		OnNodeLeave: debug,
		OnCacheHit:  debug,
		OnNodeError: func(ctx context.Context, e *domain.NodeEvent) {
			logger.WarnContext(ctx, string(e.Type),
				"run_id", e.RunID,
				"node", e.Key,
				"depth", e.Depth,
				"error", e.Err,
			)
		},
	}
}
