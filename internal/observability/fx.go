package observability

import (
	"github.com/agencyops/fakturo/internal/observability/logger"
	"github.com/agencyops/fakturo/internal/observability/metrics"
	"go.uber.org/fx"
)

// Module wires logging and metrics.
var Module = fx.Module("observability",
	logger.Module,
	fx.Provide(metrics.Billing),
)
