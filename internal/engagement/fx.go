package engagement

import (
	"github.com/agencyops/fakturo/internal/engagement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("engagement.store",
	fx.Provide(service.NewService),
)
