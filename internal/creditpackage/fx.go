package creditpackage

import (
	"github.com/agencyops/fakturo/internal/creditpackage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("creditpackage.summaries",
	fx.Provide(service.NewService),
)
