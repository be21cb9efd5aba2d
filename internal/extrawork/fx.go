package extrawork

import (
	"github.com/agencyops/fakturo/internal/extrawork/service"
	"go.uber.org/fx"
)

var Module = fx.Module("extrawork.queue",
	fx.Provide(service.NewService),
)
