package issuance

import (
	"github.com/agencyops/fakturo/internal/issuance/provider"
	"github.com/agencyops/fakturo/internal/issuance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("issuance",
	fx.Provide(provider.NewSimulated),
	fx.Provide(service.NewService),
)
