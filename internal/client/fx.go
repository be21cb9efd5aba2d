package client

import (
	"github.com/agencyops/fakturo/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.directory",
	fx.Provide(service.NewService),
)
