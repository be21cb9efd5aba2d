package invoice

import (
	"github.com/agencyops/fakturo/internal/invoice/assembler"
	"github.com/agencyops/fakturo/internal/invoice/render"
	"github.com/agencyops/fakturo/internal/invoice/workspace"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice",
	fx.Provide(assembler.NewAssembler),
	fx.Provide(render.NewRenderer),
	fx.Provide(workspace.New),
)
