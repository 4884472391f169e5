package mining

import "go.uber.org/fx"

var Module = fx.Module("mining.service",
	fx.Provide(NewService),
)
