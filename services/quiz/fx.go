package quiz

import "go.uber.org/fx"

var Module = fx.Module("quiz.service",
	fx.Provide(NewService),
)
