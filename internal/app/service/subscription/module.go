package subscription

import "go.uber.org/fx"

// Module exposes the subscription service via Fx. It needs a GenerationCounter in the graph.
var Module = fx.Options(
	fx.Provide(NewService),
)
