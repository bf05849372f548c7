package rest

import "go.uber.org/fx"

var Module = fx.Module("delivery-rest",
	fx.Provide(
		NewRESTHandler,
		NewRouter,
	),
)
