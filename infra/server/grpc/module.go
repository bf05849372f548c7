package grpc

import (
	"context"

	"github.com/webitel/live-relay-service/config"
	"go.uber.org/fx"
)

var Module = fx.Module("grpc-server",
	fx.Provide(NewServer),
	fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, s *Server) {
		if !cfg.GRPC.Enabled {
			return
		}
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error { return s.Start() },
			OnStop:  s.Stop,
		})
	}),
)
