package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/webitel/live-relay-service/config"
)

const (
	ServiceName      = "live-relay-service"
	ServiceNamespace = "webitel"
)

var (
	version        = "0.0.0"
	commit         = "hash"
	commitDate     = time.Now().String()
	branch         = "branch"
	buildTimestamp = ""
)

func Run() error {
	app := &cli.App{
		Name:    ServiceName,
		Usage:   "Relay a live stream's comments and gifts to many subscribers",
		Version: version,
		Commands: []*cli.Command{
			serverCmd(),
			monitorCmd(),
		},
	}

	return app.Run(os.Args)
}

func serverCmd() *cli.Command {
	return &cli.Command{
		Name:      "server",
		Aliases:   []string{"s"},
		Usage:     "Run the relay (HTTP, WebSocket and optional gRPC)",
		ArgsUsage: "[-- --live.username=NAME --http.addr=:8000 ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config_file",
				Usage:   "Path to the configuration file",
				EnvVars: []string{config.EnvPrefix + "_CONFIG_FILE"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config_file"), c.Args().Slice())
			if err != nil {
				return err
			}
			app := NewApp(cfg)

			startCtx, cancel := context.WithTimeout(c.Context, app.StartTimeout())
			defer cancel()
			if err := app.Start(startCtx); err != nil {
				return err
			}

			slog.Info("SERVICE_STARTED",
				"service", ServiceName,
				"version", version,
				"commit", commit,
				"commit_date", commitDate,
				"branch", branch,
				"build", buildTimestamp,
			)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			slog.Info("Shutting down...")
			stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
			defer cancelStop()
			return app.Stop(stopCtx)
		},
	}
}
