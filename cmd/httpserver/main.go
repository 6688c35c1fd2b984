package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/spl-token-provisioner/cmd/flags"
	"github.com/ruteri/spl-token-provisioner/httpserver"
	"github.com/urfave/cli/v2"
)

var flagListenAddr = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:8080",
	EnvVars: []string{"LISTEN_ADDR"},
	Usage:   "address to listen on for API",
}

func main() {
	app := &cli.App{
		Name:  "provisioner-server",
		Usage: "Serve the token provisioning API",
		Flags: append(append(append([]cli.Flag{flagListenAddr},
			flags.ProvisionerFlags...), flags.ServerFlags...), flags.LogFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			prov, err := flags.BuildProvisioner(cCtx, logger)
			if err != nil {
				logger.Error("Failed to set up provisioner", "err", err)
				return err
			}

			cfg := flags.ConfigureServer(cCtx, logger, cCtx.String(flagListenAddr.Name))
			server, err := httpserver.New(cfg, httpserver.NewHandler(prov, logger))
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Starting server")
			server.RunInBackground()

			// Wait for termination signal
			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
