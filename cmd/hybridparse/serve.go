package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/gardar/hybridparse/internal/server"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address; defaults to server.host:server.port",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := load(c)
			if err != nil {
				return err
			}

			provider, err := cfg.NewProvider(logger)
			if err != nil {
				return err
			}
			proc, st, err := cfg.Open(logger, provider, true)
			if err != nil {
				return err
			}
			defer st.Close()

			addr := c.String("addr")
			if addr == "" {
				addr = cfg.Addr()
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(proc, server.Options{
				Logger:      logger,
				MaxFileSize: cfg.Upload.MaxFileSize,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}
}
