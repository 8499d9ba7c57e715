package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Vodeneev/keirin-odds/internal/pkg/server"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service (GET /odds?venue=&race=)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(parent context.Context, configPath string) error {
	cfg, log, err := loadConfig(configPath, os.Stdout)
	if err != nil {
		return err
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	addr, err := server.AddrFor(cfg.Server.Port)
	if err != nil {
		return err
	}

	svc, b, err := startService(cfg, log)
	if err != nil {
		return err
	}
	defer closeBrowser(b, log)

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	setupSignalHandler(ctx, cancel, log)

	err = server.Run(ctx, addr, server.NewRouter(svc, log),
		cfg.Server.ReadHeaderTimeout, cfg.Server.ShutdownTimeout, log)

	svc.Tracker().PrintSummary(log)
	return err
}
