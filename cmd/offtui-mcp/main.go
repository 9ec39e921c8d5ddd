package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/qyinm/offtui/config"
	"github.com/qyinm/offtui/httpserver"
	"github.com/qyinm/offtui/logging"
	"github.com/qyinm/offtui/mcpsrv"
	"github.com/qyinm/offtui/offapi"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("OFFTUI_CONFIG"))
	if err != nil {
		return err
	}
	logger, restore, err := logging.Init(cfg.Log.Logging())
	if err != nil {
		return err
	}
	defer restore()

	source := offapi.New(cfg.Catalog.ClientConfig(), logger)
	server := mcpsrv.NewServer(source, "dev", &mcpsrv.ServerOptions{
		Browse: cfg.Options(),
		Logger: logger,
	})

	mcpCfg := mcpsrv.FromConfig(cfg.MCP)
	if len(mcpCfg.AllowedOrigins) == 0 {
		logger.Info("no allowed origins configured; browser requests will be rejected")
	}
	if mcpCfg.APIKey == "" {
		logger.Warn("api key not set; /mcp is unauthenticated")
	}

	srv := httpserver.New(mcpCfg.Port, mcpsrv.NewMux(server, mcpCfg))
	logger.Info("offtui-mcp starting",
		zap.String("addr", srv.Addr),
		zap.Bool("stateless", mcpCfg.Stateless),
		zap.Float64("rps", mcpCfg.RPS),
		zap.Int("burst", mcpCfg.Burst))
	return httpserver.Run(ctx, srv, logger)
}
