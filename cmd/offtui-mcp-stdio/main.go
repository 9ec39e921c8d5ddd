package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/qyinm/offtui/config"
	"github.com/qyinm/offtui/logging"
	"github.com/qyinm/offtui/mcpsrv"
	"github.com/qyinm/offtui/offapi"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("OFFTUI_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// stdout carries the protocol; logs go to the configured file or stderr.
	logger, restore, err := logging.Init(cfg.Log.Logging())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer restore()

	source := offapi.New(cfg.Catalog.ClientConfig(), logger)
	server := mcpsrv.NewServer(source, "dev", &mcpsrv.ServerOptions{
		Browse: cfg.Options(),
		Logger: logger,
	})

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logger.Error("stdio mcp server failed", zap.Error(err))
		restore()
		os.Exit(1)
	}
}
