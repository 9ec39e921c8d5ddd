package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/qyinm/offtui/config"
	"github.com/qyinm/offtui/httpserver"
	"github.com/qyinm/offtui/logging"
	"github.com/qyinm/offtui/offapi"
	"github.com/qyinm/offtui/ui"
	"github.com/qyinm/offtui/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "offtui",
	Short: "Browse the Open Food Facts product catalog",
	Long: `offtui browses the Open Food Facts catalog: search products, narrow
by category, sort the current page by name or nutrition grade and open
a product for its ingredients and nutrition table.

Run without arguments to start the terminal interface.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the catalog browser over HTTP",
	RunE:  runWeb,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./offtui.yaml or $HOME/.config/offtui/offtui.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.AddCommand(webCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSettings reads the config and applies flag overrides.
func loadSettings() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		if _, err := logging.ParseLevel(logLevel); err != nil {
			return nil, err
		}
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// tuiLogConfig keeps log output off the terminal bubbletea draws on.
func tuiLogConfig(cfg config.LogConfig) logging.Config {
	lc := cfg.Logging()
	if lc.File == "" {
		lc.File = filepath.Join(os.TempDir(), "offtui.log")
	}
	return lc
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	logger, restore, err := logging.Init(tuiLogConfig(cfg.Log))
	if err != nil {
		return err
	}
	defer restore()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	client := offapi.New(cfg.Catalog.ClientConfig(), logger)
	p := tea.NewProgram(ui.NewModel(ctx, client, cfg.Options(), logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func runWeb(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	logger, restore, err := logging.Init(cfg.Log.Logging())
	if err != nil {
		return err
	}
	defer restore()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := offapi.New(cfg.Catalog.ClientConfig(), logger)
	handler := web.NewHandler(client, cfg.Options(), logger)
	srv := httpserver.New(cfg.Web.Port, web.SetupRouter(cfg.Web, handler, logger))

	logger.Info("offtui web starting",
		zap.String("addr", srv.Addr),
		zap.String("environment", cfg.Web.Environment))
	return httpserver.Run(ctx, srv, logger)
}
