package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Brownie44l1/agrivision-api/internal/config"
	"github.com/Brownie44l1/agrivision-api/internal/diagnosis"
	"github.com/Brownie44l1/agrivision-api/internal/locale"
	"github.com/Brownie44l1/agrivision-api/internal/logging"
	"github.com/Brownie44l1/agrivision-api/internal/metrics"
	"github.com/Brownie44l1/agrivision-api/internal/model"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "agrivision",
		Short:        "Plant disease classification API",
		Long:         "Serves a plant disease image classifier over HTTP with localized disease information.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")

	root.AddCommand(newServeCmd(), newPredictCmd())
	return root
}

// app holds the long lived dependencies shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	model    *model.Server
	locales  *locale.Resolver
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	service  *diagnosis.Service
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	root := projectRoot()
	cfg.Model.Path = resolvePath(root, cfg.Model.Path)
	cfg.Model.MetadataPath = resolvePath(root, cfg.Model.MetadataPath)
	cfg.Locale.Dir = resolvePath(root, cfg.Locale.Dir)
	return cfg, nil
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	locales, err := locale.NewResolver(cfg.Locale.Dir, cfg.Locale.DefaultLanguage, cfg.Locale.Extension, logger)
	if err != nil {
		return nil, fmt.Errorf("init locales: %w", err)
	}
	// The default locale is the last fallback; refuse to start without it.
	if _, err := locales.Load(cfg.Locale.DefaultLanguage); err != nil {
		return nil, fmt.Errorf("init locales: %w", err)
	}

	modelServer, err := model.NewServer(model.Options{
		ModelPath:         cfg.Model.Path,
		MetadataPath:      cfg.Model.MetadataPath,
		SharedLibraryPath: cfg.Model.SharedLibraryPath,
		Classes:           cfg.Model.Classes,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init model: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	return &app{
		cfg:      cfg,
		logger:   logger,
		model:    modelServer,
		locales:  locales,
		registry: registry,
		metrics:  m,
		service:  diagnosis.NewService(modelServer, locales, cfg.GetKeyMode(), m, logger),
	}, nil
}

func (a *app) Close() {
	a.model.Close()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.NewLogger(cfg.Logging.Level, cfg.Logging.Development)
}

// projectRoot returns the working directory, stepping out of cmd/server when
// the binary is started from there with go run.
func projectRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	if filepath.Base(wd) == "server" && filepath.Base(filepath.Dir(wd)) == "cmd" {
		return filepath.Join(wd, "../..")
	}
	return wd
}

func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
