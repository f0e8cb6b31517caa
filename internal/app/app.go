package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vk/factorgrid/internal/catalog"
	"github.com/vk/factorgrid/internal/ctxlog"
	"github.com/vk/factorgrid/internal/fsutil"
	"github.com/vk/factorgrid/internal/hcl"
	"github.com/vk/factorgrid/internal/metrics"
	"github.com/vk/factorgrid/internal/registry"
	"github.com/vk/factorgrid/internal/yamlcfg"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	logCloser  io.Closer
	config     *Config
	catalog    *catalog.Catalog
	registry   *registry.Registry
	promReg    *prometheus.Registry
	metrics    *metrics.Metrics
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Command output goes to
// outW and logs to logW. It loads and validates the catalog, declares its
// functions and registers the Go modules (coreModules when none are given).
func NewApp(outW, logW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	w, closer := logWriter(cfg.LogFile, logW)
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, w)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	app := &App{
		ctx:       ctx,
		outW:      outW,
		logger:    logger,
		logCloser: closer,
		config:    cfg,
	}

	cat, err := loadCatalog(ctx, cfg.CatalogPaths)
	if err != nil {
		app.closeLog()
		return nil, err
	}
	app.catalog = cat
	logger.Debug("Catalog loaded and validated.", "factors", cat.Len())

	reg := registry.New()
	if err := reg.PopulateDefinitions(cat); err != nil {
		app.closeLog()
		return nil, fmt.Errorf("failed to declare functions: %w", err)
	}
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	app.registry = reg
	logger.Debug("All Go modules registered.", "count", len(modules))

	app.promReg = prometheus.NewRegistry()
	app.promReg.MustRegister(collectors.NewGoCollector())
	app.metrics = metrics.New(metrics.DefaultNamespace, app.promReg)

	app.healthCheckServer()
	return app, nil
}

// fileParser appends the definitions of one catalog file to a catalog.
type fileParser interface {
	ParseFile(ctx context.Context, cat *catalog.Catalog, filename string, src []byte) error
}

// loadCatalog reads every supported file under paths in lexical order, each
// with the parser for its extension, into one validated catalog.
func loadCatalog(ctx context.Context, paths []string) (*catalog.Catalog, error) {
	parsers := make(map[string]fileParser)
	var extensions []string
	for _, entry := range []struct {
		parser     fileParser
		extensions []string
	}{
		{hcl.NewLoader(), hcl.Extensions},
		{yamlcfg.NewLoader(), yamlcfg.Extensions},
	} {
		for _, ext := range entry.extensions {
			parsers[ext] = entry.parser
			extensions = append(extensions, ext)
		}
	}

	files, err := fsutil.CollectFiles(paths, extensions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Discovered catalog files.", "count", len(files))

	cat := catalog.New()
	for _, file := range files {
		parser, ok := parsers[filepath.Ext(file)]
		if !ok {
			return nil, fmt.Errorf("failed to load catalog: no parser for %s", file)
		}
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: failed to read %s: %w", file, err)
		}
		if err := parser.ParseFile(ctx, cat, file, src); err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
	}
	if cat.Len() == 0 && len(cat.Indicators()) == 0 {
		return nil, fmt.Errorf("no catalog definitions found in %v", paths)
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return cat, nil
}

// Catalog returns the loaded catalog. This is primarily for testing.
func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Gatherer exposes the application's metrics registry.
func (a *App) Gatherer() prometheus.Gatherer {
	return a.promReg
}

// Close stops the health check server and flushes the log file.
func (a *App) Close() error {
	err := a.closeHealthCheckServer()
	return errors.Join(err, a.closeLog())
}

func (a *App) closeLog() error {
	if a.logCloser == nil {
		return nil
	}
	return a.logCloser.Close()
}
