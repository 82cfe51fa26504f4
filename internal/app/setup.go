// Package app contains the application setup for the till service.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/tillpos/internal/catalog"
	"github.com/abgdnv/tillpos/internal/checkout"
	"github.com/abgdnv/tillpos/internal/config"
	"github.com/abgdnv/tillpos/internal/docstore"
	"github.com/abgdnv/tillpos/internal/ledger"
	"github.com/abgdnv/tillpos/internal/transport/rest"
	pkgconfig "github.com/abgdnv/tillpos/pkg/config"
	"github.com/abgdnv/tillpos/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	Store       docstore.Store
	Catalog     catalog.Catalog
	Ledger      *ledger.Service
	Coordinator checkout.Coordinator
	Logger      *slog.Logger
}

// SetupDependencies opens the document store in the configured data directory and
// builds the catalog, ledger and checkout services on top of it.
func SetupDependencies(cfg pkgconfig.StorageConfig, logger *slog.Logger) (*Dependencies, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	store, err := docstore.NewFileStore(cfg.DataDir, cfg.LockRetry, cfg.LockTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}

	led := ledger.NewService(store, loc, logger)
	return &Dependencies{
		Store:       store,
		Catalog:     catalog.NewService(store, logger),
		Ledger:      led,
		Coordinator: checkout.NewService(led, logger),
		Logger:      logger,
	}, nil
}

// SetupHttpHandler initializes the routes and middleware of the till service.
// metrics is mounted at metricsPath when not nil.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies, metricsPath string, metrics http.Handler) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	if metrics != nil {
		mux.Method(http.MethodGet, metricsPath, metrics)
	}
	return mux
}

// wireRoutes sets up the HTTP routes of the till service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	handler := rest.NewHandler(deps.Catalog, deps.Ledger, deps.Coordinator, deps.Ledger.Location(), deps.Logger)
	handler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures the HTTP server of the till service.
func SetupHttpServer(cfg *config.Config, handler http.Handler) *http.Server {
	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, handler)
}
