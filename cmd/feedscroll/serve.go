package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/feedscroll/pkg/config"
	"github.com/Sternrassler/feedscroll/pkg/logging"
	"github.com/Sternrassler/feedscroll/pkg/metrics"
	"github.com/Sternrassler/feedscroll/pkg/provider"
	"github.com/gin-gonic/gin"
)

// ServeCmd runs the mock provider.
type ServeCmd struct {
	Port    int           `help:"Listen port (overrides server.port)."`
	Latency time.Duration `help:"Artificial response latency (overrides server.latency)." default:"-1ns"`
	Pages   int           `help:"Number of pages (overrides server.pages)." default:"-1"`
	PerPage int           `help:"Posts per page (overrides server.per_page)." name:"per-page"`
}

// apply merges flag overrides into the server section.
func (s *ServeCmd) apply(cfg *config.Config) {
	if s.Port > 0 {
		cfg.Server.Port = s.Port
	}
	if s.Latency >= 0 {
		cfg.Server.Latency = s.Latency
	}
	if s.Pages >= 0 {
		cfg.Server.Pages = s.Pages
	}
	if s.PerPage > 0 {
		cfg.Server.PerPage = s.PerPage
	}
}

// Run starts the server and blocks until SIGINT or SIGTERM.
func (s *ServeCmd) Run(cfg *config.Config) error {
	s.apply(cfg)
	logger := logging.NewLogger("feedscroll-serve")

	srv, err := newServer(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Int("pages", cfg.Server.Pages).
			Int("per_page", cfg.Server.PerPage).
			Dur("latency", cfg.Server.Latency).
			Msg("Feed provider listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server failed")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info().Msg("Shutting down")
	return srv.Shutdown(shutdownCtx)
}

// newServer wires the provider routes and the metrics endpoint.
func newServer(cfg *config.Config) (*http.Server, error) {
	p, err := provider.New(provider.Config{
		Pages:    cfg.Server.Pages,
		PerPage:  cfg.Server.PerPage,
		Latency:  cfg.Server.Latency,
		Seed:     cfg.Server.Seed,
		CacheTTL: cfg.Server.CacheTTL,
		Mode:     cfg.Server.Mode,
	})
	if err != nil {
		return nil, err
	}

	router := p.Router()
	router.GET(metrics.Path, gin.WrapH(metrics.Handler()))

	return &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}
