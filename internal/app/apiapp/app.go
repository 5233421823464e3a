package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Abinayanafaiq/BotDating/internal/config"
)

// App is the bot's HTTP surface: gateway callbacks, health and metrics.
type App struct {
	cfg        config.HTTPConfig
	logger     *zap.Logger
	server     *http.Server
	httpRouter chi.Router
}

func New(cfg config.HTTPConfig, deps Dependencies) (*App, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, deps.Logger)
	RegisterRoutes(r, deps)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     deps.Logger,
		server:     server,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("http server started", zap.String("addr", a.cfg.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
