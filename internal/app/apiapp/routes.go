package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Abinayanafaiq/BotDating/internal/transport/http/handlers"
)

type Dependencies struct {
	Settler       handlers.CallbackSettler
	Occupancy     handlers.Occupancy
	Metrics       http.Handler
	CallbackToken string
	Logger        *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.Occupancy)
	callbackHandler := handlers.NewPaymentCallbackHandler(deps.Settler, deps.CallbackToken, deps.Logger)

	r.Get("/healthz", healthHandler.Handle)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	r.Post("/payments/pakasir/callback", callbackHandler.Handle)
}
