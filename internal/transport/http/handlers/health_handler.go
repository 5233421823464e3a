package handlers

import (
	"net/http"

	"github.com/Abinayanafaiq/BotDating/internal/transport/http/dto"
	httperrors "github.com/Abinayanafaiq/BotDating/internal/transport/http/errors"
)

type Occupancy interface {
	Occupancy() (waiting, sessions int)
}

type HealthHandler struct {
	occupancy Occupancy
}

func NewHealthHandler(occupancy Occupancy) *HealthHandler {
	return &HealthHandler{occupancy: occupancy}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, _ *http.Request) {
	resp := dto.HealthResponse{Status: "ok"}
	if h.occupancy != nil {
		resp.Waiting, resp.Sessions = h.occupancy.Occupancy()
	}
	httperrors.Write(w, http.StatusOK, resp)
}
