package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	paymentsvc "github.com/Abinayanafaiq/BotDating/internal/services/payments"
	"github.com/Abinayanafaiq/BotDating/internal/transport/http/dto"
	httperrors "github.com/Abinayanafaiq/BotDating/internal/transport/http/errors"
)

const CallbackTokenHeader = "X-Callback-Token"

type CallbackSettler interface {
	HandleCallback(ctx context.Context, in paymentsvc.CallbackInput) (paymentsvc.CallbackResult, error)
}

type PaymentCallbackHandler struct {
	settler CallbackSettler
	token   string
	logger  *zap.Logger
}

// NewPaymentCallbackHandler checks the shared token header only when token
// is non-empty.
func NewPaymentCallbackHandler(settler CallbackSettler, token string, logger *zap.Logger) *PaymentCallbackHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentCallbackHandler{
		settler: settler,
		token:   strings.TrimSpace(token),
		logger:  logger,
	}
}

func (h *PaymentCallbackHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.settler == nil {
		writeInternal(w, "PAYMENTS_UNAVAILABLE", "payment settlement is unavailable")
		return
	}
	if h.token != "" {
		got := r.Header.Get(CallbackTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
			writeUnauthorized(w, "UNAUTHORIZED", "invalid callback token")
			return
		}
	}

	var req dto.PakasirCallbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.settler.HandleCallback(r.Context(), paymentsvc.CallbackInput{
		OrderID: req.Reference(),
		Status:  req.Status,
		Amount:  req.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "order reference is required")
		case errors.Is(err, paymentsvc.ErrOrderNotFound):
			writeNotFound(w, "ORDER_NOT_FOUND", "order is not pending")
		default:
			h.logger.Error("payment callback failed", zap.String("order_id", req.Reference()), zap.Error(err))
			writeInternal(w, "INTERNAL_ERROR", "failed to settle order")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PakasirCallbackResponse{
		OK:        true,
		Activated: result.Activated,
		Settled:   result.Settled,
	})
}
