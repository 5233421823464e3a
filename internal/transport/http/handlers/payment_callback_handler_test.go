package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	paymentsvc "github.com/Abinayanafaiq/BotDating/internal/services/payments"
	"github.com/Abinayanafaiq/BotDating/internal/transport/http/dto"
)

func TestPaymentCallbackSettlesOrder(t *testing.T) {
	settler := &fakeSettler{result: paymentsvc.CallbackResult{UserID: 42, Activated: true, Settled: true}}
	h := NewPaymentCallbackHandler(settler, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/payments/pakasir/callback",
		strings.NewReader(`{"order_id":"ord-1","amount":20000,"status":"completed","project":"botdating"}`))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	if settler.in.OrderID != "ord-1" || settler.in.Status != "completed" {
		t.Fatalf("unexpected settler input: %+v", settler.in)
	}

	var resp dto.PakasirCallbackResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK || !resp.Activated || !resp.Settled {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPaymentCallbackRequiresToken(t *testing.T) {
	settler := &fakeSettler{}
	h := NewPaymentCallbackHandler(settler, "s3cret", nil)

	req := httptest.NewRequest(http.MethodPost, "/payments/pakasir/callback", strings.NewReader(`{"order_id":"ord-1"}`))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if settler.calls != 0 {
		t.Fatalf("settler must not run without token")
	}

	req = httptest.NewRequest(http.MethodPost, "/payments/pakasir/callback", strings.NewReader(`{"order_ref_id":"ord-1"}`))
	req.Header.Set(CallbackTokenHeader, "s3cret")
	rec = httptest.NewRecorder()
	h.Handle(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
	if settler.in.OrderID != "ord-1" {
		t.Fatalf("order_ref_id must be accepted as reference, got %+v", settler.in)
	}
}

func TestPaymentCallbackMapsErrors(t *testing.T) {
	testCases := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{name: "bad json", body: `{`, status: http.StatusBadRequest},
		{name: "missing reference", body: `{}`, err: paymentsvc.ErrValidation, status: http.StatusBadRequest},
		{name: "unknown order", body: `{"order_id":"x"}`, err: paymentsvc.ErrOrderNotFound, status: http.StatusNotFound},
		{name: "internal", body: `{"order_id":"x"}`, err: errors.New("db down"), status: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewPaymentCallbackHandler(&fakeSettler{err: tc.err}, "", nil)
			rec := httptest.NewRecorder()
			h.Handle(rec, httptest.NewRequest(http.MethodPost, "/payments/pakasir/callback", strings.NewReader(tc.body)))
			if rec.Code != tc.status {
				t.Fatalf("unexpected status: got %d want %d", rec.Code, tc.status)
			}
		})
	}
}

func TestHealthReportsOccupancy(t *testing.T) {
	h := NewHealthHandler(fakeOccupancy{waiting: 3, sessions: 2})
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var resp dto.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Waiting != 3 || resp.Sessions != 2 {
		t.Fatalf("unexpected health response: %+v", resp)
	}
}

type fakeSettler struct {
	result paymentsvc.CallbackResult
	err    error
	in     paymentsvc.CallbackInput
	calls  int
}

func (f *fakeSettler) HandleCallback(_ context.Context, in paymentsvc.CallbackInput) (paymentsvc.CallbackResult, error) {
	f.calls++
	f.in = in
	return f.result, f.err
}

type fakeOccupancy struct {
	waiting, sessions int
}

func (f fakeOccupancy) Occupancy() (int, int) {
	return f.waiting, f.sessions
}
