package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/Abinayanafaiq/BotDating/internal/app/botapp"
	"github.com/Abinayanafaiq/BotDating/internal/config"
)

func TestBotHTTPSurface(t *testing.T) {
	redisServer := miniredis.RunT(t)

	cfg := config.Default()
	cfg.HTTP.Addr = ":0"
	cfg.Storage.Driver = config.StorageMemory
	cfg.Redis.Addr = redisServer.Addr()
	cfg.Payment.Slug = "botdating"

	app, err := botapp.New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}
	var health struct {
		Status   string `json:"status"`
		Waiting  int    `json:"waiting"`
		Sessions int    `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if health.Status != "ok" || health.Waiting != 0 || health.Sessions != 0 {
		t.Fatalf("unexpected payload: %+v", health)
	}

	callback, err := http.Post(ts.URL+"/payments/pakasir/callback", "application/json",
		strings.NewReader(`{"order_id":"never-created","status":"completed"}`))
	if err != nil {
		t.Fatalf("post callback: %v", err)
	}
	defer callback.Body.Close()
	if callback.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown order should be 404, got %d", callback.StatusCode)
	}

	metricsResp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer metricsResp.Body.Close()
	body, _ := io.ReadAll(metricsResp.Body)
	if !strings.Contains(string(body), "botdating_waiting_users") {
		t.Fatalf("metrics output missing waiting gauge")
	}
}
