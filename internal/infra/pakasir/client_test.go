package pakasir

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateOrderSendsPayloadAndParsesURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/botdating/orders" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected Authorization: %q", got)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["order_ref_id"] != "ord-1" || payload["price"] != float64(20000) {
			t.Errorf("unexpected payload: %v", payload)
		}
		_, _ = w.Write([]byte(`{"data":{"order_ref_id":"ord-1","qris_url":"https://pay.example/ord-1"}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "botdating", "secret", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	order, err := client.CreateOrder(context.Background(), OrderRequest{OrderID: "ord-1", Amount: 20000, Description: "PRO"})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != "ord-1" || order.PaymentURL != "https://pay.example/ord-1" {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestCreateOrderRejectsMalformedResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "botdating", "secret", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.CreateOrder(context.Background(), OrderRequest{OrderID: "ord-1", Amount: 100})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestCheckStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body string
		want string
	}{
		{name: "paid", body: `{"data":{"status":"PAID"}}`, want: "PAID"},
		{name: "pending", body: `{"data":{"status":" pending "}}`, want: "pending"},
		{name: "missing data", body: `{}`, want: ""},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/v1/botdating/orders/ord-9" {
					t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				}
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client, err := NewClient(server.URL, "botdating", "secret", time.Second)
			if err != nil {
				t.Fatalf("new client: %v", err)
			}
			got, err := client.CheckStatus(context.Background(), "ord-9")
			if err != nil {
				t.Fatalf("check status: %v", err)
			}
			if got != tc.want {
				t.Fatalf("unexpected status: got %q want %q", got, tc.want)
			}
		})
	}
}

func TestClientClassifiesHTTPStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		status    int
		temporary bool
	}{
		{name: "server error", status: http.StatusBadGateway, temporary: true},
		{name: "throttled", status: http.StatusTooManyRequests, temporary: true},
		{name: "unauthorized", status: http.StatusUnauthorized, temporary: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			client, err := NewClient(server.URL, "botdating", "secret", time.Second)
			if err != nil {
				t.Fatalf("new client: %v", err)
			}

			_, err = client.CheckStatus(context.Background(), "ord-1")
			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected RequestError, got %T", err)
			}
			if reqErr.StatusCode != tc.status {
				t.Fatalf("unexpected status code: %d", reqErr.StatusCode)
			}
			if IsTemporary(err) != tc.temporary {
				t.Fatalf("unexpected temporary classification: %v", IsTemporary(err))
			}
		})
	}
}

func TestClientTimeoutIsTemporary(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "botdating", "secret", 20*time.Millisecond)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.CheckStatus(context.Background(), "ord-1")
	if err == nil || !IsTemporary(err) {
		t.Fatalf("expected temporary timeout error, got %v", err)
	}
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("", "slug", "key", time.Second); err == nil {
		t.Fatalf("expected error for empty base url")
	}
	if _, err := NewClient("not a url", "slug", "key", time.Second); err == nil {
		t.Fatalf("expected error for url without scheme")
	}
}
