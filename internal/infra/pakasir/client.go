package pakasir

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Abinayanafaiq/BotDating/internal/infra/httpclient"
)

var ErrMalformedResponse = errors.New("malformed gateway response")

// Client talks to the Pakasir QRIS order API.
type Client struct {
	baseURL    string
	slug       string
	apiKey     string
	httpClient *http.Client
}

type RequestError struct {
	Op         string
	StatusCode int
	Temporary  bool
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func IsTemporary(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Temporary
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

type OrderRequest struct {
	OrderID     string
	Amount      int
	Description string
	CallbackURL string
}

type Order struct {
	ID         string
	PaymentURL string
	QRString   string
}

type createOrderPayload struct {
	OrderRefID  string `json:"order_ref_id"`
	Price       int    `json:"price"`
	Description string `json:"description"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type orderEnvelope struct {
	Data *struct {
		OrderRefID string `json:"order_ref_id"`
		QRISURL    string `json:"qris_url"`
		QRString   string `json:"qr_string"`
		Status     string `json:"status"`
	} `json:"data"`
}

func NewClient(baseURL, slug, apiKey string, timeout time.Duration) (*Client, error) {
	trimmedBaseURL := strings.TrimSpace(baseURL)
	trimmedSlug := strings.TrimSpace(slug)
	if trimmedBaseURL == "" || trimmedSlug == "" {
		return nil, &RequestError{
			Op:  "create pakasir client",
			Err: errors.New("gateway base url or slug is empty"),
		}
	}

	parsed, err := url.Parse(trimmedBaseURL)
	if err != nil {
		return nil, &RequestError{Op: "parse gateway url", Err: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &RequestError{
			Op:  "validate gateway url",
			Err: fmt.Errorf("invalid gateway url: %s", trimmedBaseURL),
		}
	}

	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(trimmedBaseURL, "/"),
		slug:       trimmedSlug,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: httpclient.New(timeout),
	}, nil
}

// CreateOrder registers an order and returns its payment instructions. A
// response without a payment URL or QR payload is treated as a failure.
func (c *Client) CreateOrder(ctx context.Context, in OrderRequest) (Order, error) {
	if strings.TrimSpace(in.OrderID) == "" || in.Amount <= 0 {
		return Order{}, &RequestError{Op: "create order", Err: errors.New("order id and positive amount are required")}
	}

	payload, err := json.Marshal(createOrderPayload{
		OrderRefID:  in.OrderID,
		Price:       in.Amount,
		Description: in.Description,
		CallbackURL: in.CallbackURL,
	})
	if err != nil {
		return Order{}, &RequestError{Op: "marshal create order", Err: err}
	}

	statusCode, body, err := c.do(ctx, http.MethodPost, "/v1/"+url.PathEscape(c.slug)+"/orders", payload)
	if err != nil {
		return Order{}, err
	}

	var envelope orderEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Order{}, &RequestError{Op: "decode create order response", StatusCode: statusCode, Err: err}
	}
	if envelope.Data == nil || (envelope.Data.QRISURL == "" && envelope.Data.QRString == "") {
		return Order{}, &RequestError{Op: "decode create order response", StatusCode: statusCode, Err: ErrMalformedResponse}
	}

	id := envelope.Data.OrderRefID
	if id == "" {
		id = in.OrderID
	}
	return Order{
		ID:         id,
		PaymentURL: envelope.Data.QRISURL,
		QRString:   envelope.Data.QRString,
	}, nil
}

// CheckStatus returns the raw gateway status for an order. An absent status
// is returned as an empty string.
func (c *Client) CheckStatus(ctx context.Context, orderID string) (string, error) {
	if strings.TrimSpace(orderID) == "" {
		return "", &RequestError{Op: "check order status", Err: errors.New("order id is empty")}
	}

	path := "/v1/" + url.PathEscape(c.slug) + "/orders/" + url.PathEscape(orderID)
	statusCode, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}

	var envelope orderEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", &RequestError{Op: "decode order status response", StatusCode: statusCode, Err: err}
	}
	if envelope.Data == nil {
		return "", nil
	}
	return strings.TrimSpace(envelope.Data.Status), nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	if c == nil || c.httpClient == nil {
		return 0, nil, &RequestError{Op: "do request", Err: errors.New("pakasir client is not initialized")}
	}

	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, nil, &RequestError{Op: "create http request", Err: err}
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &RequestError{
			Op:        "execute http request",
			Temporary: isTemporaryNetworkError(err),
			Err:       err,
		}
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if readErr != nil {
		return resp.StatusCode, nil, &RequestError{Op: "read http response", StatusCode: resp.StatusCode, Err: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(respBody))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, respBody, &RequestError{
			Op:         "unexpected http status",
			StatusCode: resp.StatusCode,
			Temporary:  resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
			Err:        errors.New(msg),
		}
	}

	return resp.StatusCode, respBody, nil
}

func isTemporaryNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
