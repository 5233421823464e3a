package dto

// PakasirCallbackRequest is the gateway's order notification. Only the order
// reference is acted on; the rest is logged.
type PakasirCallbackRequest struct {
	OrderID       string `json:"order_id"`
	OrderRefID    string `json:"order_ref_id"`
	Amount        int    `json:"amount"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	CompletedAt   string `json:"completed_at"`
	Project       string `json:"project"`
}

func (r PakasirCallbackRequest) Reference() string {
	if r.OrderRefID != "" {
		return r.OrderRefID
	}
	return r.OrderID
}

type PakasirCallbackResponse struct {
	OK        bool `json:"ok"`
	Activated bool `json:"activated"`
	Settled   bool `json:"settled"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Waiting  int    `json:"waiting"`
	Sessions int    `json:"sessions"`
}
