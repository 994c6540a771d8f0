package domain

// CheckoutItem references a product in a checkout submission.
type CheckoutItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest is the body submitted to the commerce API's checkout
// endpoint. Built fresh per attempt from valid line items only; never
// persisted.
type CheckoutRequest struct {
	Items           []CheckoutItem `json:"items"`
	ShippingAddress string         `json:"shipping_address"`
	Email           string         `json:"email"`
}

// CheckoutResponse is the commerce API's successful checkout body.
type CheckoutResponse struct {
	OrderID string  `json:"order_id"`
	Total   float64 `json:"total"`
	Status  string  `json:"status"`
	Message string  `json:"message"`
}
