package domain

// Product is a catalog record as served by the commerce API.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Stock    int     `json:"stock"`
}

// Category is an opaque category name from the commerce API.
type Category string
