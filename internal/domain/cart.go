package domain

// CartEntry is a (product_id, quantity) pair representing purchase intent.
// The product ID is an opaque reference into the catalog; nothing at this
// layer guarantees it still resolves.
type CartEntry struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is the ordered entry list for one session. At most one entry exists
// per product ID; insertion order is preserved for display stability.
type Cart struct {
	Entries []CartEntry `json:"entries"`
}

// FindIndex returns the index of the entry matching the given product ID,
// or -1 if not present.
func (c *Cart) FindIndex(productID string) int {
	for i := range c.Entries {
		if c.Entries[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// ItemCount returns the sum of all entry quantities. Recomputed on demand so
// it is always consistent with the current entries.
func (c *Cart) ItemCount() int {
	var count int
	for _, e := range c.Entries {
		count += e.Quantity
	}
	return count
}

// HydratedLineItem is a cart entry resolved against the live catalog.
// Derived, never stored.
type HydratedLineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// HydrationResult partitions a cart into resolvable and stale entries.
// Invariant: len(Valid) + UnresolvedCount equals the cart length at the
// moment of hydration.
type HydrationResult struct {
	Valid           []HydratedLineItem `json:"valid"`
	UnresolvedCount int                `json:"unresolved_count"`
}

// Subtotal returns the price sum of the valid line items.
func (r HydrationResult) Subtotal() float64 {
	var total float64
	for _, item := range r.Valid {
		total += item.Product.Price * float64(item.Quantity)
	}
	return total
}
