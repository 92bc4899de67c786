package cart

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/pkg/types"
)

// DefaultMaxQtyPerOrder applies when a product does not declare its own cap.
const DefaultMaxQtyPerOrder = 10

// ErrScopeReleased is returned by cart reads after the owning session scope ended.
var ErrScopeReleased = errors.New("cart scope released")

// SupplierSummary is the slice of supplier data carried on cart lines for grouping.
type SupplierSummary struct {
	ID               uuid.UUID           `json:"id"`
	Name             types.LocalizedText `json:"name"`
	DeliveryFeeCents int64               `json:"delivery_fee_cents"`
}

// Product is the snapshot of catalog data a cart line holds. Prices are
// captured at add time; the cart never re-reads the catalog.
type Product struct {
	ID                 uuid.UUID           `json:"id"`
	SupplierID         uuid.UUID           `json:"supplier_id"`
	Name               types.LocalizedText `json:"name"`
	PriceCents         int64               `json:"price_cents"`
	DiscountPriceCents *int64              `json:"discount_price_cents,omitempty"`
	MaxQtyPerOrder     *int                `json:"max_qty_per_order,omitempty"`
	ImageURL           *string             `json:"image_url,omitempty"`
	Supplier           *SupplierSummary    `json:"supplier,omitempty"`
}

// UnitPriceCents prefers the discounted price when one is set.
func (p Product) UnitPriceCents() int64 {
	if p.DiscountPriceCents != nil {
		return *p.DiscountPriceCents
	}
	return p.PriceCents
}

// EffectiveMaxQty is the per-line quantity cap for this product.
func (p Product) EffectiveMaxQty() int {
	if p.MaxQtyPerOrder != nil && *p.MaxQtyPerOrder > 0 {
		return *p.MaxQtyPerOrder
	}
	return DefaultMaxQtyPerOrder
}

// Item is one cart line.
type Item struct {
	Product Product `json:"product"`
	Qty     int     `json:"qty"`
}

// SubtotalCents is the line total using the effective unit price.
func (i Item) SubtotalCents() int64 {
	return i.Product.UnitPriceCents() * int64(i.Qty)
}

// SupplierGroup is a read-model slice of the cart for one supplier.
type SupplierGroup struct {
	Supplier      *SupplierSummary `json:"supplier"`
	SupplierID    uuid.UUID        `json:"supplier_id"`
	Items         []Item           `json:"items"`
	SubtotalCents int64            `json:"subtotal_cents"`
}

// Cart holds the in-memory lines for one UI session. All methods are safe for
// concurrent use. Mutations on a released cart are no-ops; reads report
// ErrScopeReleased so callers can tell misuse from an empty cart.
type Cart struct {
	mu       sync.Mutex
	items    []Item
	index    map[uuid.UUID]int
	released bool
}

func newCart() *Cart {
	return &Cart{
		index: make(map[uuid.UUID]int),
	}
}

// Add merges the quantity into an existing line for the same product or
// appends a new line. The resulting quantity is clamped into [1, max];
// over-limit requests are reduced, never rejected.
func (c *Cart) Add(product Product, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}

	max := product.EffectiveMaxQty()
	if pos, ok := c.index[product.ID]; ok {
		next := clampQty(c.items[pos].Qty+qty, max)
		c.items[pos].Qty = next
		return
	}

	c.items = append(c.items, Item{Product: product, Qty: clampQty(qty, max)})
	c.index[product.ID] = len(c.items) - 1
}

// UpdateQuantity sets the line quantity for the product. Zero or negative
// quantities remove the line; the result is otherwise clamped to the cap.
func (c *Cart) UpdateQuantity(productID uuid.UUID, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}

	pos, ok := c.index[productID]
	if !ok {
		return
	}
	if qty <= 0 {
		c.removeAt(pos)
		return
	}
	c.items[pos].Qty = clampQty(qty, c.items[pos].Product.EffectiveMaxQty())
}

// Remove drops the line for the product if present.
func (c *Cart) Remove(productID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	if pos, ok := c.index[productID]; ok {
		c.removeAt(pos)
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	c.items = nil
	c.index = make(map[uuid.UUID]int)
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() ([]Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return nil, ErrScopeReleased
	}
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out, nil
}

// Count returns the total unit count across lines.
func (c *Cart) Count() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return 0, ErrScopeReleased
	}
	total := 0
	for _, item := range c.items {
		total += item.Qty
	}
	return total, nil
}

// TotalCents sums the line subtotals using the effective unit price.
func (c *Cart) TotalCents() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return 0, ErrScopeReleased
	}
	var total int64
	for _, item := range c.items {
		total += item.SubtotalCents()
	}
	return total, nil
}

// GroupBySupplier partitions the lines by supplier, preserving line order
// within each group and ordering groups by first appearance. The cart itself
// is not modified.
func (c *Cart) GroupBySupplier() ([]SupplierGroup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return nil, ErrScopeReleased
	}

	groups := []SupplierGroup{}
	positions := make(map[uuid.UUID]int)
	for _, item := range c.items {
		supplierID := item.Product.SupplierID
		pos, ok := positions[supplierID]
		if !ok {
			groups = append(groups, SupplierGroup{
				Supplier:   item.Product.Supplier,
				SupplierID: supplierID,
			})
			pos = len(groups) - 1
			positions[supplierID] = pos
		}
		groups[pos].Items = append(groups[pos].Items, item)
		groups[pos].SubtotalCents += item.SubtotalCents()
	}
	return groups, nil
}

func (c *Cart) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released = true
	c.items = nil
	c.index = make(map[uuid.UUID]int)
}

// restore replaces the lines with a persisted snapshot, re-clamping each
// quantity in case product caps changed since the snapshot was taken.
func (c *Cart) restore(items []Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	c.items = nil
	c.index = make(map[uuid.UUID]int)
	for _, item := range items {
		if item.Qty <= 0 {
			continue
		}
		if _, ok := c.index[item.Product.ID]; ok {
			continue
		}
		item.Qty = clampQty(item.Qty, item.Product.EffectiveMaxQty())
		c.items = append(c.items, item)
		c.index[item.Product.ID] = len(c.items) - 1
	}
}

func (c *Cart) removeAt(pos int) {
	removed := c.items[pos].Product.ID
	c.items = append(c.items[:pos], c.items[pos+1:]...)
	delete(c.index, removed)
	for i := pos; i < len(c.items); i++ {
		c.index[c.items[i].Product.ID] = i
	}
}

func clampQty(qty, max int) int {
	if qty < 1 {
		return 1
	}
	if qty > max {
		return max
	}
	return qty
}
