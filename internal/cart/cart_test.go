package cart

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/pkg/types"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func testProduct(name string, priceCents int64) Product {
	supplierID := uuid.New()
	return Product{
		ID:         uuid.New(),
		SupplierID: supplierID,
		Name:       types.LocalizedText{EN: name, AR: name},
		PriceCents: priceCents,
		Supplier: &SupplierSummary{
			ID:   supplierID,
			Name: types.LocalizedText{EN: name + " supplier"},
		},
	}
}

func mustItems(t *testing.T, c *Cart) []Item {
	t.Helper()
	items, err := c.Items()
	if err != nil {
		t.Fatalf("Items() returned error: %v", err)
	}
	return items
}

func TestCartAddMergesSameProduct(t *testing.T) {
	t.Parallel()

	c := newCart()
	p := testProduct("bread", 250)

	c.Add(p, 2)
	c.Add(p, 3)

	items := mustItems(t, c)
	if len(items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(items))
	}
	if items[0].Qty != 5 {
		t.Fatalf("expected merged qty 5, got %d", items[0].Qty)
	}
}

func TestCartAddClampsToDefaultMax(t *testing.T) {
	t.Parallel()

	c := newCart()
	p := testProduct("rice", 1200)

	c.Add(p, 50)

	items := mustItems(t, c)
	if items[0].Qty != DefaultMaxQtyPerOrder {
		t.Fatalf("expected qty clamped to %d, got %d", DefaultMaxQtyPerOrder, items[0].Qty)
	}
}

func TestCartAddClampsToProductMax(t *testing.T) {
	t.Parallel()

	c := newCart()
	p := testProduct("olive oil", 4500)
	p.MaxQtyPerOrder = intPtr(3)

	c.Add(p, 2)
	c.Add(p, 9)

	items := mustItems(t, c)
	if items[0].Qty != 3 {
		t.Fatalf("expected qty clamped to 3, got %d", items[0].Qty)
	}
}

func TestCartAddNormalizesNonPositiveQty(t *testing.T) {
	t.Parallel()

	c := newCart()
	p := testProduct("dates", 900)

	c.Add(p, 0)

	items := mustItems(t, c)
	if len(items) != 1 || items[0].Qty != 1 {
		t.Fatalf("expected single line with qty 1, got %+v", items)
	}
}

func TestCartUpdateQuantityZeroRemovesLine(t *testing.T) {
	t.Parallel()

	c := newCart()
	p := testProduct("milk", 300)
	c.Add(p, 2)

	c.UpdateQuantity(p.ID, 0)

	if items := mustItems(t, c); len(items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(items))
	}

	c.Add(p, 2)
	c.UpdateQuantity(p.ID, -4)
	if items := mustItems(t, c); len(items) != 0 {
		t.Fatalf("expected negative update to remove line, got %d lines", len(items))
	}
}

func TestCartUpdateQuantityClamps(t *testing.T) {
	t.Parallel()

	c := newCart()
	p := testProduct("tea", 700)
	p.MaxQtyPerOrder = intPtr(4)
	c.Add(p, 1)

	c.UpdateQuantity(p.ID, 99)

	items := mustItems(t, c)
	if items[0].Qty != 4 {
		t.Fatalf("expected qty clamped to 4, got %d", items[0].Qty)
	}
}

func TestCartUpdateQuantityUnknownProductIsNoop(t *testing.T) {
	t.Parallel()

	c := newCart()
	c.Add(testProduct("sugar", 400), 1)

	c.UpdateQuantity(uuid.New(), 3)

	if items := mustItems(t, c); len(items) != 1 {
		t.Fatalf("expected cart unchanged, got %d lines", len(items))
	}
}

func TestCartRemovePreservesOrder(t *testing.T) {
	t.Parallel()

	c := newCart()
	first := testProduct("flour", 500)
	second := testProduct("salt", 100)
	third := testProduct("yeast", 250)
	c.Add(first, 1)
	c.Add(second, 1)
	c.Add(third, 1)

	c.Remove(second.ID)

	items := mustItems(t, c)
	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(items))
	}
	if items[0].Product.ID != first.ID || items[1].Product.ID != third.ID {
		t.Fatalf("expected remaining lines in insertion order")
	}

	// index must stay consistent after compaction
	c.UpdateQuantity(third.ID, 5)
	items = mustItems(t, c)
	if items[1].Qty != 5 {
		t.Fatalf("expected third line qty 5 after update, got %d", items[1].Qty)
	}
}

func TestCartTotalPrefersDiscountPrice(t *testing.T) {
	t.Parallel()

	c := newCart()
	full := testProduct("honey", 2000)
	discounted := testProduct("zaatar", 1000)
	discounted.DiscountPriceCents = int64Ptr(750)

	c.Add(full, 2)
	c.Add(discounted, 3)

	total, err := c.TotalCents()
	if err != nil {
		t.Fatalf("TotalCents() returned error: %v", err)
	}
	if want := int64(2*2000 + 3*750); total != want {
		t.Fatalf("expected total %d, got %d", want, total)
	}

	count, err := c.Count()
	if err != nil {
		t.Fatalf("Count() returned error: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected count 5, got %d", count)
	}
}

func TestCartGroupBySupplier(t *testing.T) {
	t.Parallel()

	c := newCart()
	supplierA := uuid.New()
	supplierB := uuid.New()

	a1 := testProduct("hummus", 600)
	a1.SupplierID = supplierA
	a1.Supplier.ID = supplierA
	b1 := testProduct("falafel", 450)
	b1.SupplierID = supplierB
	b1.Supplier.ID = supplierB
	a2 := testProduct("tahini", 800)
	a2.SupplierID = supplierA
	a2.Supplier.ID = supplierA

	c.Add(a1, 1)
	c.Add(b1, 2)
	c.Add(a2, 1)

	groups, err := c.GroupBySupplier()
	if err != nil {
		t.Fatalf("GroupBySupplier() returned error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].SupplierID != supplierA || groups[1].SupplierID != supplierB {
		t.Fatalf("expected groups ordered by first appearance")
	}
	if len(groups[0].Items) != 2 || len(groups[1].Items) != 1 {
		t.Fatalf("unexpected group sizes: %d and %d", len(groups[0].Items), len(groups[1].Items))
	}
	if groups[0].SubtotalCents != 600+800 {
		t.Fatalf("expected supplier A subtotal 1400, got %d", groups[0].SubtotalCents)
	}

	// grouping is a read model; the flat cart must be untouched
	items := mustItems(t, c)
	if len(items) != 3 {
		t.Fatalf("expected cart to keep 3 lines after grouping, got %d", len(items))
	}
	if items[1].Product.ID != b1.ID {
		t.Fatalf("expected original line order preserved after grouping")
	}
}

func TestReleasedCartReadsFailAndMutationsNoop(t *testing.T) {
	t.Parallel()

	scope := NewScope()
	c := scope.Cart("session-1")
	p := testProduct("labneh", 550)
	c.Add(p, 2)

	scope.Release("session-1")

	if _, err := c.Items(); !errors.Is(err, ErrScopeReleased) {
		t.Fatalf("expected ErrScopeReleased from Items, got %v", err)
	}
	if _, err := c.TotalCents(); !errors.Is(err, ErrScopeReleased) {
		t.Fatalf("expected ErrScopeReleased from TotalCents, got %v", err)
	}
	if _, err := c.Count(); !errors.Is(err, ErrScopeReleased) {
		t.Fatalf("expected ErrScopeReleased from Count, got %v", err)
	}
	if _, err := c.GroupBySupplier(); !errors.Is(err, ErrScopeReleased) {
		t.Fatalf("expected ErrScopeReleased from GroupBySupplier, got %v", err)
	}

	// mutations must not panic or resurrect the cart
	c.Add(p, 1)
	c.UpdateQuantity(p.ID, 3)
	c.Remove(p.ID)
	c.Clear()
	if _, err := c.Items(); !errors.Is(err, ErrScopeReleased) {
		t.Fatalf("expected cart to stay released after mutations")
	}
}

func TestScopeNewSessionStartsFresh(t *testing.T) {
	t.Parallel()

	scope := NewScope()
	old := scope.Cart("session-2")
	old.Add(testProduct("mint", 150), 1)
	scope.Release("session-2")

	fresh := scope.Cart("session-2")
	if fresh == old {
		t.Fatalf("expected a new cart instance after release")
	}
	items := mustItems(t, fresh)
	if len(items) != 0 {
		t.Fatalf("expected fresh cart to be empty, got %d lines", len(items))
	}
}

func TestRestoreClampsAndDeduplicates(t *testing.T) {
	t.Parallel()

	c := newCart()
	p := testProduct("coffee", 3200)
	p.MaxQtyPerOrder = intPtr(2)

	c.restore([]Item{
		{Product: p, Qty: 9},
		{Product: p, Qty: 1},
		{Product: testProduct("cardamom", 500), Qty: 0},
	})

	items := mustItems(t, c)
	if len(items) != 1 {
		t.Fatalf("expected 1 restored line, got %d", len(items))
	}
	if items[0].Qty != 2 {
		t.Fatalf("expected restored qty clamped to 2, got %d", items[0].Qty)
	}
}
