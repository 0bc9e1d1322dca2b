package cart

import "example.com/storefront/internal/domain/money"

// Line is one product's quantity entry. ProductID is looked up in the catalog
// on every use; no product data is cached on the line.
type Line struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// Cart keeps at most one line per product, in insertion order.
type Cart struct {
	Lines []Line `json:"lines"`
}

func (c Cart) index(productID int64) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Quantity returns the stored quantity for a product, 0 when absent.
func (c Cart) Quantity(productID int64) int64 {
	if i := c.index(productID); i >= 0 {
		return c.Lines[i].Quantity
	}
	return 0
}

// Upsert sets the quantity of a product's line, appending a new line when
// needed. A quantity <= 0 removes the line.
func (c *Cart) Upsert(productID, quantity int64) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	if i := c.index(productID); i >= 0 {
		c.Lines[i].Quantity = quantity
		return
	}
	c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: quantity})
}

// Remove drops the product's line; absent products are ignored.
func (c *Cart) Remove(productID int64) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return true
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount is the sum of all line quantities.
func (c Cart) ItemCount() int64 {
	var n int64
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Clone returns a deep copy safe to hand to callers.
func (c Cart) Clone() Cart {
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

// DetailedLine is a line resolved against the catalog for rendering.
type DetailedLine struct {
	Line
	ProductName string
	UnitPrice   money.Amount
	Subtotal    money.Amount
}

// Snapshot is a read-only view of the cart with live prices.
type Snapshot struct {
	Lines     []DetailedLine
	ItemCount int64
	Total     money.Amount
}
