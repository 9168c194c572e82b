package core

import "github.com/shopspring/decimal"

// ComputeLineTotal returns quantity * price. Negative inputs count as zero.
func ComputeLineTotal(quantity int, price decimal.Decimal) decimal.Decimal {
	if quantity < 0 {
		quantity = 0
	}
	if price.IsNegative() {
		price = decimal.Zero
	}
	return decimal.NewFromInt(int64(quantity)).Mul(price)
}

// NewLineItem returns a blank line with quantity 1 and price 0.
func NewLineItem(id int) LineItem {
	return LineItem{ID: id, Quantity: 1, Price: decimal.Zero, Total: decimal.Zero}
}

// WithQuantity returns a copy of the line with a new quantity and recomputed total.
func (li LineItem) WithQuantity(quantity int) LineItem {
	li.Quantity = quantity
	li.Total = ComputeLineTotal(li.Quantity, li.Price)
	return li
}

// WithPrice returns a copy of the line with a new price and recomputed total.
func (li LineItem) WithPrice(price decimal.Decimal) LineItem {
	li.Price = price
	li.Total = ComputeLineTotal(li.Quantity, li.Price)
	return li
}

// ApplyProduct copies the product's id, name and price onto the line and
// recomputes its total. An empty or unknown productID leaves the line
// unchanged and reports OutcomeSoftMiss.
func ApplyProduct(item LineItem, productID string, products []Product) (LineItem, Outcome) {
	if productID == "" {
		return item, OutcomeSoftMiss
	}
	product, ok := findProduct(products, productID)
	if !ok {
		return item, OutcomeSoftMiss
	}
	item.ProductID = product.ID
	item.Name = product.Name
	item.Price = product.Price
	item.Total = ComputeLineTotal(item.Quantity, item.Price)
	return item, OutcomeApplied
}

func findProduct(products []Product, id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func findCustomer(customers []Customer, id string) (Customer, bool) {
	for _, c := range customers {
		if c.ID == id {
			return c, true
		}
	}
	return Customer{}, false
}

func findInvoice(invoices []Invoice, id string) (Invoice, bool) {
	for _, inv := range invoices {
		if inv.ID == id {
			return inv, true
		}
	}
	return Invoice{}, false
}
