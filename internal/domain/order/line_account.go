package order

import (
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// LineAccount is the computed money breakdown of one order line. All four
// figures are always recomputed together from the stored inputs; nothing
// persists a total that could drift from its parts.
type LineAccount struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeLineAccount derives the line breakdown:
//
//	subtotal = quantity * unit price
//	discount = subtotal * discount rate / 100
//	tax      = subtotal * tax rate / 100
//	total    = subtotal + tax - discount, rounded half up to 2 places
//
// Subtotal, discount and tax carry full precision; only the total is
// rounded.
func ComputeLineAccount(quantity, unitPrice, discountRate, taxRate decimal.Decimal) LineAccount {
	subtotal := quantity.Mul(unitPrice)
	discount := subtotal.Mul(discountRate).Div(oneHundred)
	tax := subtotal.Mul(taxRate).Div(oneHundred)
	total := subtotal.Add(tax).Sub(discount).Round(2)
	return LineAccount{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    total,
	}
}

// OrderAccount is the aggregated breakdown across all lines of an order
type OrderAccount struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// SumLineAccounts folds line breakdowns into the order-level figures
func SumLineAccounts(lines []LineAccount) OrderAccount {
	acc := OrderAccount{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}
	for _, l := range lines {
		acc.Subtotal = acc.Subtotal.Add(l.Subtotal)
		acc.Discount = acc.Discount.Add(l.Discount)
		acc.Tax = acc.Tax.Add(l.Tax)
		acc.Total = acc.Total.Add(l.Total)
	}
	return acc
}
