package order

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/apperr"
)

// accumulateLines computes the product and tax totals for a set of lines.
// Lines with a non-positive quantity are skipped. A tax line is recorded only
// when its amount is strictly positive. Negative unit prices and tax rates are
// validation errors, not silently clamped.
func accumulateLines(lines []Line) (productTotal, taxTotal decimal.Decimal, taxLines []TaxLine, err error) {
	productTotal = decimal.Zero
	taxTotal = decimal.Zero

	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		if line.UnitPrice.IsNegative() {
			return decimal.Zero, decimal.Zero, nil,
				apperr.BadRequest("Line prices cannot be negative")
		}
		if line.TaxRate.IsNegative() {
			return decimal.Zero, decimal.Zero, nil,
				apperr.BadRequest("Tax rates cannot be negative")
		}

		lineTotal := line.Total()
		productTotal = productTotal.Add(lineTotal)

		if line.TaxRate.IsPositive() {
			taxAmount := lineTotal.Mul(line.TaxRate).Round(2)
			taxTotal = taxTotal.Add(taxAmount)
			if taxAmount.IsPositive() {
				taxLines = append(taxLines, TaxLine{
					ProductID: line.ProductID,
					Name:      line.Name,
					Rate:      line.TaxRate,
					Amount:    taxAmount,
				})
			}
		}
	}

	return productTotal.Round(2), taxTotal.Round(2), taxLines, nil
}

// grandTotal combines the four component totals, floored at zero.
func grandTotal(product, tax, shipping, discount decimal.Decimal) decimal.Decimal {
	total := product.Add(tax).Add(shipping).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero.Round(2)
	}
	return total.Round(2)
}
