package billing

import "math"

// Amounts are the net, VAT and gross values of one invoice line.
type Amounts struct {
	Net   float64 `json:"netAmount"`
	VAT   float64 `json:"vatAmount"`
	Total float64 `json:"totalAmount"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LineAmounts prices quantity units at unitPrice with vatRate percent VAT.
// Each figure is rounded to cents independently.
func LineAmounts(quantity, unitPrice, vatRate float64) Amounts {
	net := quantity * unitPrice
	vat := net * (vatRate / 100)
	return Amounts{
		Net:   round2(net),
		VAT:   round2(vat),
		Total: round2(net + vat),
	}
}

// Totals sums unrounded line values and rounds once at the end, so the
// invoice total can differ by a cent from the sum of rounded line totals.
func Totals(lines []InvoiceLine) Amounts {
	var net, vat float64
	for _, l := range lines {
		n := l.Quantity * l.UnitPrice
		net += n
		vat += n * (l.VATRate / 100)
	}
	return Amounts{Net: round2(net), VAT: round2(vat), Total: round2(net + vat)}
}

// VAT returns rate percent of amount.
func VAT(amount, rate float64) float64 {
	return amount * rate / 100
}

func TotalWithVAT(amount, rate float64) float64 {
	return amount + VAT(amount, rate)
}
