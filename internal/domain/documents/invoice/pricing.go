package invoice

import (
	"github.com/shopspring/decimal"

	"msana/internal/core/id"
	"msana/internal/core/types"
)

// DiscountMode selects between per-line percentage discounts and a single
// request-level discount amount. The two are mutually exclusive: a global
// discount suppresses all per-line discounts.
type DiscountMode struct {
	global bool
	amount types.Money
}

// PerLineDiscount applies each line's own discount percentage.
func PerLineDiscount() DiscountMode {
	return DiscountMode{}
}

// GlobalDiscount subtracts a single amount from the aggregate subtotal and
// ignores per-line discount percentages.
func GlobalDiscount(amount types.Money) DiscountMode {
	return DiscountMode{global: true, amount: amount}
}

// IsGlobal reports whether a global discount amount is in effect.
func (d DiscountMode) IsGlobal() bool { return d.global }

// TaxMode selects between per-line GST computation and a caller-supplied tax
// total used verbatim.
type TaxMode struct {
	manual bool
	amount types.Money
}

// AutoTax computes tax per line from each line's GST percentage.
func AutoTax() TaxMode {
	return TaxMode{}
}

// ManualTax uses the supplied tax total verbatim.
func ManualTax(amount types.Money) TaxMode {
	return TaxMode{manual: true, amount: amount}
}

// IsManual reports whether a manual tax total is in effect.
func (t TaxMode) IsManual() bool { return t.manual }

// ResolvedLine is a line item after catalog resolution: every fallback
// (rate, GST percentage, snapshot name) has already been applied.
type ResolvedLine struct {
	ProductID   *id.ID
	BatchID     *id.ID
	ProductName string
	Qty         int
	FreeQty     int
	Rate        types.Money
	MRP         types.Money
	GSTPct      types.Money
	DiscountPct types.Money
}

// Totals are the aggregate monetary fields of a priced invoice.
type Totals struct {
	SubTotal      types.Money
	DiscountTotal types.Money
	TaxTotal      types.Money
	CGST          types.Money
	SGST          types.Money
	IGST          types.Money
	RoundOff      types.Money
	NetPayable    types.Money
	Paid          types.Money
	Balance       types.Money
}

var pointFive = decimal.NewFromFloat(0.5)

// Price computes line taxable amounts and invoice totals.
//
// The GST split is invoice-wide: inter-state puts the whole tax into IGST,
// intra-state splits it evenly into CGST and SGST. In auto mode the split is
// accumulated line by line, which matters when lines carry different GST
// rates. The grand total is rounded to a whole amount: fractional part
// above 0.5 rounds up, otherwise down; RoundOff carries the signed
// adjustment. Paid defaults to the rounded net payable when nil, and the
// balance never goes negative.
func Price(lines []ResolvedLine, discount DiscountMode, tax TaxMode, isInterState bool, paid *types.Money) ([]Line, Totals) {
	priced := make([]Line, 0, len(lines))

	subTotal := types.Zero()
	discountTotal := types.Zero()

	for i, l := range lines {
		qty := l.Qty
		if qty < 0 {
			qty = 0
		}
		raw := l.Rate.Mul(decimal.NewFromInt(int64(qty)))

		taxable := raw
		if !discount.IsGlobal() {
			lineDiscount := types.Percent(raw, l.DiscountPct)
			taxable = raw.Sub(lineDiscount)
			discountTotal = discountTotal.Add(lineDiscount)
		}

		subTotal = subTotal.Add(raw)

		priced = append(priced, Line{
			LineNo:      i + 1,
			ProductID:   l.ProductID,
			BatchID:     l.BatchID,
			ProductName: l.ProductName,
			Qty:         qty,
			FreeQty:     l.FreeQty,
			UnitRate:    l.Rate,
			MRP:         l.MRP,
			DiscountPct: l.DiscountPct,
			GSTPct:      l.GSTPct,
			Amount:      taxable,
		})
	}

	if discount.IsGlobal() {
		discountTotal = discount.amount
	}

	taxableBase := subTotal.Sub(discountTotal)

	taxTotal := types.Zero()
	cgst := types.Zero()
	sgst := types.Zero()
	igst := types.Zero()

	if tax.IsManual() {
		taxTotal = tax.amount
		if isInterState {
			igst = taxTotal
		} else {
			cgst = types.Half(taxTotal)
			sgst = types.Half(taxTotal)
		}
	} else {
		for _, line := range priced {
			lineTax := types.Percent(line.Amount, line.GSTPct)
			if isInterState {
				igst = igst.Add(lineTax)
			} else {
				cgst = cgst.Add(types.Half(lineTax))
				sgst = sgst.Add(types.Half(lineTax))
			}
			taxTotal = taxTotal.Add(lineTax)
		}
	}

	total := taxableBase.Add(taxTotal)
	floor := total.Floor()
	frac := total.Sub(floor)

	var netPayable types.Money
	if frac.GreaterThan(pointFive) {
		netPayable = total.Ceil()
	} else {
		netPayable = floor
	}
	roundOff := netPayable.Sub(total)

	paidAmount := netPayable
	if paid != nil {
		paidAmount = *paid
	}
	balance := netPayable.Sub(paidAmount)
	if balance.IsNegative() {
		balance = types.Zero()
	}

	return priced, Totals{
		SubTotal:      subTotal,
		DiscountTotal: discountTotal,
		TaxTotal:      taxTotal,
		CGST:          types.Round2(cgst),
		SGST:          types.Round2(sgst),
		IGST:          types.Round2(igst),
		RoundOff:      types.Round2(roundOff),
		NetPayable:    netPayable,
		Paid:          paidAmount,
		Balance:       balance,
	}
}
