package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msana/internal/core/types"
)

func money(s string) types.Money {
	return types.MustMoney(s)
}

func moneyPtr(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func line(rate string, qty int, gstPct, discPct string) ResolvedLine {
	return ResolvedLine{
		ProductName: "Test Item",
		Qty:         qty,
		Rate:        money(rate),
		MRP:         money(rate),
		GSTPct:      money(gstPct),
		DiscountPct: money(discPct),
	}
}

func TestPrice_PerLineDiscount(t *testing.T) {
	lines := []ResolvedLine{
		line("100", 2, "12", "10"), // raw 200, discount 20, taxable 180
		line("50", 1, "12", "0"),   // raw 50, taxable 50
	}

	priced, totals := Price(lines, PerLineDiscount(), AutoTax(), false, nil)

	require.Len(t, priced, 2)
	assert.Equal(t, 1, priced[0].LineNo)
	assert.Equal(t, 2, priced[1].LineNo)
	assert.True(t, priced[0].Amount.Equal(money("180")), "line 1 amount = %s", priced[0].Amount)
	assert.True(t, priced[1].Amount.Equal(money("50")), "line 2 amount = %s", priced[1].Amount)

	assert.True(t, totals.SubTotal.Equal(money("250")), "subtotal = %s", totals.SubTotal)
	assert.True(t, totals.DiscountTotal.Equal(money("20")), "discount = %s", totals.DiscountTotal)
	// 12% of 230 = 27.6
	assert.True(t, totals.TaxTotal.Equal(money("27.6")), "tax = %s", totals.TaxTotal)
	// 230 + 27.6 = 257.6, frac > 0.5 rounds up
	assert.True(t, totals.NetPayable.Equal(money("258")), "net = %s", totals.NetPayable)
	assert.True(t, totals.RoundOff.Equal(money("0.4")), "round off = %s", totals.RoundOff)
}

func TestPrice_GlobalDiscountSuppressesPerLine(t *testing.T) {
	lines := []ResolvedLine{
		line("100", 1, "0", "10"),
		line("100", 1, "0", "25"),
	}

	priced, totals := Price(lines, GlobalDiscount(money("30")), AutoTax(), false, nil)

	// Per-line percentages are ignored: line amounts stay at the raw value.
	require.Len(t, priced, 2)
	assert.True(t, priced[0].Amount.Equal(money("100")))
	assert.True(t, priced[1].Amount.Equal(money("100")))

	assert.True(t, totals.SubTotal.Equal(money("200")))
	assert.True(t, totals.DiscountTotal.Equal(money("30")))
	assert.True(t, totals.NetPayable.Equal(money("170")))
}

func TestPrice_GSTSplit(t *testing.T) {
	lines := []ResolvedLine{line("100", 2, "12", "10")} // taxable 180, tax 21.6

	t.Run("intra-state splits evenly into CGST and SGST", func(t *testing.T) {
		_, totals := Price(lines, PerLineDiscount(), AutoTax(), false, nil)

		assert.True(t, totals.TaxTotal.Equal(money("21.6")), "tax = %s", totals.TaxTotal)
		assert.True(t, totals.CGST.Equal(money("10.8")), "cgst = %s", totals.CGST)
		assert.True(t, totals.SGST.Equal(money("10.8")), "sgst = %s", totals.SGST)
		assert.True(t, totals.IGST.IsZero(), "igst = %s", totals.IGST)
	})

	t.Run("inter-state puts the whole tax into IGST", func(t *testing.T) {
		_, totals := Price(lines, PerLineDiscount(), AutoTax(), true, nil)

		assert.True(t, totals.TaxTotal.Equal(money("21.6")))
		assert.True(t, totals.IGST.Equal(money("21.6")), "igst = %s", totals.IGST)
		assert.True(t, totals.CGST.IsZero())
		assert.True(t, totals.SGST.IsZero())
	})
}

func TestPrice_MixedGSTRates(t *testing.T) {
	lines := []ResolvedLine{
		line("100", 1, "5", "0"),  // tax 5
		line("100", 1, "18", "0"), // tax 18
	}

	_, totals := Price(lines, PerLineDiscount(), AutoTax(), false, nil)

	assert.True(t, totals.TaxTotal.Equal(money("23")), "tax = %s", totals.TaxTotal)
	assert.True(t, totals.CGST.Equal(money("11.5")), "cgst = %s", totals.CGST)
	assert.True(t, totals.SGST.Equal(money("11.5")), "sgst = %s", totals.SGST)
}

func TestPrice_ManualTaxUsedVerbatim(t *testing.T) {
	lines := []ResolvedLine{line("100", 1, "18", "0")}

	_, totals := Price(lines, PerLineDiscount(), ManualTax(money("5")), false, nil)

	// The line GST percentage is not applied.
	assert.True(t, totals.TaxTotal.Equal(money("5")), "tax = %s", totals.TaxTotal)
	assert.True(t, totals.CGST.Equal(money("2.5")))
	assert.True(t, totals.SGST.Equal(money("2.5")))
	assert.True(t, totals.NetPayable.Equal(money("105")))
	assert.True(t, totals.RoundOff.IsZero())
}

func TestPrice_Rounding(t *testing.T) {
	tests := []struct {
		name     string
		rate     string // single line, qty 1, no tax or discount
		wantNet  string
		wantRoff string
	}{
		{name: "fraction above half rounds up", rate: "100.51", wantNet: "101", wantRoff: "0.49"},
		{name: "fraction at exactly half rounds down", rate: "100.50", wantNet: "100", wantRoff: "-0.5"},
		{name: "fraction below half rounds down", rate: "100.49", wantNet: "100", wantRoff: "-0.49"},
		{name: "whole amount needs no adjustment", rate: "100", wantNet: "100", wantRoff: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, totals := Price([]ResolvedLine{line(tt.rate, 1, "0", "0")}, PerLineDiscount(), AutoTax(), false, nil)

			assert.True(t, totals.NetPayable.Equal(money(tt.wantNet)),
				"net payable = %s, want %s", totals.NetPayable, tt.wantNet)
			assert.True(t, totals.RoundOff.Equal(money(tt.wantRoff)),
				"round off = %s, want %s", totals.RoundOff, tt.wantRoff)
		})
	}
}

func TestPrice_PaidAndBalance(t *testing.T) {
	lines := []ResolvedLine{line("100", 1, "0", "0")}

	t.Run("paid defaults to net payable", func(t *testing.T) {
		_, totals := Price(lines, PerLineDiscount(), AutoTax(), false, nil)
		assert.True(t, totals.Paid.Equal(money("100")))
		assert.True(t, totals.Balance.IsZero())
	})

	t.Run("partial payment leaves a balance", func(t *testing.T) {
		_, totals := Price(lines, PerLineDiscount(), AutoTax(), false, moneyPtr("40"))
		assert.True(t, totals.Paid.Equal(money("40")))
		assert.True(t, totals.Balance.Equal(money("60")))
	})

	t.Run("overpayment clamps balance to zero", func(t *testing.T) {
		_, totals := Price(lines, PerLineDiscount(), AutoTax(), false, moneyPtr("150"))
		assert.True(t, totals.Paid.Equal(money("150")))
		assert.True(t, totals.Balance.IsZero())
	})
}

func TestPrice_NegativeQtyClampedToZero(t *testing.T) {
	priced, totals := Price([]ResolvedLine{line("100", -3, "0", "0")}, PerLineDiscount(), AutoTax(), false, nil)

	require.Len(t, priced, 1)
	assert.Equal(t, 0, priced[0].Qty)
	assert.True(t, priced[0].Amount.IsZero())
	assert.True(t, totals.SubTotal.IsZero())
	assert.True(t, totals.NetPayable.IsZero())
}

func TestPrice_WholeAmountInvoice(t *testing.T) {
	// 2 x 100 at 12% GST, intra-state, nothing to round.
	_, totals := Price([]ResolvedLine{line("100", 2, "12", "0")}, PerLineDiscount(), AutoTax(), false, nil)

	assert.True(t, totals.SubTotal.Equal(money("200")))
	assert.True(t, totals.TaxTotal.Equal(money("24")))
	assert.True(t, totals.CGST.Equal(money("12")))
	assert.True(t, totals.SGST.Equal(money("12")))
	assert.True(t, totals.NetPayable.Equal(money("224")))
	assert.True(t, totals.RoundOff.IsZero())
}

func TestPrice_RoundingWithManualTax(t *testing.T) {
	lines := []ResolvedLine{line("150", 1, "0", "0")}

	_, totals := Price(lines, PerLineDiscount(), ManualTax(money("10.4")), false, nil)
	assert.True(t, totals.NetPayable.Equal(money("160")), "net = %s", totals.NetPayable)
	assert.True(t, totals.RoundOff.Equal(money("-0.4")), "round off = %s", totals.RoundOff)

	_, totals = Price(lines, PerLineDiscount(), ManualTax(money("10.6")), false, nil)
	assert.True(t, totals.NetPayable.Equal(money("161")), "net = %s", totals.NetPayable)
	assert.True(t, totals.RoundOff.Equal(money("0.4")), "round off = %s", totals.RoundOff)
}

func TestPrice_EmptyLines(t *testing.T) {
	priced, totals := Price(nil, PerLineDiscount(), AutoTax(), false, nil)

	assert.Empty(t, priced)
	assert.True(t, totals.NetPayable.IsZero())
	assert.True(t, totals.Balance.IsZero())
}
