package document

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TaxGroup aggregates all line items sharing one tax rate. Amounts keep
// full decimal precision; rounding happens once, at the formatting
// boundary.
type TaxGroup struct {
	RatePercent decimal.Decimal
	Net         decimal.Decimal
	Tax         decimal.Decimal
	Gross       decimal.Decimal
}

// TaxSummary is the aggregation result for one document
type TaxSummary struct {
	Groups     []TaxGroup // sorted by descending rate
	GrandNet   decimal.Decimal
	GrandTax   decimal.Decimal
	GrandGross decimal.Decimal
}

// AggregateTaxes groups the items by tax rate and computes net, tax and
// gross per group plus grand totals. Blank rows must be filtered by the
// caller (use Document.UsableItems); an empty input yields a single
// all-zero group so downstream rendering never sees an empty summary.
// Negative quantities and prices pass through untouched; rejecting them
// is a concern of the form layer.
func AggregateTaxes(items []LineItem) TaxSummary {
	hundred := decimal.NewFromInt(100)
	byRate := make(map[string]*TaxGroup)
	order := make([]string, 0, 4)

	for _, item := range items {
		net := item.LineTotal()
		tax := net.Mul(item.TaxRatePercent).Div(hundred)

		key := item.TaxRatePercent.String()
		group, ok := byRate[key]
		if !ok {
			group = &TaxGroup{RatePercent: item.TaxRatePercent}
			byRate[key] = group
			order = append(order, key)
		}
		group.Net = group.Net.Add(net)
		group.Tax = group.Tax.Add(tax)
		group.Gross = group.Net.Add(group.Tax)
	}

	summary := TaxSummary{Groups: make([]TaxGroup, 0, len(order))}
	for _, key := range order {
		summary.Groups = append(summary.Groups, *byRate[key])
	}
	sort.SliceStable(summary.Groups, func(i, j int) bool {
		return summary.Groups[i].RatePercent.GreaterThan(summary.Groups[j].RatePercent)
	})

	if len(summary.Groups) == 0 {
		summary.Groups = []TaxGroup{{}}
	}

	for _, g := range summary.Groups {
		summary.GrandNet = summary.GrandNet.Add(g.Net)
		summary.GrandTax = summary.GrandTax.Add(g.Tax)
		summary.GrandGross = summary.GrandGross.Add(g.Gross)
	}
	return summary
}
