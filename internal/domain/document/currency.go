package document

// DefaultCompanyCurrencies maps company codes to their home currency.
// Codes absent from the table fall back to EUR, including "1000".
func DefaultCompanyCurrencies() map[CompanyCode]Currency {
	return map[CompanyCode]Currency{
		CompanyCode1000: EUR,
		CompanyCode2000: GBP,
		CompanyCode3000: CHF,
	}
}

// MaterialCurrencyFunc looks up the currency of a referenced material
// record. It is supplied by the excluded persistence layer; a nil func
// means material records carry no currency.
type MaterialCurrencyFunc func(materialRef string) (Currency, bool)

// ResolveCurrency determines the effective currency of a line item.
// Precedence, first match wins:
//  1. explicit item currency
//  2. currency of the referenced material record
//  3. home currency of the recipient's company code (vendor's code is
//     consulted when the recipient carries none)
//  4. EUR
//
// An unknown company code is not an error; it resolves to EUR.
func ResolveCurrency(item LineItem, vendor, recipient Party, materials MaterialCurrencyFunc, table map[CompanyCode]Currency) Currency {
	if item.Currency != "" {
		return item.Currency
	}
	if materials != nil && item.MaterialRef != "" {
		if c, ok := materials(item.MaterialRef); ok && c != "" {
			return c
		}
	}
	if table == nil {
		table = DefaultCompanyCurrencies()
	}
	code := recipient.CompanyCode
	if code == "" {
		code = vendor.CompanyCode
	}
	if c, ok := table[code]; ok {
		return c
	}
	return DefaultCurrency
}

// ResolveAll resolves the currency of every item in order
func ResolveAll(doc Document, materials MaterialCurrencyFunc, table map[CompanyCode]Currency) []Currency {
	items := doc.UsableItems()
	out := make([]Currency, len(items))
	for i, item := range items {
		out[i] = ResolveCurrency(item, doc.Vendor, doc.Recipient, materials, table)
	}
	return out
}

// PrimaryCurrency returns the most frequent currency, ties broken by first
// occurrence. It labels group and grand totals only; amounts are never
// converted between currencies.
func PrimaryCurrency(currencies []Currency) Currency {
	if len(currencies) == 0 {
		return DefaultCurrency
	}
	counts := make(map[Currency]int, len(currencies))
	firstSeen := make(map[Currency]int, len(currencies))
	for i, c := range currencies {
		counts[c]++
		if _, ok := firstSeen[c]; !ok {
			firstSeen[c] = i
		}
	}
	best := currencies[0]
	for c, n := range counts {
		if n > counts[best] || (n == counts[best] && firstSeen[c] < firstSeen[best]) {
			best = c
		}
	}
	return best
}
