package render

import "github.com/billforge/invoicegen/internal/domain/document"

// englishLabels is the built-in fallback label table. The engine itself is
// locale-agnostic: callers pass a translate function and these defaults
// only apply when they don't.
var englishLabels = map[string]string{
	"invoice":            "Invoice",
	"invoiceNumber":      "Invoice No.",
	"invoiceDate":        "Invoice Date",
	"orderNumber":        "Order No.",
	"orderDate":          "Order Date",
	"deliveryNoteNumber": "Delivery Note No.",
	"deliveryDate":       "Delivery Date",
	"customerNumber":     "Customer No.",
	"processor":          "Processed by",
	"billTo":             "Bill To",
	"pos":                "Pos.",
	"description":        "Description",
	"quantity":           "Qty",
	"unit":               "Unit",
	"unitPrice":          "Unit Price",
	"taxRate":            "Tax %",
	"lineTotal":          "Total",
	"netAmount":          "Net Amount",
	"taxAmount":          "Tax Amount",
	"grossAmount":        "Gross Amount",
	"grandTotal":         "Grand Total",
	"paymentInstruction": "Please transfer the amount of",
	"paymentReference":   "quoting the invoice number",
	"iban":               "IBAN",
	"bic":                "BIC",
	"bank":               "Bank",
	"vatNumber":          "VAT No.",
	"phone":              "Phone",
	"email":              "Email",
	"web":                "Web",
	"page":               "Page",
	"pageOf":             "of",
}

// Label resolves a label key through the caller's translator, falling
// back to the English table and finally to the key itself
func Label(translate document.Translator, key string) string {
	if translate != nil {
		if s := translate(key); s != "" && s != key {
			return s
		}
	}
	if s, ok := englishLabels[key]; ok {
		return s
	}
	return key
}
