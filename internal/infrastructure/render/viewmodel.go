package render

import (
	"time"

	"github.com/billforge/invoicegen/internal/domain/document"
	"github.com/shopspring/decimal"
)

// ItemView is one rendered table row. Amounts stay decimal; the template
// functions format them at output time.
type ItemView struct {
	Pos            int
	Description    string
	Quantity       decimal.Decimal
	Unit           string
	UnitPrice      decimal.Decimal
	TaxRatePercent decimal.Decimal
	LineTotal      decimal.Decimal
	// Currency as resolved for this item. Display uses the document's
	// primary currency for totals; per-item currency is kept for rows
	// that explicitly deviate.
	Currency document.Currency
}

// ViewModel is the fully derived input of a template variant. It contains
// everything a variant needs so that the five variants stay pure
// presentation.
type ViewModel struct {
	Mode document.Mode
	// MM is true for goods-flow documents whose billing block carries
	// order and delivery metadata
	MM bool

	InvoiceNumber      string
	InvoiceDate        time.Time
	OrderNumber        string
	OrderDate          *time.Time
	DeliveryNoteNumber string
	DeliveryDate       *time.Time
	CustomerNumber     string
	Processor          string

	Vendor    document.Party
	Recipient document.Party

	Items    []ItemView
	Summary  document.TaxSummary
	Currency document.Currency
	Logo     *LogoView
}

// BuildViewModel assembles the view model from the validated document and
// the outputs of the pure pipeline components. resolved must align with
// doc.UsableItems().
func BuildViewModel(doc document.Document, resolved []document.Currency, summary document.TaxSummary, primary document.Currency, logo *LogoView) *ViewModel {
	items := doc.UsableItems()
	rows := make([]ItemView, len(items))
	for i, item := range items {
		currency := primary
		if i < len(resolved) {
			currency = resolved[i]
		}
		rows[i] = ItemView{
			Pos:            i + 1,
			Description:    item.Description,
			Quantity:       item.Quantity,
			Unit:           item.Unit,
			UnitPrice:      item.UnitPrice,
			TaxRatePercent: item.TaxRatePercent,
			LineTotal:      item.LineTotal(),
			Currency:       currency,
		}
	}

	return &ViewModel{
		Mode:               doc.Mode,
		MM:                 doc.Mode == document.ModeMM,
		InvoiceNumber:      doc.InvoiceNumber,
		InvoiceDate:        doc.InvoiceDate,
		OrderNumber:        doc.OrderNumber,
		OrderDate:          doc.OrderDate,
		DeliveryNoteNumber: doc.DeliveryNoteNumber,
		DeliveryDate:       doc.DeliveryDate,
		CustomerNumber:     doc.CustomerNumber,
		Processor:          doc.Processor,
		Vendor:             doc.Vendor,
		Recipient:          doc.Recipient,
		Items:              rows,
		Summary:            summary,
		Currency:           primary,
		Logo:               logo,
	}
}
