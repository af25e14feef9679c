package document

import (
	"strings"
	"time"

	"github.com/billforge/invoicegen/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Address is the postal address of a vendor or recipient.
// All four fields are required before a document may be rendered.
type Address struct {
	Street  string
	Zip     string
	City    string
	Country string
}

// IsComplete returns true if every address field is non-blank
func (a Address) IsComplete() bool {
	return strings.TrimSpace(a.Street) != "" &&
		strings.TrimSpace(a.Zip) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.Country) != ""
}

// MissingFields lists the blank address fields by name
func (a Address) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(a.Zip) == "" {
		missing = append(missing, "zip")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.Country) == "" {
		missing = append(missing, "country")
	}
	return missing
}

// BankDetails holds optional banking fields rendered in the footer
type BankDetails struct {
	IBAN     string
	BIC      string
	BankName string
}

// IsEmpty returns true if no banking field is set
func (b BankDetails) IsEmpty() bool {
	return b.IBAN == "" && b.BIC == "" && b.BankName == ""
}

// Contact holds optional contact fields rendered in the footer
type Contact struct {
	Phone string
	Email string
	URL   string
}

// Party represents a vendor or recipient of an invoice document
type Party struct {
	Name        string
	Address     Address
	CompanyCode CompanyCode
	Bank        BankDetails
	VATNumber   string
	Contact     Contact
}

// LineItem is one billed position of a document. It is constructed by the
// caller and treated as immutable by the engine.
type LineItem struct {
	MaterialRef    string
	Description    string
	Quantity       decimal.Decimal
	Unit           string
	UnitPrice      decimal.Decimal
	TaxRatePercent decimal.Decimal
	Currency       Currency // optional explicit override
}

// LineTotal returns quantity multiplied by unit price, tax-exclusive
func (i LineItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// IsBlank reports whether the item is an unfilled form row. Blank rows are
// skipped by aggregation and do not count towards the minimum-item rule.
func (i LineItem) IsBlank() bool {
	return strings.TrimSpace(i.Description) == "" || i.Quantity.IsZero()
}

// LogoConfig controls how the logo is fitted and placed in the header.
// Each template carries a default; callers may override it. The engine
// consumes it once per render and never mutates it.
type LogoConfig struct {
	MaxWidth          float64
	MaxHeight         float64
	ContainerWidth    float64
	ContainerHeight   float64
	Alignment         Alignment
	VerticalAlignment VerticalAlignment
}

// Merge overlays the set fields of override onto c. Zero dimensions and
// empty alignments keep c's value, so a partial override, alignment only
// for example, never collapses the fit box.
func (c LogoConfig) Merge(override *LogoConfig) LogoConfig {
	if override == nil {
		return c
	}
	out := c
	if override.MaxWidth > 0 {
		out.MaxWidth = override.MaxWidth
	}
	if override.MaxHeight > 0 {
		out.MaxHeight = override.MaxHeight
	}
	if override.ContainerWidth > 0 {
		out.ContainerWidth = override.ContainerWidth
	}
	if override.ContainerHeight > 0 {
		out.ContainerHeight = override.ContainerHeight
	}
	if override.Alignment != "" {
		out.Alignment = override.Alignment
	}
	if override.VerticalAlignment != "" {
		out.VerticalAlignment = override.VerticalAlignment
	}
	return out
}

// Document is the value object handed to the engine by the form layer.
// The engine never mutates it; all derived data (tax groups, resolved
// currencies, fitted logo dimensions) is produced separately.
type Document struct {
	Mode          Mode
	InvoiceNumber string
	InvoiceDate   time.Time

	// MM-mode metadata; ignored for FI documents
	OrderNumber        string
	OrderDate          *time.Time
	DeliveryNoteNumber string
	DeliveryDate       *time.Time

	CustomerNumber string
	Processor      string

	Vendor    Party
	Recipient Party
	Items     []LineItem

	// Logo is the raw image bytes (optional). LogoConfig overrides the
	// template default when set.
	Logo       []byte
	LogoConfig *LogoConfig

	Template TemplateName
}

// UsableItems returns the items that survive blank-row filtering,
// preserving order
func (d Document) UsableItems() []LineItem {
	items := make([]LineItem, 0, len(d.Items))
	for _, item := range d.Items {
		if !item.IsBlank() {
			items = append(items, item)
		}
	}
	return items
}

// Clone returns a deep copy of the document. The assembler snapshots its
// input this way because the caller's in-memory model may still change
// while a render is in flight.
func (d Document) Clone() Document {
	out := d
	if d.Items != nil {
		out.Items = make([]LineItem, len(d.Items))
		copy(out.Items, d.Items)
	}
	if d.Logo != nil {
		out.Logo = make([]byte, len(d.Logo))
		copy(out.Logo, d.Logo)
	}
	if d.LogoConfig != nil {
		cfg := *d.LogoConfig
		out.LogoConfig = &cfg
	}
	if d.OrderDate != nil {
		t := *d.OrderDate
		out.OrderDate = &t
	}
	if d.DeliveryDate != nil {
		t := *d.DeliveryDate
		out.DeliveryDate = &t
	}
	return out
}

// Validate checks the minimum-completeness rules that must hold before any
// rendering work begins. All failures are caller-recoverable.
func (d Document) Validate() error {
	if !d.Mode.IsValid() {
		return shared.NewDomainError("INVALID_MODE", "Document mode must be MM or FI")
	}
	if !d.Template.IsValid() {
		return shared.NewDomainError("UNKNOWN_TEMPLATE", "Unknown template name: "+d.Template.String())
	}
	if strings.TrimSpace(d.Vendor.Name) == "" {
		return shared.NewDomainError("INCOMPLETE_VENDOR", "Vendor name is required")
	}
	if missing := d.Vendor.Address.MissingFields(); len(missing) > 0 {
		return shared.NewDomainError("INCOMPLETE_VENDOR",
			"Vendor address is missing required fields: "+strings.Join(missing, ", "))
	}
	if strings.TrimSpace(d.Recipient.Name) == "" {
		return shared.NewDomainError("INCOMPLETE_RECIPIENT", "Recipient name is required")
	}
	if missing := d.Recipient.Address.MissingFields(); len(missing) > 0 {
		return shared.NewDomainError("INCOMPLETE_RECIPIENT",
			"Recipient address is missing required fields: "+strings.Join(missing, ", "))
	}
	if len(d.UsableItems()) == 0 {
		return shared.NewDomainError("NO_USABLE_ITEMS",
			"Document must contain at least one line item with description and quantity")
	}
	return nil
}

// Translator resolves a label key to a localized string. A nil Translator
// makes the renderer fall back to its built-in English labels.
type Translator func(key string) string
