package document

// Mode represents the business flow a document belongs to
type Mode string

const (
	// ModeMM is the goods/order flow (Materials Management): order and
	// delivery metadata are part of the rendered billing block.
	ModeMM Mode = "MM"
	// ModeFI is the financial/service flow: no order or delivery fields.
	ModeFI Mode = "FI"
)

// IsValid checks if the Mode is a valid value
func (m Mode) IsValid() bool {
	return m == ModeMM || m == ModeFI
}

// String returns the string representation of Mode
func (m Mode) String() string {
	return string(m)
}

// TemplateName identifies one of the built-in template variants
type TemplateName string

const (
	TemplateBusinessStandard TemplateName = "businessstandard"
	TemplateClassic          TemplateName = "classic"
	TemplateProfessional     TemplateName = "professional"
	TemplateBusinessGreen    TemplateName = "businessgreen"
	TemplateAllrauer         TemplateName = "allrauer2"
)

// IsValid checks if the TemplateName is a valid value
func (t TemplateName) IsValid() bool {
	switch t {
	case TemplateBusinessStandard, TemplateClassic, TemplateProfessional,
		TemplateBusinessGreen, TemplateAllrauer:
		return true
	}
	return false
}

// String returns the string representation of TemplateName
func (t TemplateName) String() string {
	return string(t)
}

// AllTemplateNames returns all valid TemplateName values
func AllTemplateNames() []TemplateName {
	return []TemplateName{
		TemplateBusinessStandard, TemplateClassic, TemplateProfessional,
		TemplateBusinessGreen, TemplateAllrauer,
	}
}

// CompanyCode is the enumerated business-unit identifier carried by a
// vendor or recipient. Each code implies a home currency.
type CompanyCode string

const (
	CompanyCode1000 CompanyCode = "1000"
	CompanyCode2000 CompanyCode = "2000"
	CompanyCode3000 CompanyCode = "3000"
)

// String returns the string representation of CompanyCode
func (c CompanyCode) String() string {
	return string(c)
}

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	CHF Currency = "CHF"
	USD Currency = "USD"
)

// DefaultCurrency is the fallback when no other source resolves
const DefaultCurrency = EUR

// String returns the string representation of Currency
func (c Currency) String() string {
	return string(c)
}

// Alignment represents horizontal placement of the logo inside its container
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// IsValid checks if the Alignment is a valid value
func (a Alignment) IsValid() bool {
	return a == AlignLeft || a == AlignCenter || a == AlignRight
}

// VerticalAlignment represents vertical placement of the logo inside its container
type VerticalAlignment string

const (
	VAlignTop    VerticalAlignment = "top"
	VAlignMiddle VerticalAlignment = "middle"
	VAlignBottom VerticalAlignment = "bottom"
)

// IsValid checks if the VerticalAlignment is a valid value
func (v VerticalAlignment) IsValid() bool {
	return v == VAlignTop || v == VAlignMiddle || v == VAlignBottom
}
