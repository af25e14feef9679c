package invoice

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/billforge/invoicegen/internal/domain/document"
	"github.com/billforge/invoicegen/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Request DTOs
// =============================================================================

// PartyDTO carries the vendor or recipient data of a document request
type PartyDTO struct {
	Name        string `json:"name" binding:"required,max=200"`
	Street      string `json:"street" binding:"max=200"`
	Zip         string `json:"zip" binding:"max=20"`
	City        string `json:"city" binding:"max=100"`
	Country     string `json:"country" binding:"max=100"`
	CompanyCode string `json:"company_code" binding:"omitempty,max=10"`
	IBAN        string `json:"iban" binding:"max=42"`
	BIC         string `json:"bic" binding:"max=11"`
	BankName    string `json:"bank_name" binding:"max=100"`
	VATNumber   string `json:"vat_number" binding:"max=30"`
	Phone       string `json:"phone" binding:"max=40"`
	Email       string `json:"email" binding:"omitempty,email"`
	URL         string `json:"url" binding:"max=200"`
}

// LineItemDTO carries one billed position. Quantity, unit price and tax
// rate accept JSON numbers or numeric strings.
type LineItemDTO struct {
	MaterialRef    string          `json:"material_ref" binding:"max=60"`
	Description    string          `json:"description" binding:"max=500"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit" binding:"max=20"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	Currency       string          `json:"currency" binding:"omitempty,oneof=EUR GBP CHF USD"`
}

// LogoConfigDTO overrides the template's default logo box
type LogoConfigDTO struct {
	MaxWidth          float64 `json:"max_width" binding:"omitempty,gt=0"`
	MaxHeight         float64 `json:"max_height" binding:"omitempty,gt=0"`
	ContainerWidth    float64 `json:"container_width" binding:"omitempty,gt=0"`
	ContainerHeight   float64 `json:"container_height" binding:"omitempty,gt=0"`
	Alignment         string  `json:"alignment" binding:"omitempty,oneof=left center right"`
	VerticalAlignment string  `json:"vertical_alignment" binding:"omitempty,oneof=top middle bottom"`
}

// DocumentRequest is the wire form of an invoice document. Dates use
// yyyy-MM-dd; the logo is base64-encoded image bytes.
type DocumentRequest struct {
	Mode          string `json:"mode" binding:"required,oneof=MM FI"`
	Template      string `json:"template" binding:"required,templatename"`
	InvoiceNumber string `json:"invoice_number" binding:"required,max=40"`
	InvoiceDate   string `json:"invoice_date" binding:"required"`

	OrderNumber        string `json:"order_number" binding:"max=40"`
	OrderDate          string `json:"order_date"`
	DeliveryNoteNumber string `json:"delivery_note_number" binding:"max=40"`
	DeliveryDate       string `json:"delivery_date"`

	CustomerNumber string `json:"customer_number" binding:"max=40"`
	Processor      string `json:"processor" binding:"max=100"`

	Vendor    PartyDTO `json:"vendor" binding:"required"`
	Recipient PartyDTO `json:"recipient" binding:"required"`

	Items []LineItemDTO `json:"items" binding:"required,min=1,dive"`

	Logo       string         `json:"logo"`
	LogoConfig *LogoConfigDTO `json:"logo_config"`

	// Locale overrides the currency-derived formatting locale ("de"/"en")
	Locale string `json:"locale" binding:"omitempty,oneof=de en"`

	// Store persists the PDF artifact and returns its download URL
	// instead of the PDF bytes
	Store bool `json:"store"`
}

// =============================================================================
// Response DTOs
// =============================================================================

// GenerateResponse describes a generated invoice PDF. PDFData is set for
// unstored renders; PdfURL and Path for stored ones.
type GenerateResponse struct {
	DocumentID string  `json:"document_id"`
	PdfURL     string  `json:"pdf_url,omitempty"`
	Path       string  `json:"path,omitempty"`
	PageCount  int     `json:"page_count"`
	Size       int64   `json:"size"`
	Currency   string  `json:"currency"`
	GrossTotal string  `json:"gross_total"`
	DurationMS float64 `json:"duration_ms"`

	PDFData []byte `json:"-"`
}

// PreviewResult carries an unstored render. The PDF bytes go straight back
// to the caller.
type PreviewResult struct {
	PDFData   []byte
	PageCount int
	Currency  document.Currency
	Duration  time.Duration
}

// TemplateInfo describes one selectable template variant
type TemplateInfo struct {
	Name           string `json:"name"`
	DisplayName    string `json:"display_name"`
	Accent         string `json:"accent"`
	GroupedSummary bool   `json:"grouped_summary"`
}

// =============================================================================
// Mapping
// =============================================================================

const wireDateLayout = "2006-01-02"

func parseWireDate(s string) (time.Time, error) {
	t, err := time.Parse(wireDateLayout, s)
	if err != nil {
		// Tolerate full timestamps from clients that serialize time.Time
		t, err = time.Parse(time.RFC3339, s)
	}
	return t, err
}

func parseOptionalDate(s, field string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseWireDate(s)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid "+field+": expected yyyy-MM-dd")
	}
	return &t, nil
}

func toDomainParty(dto PartyDTO) document.Party {
	return document.Party{
		Name: dto.Name,
		Address: document.Address{
			Street:  dto.Street,
			Zip:     dto.Zip,
			City:    dto.City,
			Country: dto.Country,
		},
		CompanyCode: document.CompanyCode(dto.CompanyCode),
		Bank: document.BankDetails{
			IBAN:     dto.IBAN,
			BIC:      dto.BIC,
			BankName: dto.BankName,
		},
		VATNumber: dto.VATNumber,
		Contact: document.Contact{
			Phone: dto.Phone,
			Email: dto.Email,
			URL:   dto.URL,
		},
	}
}

// ToDomain converts the wire request into the domain document. Binding
// validation has already run; this only handles conversions that can fail
// on well-formed JSON (dates, base64 logo bytes).
func (r DocumentRequest) ToDomain() (document.Document, error) {
	var doc document.Document

	invoiceDate, err := parseWireDate(r.InvoiceDate)
	if err != nil {
		return doc, shared.NewDomainError("INVALID_INPUT", "Invalid invoice_date: expected yyyy-MM-dd")
	}

	orderDate, err := parseOptionalDate(r.OrderDate, "order_date")
	if err != nil {
		return doc, err
	}
	deliveryDate, err := parseOptionalDate(r.DeliveryDate, "delivery_date")
	if err != nil {
		return doc, err
	}

	var logo []byte
	if r.Logo != "" {
		logo, err = base64.StdEncoding.DecodeString(r.Logo)
		if err != nil {
			return doc, shared.NewDomainError("INVALID_INPUT", "Invalid logo: expected base64-encoded image bytes")
		}
	}

	items := make([]document.LineItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = document.LineItem{
			MaterialRef:    item.MaterialRef,
			Description:    item.Description,
			Quantity:       item.Quantity,
			Unit:           item.Unit,
			UnitPrice:      item.UnitPrice,
			TaxRatePercent: item.TaxRatePercent,
			Currency:       document.Currency(item.Currency),
		}
	}

	doc = document.Document{
		Mode:               document.Mode(r.Mode),
		InvoiceNumber:      r.InvoiceNumber,
		InvoiceDate:        invoiceDate,
		OrderNumber:        r.OrderNumber,
		OrderDate:          orderDate,
		DeliveryNoteNumber: r.DeliveryNoteNumber,
		DeliveryDate:       deliveryDate,
		CustomerNumber:     r.CustomerNumber,
		Processor:          r.Processor,
		Vendor:             toDomainParty(r.Vendor),
		Recipient:          toDomainParty(r.Recipient),
		Items:              items,
		Logo:               logo,
		Template:           document.TemplateName(r.Template),
	}

	if r.LogoConfig != nil {
		doc.LogoConfig = &document.LogoConfig{
			MaxWidth:          r.LogoConfig.MaxWidth,
			MaxHeight:         r.LogoConfig.MaxHeight,
			ContainerWidth:    r.LogoConfig.ContainerWidth,
			ContainerHeight:   r.LogoConfig.ContainerHeight,
			Alignment:         document.Alignment(r.LogoConfig.Alignment),
			VerticalAlignment: document.VerticalAlignment(r.LogoConfig.VerticalAlignment),
		}
	}

	return doc, nil
}
