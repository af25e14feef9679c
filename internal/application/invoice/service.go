// Package invoice assembles invoice documents into finished PDF artifacts.
package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/billforge/invoicegen/internal/domain/document"
	"github.com/billforge/invoicegen/internal/infrastructure/render"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service runs the document pipeline: validate, resolve currencies,
// aggregate taxes, fit the logo, render the template variant and print it
// to PDF. Generate additionally stores the artifact; Preview never does.
type Service struct {
	registry *render.Registry
	renderer render.PDFRenderer
	storage  render.PDFStorage
	logger   *zap.Logger

	materials         document.MaterialCurrencyFunc
	companyCurrencies map[document.CompanyCode]document.Currency
	translate         document.Translator
}

// Option configures optional service collaborators
type Option func(*Service)

// WithMaterialCurrencies supplies the material-record currency lookup
func WithMaterialCurrencies(fn document.MaterialCurrencyFunc) Option {
	return func(s *Service) {
		s.materials = fn
	}
}

// WithCompanyCurrencies overrides the built-in company-code currency table
func WithCompanyCurrencies(table map[document.CompanyCode]document.Currency) Option {
	return func(s *Service) {
		s.companyCurrencies = table
	}
}

// WithTranslator supplies the label translation function used by all
// renders of this service
func WithTranslator(fn document.Translator) Option {
	return func(s *Service) {
		s.translate = fn
	}
}

// NewService creates a new invoice Service
func NewService(
	registry *render.Registry,
	renderer render.PDFRenderer,
	storage render.PDFStorage,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		registry:          registry,
		renderer:          renderer,
		storage:           storage,
		logger:            logger,
		companyCurrencies: document.DefaultCompanyCurrencies(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// renderOutput is the result of the shared pipeline before storage
type renderOutput struct {
	pdf      *render.RenderResult
	primary  document.Currency
	summary  document.TaxSummary
	document document.Document
}

// run executes the full pipeline for one request. The document is
// snapshotted up front so concurrent renders of the same request never
// interfere, and nothing is written anywhere before every fallible step
// has succeeded.
func (s *Service) run(ctx context.Context, req DocumentRequest) (*renderOutput, error) {
	doc, err := req.ToDomain()
	if err != nil {
		return nil, err
	}
	doc = doc.Clone()

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	variant, err := s.registry.Get(doc.Template)
	if err != nil {
		return nil, err
	}

	resolved := document.ResolveAll(doc, s.materials, s.companyCurrencies)
	primary := document.PrimaryCurrency(resolved)
	summary := document.AggregateTaxes(doc.UsableItems())

	locale := render.ParseLocale(req.Locale, render.LocaleFor(primary))

	logoCfg := variant.DefaultLogoConfig().Merge(doc.LogoConfig)
	logoView, err := render.BuildLogoView(doc.Logo, logoCfg)
	if err != nil {
		return nil, err
	}

	vm := render.BuildViewModel(doc, resolved, summary, primary, logoView)
	opts := render.RenderOptions{Locale: locale, Translate: s.translate}

	html, err := variant.Render(ctx, vm, opts)
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &render.RenderRequest{
		HTML:       html,
		Margins:    render.DefaultMargins(),
		Title:      "Invoice " + doc.InvoiceNumber,
		FooterHTML: variant.FooterHTML(vm, opts),
	})
	if err != nil {
		return nil, err
	}

	return &renderOutput{
		pdf:      result,
		primary:  primary,
		summary:  summary,
		document: doc,
	}, nil
}

// Generate renders the document into its final PDF. By default the bytes
// go straight back to the caller; with req.Store the artifact is persisted
// and the response carries its download URL instead.
func (s *Service) Generate(ctx context.Context, req DocumentRequest) (*GenerateResponse, error) {
	out, err := s.run(ctx, req)
	if err != nil {
		return nil, err
	}

	documentID := uuid.New()
	resp := &GenerateResponse{
		DocumentID: documentID.String(),
		PageCount:  out.pdf.PageCount,
		Currency:   out.primary.String(),
		GrossTotal: out.summary.GrandGross.Round(2).StringFixed(2),
		DurationMS: float64(out.pdf.RenderDuration.Microseconds()) / 1000,
	}

	if req.Store {
		stored, err := s.storage.Store(ctx, &render.StoreRequest{
			DocumentID:    documentID,
			InvoiceNumber: out.document.InvoiceNumber,
			PDFData:       out.pdf.PDFData,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to store PDF: %w", err)
		}
		resp.PdfURL = stored.URL
		resp.Path = stored.Path
		resp.Size = stored.Size
	} else {
		resp.PDFData = out.pdf.PDFData
		resp.Size = int64(len(out.pdf.PDFData))
	}

	s.logger.Info("invoice generated",
		zap.String("documentId", documentID.String()),
		zap.String("invoiceNumber", out.document.InvoiceNumber),
		zap.String("template", out.document.Template.String()),
		zap.Bool("stored", req.Store),
		zap.Int("pages", out.pdf.PageCount),
		zap.Duration("renderDuration", out.pdf.RenderDuration))

	return resp, nil
}

// Preview renders the document and returns the PDF without storing it
func (s *Service) Preview(ctx context.Context, req DocumentRequest) (*PreviewResult, error) {
	out, err := s.run(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("invoice previewed",
		zap.String("invoiceNumber", out.document.InvoiceNumber),
		zap.String("template", out.document.Template.String()),
		zap.Int("pages", out.pdf.PageCount))

	return &PreviewResult{
		PDFData:   out.pdf.PDFData,
		PageCount: out.pdf.PageCount,
		Currency:  out.primary,
		Duration:  out.pdf.RenderDuration,
	}, nil
}

// Templates lists the selectable template variants in registration order
func (s *Service) Templates() []TemplateInfo {
	descriptors := s.registry.Descriptors()
	out := make([]TemplateInfo, len(descriptors))
	for i, d := range descriptors {
		out[i] = TemplateInfo{
			Name:           d.Name.String(),
			DisplayName:    d.DisplayName,
			Accent:         d.Accent,
			GroupedSummary: d.GroupedSummary,
		}
	}
	return out
}

// CleanupArtifacts removes stored PDFs older than the given age
func (s *Service) CleanupArtifacts(ctx context.Context, age time.Duration) (int, error) {
	return s.storage.CleanupOlderThan(ctx, age)
}
