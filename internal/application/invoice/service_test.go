package invoice_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/billforge/invoicegen/internal/application/invoice"
	"github.com/billforge/invoicegen/internal/domain/document"
	"github.com/billforge/invoicegen/internal/domain/shared"
	"github.com/billforge/invoicegen/internal/infrastructure/render"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(ctx context.Context, req *render.RenderRequest) (*render.RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*render.RenderResult), args.Error(1)
}

func (m *MockPDFRenderer) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockPDFStorage struct {
	mock.Mock
}

func (m *MockPDFStorage) Store(ctx context.Context, req *render.StoreRequest) (*render.StoreResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*render.StoreResult), args.Error(1)
}

func (m *MockPDFStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockPDFStorage) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockPDFStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	args := m.Called(ctx, age)
	return args.Int(0), args.Error(1)
}

func (m *MockPDFStorage) GetURL(path string) string {
	args := m.Called(path)
	return args.String(0)
}

// =============================================================================
// Helpers
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestService(t *testing.T, renderer *MockPDFRenderer, storage *MockPDFStorage, opts ...invoice.Option) *invoice.Service {
	t.Helper()
	registry, err := render.NewRegistry(render.NewTemplateEngine())
	require.NoError(t, err)
	return invoice.NewService(registry, renderer, storage, zap.NewNop(), opts...)
}

func validRequest() invoice.DocumentRequest {
	return invoice.DocumentRequest{
		Mode:          "FI",
		Template:      "businessstandard",
		InvoiceNumber: "INV-2024-001",
		InvoiceDate:   "2024-03-15",
		Store:         true,
		Vendor: invoice.PartyDTO{
			Name:    "Acme Supplies GmbH",
			Street:  "Industriestr. 12",
			Zip:     "80331",
			City:    "Munich",
			Country: "Germany",
		},
		Recipient: invoice.PartyDTO{
			Name:    "Example Corp",
			Street:  "Main Street 1",
			Zip:     "10115",
			City:    "Berlin",
			Country: "Germany",
		},
		Items: []invoice.LineItemDTO{
			{
				Description:    "Consulting",
				Quantity:       dec("2"),
				Unit:           "h",
				UnitPrice:      dec("129.99"),
				TaxRatePercent: dec("19"),
			},
		},
	}
}

func pdfResult() *render.RenderResult {
	return &render.RenderResult{
		PDFData:        []byte("%PDF-1.4 fake"),
		PageCount:      1,
		RenderDuration: 42 * time.Millisecond,
	}
}

// logoPNG returns a base64-encoded 400x100 PNG
func logoPNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 400, 100))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// =============================================================================
// Generate
// =============================================================================

func TestGenerate_Success(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc := newTestService(t, renderer, storage)

	renderer.On("Render", mock.Anything, mock.Anything).Return(pdfResult(), nil)
	storage.On("Store", mock.Anything, mock.Anything).Return(&render.StoreResult{
		Path: "2024/03/INV-2024-001.pdf",
		URL:  "/api/v1/invoices/files/2024/03/INV-2024-001.pdf",
		Size: 13,
	}, nil)

	resp, err := svc.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.DocumentID)
	assert.Equal(t, "/api/v1/invoices/files/2024/03/INV-2024-001.pdf", resp.PdfURL)
	assert.Equal(t, 1, resp.PageCount)
	assert.Equal(t, "EUR", resp.Currency)
	// 2 * 129.99 = 259.98 net, 19% tax
	assert.Equal(t, "309.38", resp.GrossTotal)

	renderer.AssertNumberOfCalls(t, "Render", 1)
	storage.AssertNumberOfCalls(t, "Store", 1)
}

func TestGenerate_StorePayloadMatchesRender(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc := newTestService(t, renderer, storage)

	result := pdfResult()
	renderer.On("Render", mock.Anything, mock.Anything).Return(result, nil)

	var stored *render.StoreRequest
	storage.On("Store", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*render.StoreRequest)
		}).
		Return(&render.StoreResult{Path: "p", URL: "u", Size: int64(len(result.PDFData))}, nil)

	_, err := svc.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.Equal(t, result.PDFData, stored.PDFData)
	assert.Equal(t, "INV-2024-001", stored.InvoiceNumber)
}

func TestGenerate_BytesWhenStoreNotRequested(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc := newTestService(t, renderer, storage)

	renderer.On("Render", mock.Anything, mock.Anything).Return(pdfResult(), nil)

	req := validRequest()
	req.Store = false

	resp, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF-1.4 fake"), resp.PDFData)
	assert.Equal(t, int64(len(resp.PDFData)), resp.Size)
	assert.Empty(t, resp.PdfURL)
	assert.Empty(t, resp.Path)
	assert.NotEmpty(t, resp.DocumentID)
	storage.AssertNotCalled(t, "Store")
}

func TestGenerate_PartialLogoOverrideKeepsFitBox(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc := newTestService(t, renderer, storage)

	var html string
	renderer.On("Render", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			html = args.Get(1).(*render.RenderRequest).HTML
		}).
		Return(pdfResult(), nil)
	storage.On("Store", mock.Anything, mock.Anything).
		Return(&render.StoreResult{Path: "p", URL: "u"}, nil)

	req := validRequest()
	req.Logo = logoPNG(t)
	req.LogoConfig = &invoice.LogoConfigDTO{Alignment: "left"}

	_, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	// The alignment override applies, but the template's default fit box
	// survives: 400x100 fits the 220x64 box at 220x55
	assert.Contains(t, html, "flex-start")
	assert.Contains(t, html, `width="220"`)
	assert.NotContains(t, html, `width="0"`)
}

func TestGenerate_ValidationFailsBeforeRender(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc := newTestService(t, renderer, storage)

	req := validRequest()
	req.Recipient.Street = ""

	_, err := svc.Generate(context.Background(), req)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INCOMPLETE_RECIPIENT", domainErr.Code)

	renderer.AssertNotCalled(t, "Render")
	storage.AssertNotCalled(t, "Store")
}

func TestGenerate_UnknownTemplate(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc := newTestService(t, renderer, storage)

	req := validRequest()
	req.Template = "letterhead"

	_, err := svc.Generate(context.Background(), req)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNKNOWN_TEMPLATE", domainErr.Code)
}

func TestGenerate_RenderFailureStoresNothing(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc := newTestService(t, renderer, storage)

	renderer.On("Render", mock.Anything, mock.Anything).
		Return(nil, render.NewRenderError(render.ErrCodeRenderTimeout, "rendering timed out", context.DeadlineExceeded))

	_, err := svc.Generate(context.Background(), validRequest())
	require.Error(t, err)

	var renderErr *render.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, render.ErrCodeRenderTimeout, renderErr.Code)

	storage.AssertNotCalled(t, "Store")
}

func TestGenerate_StorageFailure(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc := newTestService(t, renderer, storage)

	renderer.On("Render", mock.Anything, mock.Anything).Return(pdfResult(), nil)
	storage.On("Store", mock.Anything, mock.Anything).
		Return(nil, render.NewRenderError(render.ErrCodeStorageFailed, "disk full", nil))

	_, err := svc.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store PDF")
}

// =============================================================================
// Locale and currency wiring
// =============================================================================

func TestGenerate_GermanFormattingForEUR(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc := newTestService(t, renderer, storage)

	var html string
	renderer.On("Render", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			html = args.Get(1).(*render.RenderRequest).HTML
		}).
		Return(pdfResult(), nil)
	storage.On("Store", mock.Anything, mock.Anything).
		Return(&render.StoreResult{Path: "p", URL: "u"}, nil)

	req := validRequest()
	req.Items = []invoice.LineItemDTO{{
		Description:    "Widget",
		Quantity:       dec("1"),
		UnitPrice:      dec("1234.5"),
		TaxRatePercent: dec("19"),
	}}

	_, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, html, "1.234,50")
}

func TestGenerate_LocaleOverride(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc := newTestService(t, renderer, storage)

	var html string
	renderer.On("Render", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			html = args.Get(1).(*render.RenderRequest).HTML
		}).
		Return(pdfResult(), nil)
	storage.On("Store", mock.Anything, mock.Anything).
		Return(&render.StoreResult{Path: "p", URL: "u"}, nil)

	req := validRequest()
	req.Locale = "en"
	req.Items = []invoice.LineItemDTO{{
		Description:    "Widget",
		Quantity:       dec("1"),
		UnitPrice:      dec("1234.5"),
		TaxRatePercent: dec("19"),
	}}

	_, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, html, "1,234.50")
}

func TestGenerate_ItemCurrencyWinsOverCompanyCode(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc := newTestService(t, renderer, storage)

	renderer.On("Render", mock.Anything, mock.Anything).Return(pdfResult(), nil)
	storage.On("Store", mock.Anything, mock.Anything).
		Return(&render.StoreResult{Path: "p", URL: "u"}, nil)

	req := validRequest()
	req.Recipient.CompanyCode = "2000" // GBP home currency
	req.Items[0].Currency = "CHF"

	resp, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "CHF", resp.Currency)
}

func TestGenerate_MaterialCurrencyLookup(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc := newTestService(t, renderer, storage, invoice.WithMaterialCurrencies(
		func(ref string) (document.Currency, bool) {
			if ref == "MAT-7" {
				return document.USD, true
			}
			return "", false
		}))

	renderer.On("Render", mock.Anything, mock.Anything).Return(pdfResult(), nil)
	storage.On("Store", mock.Anything, mock.Anything).
		Return(&render.StoreResult{Path: "p", URL: "u"}, nil)

	req := validRequest()
	req.Items[0].MaterialRef = "MAT-7"

	resp, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "USD", resp.Currency)
}

// =============================================================================
// Preview
// =============================================================================

func TestPreview_DoesNotStore(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc := newTestService(t, renderer, storage)

	renderer.On("Render", mock.Anything, mock.Anything).Return(pdfResult(), nil)

	result, err := svc.Preview(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF-1.4 fake"), result.PDFData)
	assert.Equal(t, 1, result.PageCount)
	storage.AssertNotCalled(t, "Store")
}

func TestPreview_IsRepeatable(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc := newTestService(t, renderer, storage)

	var htmls []string
	renderer.On("Render", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			htmls = append(htmls, args.Get(1).(*render.RenderRequest).HTML)
		}).
		Return(pdfResult(), nil)

	req := validRequest()
	_, err := svc.Preview(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Preview(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, htmls, 2)
	assert.Equal(t, htmls[0], htmls[1])
}

// =============================================================================
// Reference data
// =============================================================================

func TestTemplates_ListsAllVariants(t *testing.T) {
	svc := newTestService(t, new(MockPDFRenderer), new(MockPDFStorage))

	templates := svc.Templates()
	require.Len(t, templates, 5)

	names := make([]string, len(templates))
	grouped := map[string]bool{}
	for i, tpl := range templates {
		names[i] = tpl.Name
		grouped[tpl.Name] = tpl.GroupedSummary
	}
	assert.Equal(t, []string{"businessstandard", "classic", "professional", "businessgreen", "allrauer2"}, names)
	assert.True(t, grouped["allrauer2"])
	assert.False(t, grouped["classic"])
}

func TestCleanupArtifacts(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc := newTestService(t, renderer, storage)

	storage.On("CleanupOlderThan", mock.Anything, 30*24*time.Hour).Return(7, nil)

	n, err := svc.CleanupArtifacts(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

// =============================================================================
// Wire parsing
// =============================================================================

func TestToDomain_RejectsBadDates(t *testing.T) {
	req := validRequest()
	req.InvoiceDate = "15.03.2024"

	_, err := req.ToDomain()
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestToDomain_RejectsBadLogoEncoding(t *testing.T) {
	req := validRequest()
	req.Logo = "not base64!!"

	_, err := req.ToDomain()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "logo"))
}
