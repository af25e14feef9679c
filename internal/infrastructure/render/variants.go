package render

import (
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/billforge/invoicegen/internal/domain/document"
	"github.com/billforge/invoicegen/internal/domain/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

// Descriptor describes a template variant for template pickers
type Descriptor struct {
	Name        document.TemplateName `json:"name"`
	DisplayName string                `json:"displayName"`
	// Accent is the variant's primary styling color
	Accent string `json:"accent"`
	// GroupedSummary is true when the footer lists one row per tax group
	// instead of a single net/tax/gross line
	GroupedSummary bool `json:"groupedSummary"`
	// DefaultLogo is the logo box this variant reserves in its header
	DefaultLogo document.LogoConfig `json:"-"`

	filePath string
}

// Variant is one of the built-in template renderers. All variants share
// the same data contract and section order; only styling constants and the
// summary layout differ, which is what lets callers swap templates without
// touching the document.
type Variant struct {
	descriptor Descriptor
	content    string
	engine     *TemplateEngine
}

// Name returns the variant's template name
func (v *Variant) Name() document.TemplateName {
	return v.descriptor.Name
}

// Descriptor returns the variant's descriptor
func (v *Variant) Descriptor() Descriptor {
	return v.descriptor
}

// DefaultLogoConfig returns the logo box this variant fits logos into
func (v *Variant) DefaultLogoConfig() document.LogoConfig {
	return v.descriptor.DefaultLogo
}

// Render produces the variant's HTML body for the view model
func (v *Variant) Render(ctx context.Context, vm *ViewModel, opts RenderOptions) (string, error) {
	return v.engine.Render(ctx, string(v.descriptor.Name), v.content, vm, opts)
}

// FooterHTML builds the per-page footer for the PDF backend. Chrome only
// supports inline styles here; the pageNumber/totalPages span classes are
// substituted by the backend on every page.
func (v *Variant) FooterHTML(vm *ViewModel, opts RenderOptions) string {
	return fmt.Sprintf(
		`<div style="font-size:8px;font-family:Helvetica,Arial,sans-serif;width:100%%;text-align:center;color:#777;">%s &middot; %s <span class="pageNumber"></span> %s <span class="totalPages"></span></div>`,
		template.HTMLEscapeString(vm.Vendor.Name),
		template.HTMLEscapeString(Label(opts.Translate, "page")),
		template.HTMLEscapeString(Label(opts.Translate, "pageOf")),
	)
}

// Registry holds the built-in template variants, keyed by name. Adding a
// variant means adding one descriptor and one template file; the assembler
// never changes.
type Registry struct {
	variants map[document.TemplateName]*Variant
	order    []document.TemplateName
}

// builtinDescriptors defines the five shipped variants. The logo boxes
// reflect each variant's header layout.
func builtinDescriptors() []Descriptor {
	standardLogo := document.LogoConfig{
		MaxWidth: 220, MaxHeight: 64,
		ContainerWidth: 240, ContainerHeight: 80,
		Alignment: document.AlignRight, VerticalAlignment: document.VAlignTop,
	}
	return []Descriptor{
		{
			Name:        document.TemplateBusinessStandard,
			DisplayName: "Business Standard",
			Accent:      "#1f4e79",
			DefaultLogo: standardLogo,
			filePath:    "templates/businessstandard.html",
		},
		{
			Name:        document.TemplateClassic,
			DisplayName: "Classic",
			Accent:      "#333333",
			DefaultLogo: standardLogo,
			filePath:    "templates/classic.html",
		},
		{
			Name:        document.TemplateProfessional,
			DisplayName: "Professional",
			Accent:      "#0d6e6e",
			DefaultLogo: document.LogoConfig{
				MaxWidth: 180, MaxHeight: 90,
				ContainerWidth: 200, ContainerHeight: 100,
				Alignment: document.AlignRight, VerticalAlignment: document.VAlignMiddle,
			},
			filePath: "templates/professional.html",
		},
		{
			Name:        document.TemplateBusinessGreen,
			DisplayName: "Business Green",
			Accent:      "#2e7d32",
			DefaultLogo: standardLogo,
			filePath:    "templates/businessgreen.html",
		},
		{
			Name:           document.TemplateAllrauer,
			DisplayName:    "Allrauer",
			Accent:         "#8c1d40",
			GroupedSummary: true,
			DefaultLogo: document.LogoConfig{
				MaxWidth: 260, MaxHeight: 56,
				ContainerWidth: 280, ContainerHeight: 70,
				Alignment: document.AlignLeft, VerticalAlignment: document.VAlignTop,
			},
			filePath: "templates/allrauer2.html",
		},
	}
}

// NewRegistry loads the built-in variants from the embedded template files
func NewRegistry(engine *TemplateEngine) (*Registry, error) {
	registry := &Registry{
		variants: make(map[document.TemplateName]*Variant),
	}
	for _, desc := range builtinDescriptors() {
		content, err := templateFS.ReadFile(desc.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load template %s: %w", desc.Name, err)
		}
		registry.variants[desc.Name] = &Variant{
			descriptor: desc,
			content:    string(content),
			engine:     engine,
		}
		registry.order = append(registry.order, desc.Name)
	}
	return registry, nil
}

// Get returns the variant for the given template name
func (r *Registry) Get(name document.TemplateName) (*Variant, error) {
	variant, ok := r.variants[name]
	if !ok {
		return nil, shared.NewDomainError("UNKNOWN_TEMPLATE", "Unknown template name: "+name.String())
	}
	return variant, nil
}

// Descriptors lists all variants in registration order
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.variants[name].descriptor)
	}
	return out
}
