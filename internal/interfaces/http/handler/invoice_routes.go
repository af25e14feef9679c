package handler

import (
	"github.com/billforge/invoicegen/internal/interfaces/http/router"
)

// InvoiceRoutes creates the route group for invoice document endpoints
func InvoiceRoutes(handler *InvoiceHandler) *router.DomainGroup {
	group := router.NewDomainGroup("invoices", "/invoices")

	// Generation and preview
	group.POST("/generate", handler.Generate)
	group.POST("/preview", handler.Preview)

	// Stored artifacts
	group.GET("/files/*path", handler.DownloadArtifact)
	group.DELETE("/files/*path", handler.DeleteArtifact)
	group.POST("/cleanup", handler.Cleanup)

	return group
}

// TemplateRoutes creates the route group for template reference data
func TemplateRoutes(handler *InvoiceHandler) *router.DomainGroup {
	group := router.NewDomainGroup("templates", "/templates")
	group.GET("", handler.ListTemplates)
	return group
}
