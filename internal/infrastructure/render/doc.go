// Package render provides the rendering infrastructure for invoice
// documents: the HTML template engine with its five built-in template
// variants, the Chrome-based HTML-to-PDF backend, and storage for
// generated artifacts.
//
// The package consumes a fully derived view model (resolved currency,
// aggregated taxes, fitted logo) and owns no business rules beyond
// presentation.
package render
