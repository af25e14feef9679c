// Package document contains the invoice document bounded context.
// It defines the Document model handed over by the form layer and the
// three pure components of the generation pipeline: currency resolution,
// tax aggregation, and logo fitting. Everything in this package is free
// of I/O and safe for concurrent use.
package document
