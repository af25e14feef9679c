package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
)

// Document error codes. These surface the pipeline's failure modes
// directly; all of them are caller-recoverable.
const (
	// ErrCodeInvalidMode is used when the document mode is not MM or FI
	ErrCodeInvalidMode = "ERR_INVALID_MODE"
	// ErrCodeUnknownTemplate is used when the template name is not registered
	ErrCodeUnknownTemplate = "ERR_UNKNOWN_TEMPLATE"
	// ErrCodeIncompleteVendor is used when vendor identity fields are missing
	ErrCodeIncompleteVendor = "ERR_INCOMPLETE_VENDOR"
	// ErrCodeIncompleteRecipient is used when recipient fields are missing
	ErrCodeIncompleteRecipient = "ERR_INCOMPLETE_RECIPIENT"
	// ErrCodeNoUsableItems is used when no line item survives blank filtering
	ErrCodeNoUsableItems = "ERR_NO_USABLE_ITEMS"
)

// Render error codes
const (
	// ErrCodeRenderTimeout is used when the PDF backend missed its deadline
	ErrCodeRenderTimeout = "ERR_RENDER_TIMEOUT"
	// ErrCodeRenderFailed is used for general rendering failures
	ErrCodeRenderFailed = "ERR_RENDER_FAILED"
	// ErrCodeInvalidHTML is used when the template output cannot be rendered
	ErrCodeInvalidHTML = "ERR_INVALID_HTML"
	// ErrCodeUnsupportedImage is used when the logo bytes cannot be decoded
	ErrCodeUnsupportedImage = "ERR_UNSUPPORTED_IMAGE"
	// ErrCodeStorageFailed is used when the artifact store rejected the PDF
	ErrCodeStorageFailed = "ERR_STORAGE_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,

	// Document errors -> 422 Unprocessable Entity: the JSON was
	// well-formed but the document cannot be rendered as sent
	ErrCodeInvalidMode:         http.StatusUnprocessableEntity,
	ErrCodeUnknownTemplate:     http.StatusUnprocessableEntity,
	ErrCodeIncompleteVendor:    http.StatusUnprocessableEntity,
	ErrCodeIncompleteRecipient: http.StatusUnprocessableEntity,
	ErrCodeNoUsableItems:       http.StatusUnprocessableEntity,
	ErrCodeUnsupportedImage:    http.StatusUnprocessableEntity,

	ErrCodeRenderTimeout: http.StatusGatewayTimeout,
	ErrCodeRenderFailed:  http.StatusInternalServerError,
	ErrCodeInvalidHTML:   http.StatusInternalServerError,
	ErrCodeStorageFailed: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps bare domain error codes to the wire format
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
	"INVALID_MODE":         ErrCodeInvalidMode,
	"UNKNOWN_TEMPLATE":     ErrCodeUnknownTemplate,
	"INCOMPLETE_VENDOR":    ErrCodeIncompleteVendor,
	"INCOMPLETE_RECIPIENT": ErrCodeIncompleteRecipient,
	"NO_USABLE_ITEMS":      ErrCodeNoUsableItems,
	"RENDER_TIMEOUT":       ErrCodeRenderTimeout,
	"RENDER_FAILED":        ErrCodeRenderFailed,
	"INVALID_HTML":         ErrCodeInvalidHTML,
	"UNSUPPORTED_IMAGE":    ErrCodeUnsupportedImage,
	"STORAGE_FAILED":       ErrCodeStorageFailed,
}

// NormalizeErrorCode converts a bare domain error code to the wire format.
// If the code is already in the new format or unknown, returns it as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
