package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeInvalidMode, http.StatusUnprocessableEntity},
		{ErrCodeUnknownTemplate, http.StatusUnprocessableEntity},
		{ErrCodeIncompleteVendor, http.StatusUnprocessableEntity},
		{ErrCodeIncompleteRecipient, http.StatusUnprocessableEntity},
		{ErrCodeNoUsableItems, http.StatusUnprocessableEntity},
		{ErrCodeUnsupportedImage, http.StatusUnprocessableEntity},
		{ErrCodeRenderTimeout, http.StatusGatewayTimeout},
		{ErrCodeRenderFailed, http.StatusInternalServerError},
		{ErrCodeStorageFailed, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, GetHTTPStatus(tt.code), tt.code)
	}
}

func TestGetHTTPStatus_UnknownCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("ERR_SOMETHING_NEW"))
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeUnknownTemplate, NormalizeErrorCode("UNKNOWN_TEMPLATE"))
	assert.Equal(t, ErrCodeIncompleteRecipient, NormalizeErrorCode("INCOMPLETE_RECIPIENT"))
	assert.Equal(t, ErrCodeRenderTimeout, NormalizeErrorCode("RENDER_TIMEOUT"))

	// Already-normalized and unknown codes pass through
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(ErrCodeNotFound))
	assert.Equal(t, "CUSTOM_CODE", NormalizeErrorCode("CUSTOM_CODE"))
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "Template", Message: "failed on rule: templatename"},
	}
	resp := NewValidationErrorResponse("Request validation failed", "req-1", details)

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 1)
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]int{"n": 1})
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
}
