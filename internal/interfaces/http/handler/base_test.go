package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/billforge/invoicegen/internal/domain/shared"
	"github.com/billforge/invoicegen/internal/infrastructure/render"
	"github.com/billforge/invoicegen/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandlerCreated(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.Created(c, "data")

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestBaseHandlerNotFound(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.NotFound(c, "PDF not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestHandleError_DomainError(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.HandleError(c, shared.NewDomainError("INCOMPLETE_VENDOR", "Vendor name is required"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeIncompleteVendor, resp.Error.Code)
	assert.Equal(t, "Vendor name is required", resp.Error.Message)
}

func TestHandleError_RenderError(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.HandleError(c, render.NewRenderError(render.ErrCodeRenderTimeout, "rendering timed out", nil))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeRenderTimeout, resp.Error.Code)
}

func TestHandleError_UnknownErrorIsOpaque(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.HandleError(c, errors.New("database on fire"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "database", "internal details must not leak")
}

func TestHandleError_CarriesRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()
	c.Set("request_id", "req-777")

	h.HandleError(c, shared.NewDomainError("NO_USABLE_ITEMS", "At least one line item is required"))

	resp := decodeResponse(t, w)
	assert.Equal(t, "req-777", resp.Error.RequestID)
}
