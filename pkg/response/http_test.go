package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perform(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Response[any]) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)

	var body Response[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestErrorEnvelope(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) {
		Error(c, http.StatusNotFound, NewError("docgen.route_not_found", "endpoint not found"))
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "docgen.route_not_found", body.Code)
	assert.Equal(t, "endpoint not found", body.Message)
	assert.Nil(t, body.Data)

	_, body = perform(t, func(c *gin.Context) { AbortWithError(c, http.StatusBadRequest, errors.New("boom")) })
	assert.Equal(t, CodeError, body.Code)
	assert.Equal(t, "boom", body.Message)
	assert.False(t, body.Success)
}
