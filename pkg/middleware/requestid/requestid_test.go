package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, inbound string) (*httptest.ResponseRecorder, string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var fromGin, fromCtx string
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		fromGin = Value(c)
		fromCtx = FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set(Header, inbound)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, fromGin, fromCtx
}

func TestMiddlewareGeneratesID(t *testing.T) {
	w, fromGin, fromCtx := serve(t, "")
	id := w.Header().Get(Header)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, fromGin)
	assert.Equal(t, id, fromCtx)
}

func TestMiddlewareKeepsWellFormedInboundID(t *testing.T) {
	w, fromGin, _ := serve(t, "edge-proxy.12345678")
	assert.Equal(t, "edge-proxy.12345678", w.Header().Get(Header))
	assert.Equal(t, "edge-proxy.12345678", fromGin)
}

func TestMiddlewareReplacesMalformedInboundID(t *testing.T) {
	w, _, _ := serve(t, "bad id\nwith newline")
	id := w.Header().Get(Header)
	assert.NotEqual(t, "bad id\nwith newline", id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}
