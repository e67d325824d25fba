package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
	"github.com/unisphere/unisphere-api/pkg/logger"
)

type stubValidator struct {
	claims *models.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	final := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(logger.ContextUserIDKey)})
	}
	r.GET("/things/:id", append(handlers, final)...)
	r.POST("/things/:id", append(handlers, final)...)
	return r
}

func do(r http.Handler, method, target, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTRequiresBearerToken(t *testing.T) {
	v := stubValidator{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleUser}}
	r := newEngine(JWT(v))

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/things/1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/things/1", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/things/1", "Bearer bad").Code)

	rec := do(r, http.MethodGet, "/things/1", "Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user":"u1"`)

	// query tokens are only honoured on websocket routes
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/things/1?token=good", "").Code)
}

func TestWebSocketJWTAcceptsQueryToken(t *testing.T) {
	v := stubValidator{claims: &models.JWTClaims{UserID: "u2"}}
	r := newEngine(WebSocketJWT(v))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/things/1?token=good", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/things/1?token=bad", "").Code)
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	v := stubValidator{claims: &models.JWTClaims{UserID: "u3"}}
	r := newEngine(OptionalJWT(v))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/things/1", "Bearer bad").Code)
	rec := do(r, http.MethodGet, "/things/1", "Bearer good")
	assert.Contains(t, rec.Body.String(), `"user":"u3"`)
}

func TestRBAC(t *testing.T) {
	user := stubValidator{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleUser}}
	admin := stubValidator{claims: &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}}

	assert.Equal(t, http.StatusForbidden, do(newEngine(JWT(user), AdminOnly()), http.MethodGet, "/things/9", "Bearer good").Code)
	assert.Equal(t, http.StatusOK, do(newEngine(JWT(admin), AdminOnly()), http.MethodGet, "/things/9", "Bearer good").Code)

	self := newEngine(JWT(user), RBAC(string(models.RoleAdmin), SelfAccess))
	assert.Equal(t, http.StatusOK, do(self, http.MethodGet, "/things/u1", "Bearer good").Code)
	assert.Equal(t, http.StatusForbidden, do(self, http.MethodGet, "/things/u2", "Bearer good").Code)

	assert.Equal(t, http.StatusUnauthorized, do(newEngine(AdminOnly()), http.MethodGet, "/things/1", "").Code)
}

type recordingAudit struct {
	logs []*models.AuditLog
	err  error
}

func (r *recordingAudit) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return r.err
}

func TestAuditRecordsSuccessfulWritesOnly(t *testing.T) {
	v := stubValidator{claims: &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}}
	repo := &recordingAudit{}
	r := newEngine(JWT(v), Audit(repo, "menu", nil))

	do(r, http.MethodGet, "/things/1", "Bearer good")
	assert.Empty(t, repo.logs)

	do(r, http.MethodPost, "/things/42", "Bearer good")
	require.Len(t, repo.logs, 1)
	entry := repo.logs[0]
	assert.Equal(t, models.AuditActionAdminWrite, entry.Action)
	assert.Equal(t, "menu", entry.Resource)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "42", *entry.ResourceID)
	assert.Equal(t, "a1", *entry.UserID)

	do(r, http.MethodPost, "/things/1", "Bearer bad")
	assert.Len(t, repo.logs, 1)
}

func TestAuditSwallowsWriteErrors(t *testing.T) {
	v := stubValidator{claims: &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}}
	r := newEngine(JWT(v), Audit(&recordingAudit{err: errors.New("db down")}, "menu", nil))
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/things/1", "Bearer good").Code)
}

func TestResponseMetaCarriesCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ResponseMeta(c)
		c.Status(http.StatusOK)
	})
	do(r, http.MethodGet, "/", "")
	assert.Equal(t, true, meta[cacheHitKey])
	assert.Contains(t, meta, processingTimeMs)
}
