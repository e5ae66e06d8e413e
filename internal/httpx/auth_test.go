package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MikeMC777/yummigo-orders/internal/auth"
)

func newRouter(v *auth.Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.NewNop()))
	api := r.Group("/", Auth(v))
	api.GET("/me", func(c *gin.Context) {
		id, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, id)
	})
	api.GET("/vendors-only", RequireRole(auth.RoleVendor, auth.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	v := auth.NewVerifier("secret")
	r := newRouter(v)

	w := do(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body["kind"])
	assert.NotEmpty(t, body["request_id"])
	assert.Equal(t, w.Header().Get("X-Request-ID"), body["request_id"])

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "garbage").Code)

	other, err := auth.NewVerifier("other").Issue(auth.Identity{ID: "u1", Role: auth.RoleBuyer}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", other).Code)

	tok, err := v.Issue(auth.Identity{ID: "u1", Role: auth.RoleBuyer, Name: "Bea"}, time.Minute)
	require.NoError(t, err)
	w = do(r, "/me", tok)
	require.Equal(t, http.StatusOK, w.Code)
	var id auth.Identity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &id))
	assert.Equal(t, "u1", id.ID)
	assert.Equal(t, auth.RoleBuyer, id.Role)
}

func TestRequireRole(t *testing.T) {
	v := auth.NewVerifier("secret")
	r := newRouter(v)

	buyer, _ := v.Issue(auth.Identity{ID: "b1", Role: auth.RoleBuyer}, time.Minute)
	vendor, _ := v.Issue(auth.Identity{ID: "v1", Role: auth.RoleVendor}, time.Minute)

	assert.Equal(t, http.StatusForbidden, do(r, "/vendors-only", buyer).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/vendors-only", vendor).Code)
}

func TestRequestID_KeepsClientHeader(t *testing.T) {
	r := newRouter(auth.NewVerifier("secret"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}
