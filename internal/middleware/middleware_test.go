package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhrubajit-says/FormForge/internal/model"
	"github.com/Dhrubajit-says/FormForge/internal/response"
	"github.com/Dhrubajit-says/FormForge/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubTokens map[string]*service.Claims

func (s stubTokens) ValidateToken(tok string) (*service.Claims, error) {
	if tok == "expired" {
		return nil, fmt.Errorf("parse token: %w", jwt.ErrTokenExpired)
	}
	if c, ok := s[tok]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

type stubSessions struct{ err error }

func (s stubSessions) ValidateSession(context.Context, *service.Claims) error { return s.err }

func errorCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	if body.Error == nil {
		return ""
	}
	return body.Error.Code
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/", func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, claims.Username)
	})
	return r
}

func TestRequireJWT(t *testing.T) {
	tokens := stubTokens{"good": {UserID: uuid.New(), Username: "ada", Role: model.RoleUser}}
	r := newRouter(RequireJWT(tokens))

	tests := []struct {
		name     string
		setup    func(req *http.Request)
		target   string
		wantCode int
		wantErr  response.ErrCode
	}{
		{name: "bearer", setup: func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") }, wantCode: http.StatusOK},
		{name: "legacy header", setup: func(req *http.Request) { req.Header.Set(HeaderAuthToken, "good") }, wantCode: http.StatusOK},
		{name: "query", target: "/?token=good", wantCode: http.StatusOK},
		{name: "missing", wantCode: http.StatusUnauthorized, wantErr: response.ErrTokenRequired},
		{name: "invalid", setup: func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, wantCode: http.StatusUnauthorized, wantErr: response.ErrTokenInvalid},
		{name: "expired", setup: func(req *http.Request) { req.Header.Set("Authorization", "Bearer expired") }, wantCode: http.StatusUnauthorized, wantErr: response.ErrTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := tt.target
			if target == "" {
				target = "/"
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.setup != nil {
				tt.setup(req)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errorCode(t, w))
			} else {
				assert.Equal(t, "ada", w.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tokens := stubTokens{
		"user":  {UserID: uuid.New(), Username: "u", Role: model.RoleUser},
		"admin": {UserID: uuid.New(), Username: "a", Role: model.RoleAdmin},
	}
	r := newRouter(RequireJWT(tokens), RequireAdmin())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer user")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.ErrAdminAccessOnly, errorCode(t, w))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer admin")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheckSession(t *testing.T) {
	tokens := stubTokens{"good": {UserID: uuid.New(), Username: "ada"}}

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  response.ErrCode
	}{
		{name: "live", wantCode: http.StatusOK},
		{name: "revoked", err: service.ErrSessionRevoked, wantCode: http.StatusUnauthorized, wantErr: response.ErrSessionInvalidated},
		{name: "store down", err: errors.New("redis down"), wantCode: http.StatusInternalServerError, wantErr: response.ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(RequireJWT(tokens), CheckSession(stubSessions{err: tt.err}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer good")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errorCode(t, w))
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := newRouter(rl.Middleware())
	hit := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit())
	assert.Equal(t, http.StatusOK, hit())
	assert.Equal(t, http.StatusTooManyRequests, hit())

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, hit())
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	defer rl.Stop()
	r := newRouter(rl.Middleware())
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestBrotli(t *testing.T) {
	large := strings.Repeat("formforge ", 500)
	r := gin.New()
	r.Use(Brotli())
	r.GET("/large", func(c *gin.Context) { c.String(http.StatusOK, large) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "tiny") })

	req := httptest.NewRequest(http.MethodGet, "/large", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=1.0")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	decoded, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, large, string(decoded))

	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "tiny", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/large", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, large, w.Body.String())
}

func TestCacheHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(NoStore()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	newRouter(CacheControl(60)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"))
}
