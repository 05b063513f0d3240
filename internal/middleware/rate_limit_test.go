package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimitByIP(t *testing.T) {
	newRouter := func(r rate.Limit, b int) *gin.Engine {
		router := gin.New()
		router.Use(middleware.RateLimitByIP(r, b))
		router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}
	hit := func(router http.Handler, ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		router.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("negative burst exhausted", func(t *testing.T) {
		router := newRouter(rate.Limit(0.001), 2)

		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1"))
		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1"))
		assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1"))
	})

	t.Run("success limits are per ip", func(t *testing.T) {
		router := newRouter(rate.Limit(0.001), 1)

		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1"))
		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.2"))
		assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1"))
	})

	t.Run("success disabled", func(t *testing.T) {
		router := newRouter(0, 0)

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1"))
		}
	})
}

func TestIPRateLimiter_GetLimiter(t *testing.T) {
	l := middleware.NewIPRateLimiter(rate.Limit(1), 1)

	a := l.GetLimiter("a")
	assert.Same(t, a, l.GetLimiter("a"))
	assert.NotSame(t, a, l.GetLimiter("b"))
	assert.Equal(t, 2, l.Len())
}
