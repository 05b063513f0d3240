package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-leave/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIdempotencyTest(t *testing.T, status int) (*gin.Engine, *miniredis.Miniredis, *int) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	calls := 0
	r := gin.New()
	r.Use(middleware.Idempotency(rdb, time.Hour))
	r.POST("/api/leave-requests", func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"ok": status < 300, "call": calls})
	})
	r.GET("/api/leave-requests", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"call": calls})
	})
	return r, mr, &calls
}

func post(r http.Handler, key string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/leave-requests", nil)
	if key != "" {
		req.Header.Set(middleware.HeaderIdempotencyKey, key)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	t.Run("success replays stored response", func(t *testing.T) {
		r, mr, calls := setupIdempotencyTest(t, http.StatusCreated)

		first := post(r, "abc")
		second := post(r, "abc")

		assert.Equal(t, 1, *calls)
		assert.Equal(t, http.StatusCreated, first.Code)
		assert.Equal(t, http.StatusCreated, second.Code)
		assert.JSONEq(t, first.Body.String(), second.Body.String())
		assert.Equal(t, "true", second.Header().Get(middleware.HeaderIdempotencyReplayed))
		assert.Empty(t, first.Header().Get(middleware.HeaderIdempotencyReplayed))

		key := middleware.GetIdempotencyKey(http.MethodPost, "/api/leave-requests", "abc")
		assert.True(t, mr.Exists(key))
		assert.False(t, mr.Exists(key+":lock"))
		assert.Equal(t, time.Hour, mr.TTL(key))
	})

	t.Run("success different keys both run", func(t *testing.T) {
		r, _, calls := setupIdempotencyTest(t, http.StatusCreated)

		post(r, "a")
		post(r, "b")

		assert.Equal(t, 2, *calls)
	})

	t.Run("success without key always runs", func(t *testing.T) {
		r, _, calls := setupIdempotencyTest(t, http.StatusCreated)

		post(r, "")
		post(r, "")

		assert.Equal(t, 2, *calls)
	})

	t.Run("success non post ignored", func(t *testing.T) {
		r, mr, calls := setupIdempotencyTest(t, http.StatusOK)

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/leave-requests", nil)
			req.Header.Set(middleware.HeaderIdempotencyKey, "abc")
			r.ServeHTTP(w, req)
		}

		assert.Equal(t, 2, *calls)
		assert.Empty(t, mr.Keys())
	})

	t.Run("negative failed response is not stored", func(t *testing.T) {
		r, mr, calls := setupIdempotencyTest(t, http.StatusBadRequest)

		post(r, "abc")
		w := post(r, "abc")

		assert.Equal(t, 2, *calls)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, mr.Keys())
	})

	t.Run("negative in flight duplicate is conflict", func(t *testing.T) {
		r, mr, calls := setupIdempotencyTest(t, http.StatusCreated)
		key := middleware.GetIdempotencyKey(http.MethodPost, "/api/leave-requests", "abc")
		require.NoError(t, mr.Set(key+":lock", "locked"))

		w := post(r, "abc")

		assert.Equal(t, 0, *calls)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), `"CONFLICT"`)
	})

	t.Run("success redis down fails open", func(t *testing.T) {
		r, mr, calls := setupIdempotencyTest(t, http.StatusCreated)
		mr.Close()

		w := post(r, "abc")

		assert.Equal(t, 1, *calls)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("success nil client passes through", func(t *testing.T) {
		r := gin.New()
		r.Use(middleware.Idempotency(nil, 0))
		calls := 0
		r.POST("/api/leave-requests", func(c *gin.Context) {
			calls++
			c.Status(http.StatusCreated)
		})

		post(r, "abc")
		post(r, "abc")

		assert.Equal(t, 2, calls)
	})
}
