package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go-leave/internal/middleware"
	"go-leave/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ContextLogger(zap.New(core)))
	r.GET("/api/leave-requests/:employeeId", func(c *gin.Context) {
		ctx := c.Request.Context()
		contextutil.GetLogger(ctx, nil).Info("handler ran")
		c.Status(http.StatusNotFound)
	})

	t.Run("propagates incoming request id", func(t *testing.T) {
		logs.TakeAll()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/leave-requests/E1", nil)
		req.Header.Set(middleware.HeaderRequestID, "rid-1")

		r.ServeHTTP(w, req)

		assert.Equal(t, "rid-1", w.Header().Get(middleware.HeaderRequestID))
		entries := logs.TakeAll()
		require.Len(t, entries, 2)
		assert.Equal(t, "handler ran", entries[0].Message)
		assert.Equal(t, "rid-1", entries[0].ContextMap()["request_id"])

		access := entries[1]
		assert.Equal(t, zapcore.WarnLevel, access.Level)
		assert.Equal(t, "/api/leave-requests/:employeeId", access.ContextMap()["route"])
		assert.EqualValues(t, http.StatusNotFound, access.ContextMap()["status"])
	})

	t.Run("generates request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/leave-requests/E1", nil))

		assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
	})
}
