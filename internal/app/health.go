package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthPingTimeout = 2 * time.Second

func healthHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			contextutil.GetLogger(ctx, zap.L()).Warn("health check failed", zap.Error(err))
			unavailable := apperror.ErrServiceUnavailable
			response.Error(c, unavailable.HTTPStatus, unavailable.Code, unavailable.Message, nil)
			return
		}

		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	}
}
