package leave

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the leave request endpoints. mutating middleware
// (idempotency, rate limiting) applies to writes only.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	mutating ...gin.HandlerFunc,
) {
	leaves := r.Group("/leave-requests")
	{
		leaves.GET("", handler.GetAll)
		leaves.GET("/:employeeId", handler.GetByEmployee)
	}

	writes := leaves.Group("", mutating...)
	{
		writes.POST("", handler.Create)
		writes.PUT("/:id", handler.Decide)
		writes.PATCH("/:id", handler.Decide)
	}
}
