package balance

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	balances := r.Group("/leave-balances")
	{
		balances.GET("/:employeeId", handler.GetByEmployee)
	}
}
