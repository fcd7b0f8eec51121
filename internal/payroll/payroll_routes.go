package payroll

import (
	"hr-payroll/internal/middleware"
	"hr-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	runs := r.Group("/payroll-runs")
	runs.Use(middleware.AuthMiddleware())
	{
		runs.GET("", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetAll)
		runs.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetById)
		runs.GET("/:id/breakdown", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetBreakdown)
		runs.POST("/preview", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.Preview)
		if redisClient != nil {
			runs.POST(
				"",
				middleware.Idempotency(redisClient),
				middleware.RateLimitByUser(5, 10),
				middleware.RBACAuthorize(rbacService, "payroll", "create"),
				handler.Create,
			)
		} else {
			runs.POST("", middleware.RBACAuthorize(rbacService, "payroll", "create"), handler.Create)
		}
		runs.PUT("/:id", middleware.RBACAuthorize(rbacService, "payroll", "update"), handler.Update)
		runs.DELETE("/:id", middleware.RBACAuthorize(rbacService, "payroll", "delete"), handler.Delete)
	}
}
