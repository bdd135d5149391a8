package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/expense_manager_app/cmd/docs"
	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
	"github.com/SscSPs/expense_manager_app/internal/middleware"
	"github.com/SscSPs/expense_manager_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// loginLimiter may be nil to disable login rate limiting.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	loginLimiter *limiter.Limiter,
) {
	useJSONFieldNames()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, StatusResponse{Status: "ok", Timestamp: time.Now().UTC()})
	})
	r.Static("/uploads", cfg.UploadsDir)

	api := r.Group("/api")
	api.GET("/status", getStatus)
	registerAuthRoutes(api, services.Auth, loginLimiter)

	setupProtectedRoutes(api, cfg, services)

	setupSwaggerRoutes(r, cfg)
}

// setupProtectedRoutes applies AuthMiddleware and delegates to specific entity route registrations.
func setupProtectedRoutes(
	api *gin.RouterGroup,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	protected := api.Group("", middleware.AuthMiddleware(cfg.JWTSecret))

	registerUserRoutes(protected, services.User)
	RegisterExpenseRoutes(protected, services.Expense)
	RegisterApprovalRoutes(protected, services.Approval)
	registerApprovalRuleRoutes(protected, services.ApprovalRule)
	registerCompanyRoutes(protected, services.Company)
	registerUploadRoutes(protected, services.Attachment)
	registerUtilityRoutes(protected, services.Currency)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
