package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"digi3/internal/authz"
	"digi3/internal/handlers"
	"digi3/internal/metrics"
	"digi3/internal/middleware"
	"digi3/internal/services"
)

func SetupRoutes(
	r *gin.Engine,
	authService services.AuthService,
	userService services.UserService,
	authHandler *handlers.AuthHandler,
	projectHandler *handlers.ProjectHandler,
	taskHandler *handlers.TaskHandler,
	customerHandler *handlers.CustomerHandler,
	userHandler *handlers.UserHandler,
	reportHandler *handlers.ReportHandler,
	boardSocketHandler *handlers.BoardSocketHandler,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", metrics.Handler())
	r.GET("/login", authHandler.LoginForm)
	r.POST("/login", authHandler.Login)
	r.POST("/api/login", authHandler.APILogin)

	// ---- protected
	p := r.Group("/", middleware.AuthMiddleware(authService, userService))

	p.GET("/dashboard", authHandler.Dashboard)
	p.GET("/me", authHandler.Me)
	p.POST("/logout", authHandler.Logout)

	// PROJECTS
	p.GET("/project/manage", projectHandler.List)
	p.GET("/project/manage/:id", projectHandler.Manage)
	p.GET("/project/manage/:id/ws", boardSocketHandler.Subscribe)
	projects := p.Group("/projects")
	{
		projects.POST("", projectHandler.Create)
		projects.GET("/:id", projectHandler.Get)
		projects.PUT("/:id", projectHandler.Update)
		projects.DELETE("/:id", projectHandler.Delete)
		projects.POST("/:id/tasks", projectHandler.CreateTask)
	}

	// BOARD
	p.POST("/management-project/update-task-position", taskHandler.UpdatePosition)

	// TASKS
	task := p.Group("/task")
	{
		task.GET("/:id", taskHandler.Show)
		task.POST("/:id", taskHandler.Post)
		task.PUT("/:id", taskHandler.Update)
		task.DELETE("/:id", taskHandler.Delete)
		task.POST("/:id/update-status", taskHandler.UpdateStatus)
	}

	// CUSTOMERS
	customers := p.Group("/customers")
	{
		customers.GET("", customerHandler.List)
		customers.POST("", customerHandler.Create)
		customers.GET("/:id", customerHandler.GetByID)
		customers.PUT("/:id", customerHandler.Update)
		customers.DELETE("/:id", customerHandler.Delete)
	}

	// USERS
	users := p.Group("/users")
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.GET("/:id", userHandler.GetUserByID)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	// REPORTS
	reports := p.Group("/reports", middleware.RequireGrant(authz.ViewStatistics))
	{
		reports.GET("/summary", reportHandler.GetSummary)
		reports.GET("/projects/:id/pdf", reportHandler.ProjectPDF)
	}

	return r
}
