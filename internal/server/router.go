// Package server assembles the services, handlers and middleware into the HTTP router.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "ledgerengine/internal/docs" // swagger spec registration
	"ledgerengine/internal/handlers"
	"ledgerengine/internal/middleware"
	"ledgerengine/internal/repository"
	"ledgerengine/internal/services"
)

// Services bundles the business logic the router serves.
type Services struct {
	Users      services.UserServicer
	Categories services.CategoryServicer
	Incomes    services.IncomeServicer
	Expenses   services.ExpenseServicer
	Goals      services.GoalServicer
	Guard      services.GuardServicer
	Rollups    services.RollupServicer
}

// NewServices builds every service on top of db. Guarded writes and rollups
// go through the repository store; plain CRUD uses db directly.
func NewServices(db *gorm.DB, loc *time.Location) *Services {
	store := repository.NewStore(db)
	guard := services.NewBudgetGuard(store)
	return &Services{
		Users:      services.NewUserService(db),
		Categories: services.NewCategoryService(db),
		Incomes:    services.NewIncomeService(db),
		Expenses:   services.NewExpenseService(db, guard),
		Goals:      services.NewGoalService(db, guard),
		Guard:      guard,
		Rollups:    services.NewRollupService(store, loc),
	}
}

// NewRouter wires the routes. loc is the zone calendar months are cut in.
func NewRouter(svc *Services, loc *time.Location) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories)
	incomeHandler := handlers.NewIncomeHandler(svc.Incomes, loc)
	expenseHandler := handlers.NewExpenseHandler(svc.Expenses, loc)
	goalHandler := handlers.NewGoalHandler(svc.Goals)
	budgetHandler := handlers.NewBudgetHandler(svc.Guard)
	reportHandler := handlers.NewReportHandler(svc.Rollups)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	incomes := protected.Group("/incomes")
	incomes.POST("", incomeHandler.CreateIncome)
	incomes.GET("", incomeHandler.GetIncomes)
	incomes.GET("/:id", incomeHandler.GetIncome)
	incomes.PUT("/:id", incomeHandler.UpdateIncome)
	incomes.DELETE("/:id", incomeHandler.DeleteIncome)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.POST("/:id/contributions", goalHandler.Contribute)

	protected.GET("/budget/check", budgetHandler.CheckBudget)

	protected.GET("/overview", reportHandler.GetOverview)
	protected.GET("/dashboard", reportHandler.GetDashboard)
	protected.GET("/analytics", reportHandler.GetAnalytics)
	reports := protected.Group("/reports")
	reports.GET("/monthly", reportHandler.GetMonthlySeries)
	reports.GET("/categories", reportHandler.GetCategoryBreakdown)
	reports.GET("/top-categories", reportHandler.GetTopCategories)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
