package routes

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack-api/handlers"
	"github.com/fintrack/fintrack-api/middleware"
	"github.com/fintrack/fintrack-api/models"
	"github.com/fintrack/fintrack-api/services"
)

// SetupRoutes wires every route group under /api, sharing one service set so
// the exchange-rate cache is reused across handlers.
func SetupRoutes(r *gin.Engine, db *sql.DB) {
	api := r.Group("/api")

	exchange := services.NewExchangeService()
	email := services.NewEmailService()
	budgets := services.NewBudgetService(db, exchange, email)
	savings := services.NewSavingsService(db, exchange)
	recurring := services.NewRecurringService(db)

	SetupAuthRoutes(api.Group("/auth"), db)
	SetupUserRoutes(api.Group("/user"), db)
	SetupTransactionRoutes(api.Group("/transaction"), db, exchange, budgets, savings, recurring)
	SetupBudgetRoutes(api.Group("/budget"), db, budgets)
	SetupGoalRoutes(api.Group("/goal"), db, savings, email)
	SetupReportRoutes(api.Group("/report"), db, exchange)
	SetupCurrencyRoutes(api.Group("/currency"), db)
	SetupCategoryRoutes(api.Group("/category"), db)
	SetupTagRoutes(api.Group("/tags"), db)
}

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, db *sql.DB) {
	authHandler := &handlers.AuthHandler{DB: db}

	rg.POST("/register", authHandler.Register)
	rg.POST("/login", authHandler.Login)
}

// SetupUserRoutes sets up profile and admin user-management routes.
func SetupUserRoutes(rg *gin.RouterGroup, db *sql.DB) {
	userHandler := &handlers.UserHandler{DB: db}

	rg.GET("/profile", middleware.AuthMiddleware(models.RoleAdmin, models.RoleUser), userHandler.GetProfile)
	rg.PATCH("/profile", middleware.AuthMiddleware(models.RoleAdmin, models.RoleUser), userHandler.UpdateProfile)
	rg.GET("/users", middleware.AuthMiddleware(models.RoleAdmin), userHandler.ListUsers)
}

// SetupTransactionRoutes sets up income and expense routes. Mutations are
// user-only, cross-user reads are admin-only.
func SetupTransactionRoutes(rg *gin.RouterGroup, db *sql.DB,
	exchange *services.ExchangeService, budgets *services.BudgetService,
	savings *services.SavingsService, recurring *services.RecurringService) {

	income := &handlers.TransactionHandler{
		DB: db, Kind: models.KindIncome, Exchange: exchange, Budgets: budgets, Savings: savings,
	}
	expense := &handlers.TransactionHandler{
		DB: db, Kind: models.KindExpense, Exchange: exchange, Budgets: budgets, Savings: savings,
	}
	recurringHandler := &handlers.RecurringHandler{Recurring: recurring}

	user := middleware.AuthMiddleware(models.RoleUser)
	anyAuth := middleware.AuthMiddleware(models.RoleAdmin, models.RoleUser)
	admin := middleware.AuthMiddleware(models.RoleAdmin)

	rg.POST("/add-income", user, income.Add)
	rg.PATCH("/income/:id", user, income.Update)
	rg.DELETE("/income/:id", user, income.Delete)
	rg.GET("/get-incomes", anyAuth, income.List)
	rg.GET("/total-income", anyAuth, income.Total)

	rg.POST("/add-expense", user, expense.Add)
	rg.PATCH("/expense/:id", user, expense.Update)
	rg.DELETE("/expense/:id", user, expense.Delete)
	rg.GET("/get-expenses", anyAuth, expense.List)
	rg.GET("/total-expense", anyAuth, expense.Total)

	rg.GET("/incomes", admin, income.ListAll)
	rg.GET("/expenses", admin, expense.ListAll)
	rg.GET("/admin/total-income", admin, income.TotalAll)
	rg.GET("/admin/total-expense", admin, expense.TotalAll)

	rg.GET("/test-recurring-transactions", admin, recurringHandler.Trigger)
}

// SetupBudgetRoutes sets up budget routes.
func SetupBudgetRoutes(rg *gin.RouterGroup, db *sql.DB, budgets *services.BudgetService) {
	budgetHandler := &handlers.BudgetHandler{DB: db, Budgets: budgets}

	user := middleware.AuthMiddleware(models.RoleUser)

	rg.POST("/add", user, budgetHandler.Upsert)
	rg.GET("/getbudgets", user, budgetHandler.List)
	rg.DELETE("/delete/:id", user, budgetHandler.Delete)
}

// SetupGoalRoutes sets up savings goal routes.
func SetupGoalRoutes(rg *gin.RouterGroup, db *sql.DB, savings *services.SavingsService, email services.EmailService) {
	goalHandler := &handlers.GoalHandler{DB: db, Savings: savings, Email: email}

	user := middleware.AuthMiddleware(models.RoleUser)

	rg.POST("/add", user, goalHandler.Create)
	rg.GET("/getgoals", user, goalHandler.List)
	rg.GET("/total-savings", user, goalHandler.TotalSavings)
	rg.GET("/:id", user, goalHandler.Get)
	rg.PATCH("/:id", user, goalHandler.Update)
	rg.PATCH("/:id/complete", user, goalHandler.Complete)
	rg.POST("/:id/saved-value", user, goalHandler.Contribute)
	rg.POST("/:id/reverse", user, goalHandler.Reverse)
	rg.DELETE("/:id", user, goalHandler.Delete)
}

// SetupReportRoutes sets up read-only report routes.
func SetupReportRoutes(rg *gin.RouterGroup, db *sql.DB, exchange *services.ExchangeService) {
	reportHandler := &handlers.ReportHandler{DB: db, Exchange: exchange}

	anyAuth := middleware.AuthMiddleware(models.RoleAdmin, models.RoleUser)
	admin := middleware.AuthMiddleware(models.RoleAdmin)

	rg.GET("/user-reports", anyAuth, reportHandler.UserReports)
	rg.GET("/user-budget", anyAuth, reportHandler.UserBudget)
	rg.GET("/available-dates", anyAuth, reportHandler.AvailableDates)
	rg.GET("/reports", admin, reportHandler.Reports)
	rg.GET("/user-summary-report", admin, reportHandler.UserSummaryReport)
}

// SetupCurrencyRoutes sets up the currency reference list.
func SetupCurrencyRoutes(rg *gin.RouterGroup, db *sql.DB) {
	refHandler := &handlers.ReferenceHandler{DB: db}

	rg.GET("", middleware.AuthMiddleware(models.RoleAdmin, models.RoleUser), refHandler.ListCurrencies)
	rg.POST("", middleware.AuthMiddleware(models.RoleAdmin), refHandler.AddCurrency)
	rg.DELETE("/:id", middleware.AuthMiddleware(models.RoleAdmin), refHandler.DeleteCurrency)
}

// SetupCategoryRoutes sets up the category reference list.
func SetupCategoryRoutes(rg *gin.RouterGroup, db *sql.DB) {
	refHandler := &handlers.ReferenceHandler{DB: db}

	rg.GET("", middleware.AuthMiddleware(models.RoleAdmin, models.RoleUser), refHandler.ListCategories)
	rg.POST("", middleware.AuthMiddleware(models.RoleAdmin), refHandler.AddCategory)
	rg.DELETE("/:id", middleware.AuthMiddleware(models.RoleAdmin), refHandler.DeleteCategory)
}

// SetupTagRoutes sets up tag listing.
func SetupTagRoutes(rg *gin.RouterGroup, db *sql.DB) {
	tagHandler := &handlers.TagHandler{DB: db}

	rg.GET("", middleware.AuthMiddleware(models.RoleAdmin, models.RoleUser), tagHandler.List)
}
