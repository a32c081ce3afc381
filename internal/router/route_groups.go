package router

import (
	"bizflow_backend/internal/handlers"
	"bizflow_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPublicAuthRoutes sets up the routes that issue tokens.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/register", authHandler.Register)
	group.POST("/login", authHandler.Login)
	group.POST("/customer-login", authHandler.CustomerLogin)
	group.POST("/forgot-password", authHandler.ForgotPassword)
}

func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/profile", authHandler.GetProfile)
}

// SetupCustomerRoutes: reads for any principal, writes for staff, delete for admin.
func SetupCustomerRoutes(authenticatedGroup *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	customerRoutes := authenticatedGroup.Group("/customers")
	{
		customerRoutes.GET("", customerHandler.GetCustomers)
		customerRoutes.GET("/:id", customerHandler.GetCustomerByID)
		customerRoutes.POST("", middleware.RequireStaffOrAdmin(), customerHandler.CreateCustomer)
		customerRoutes.PUT("/:id", middleware.RequireStaffOrAdmin(), customerHandler.UpdateCustomer)
		customerRoutes.DELETE("/:id", middleware.RequireAdmin(), customerHandler.DeleteCustomer)
	}
}

func SetupProductRoutes(authenticatedGroup *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	productRoutes := authenticatedGroup.Group("/products")
	{
		productRoutes.GET("", productHandler.GetProducts)
		productRoutes.GET("/:id", productHandler.GetProductByID)

		staffRoutes := productRoutes.Group("")
		staffRoutes.Use(middleware.RequireStaffOrAdmin())
		staffRoutes.POST("", productHandler.CreateProduct)
		staffRoutes.PUT("/:id", productHandler.UpdateProduct)
		staffRoutes.DELETE("/:id", productHandler.DeleteProduct)
		staffRoutes.GET("/:id/movements", productHandler.GetStockMovements)
		staffRoutes.POST("/:id/stock", productHandler.AdjustStock)
	}
}

// SetupSaleRoutes: customers may read, and only see their own sales.
func SetupSaleRoutes(authenticatedGroup *gin.RouterGroup, saleHandler *handlers.SaleHandler) {
	saleRoutes := authenticatedGroup.Group("/sales")
	{
		saleRoutes.GET("", saleHandler.GetSales)
		saleRoutes.GET("/:id", saleHandler.GetSaleByID)
		saleRoutes.POST("", middleware.RequireStaffOrAdmin(), saleHandler.CreateSale)
		saleRoutes.PUT("/:id", middleware.RequireStaffOrAdmin(), saleHandler.UpdateSale)
		saleRoutes.DELETE("/:id", middleware.RequireAdmin(), saleHandler.DeleteSale)
	}
}

func SetupExpenseRoutes(authenticatedGroup *gin.RouterGroup, expenseHandler *handlers.ExpenseHandler) {
	expenseRoutes := authenticatedGroup.Group("/expenses")
	expenseRoutes.Use(middleware.RequireAdmin())
	{
		expenseRoutes.POST("", expenseHandler.CreateExpense)
		expenseRoutes.GET("", expenseHandler.GetExpenses)
		expenseRoutes.GET("/:id", expenseHandler.GetExpenseByID)
		expenseRoutes.PUT("/:id", expenseHandler.UpdateExpense)
		expenseRoutes.DELETE("/:id", expenseHandler.DeleteExpense)
	}
}

func SetupEmployeeRoutes(authenticatedGroup *gin.RouterGroup, employeeHandler *handlers.EmployeeHandler) {
	employeeRoutes := authenticatedGroup.Group("/employees")
	employeeRoutes.Use(middleware.RequireAdmin())
	{
		employeeRoutes.POST("", employeeHandler.CreateEmployee)
		employeeRoutes.GET("", employeeHandler.GetEmployees)
		employeeRoutes.GET("/:id", employeeHandler.GetEmployeeByID)
		employeeRoutes.PUT("/:id", employeeHandler.UpdateEmployee)
		employeeRoutes.DELETE("/:id", employeeHandler.DeleteEmployee)
	}
}

func SetupBusinessRoutes(authenticatedGroup *gin.RouterGroup, businessHandler *handlers.BusinessHandler) {
	businessRoutes := authenticatedGroup.Group("/business")
	{
		businessRoutes.GET("", businessHandler.GetBusiness)
		businessRoutes.PUT("", middleware.RequireAdmin(), businessHandler.UpdateBusiness)
	}
}

// SetupAnalyticsRoutes: the dashboard is open to staff, the reports are admin only.
func SetupAnalyticsRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	analyticsRoutes := authenticatedGroup.Group("/analytics")
	{
		analyticsRoutes.GET("/dashboard", middleware.RequireStaffOrAdmin(), reportHandler.GetDashboardSummary)

		adminRoutes := analyticsRoutes.Group("")
		adminRoutes.Use(middleware.RequireAdmin())
		adminRoutes.GET("/revenue", reportHandler.GetRevenueByPeriod)
		adminRoutes.GET("/top-customers", reportHandler.GetTopCustomers)
		adminRoutes.GET("/top-products", reportHandler.GetTopProducts)
		adminRoutes.GET("/expenses-by-category", reportHandler.GetExpensesByCategory)
	}
}
