package router

import (
	"database/sql"

	"bizflow_backend/internal/config"
	"bizflow_backend/internal/database"
	"bizflow_backend/internal/handlers"
	"bizflow_backend/internal/middleware"
	"bizflow_backend/internal/repositories"
	"bizflow_backend/internal/services"
	"bizflow_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Handlers groups every resource handler mounted under /api/v1.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Customer *handlers.CustomerHandler
	Product  *handlers.ProductHandler
	Sale     *handlers.SaleHandler
	Expense  *handlers.ExpenseHandler
	Employee *handlers.EmployeeHandler
	Business *handlers.BusinessHandler
	Report   *handlers.ReportHandler
}

// Setup wires repositories, services and handlers over db and mounts the API.
func Setup(engine *gin.Engine, db *sql.DB, cfg *config.Config, notifier services.Notifier) {
	// Initialize Repositories
	userRepo := repositories.NewUserRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	businessRepo := repositories.NewBusinessRepository(db)
	employeeRepo := repositories.NewEmployeeRepository(db)
	productRepo := repositories.NewProductRepository(db)
	movementRepo := repositories.NewStockMovementRepository(db)
	expenseRepo := repositories.NewExpenseRepository(db)
	saleRepo := repositories.NewSaleRepository(db)
	analyticsRepo := repositories.NewAnalyticsRepository(database.Sqlx(db))
	tx := repositories.NewTransactor(db)

	// Initialize Services
	tokens := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	hasher := services.NewBcryptHasher(cfg.Auth.BcryptCost)
	resolver := services.NewPrincipalResolver(userRepo, customerRepo)

	authService := services.NewAuthService(userRepo, customerRepo, businessRepo, tx, db, hasher, tokens, notifier)
	customerService := services.NewCustomerService(customerRepo, db, hasher)
	productService := services.NewProductService(productRepo, movementRepo, db, tx)
	saleService := services.NewSaleService(saleRepo, customerRepo, productRepo, movementRepo, tx)
	expenseService := services.NewExpenseService(expenseRepo, db)
	employeeService := services.NewEmployeeService(userRepo, employeeRepo, db, hasher)
	businessService := services.NewBusinessService(businessRepo, db)
	analyticsService := services.NewAnalyticsService(analyticsRepo, nil)

	// Initialize Handlers
	h := Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Customer: handlers.NewCustomerHandler(customerService),
		Product:  handlers.NewProductHandler(productService),
		Sale:     handlers.NewSaleHandler(saleService),
		Expense:  handlers.NewExpenseHandler(expenseService),
		Employee: handlers.NewEmployeeHandler(employeeService),
		Business: handlers.NewBusinessHandler(businessService),
		Report:   handlers.NewReportHandler(analyticsService),
	}

	handlers.RegisterValidators()
	RegisterRoutes(engine.Group("/api/v1"), h, middleware.AuthMiddleware(tokens, resolver))
}

// RegisterRoutes mounts the public auth routes and, behind authMiddleware,
// every protected route with its role gate.
func RegisterRoutes(apiV1 *gin.RouterGroup, h Handlers, authMiddleware gin.HandlerFunc) {
	SetupPublicAuthRoutes(apiV1.Group("/auth"), h.Auth)

	authenticated := apiV1.Group("")
	authenticated.Use(authMiddleware)
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), h.Auth)
		SetupCustomerRoutes(authenticated, h.Customer)
		SetupProductRoutes(authenticated, h.Product)
		SetupSaleRoutes(authenticated, h.Sale)
		SetupExpenseRoutes(authenticated, h.Expense)
		SetupEmployeeRoutes(authenticated, h.Employee)
		SetupBusinessRoutes(authenticated, h.Business)
		SetupAnalyticsRoutes(authenticated, h.Report)
	}
}
