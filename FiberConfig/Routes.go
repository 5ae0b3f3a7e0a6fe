package FiberConfig

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/template/html"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"CafePOS/Config"
	"CafePOS/Controllers"
	"CafePOS/Reports"
	"CafePOS/Sales"
	"CafePOS/middleware"
)

//go:embed templates
var templates embed.FS

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *Config.Config) {
	auth := middleware.NewAuth(db, cfg)
	carts := Sales.NewCartStore()
	processor := Sales.NewProcessor(db)

	// Initialize handlers
	authController := Controllers.NewAuthController(db, auth, carts)
	ingredientController := Controllers.NewIngredientController(db, cfg.Store.LowStockThreshold)
	productController := Controllers.NewProductController(db, cfg.Paths.UploadDir)
	cartController := Controllers.NewCartController(carts, processor)
	salesController := Controllers.NewSalesController(db, processor, cfg.Store)
	employeeController := Controllers.NewEmployeeController(db)
	attendanceController := Controllers.NewAttendanceController(db)
	expenseController := Controllers.NewExpenseController(db)
	ledgerController := Controllers.NewLedgerController(db)
	reportController := Controllers.NewReportController(db, cfg.Store)
	logController := Controllers.NewLogController(cfg.Paths.LogDir)

	api := app.Group("/api")

	api.Post("/login", authController.Login)
	api.Post("/logout", auth.Verify(""), authController.Logout)
	api.Get("/me", auth.Verify(""), authController.Me)

	// Ingredient routes, static paths before /:id
	ingredients := api.Group("/ingredients", auth.Verify(middleware.PermViewCatalog))
	ingredients.Get("/", ingredientController.GetIngredients)
	ingredients.Get("/low-stock", ingredientController.LowStock)
	ingredients.Post("/import", auth.Verify(middleware.PermManageInventory), ingredientController.Import)
	ingredients.Post("/", auth.Verify(middleware.PermManageInventory), ingredientController.CreateIngredient)
	ingredients.Get("/:id", ingredientController.GetIngredient)
	ingredients.Put("/:id", auth.Verify(middleware.PermManageInventory), ingredientController.UpdateIngredient)
	ingredients.Delete("/:id", auth.Verify(middleware.PermManageInventory), ingredientController.DeleteIngredient)
	ingredients.Post("/:id/restock", auth.Verify(middleware.PermManageInventory), ingredientController.Restock)
	ingredients.Post("/:id/adjust", auth.Verify(middleware.PermManageInventory), ingredientController.Adjust)

	// Product routes
	products := api.Group("/products", auth.Verify(middleware.PermViewCatalog))
	products.Get("/", productController.GetProducts)
	products.Post("/", auth.Verify(middleware.PermManageCatalog), productController.CreateProduct)
	products.Get("/:id", productController.GetProduct)
	products.Put("/:id", auth.Verify(middleware.PermManageCatalog), productController.UpdateProduct)
	products.Delete("/:id", auth.Verify(middleware.PermManageCatalog), productController.DeleteProduct)
	products.Get("/:id/recipe", productController.GetRecipe)
	products.Put("/:id/recipe", auth.Verify(middleware.PermManageCatalog), productController.SetRecipe)
	products.Get("/:id/hpp", auth.Verify(middleware.PermManageCatalog), productController.GetHPP)
	products.Post("/:id/image", auth.Verify(middleware.PermManageCatalog), productController.UploadImage)

	// Session cart
	cart := api.Group("/cart", auth.Verify(middleware.PermSell))
	cart.Get("/", cartController.GetCart)
	cart.Delete("/", cartController.ClearCart)
	cart.Post("/items", cartController.AddItem)
	cart.Put("/items", cartController.SetItem)
	cart.Delete("/items", cartController.RemoveItem)
	cart.Post("/checkout", cartController.Checkout)

	// Sales routes, operators only see their own
	sales := api.Group("/sales", auth.Verify(middleware.PermViewOwnSales))
	sales.Post("/", auth.Verify(middleware.PermSell), salesController.CreateSale)
	sales.Get("/", salesController.GetSales)
	sales.Get("/:id", salesController.GetSale)
	sales.Get("/:id/receipt", salesController.GetReceipt)
	sales.Delete("/:id", auth.Verify(middleware.PermReverseSales), salesController.ReverseSale)

	employees := api.Group("/employees", auth.Verify(middleware.PermManageEmployees))
	employees.Get("/", employeeController.GetEmployees)
	employees.Post("/", employeeController.CreateEmployee)
	employees.Get("/:id", employeeController.GetEmployee)
	employees.Put("/:id", employeeController.UpdateEmployee)
	employees.Delete("/:id", employeeController.DeleteEmployee)
	employees.Put("/:id/password", employeeController.SetPassword)

	attendance := api.Group("/attendance", auth.Verify(middleware.PermOwnAttendance))
	attendance.Get("/", attendanceController.GetAttendance)
	attendance.Post("/check-in", attendanceController.CheckIn)
	attendance.Post("/check-out", attendanceController.CheckOut)
	attendance.Get("/open", auth.Verify(middleware.PermManageAttendance), attendanceController.GetOpen)
	attendance.Get("/payroll", auth.Verify(middleware.PermManageAttendance), attendanceController.GetPayroll)
	attendance.Post("/:id/check-out", auth.Verify(middleware.PermManageAttendance), attendanceController.CheckOutShift)
	attendance.Put("/:id", auth.Verify(middleware.PermManageAttendance), attendanceController.UpdateAttendance)
	attendance.Delete("/:id", auth.Verify(middleware.PermManageAttendance), attendanceController.DeleteAttendance)

	expenses := api.Group("/expenses", auth.Verify(middleware.PermManageExpenses))
	expenses.Get("/", expenseController.GetExpenses)
	expenses.Post("/", expenseController.CreateExpense)
	expenses.Get("/:id", expenseController.GetExpense)
	expenses.Put("/:id", expenseController.UpdateExpense)
	expenses.Delete("/:id", expenseController.DeleteExpense)

	ledger := api.Group("/ledger", auth.Verify(middleware.PermViewLedger))
	ledger.Get("/accounts", ledgerController.GetAccounts)
	ledger.Post("/accounts", auth.Verify(middleware.PermManageLedger), ledgerController.CreateAccount)
	ledger.Get("/entries", ledgerController.GetEntries)
	ledger.Post("/entries", auth.Verify(middleware.PermManageLedger), ledgerController.CreateEntry)
	ledger.Delete("/entries/:id", auth.Verify(middleware.PermManageLedger), ledgerController.DeleteEntry)
	ledger.Get("/trial-balance", ledgerController.GetTrialBalance)
	ledger.Get("/profit-loss", ledgerController.GetProfitAndLoss)

	reports := api.Group("/reports", auth.Verify(middleware.PermViewReports))
	reports.Get("/sales", reportController.GetSalesReport)
	reports.Get("/sales/share", reportController.ShareSalesReport)
	reports.Get("/hpp", reportController.GetHPPReport)
	reports.Get("/stock", reportController.GetStockReport)
	reports.Get("/expenses", reportController.GetExpenseReport)

	logs := api.Group("/logs", auth.Verify(middleware.PermViewLogs))
	logs.Get("/", logController.GetLogs)
	logs.Get("/stats", logController.GetLogStats)
}

// NewApp builds the fiber application with middleware, views and routes.
func NewApp(db *gorm.DB, cfg *Config.Config) *fiber.App {
	views, err := fs.Sub(templates, "templates")
	if err != nil {
		log.Fatalf("Error loading templates: %v", err)
	}
	engine := html.NewFileSystem(http.FS(views), ".html")
	engine.AddFunc("rupiah", Reports.FormatRupiah)

	app := fiber.New(fiber.Config{
		Views:     engine,
		BodyLimit: 10 * 1024 * 1024,
	})

	middleware.InitMetrics()
	app.Use(middleware.RequestID())
	app.Use(middleware.LoggingMiddleware(middleware.DefaultLogConfig(cfg.Paths.LogDir)))
	app.Use(middleware.PrometheusMiddleware())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		AllowCredentials: cfg.Server.CORSOrigins != "*", // cookies need explicit origins
		MaxAge:           300,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Static("/uploads", cfg.Paths.UploadDir, fiber.Static{Compress: true, CacheDuration: time.Second * 10})

	SetupRoutes(app, db, cfg)
	return app
}
