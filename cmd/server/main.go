package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"

	"github.com/barangay-konek/portal-api/internal/cache"
	"github.com/barangay-konek/portal-api/internal/config"
	"github.com/barangay-konek/portal-api/internal/database"
	"github.com/barangay-konek/portal-api/internal/docgen"
	"github.com/barangay-konek/portal-api/internal/handlers"
	"github.com/barangay-konek/portal-api/internal/middleware"
	"github.com/barangay-konek/portal-api/internal/services"
	"github.com/barangay-konek/portal-api/internal/storage"
	"github.com/barangay-konek/portal-api/internal/types"

	_ "github.com/barangay-konek/portal-api/docs/api" // Swagger docs
)

// @title Barangay Konek Portal API
// @version 1.0.0
// @description Community portal backend: citizen service requests, update threads, certificate forms, and the public content console
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/barangay-konek/portal-api

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	sections, err := services.DefaultLayoutSections()
	if err != nil {
		log.Fatalf("Failed to parse layout seed: %v", err)
	}
	if err := services.SeedLayout(db, sections); err != nil {
		log.Fatalf("Failed to seed homepage layout: %v", err)
	}

	store, err := cache.New(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to cache: %v", err)
	}

	docs, err := docgen.New()
	if err != nil {
		log.Fatalf("Failed to load certificate templates: %v", err)
	}

	files := storage.NewPublicResolver(cfg.StorageBaseURL)

	middleware.SetupAuth(cfg)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("portal")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Create handlers
	requestHandler := &handlers.RequestHandler{DB: db, Cfg: cfg, Files: files}
	updateHandler := &handlers.UpdateHandler{DB: db, Docs: docs}
	contentHandler := &handlers.ContentHandler{DB: db, Cfg: cfg, Store: store, Files: files}
	uploadHandler := &handlers.UploadHandler{Files: files}
	healthHandler := &handlers.HealthHandler{DB: db, Cfg: cfg, Store: store}

	app.Get("/health", healthHandler.Check)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Citizen request routes; ownership gating happens in the services
	requests := api.Group("/requests")
	requests.Post("/", middleware.AuthUser(), requestHandler.CreateRequest)
	requests.Get("/", middleware.AuthUser(), requestHandler.ListRequests)
	requests.Get("/:id", middleware.AuthUser(), requestHandler.GetRequest)
	requests.Get("/:id/updates", middleware.AuthUser(), requestHandler.ListUpdates)
	requests.Post("/:id/updates", middleware.AuthAdmin(), requestHandler.AddUpdate)

	// Update-scoped routes
	updates := api.Group("/updates")
	updates.Post("/:id/close", middleware.AuthAdmin(), updateHandler.CloseUpdate)
	updates.Get("/:id/messages", middleware.AuthUser(), updateHandler.ListMessages)
	updates.Post("/:id/messages", middleware.AuthUser(), updateHandler.PostMessage)
	updates.Get("/:id/form", middleware.AuthUser(), updateHandler.GetForm)
	updates.Post("/:id/form", middleware.AuthUser(), updateHandler.SubmitForm)
	updates.Get("/:id/document", middleware.AuthUser(), updateHandler.GetDocument)

	// Public content routes, cache headers on reads
	content := api.Group("/content", middleware.CacheControl(cfg.ContentCacheTTL))
	content.Get("/posts", contentHandler.ListPosts)
	content.Get("/posts/:id", contentHandler.GetPost)
	content.Get("/highlights", contentHandler.ListHighlights)
	content.Get("/resources", contentHandler.ListResources)
	content.Get("/resources/:id/download", contentHandler.DownloadResource)
	content.Get("/layout", contentHandler.GetLayout)

	// Admin content console
	console := api.Group("/admin/content", middleware.AuthAdmin())
	console.Post("/posts", contentHandler.CreatePost)
	console.Put("/posts/:id", contentHandler.UpdatePost)
	console.Delete("/posts/:id", contentHandler.DeletePost)
	console.Post("/highlights", contentHandler.CreateHighlight)
	console.Put("/highlights", contentHandler.ReorderHighlights)
	console.Put("/highlights/:id", contentHandler.UpdateHighlight)
	console.Delete("/highlights/:id", contentHandler.DeleteHighlight)
	console.Post("/resources", contentHandler.CreateResource)
	console.Put("/resources/:id", contentHandler.UpdateResource)
	console.Delete("/resources/:id", contentHandler.DeleteResource)
	console.Put("/layout", contentHandler.ReorderLayout)

	// File key assignment for client-side uploads
	api.Post("/uploads", middleware.AuthUser(), uploadHandler.CreateUpload)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if pe, ok := types.AsPortalError(err); ok {
		code = pe.StatusCode()
		message = pe.Message
		errorType = pe.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
