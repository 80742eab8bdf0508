package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/render"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/storage"
	"backend/internal/websocket"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           E-Office Letter Approval API
// @version         1.0
// @description     Approval workflow engine for institutional PKL letters: an eight-step chain with revision loops, an append-only history ledger, document versioning and institutional numbering.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("Logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.NewConnection(buildDSN(), logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL")

	middleware.InitPermissionMiddleware(db)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()

	// Blob storage and document rendering
	storageDir := envOr("STORAGE_DIR", "data/storage")
	storageBaseURL := envOr("STORAGE_BASE_URL", "http://localhost:8080/files")
	blobs := storage.NewLocalBlobStorage(storageDir, storageBaseURL, logger)

	renderer, err := render.NewLetterRenderer()
	if err != nil {
		logger.Fatal("renderer init failed", zap.Error(err))
	}

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	letterRepo := repository.NewLetterRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	numberRepo := repository.NewNumberRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	programRepo := repository.NewStudyProgramRepository(db)

	resolver := service.NewApproverResolver(userRepo, programRepo)
	letterService := service.NewLetterService(letterRepo, historyRepo, attachmentRepo, resolver, blobs, txManager, wsHub, logger)
	numberingService := service.NewNumberingService(letterRepo, numberRepo, versionRepo, historyRepo, renderer, blobs, txManager, wsHub, logger)
	documentService := service.NewDocumentService(letterRepo, versionRepo, historyRepo, renderer, blobs, txManager, logger)
	attachmentService := service.NewAttachmentService(letterRepo, attachmentRepo, blobs, logger)
	userService := service.NewUserService(userRepo)
	programService := service.NewStudyProgramService(programRepo, userRepo)
	statisticsService := service.NewStatisticsService(db)

	// Initialize Handlers
	letterHandler := handler.NewLetterHandler(letterService, attachmentService)
	documentHandler := handler.NewDocumentHandler(documentService, numberingService)
	userHandler := handler.NewUserHandler(userService)
	programHandler := handler.NewStudyProgramHandler(programService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// Stored artifacts (letter PDFs, attachments, signatures)
	router.Static("/files", storageDir)

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("/api")
	userHandler.RegisterRoutes(api)
	letterHandler.RegisterRoutes(api)
	documentHandler.RegisterRoutes(api)
	programHandler.RegisterRoutes(api)
	statisticsHandler.RegisterRoutes(api)

	port := envOr("PORT", "8080")
	logger.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("GIN_MODE") == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func buildDSN() string {
	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "postgres")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	return "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
