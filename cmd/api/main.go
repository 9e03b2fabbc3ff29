package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-matriculas/internal/config"
	"github.com/prefeitura-rio/app-matriculas/internal/handlers"
	"github.com/prefeitura-rio/app-matriculas/internal/logging"
	"github.com/prefeitura-rio/app-matriculas/internal/middleware"
	"github.com/prefeitura-rio/app-matriculas/internal/observability"
	"github.com/prefeitura-rio/app-matriculas/internal/services"
	"github.com/prefeitura-rio/app-matriculas/internal/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	_ "github.com/prefeitura-rio/app-matriculas/docs"
)

// @title           Matrículas API
// @version         1.0
// @description     API de cadastro de alunos, responsáveis e funcionários das escolas. O CPF é validado pelos dígitos verificadores, armazenado sem máscara e único entre todos os cadastros.

// @host      localhost:8080
// @BasePath  /v1

// @tag.name people
// @tag.description Cadastro de pessoas

// @tag.name cpf
// @tag.description Normalização e validação de CPF

// @tag.name health
// @tag.description Health check operations

func main() {
	// Initialize logger first
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logging.Logger.Sync()

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}

	// Initialize observability
	if err := observability.InitTracer(context.Background(), "api"); err != nil {
		logging.Logger.Error("failed to initialize tracing", zap.Error(err))
	}
	defer observability.ShutdownTracer(context.Background())

	// Initialize database connections
	config.InitMongoDB()
	config.InitRedis()

	var auditWorker *utils.AuditWorker
	if config.AppConfig.AuditLogsEnabled {
		writer := utils.NewMongoAuditWriter(config.MongoDB.Collection(config.AppConfig.AuditLogsCollection))
		auditWorker = utils.NewAuditWorker(writer,
			config.AppConfig.AuditWorkerCount,
			config.AppConfig.AuditBufferSize,
			logging.Logger.With(zap.String("component", "audit")))
		auditWorker.Start()
	}

	store := services.NewMongoPersonStore(config.MongoDB.Collection(config.AppConfig.PersonCollection))
	personService := services.NewPersonService(store, config.Redis, auditWorker, logging.Logger, services.PersonServiceConfig{
		CacheTTL:    config.AppConfig.RedisTTL,
		PhoneRegion: config.AppConfig.DefaultPhoneRegion,
		Location:    config.AppConfig.Location,
	})

	personHandlers := handlers.NewPersonHandlers(logging.Logger, personService)
	healthHandlers := handlers.NewHealthHandlers(logging.Logger, map[string]handlers.PingFunc{
		"mongodb": func(ctx context.Context) error {
			return config.MongoDB.Client().Ping(ctx, readpref.Primary())
		},
		"redis": func(ctx context.Context) error {
			return config.Redis.Ping(ctx).Err()
		},
	})

	// Set Gin mode
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router with middleware
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestTiming(),
		middleware.RequestTracker(),
		middleware.AuditContext(),
		cors.Default(),
	)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		v1.GET("/health", healthHandlers.HealthCheck)

		v1.POST("/tenants/:tenant_id/people", personHandlers.CreatePerson)
		v1.GET("/tenants/:tenant_id/people", personHandlers.ListPeople)
		v1.GET("/people/:id", personHandlers.GetPerson)
		v1.PUT("/people/:id", personHandlers.UpdatePerson)
		v1.DELETE("/people/:id", personHandlers.DeletePerson)

		v1.GET("/cpf/:cpf", handlers.InspectCPF)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create server with timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.AppConfig.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", config.AppConfig.Port),
			zap.String("environment", config.AppConfig.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logging.Logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Flush queued audit entries after the last request finished
	auditWorker.Stop()

	if err := config.MongoDB.Client().Disconnect(ctx); err != nil {
		logging.Logger.Warn("failed to disconnect from MongoDB", zap.Error(err))
	}

	logging.Logger.Info("server exited gracefully")
}
