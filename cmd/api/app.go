package main

import (
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/hugohenrick/certificados-api/internal/adapter/api/controller"
	"github.com/hugohenrick/certificados-api/internal/adapter/api/route"
	"github.com/hugohenrick/certificados-api/internal/adapter/repository"
	"github.com/hugohenrick/certificados-api/internal/domain/certificate"
	"github.com/hugohenrick/certificados-api/internal/infrastructure/database"
	"github.com/hugohenrick/certificados-api/internal/infrastructure/storage"
	"github.com/hugohenrick/certificados-api/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App representa a aplicação e suas dependências
type App struct {
	router                *gin.Engine
	db                    *pgxpool.Pool
	logger                logger.Logger
	certificateController *controller.CertificateController
}

// NewApp cria uma nova instância do aplicativo
func NewApp() (*App, error) {
	appLogger := logger.NewLogger()

	// Configurar banco de dados (Metadata Store)
	db, err := database.NewPostgresDB()
	if err != nil {
		return nil, err
	}

	// Configurar o Artifact Store
	store, err := storage.NewCloudinaryStore()
	if err != nil {
		db.Close()
		return nil, err
	}

	// Criar repositório, serviço e controller
	certificateRepo := repository.NewCertificateRepository(db)
	certificateService := certificate.NewService(certificateRepo, store)
	certificateController := controller.NewCertificateController(certificateService, appLogger)

	// Configurar router e middlewares globais
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	return &App{
		router:                router,
		db:                    db,
		logger:                appLogger,
		certificateController: certificateController,
	}, nil
}

// SetupRoutes configura as rotas da aplicação
func (a *App) SetupRoutes() {
	// Liveness
	a.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	api := a.router.Group("")
	route.SetupCertificateRoutes(api, a.certificateController)

	// Documentação Swagger
	a.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Start inicia o servidor HTTP
func (a *App) Start() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	a.logger.Info("Starting HTTP server", "port", port)
	return a.router.Run(":" + port)
}

// Close libera os recursos da aplicação
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
