package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/OldStager01/decision-brain/api/handlers"
	"github.com/OldStager01/decision-brain/api/middleware"
	"github.com/OldStager01/decision-brain/api/websocket"
	_ "github.com/OldStager01/decision-brain/docs"
	"github.com/OldStager01/decision-brain/internal/auth"
	"github.com/OldStager01/decision-brain/internal/events"
	"github.com/OldStager01/decision-brain/internal/metrics"
	"github.com/OldStager01/decision-brain/internal/service"
	"github.com/OldStager01/decision-brain/pkg/config"
	"github.com/OldStager01/decision-brain/pkg/database"
	"github.com/OldStager01/decision-brain/pkg/database/queries"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies are the collaborators the server wires into its routes.
// DB is optional; without it the audit routes answer 503.
type Dependencies struct {
	Decider *service.Decider
	Bus     *events.EventBus
	Metrics *metrics.Metrics
	DB      *database.DB
}

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      *config.Config
	deps        Dependencies
	authService *auth.Service
	wsHub       *websocket.Hub
	wsBridge    *websocket.EventBridge
}

func NewServer(cfg *config.Config, deps Dependencies) *Server {
	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	if deps.Decider == nil {
		deps.Decider = service.NewDecider(service.Config{Metrics: deps.Metrics})
	}

	router := gin.New()
	authCfg := cfg.API.Auth
	authService := auth.NewService(authCfg.JWTSecret, authCfg.JWTIssuer, authCfg.JWTDuration)
	wsHub := websocket.NewHub(&cfg.WebSocket, deps.Metrics)

	s := &Server{
		router:      router,
		config:      cfg,
		deps:        deps,
		authService: authService,
		wsHub:       wsHub,
	}

	s.setupMiddleware()
	s.setupRoutes()

	go wsHub.Run()

	// Forward bus events to WebSocket clients
	if deps.Bus != nil {
		s.wsBridge = websocket.NewEventBridge(wsHub, deps.Bus.SubscribeAll())
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.CORS(middleware.CORSFromConfig(s.config.API.CORS)))
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestLogger("/health/live", "/health/ready", "/metrics"))
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.RequestSizeLimit(s.config.API.MaxBodyBytes))

	if s.config.API.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(s.config.API.RateLimit, time.Minute)
		s.router.Use(middleware.RateLimit(rateLimiter))
	}
}

func (s *Server) setupRoutes() {
	var healthDB handlers.HealthChecker
	var auditReader handlers.AuditReader
	if s.deps.DB != nil {
		healthDB = s.deps.DB
		auditReader = queries.NewDecisionRepository(s.deps.DB.DB)
	}

	healthHandler := handlers.NewHealthHandler(s.deps.Decider, healthDB)
	decisionHandler := handlers.NewDecisionHandler(s.deps.Decider)
	auditHandler := handlers.NewAuditHandler(auditReader)

	// Public routes
	s.router.GET("/", handlers.Dashboard)
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)
	s.router.GET("/scope", decisionHandler.Scope)
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if s.config.Metrics.Enabled && s.deps.Metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}

	// WebSocket route
	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	protected := s.router.Group("/")
	if s.config.API.Auth.Enabled {
		protected.Use(middleware.JWTAuth(s.authService))
	}
	{
		protected.POST("/decide", decisionHandler.Decide)
		protected.GET("/decisions/recent", auditHandler.Recent)
		protected.GET("/decisions/stats", auditHandler.Stats)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.API.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.API.ReadTimeout,
		WriteTimeout: s.config.API.WriteTimeout,
		IdleTimeout:  s.config.API.IdleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop the event bridge first
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}
	s.wsHub.Stop()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}

func (s *Server) AuthService() *auth.Service {
	return s.authService
}
