package server

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/okairos/llm-bridge-api/internal/analytics"
	"github.com/okairos/llm-bridge-api/internal/config"
	"github.com/okairos/llm-bridge-api/internal/gateway"
	"github.com/okairos/llm-bridge-api/internal/server/middleware"
	"github.com/okairos/llm-bridge-api/internal/server/validator"
	"go.uber.org/zap"
)

type Server struct {
	router    *gin.Engine
	config    *config.Config
	logger    *zap.Logger
	service   gateway.Service
	analytics analytics.Service
	validator *validator.Validator
}

func New(cfg *config.Config, logger *zap.Logger, service gateway.Service, analyticsSvc analytics.Service) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(ginzap.Ginzap(logger, time.RFC3339, false))
	engine.Use(ginzap.RecoveryWithZap(logger, true))

	if cfg.Tracing.Enabled {
		engine.Use(middleware.Tracing("llm-bridge"))
	}

	s := &Server{
		router:    engine,
		config:    cfg,
		logger:    logger,
		service:   service,
		analytics: analyticsSvc,
		validator: validator.New(),
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
