package server

import (
	"github.com/okairos/llm-bridge-api/internal/server/middleware"
	v1 "github.com/okairos/llm-bridge-api/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))

	healthHandler := v1.NewHealthHandler()
	s.router.GET("/health", healthHandler.Health)

	api := s.router.Group("/v1")
	api.Use(middleware.Auth(s.config.Server.APIKeys))

	if s.config.RateLimit.RequestsPerSecond > 0 {
		limiter := middleware.NewRateLimiter(
			s.config.RateLimit.RequestsPerSecond,
			s.config.RateLimit.Burst,
			s.logger,
		)
		api.Use(limiter.Middleware())
	}

	{
		chatHandler := v1.NewChatHandler(s.service, s.validator)
		api.POST("/chat/completions", chatHandler.CreateCompletion)
		api.POST("/chat/completions/collected", chatHandler.CreateCompletionBlocking)

		modelHandler := v1.NewModelHandler(s.service)
		api.GET("/models", modelHandler.ListModels)

		genHandler := v1.NewGenerationHandler(s.service, s.validator)
		api.POST("/embeddings", genHandler.CreateEmbeddings)
		api.POST("/images/generations", genHandler.GenerateImage)
		api.POST("/search", genHandler.Search)

		if s.analytics != nil {
			analyticsHandler := v1.NewAnalyticsHandler(s.analytics)
			api.GET("/analytics/usage", analyticsHandler.GetUsage)
			api.GET("/analytics/recent", analyticsHandler.GetRecent)
		}
	}
}
