package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/okairos/llm-bridge-api/internal/gateway"
	"github.com/okairos/llm-bridge-api/internal/server/validator"
	"github.com/okairos/llm-bridge-api/pkg/api"
)

// GenerationHandler serves the non-chat generation surfaces: embeddings,
// image generation and provider-native web search.
type GenerationHandler struct {
	service   gateway.Service
	validator *validator.Validator
}

func NewGenerationHandler(service gateway.Service, v *validator.Validator) *GenerationHandler {
	return &GenerationHandler{
		service:   service,
		validator: v,
	}
}

func (h *GenerationHandler) CreateEmbeddings(c *gin.Context) {
	var req api.EmbeddingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return
	}

	resp, err := h.service.Embeddings(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *GenerationHandler) GenerateImage(c *gin.Context) {
	var req api.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return
	}

	resp, err := h.service.GenerateImage(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *GenerationHandler) Search(c *gin.Context) {
	var req api.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return
	}

	resp, err := h.service.Search(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
