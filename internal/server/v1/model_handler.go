package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/okairos/llm-bridge-api/internal/gateway"
	"github.com/okairos/llm-bridge-api/internal/registry"
)

type ModelHandler struct {
	service gateway.Service
}

func NewModelHandler(service gateway.Service) *ModelHandler {
	return &ModelHandler{service: service}
}

type modelView struct {
	ID            string   `json:"id"`
	Object        string   `json:"object"`
	Provider      string   `json:"provider"`
	ContextLength int      `json:"context_length,omitempty"`
	Capabilities  []string `json:"capabilities"`
}

// ListModels returns every usable model. Filterable by provider and by
// capability tag (?capability=WEBSEARCH).
func (h *ModelHandler) ListModels(c *gin.Context) {
	providerFilter := c.Query("provider")
	capFilter := registry.Capability(strings.ToUpper(c.Query("capability")))

	models := h.service.ListModels(c.Request.Context())

	views := make([]modelView, 0, len(models))
	for _, m := range models {
		if providerFilter != "" && m.ProviderID != providerFilter {
			continue
		}
		if capFilter != "" && !m.Has(capFilter) {
			continue
		}

		caps := make([]string, 0, len(m.Capabilities))
		for _, cp := range m.Capabilities {
			caps = append(caps, string(cp))
		}
		views = append(views, modelView{
			ID:            m.Name,
			Object:        "model",
			Provider:      m.ProviderID,
			ContextLength: m.ContextLength,
			Capabilities:  caps,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   views,
	})
}
