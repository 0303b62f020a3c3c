package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/okairos/llm-bridge-api/internal/gateway"
	"github.com/okairos/llm-bridge-api/internal/server/validator"
	"github.com/okairos/llm-bridge-api/pkg/api"
)

type ChatHandler struct {
	service   gateway.Service
	validator *validator.Validator
}

func NewChatHandler(service gateway.Service, v *validator.Validator) *ChatHandler {
	return &ChatHandler{
		service:   service,
		validator: v,
	}
}

func (h *ChatHandler) CreateCompletion(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return
	}

	if req.Stream {
		h.handleStream(c, &req)
		return
	}

	resp, err := h.service.Chat(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) handleStream(c *gin.Context, req *api.ChatRequest) {
	streamChan, err := h.service.StreamChat(c.Request.Context(), req)
	if err != nil {
		// routing and capability failures surface before any bytes are sent,
		// so a regular problem document is still possible here
		problem := api.AsProblem(err)
		c.JSON(problem.Status, problem)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Transfer-Encoding", "chunked")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		result, ok := <-streamChan
		if !ok {
			_, _ = io.WriteString(w, "data: [DONE]\n\n")
			return false
		}

		if result.Err != nil {
			// the status line is already on the wire; the error travels as a
			// terminal in-band chunk
			errResp := api.ChatResponse{
				Choices: []api.Choice{{
					FinishReason: "error",
					Error:        &api.ErrorResponse{Message: result.Err.Error()},
				}},
			}
			data, _ := json.Marshal(errResp)
			_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
			return false
		}

		if result.Response != nil {
			data, merr := json.Marshal(result.Response)
			if merr != nil {
				return true
			}
			_, werr := fmt.Fprintf(w, "data: %s\n\n", data)
			return werr == nil
		}

		return true
	})
}

// CreateCompletionBlocking exposes the reassembled form of a streaming
// exchange: deltas are consumed server-side and the response arrives as one
// normalized document with usage and extensions intact.
func (h *ChatHandler) CreateCompletionBlocking(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return
	}

	resp, err := h.service.ChatStream(c.Request.Context(), &req, nil)
	if err != nil {
		var problem *api.Problem
		if errors.As(err, &problem) {
			c.JSON(problem.Status, problem)
			return
		}
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
