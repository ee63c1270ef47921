// internal/handler/greeting.go - greeting service HTTP handlers
package handler

import (
	"fmt"
	"html"
	"net/http"

	"github.com/gin-gonic/gin"

	"codebase-docgen/internal/service"
	"codebase-docgen/pkg/logger"
)

const statusMessage = "Application is running!"

// StatusResponse is the /status body.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type GreetingHandler struct {
	facts   service.FactService
	message string
	logger  logger.Logger
}

func NewGreetingHandler(facts service.FactService, message string, logger logger.Logger) *GreetingHandler {
	return &GreetingHandler{
		facts:   facts,
		message: message,
		logger:  logger,
	}
}

// Hello renders the configured message and a random arithmetic fact.
func (h *GreetingHandler) Hello(c *gin.Context) {
	fact := h.facts.RandomFact()
	h.logger.Debug("serving fact %s", fact)
	page := fmt.Sprintf("<h1>%s</h1><p>Random Logic: %s</p>", html.EscapeString(h.message), fact)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// Status is the liveness check.
func (h *GreetingHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{Status: "OK", Message: statusMessage})
}
