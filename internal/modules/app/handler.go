package app

import (
	"net/http"

	"filesmanager/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/status", h.GetStatus)
	r.GET("/stats", h.GetStats)
}

func (h *Handler) GetStatus(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Status(c.Request.Context()))
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
