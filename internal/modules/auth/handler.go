package auth

import (
	"net/http"

	"filesmanager/internal/middleware"
	"filesmanager/internal/pkg/apperr"
	"filesmanager/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r gin.IRouter) {
	r.POST("/users", h.Register)
	r.GET("/connect", h.Connect)
	r.GET("/disconnect", h.Disconnect)
}

func (h *Handler) RegisterProtectedRoutes(protected gin.IRouter) {
	protected.GET("/users/me", h.GetMe)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, apperr.InvalidInput("INVALID_BODY", "Invalid request body"))
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, UserPublic{ID: user.ID, Email: user.Email})
}

// Connect exchanges Basic credentials for a session token.
func (h *Handler) Connect(c *gin.Context) {
	email, password, ok := c.Request.BasicAuth()
	if !ok {
		response.FromError(c, ErrUnauthorized)
		return
	}

	token, err := h.service.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, TokenResponse{Token: token})
}

func (h *Handler) Disconnect(c *gin.Context) {
	ok, err := h.service.Revoke(c.Request.Context(), c.GetHeader(middleware.TokenHeader))
	if err != nil {
		response.FromError(c, err)
		return
	}
	if !ok {
		response.FromError(c, ErrUnauthorized)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.FromError(c, ErrUnauthorized)
		return
	}

	user, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, UserPublic{ID: user.ID, Email: user.Email})
}
