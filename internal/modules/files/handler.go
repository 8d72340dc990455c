package files

import (
	"net/http"
	"strconv"

	"filesmanager/internal/domain"
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

// RegisterProtectedRoutes mounts the routes that need a session.
func (h *Handler) RegisterProtectedRoutes(protected gin.IRouter) {
	g := protected.Group("/files")
	{
		g.POST("", h.Upload)
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.PUT("/:id/publish", h.Publish)
		g.PUT("/:id/unpublish", h.Unpublish)
	}
}

// RegisterOptionalRoutes mounts routes that serve anonymous callers too.
func (h *Handler) RegisterOptionalRoutes(optional gin.IRouter) {
	optional.GET("/files/:id/data", h.Download)
}

func sessionUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.FromError(c, apperr.Unauthorized("Unauthorized"))
	}
	return userID, ok
}

// fileID parses :id; anything but a positive integer names no record.
func fileID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.FromError(c, ErrNotFound)
		return 0, false
	}
	return id, true
}

func (h *Handler) Upload(c *gin.Context) {
	userID, ok := sessionUser(c)
	if !ok {
		return
	}

	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, apperr.InvalidInput("INVALID_BODY", "Invalid request body"))
		return
	}

	rec, err := h.service.Upload(c.Request.Context(), userID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, rec)
}

func (h *Handler) Get(c *gin.Context) {
	userID, ok := sessionUser(c)
	if !ok {
		return
	}
	id, ok := fileID(c)
	if !ok {
		return
	}

	rec, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rec)
}

// List serves GET /files?parentId=&page=. Without parentId every record of
// the user is listed; parentId=0 selects the root.
func (h *Handler) List(c *gin.Context) {
	userID, ok := sessionUser(c)
	if !ok {
		return
	}

	var filter domain.ListFilter
	if raw, present := c.GetQuery("parentId"); present {
		parent, err := domain.ParseParentRef(raw)
		if err != nil {
			response.FromError(c, apperr.InvalidInput("INVALID_PARENT_ID", "Invalid parentId"))
			return
		}
		filter = domain.ListFilter{ByParent: true, Parent: parent}
	}

	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 0 || page > domain.MaxPage {
		page = 0
	}

	result, err := h.service.List(c.Request.Context(), userID, filter, page)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) Publish(c *gin.Context) {
	h.setVisibility(c, true)
}

func (h *Handler) Unpublish(c *gin.Context) {
	h.setVisibility(c, false)
}

func (h *Handler) setVisibility(c *gin.Context, isPublic bool) {
	userID, ok := sessionUser(c)
	if !ok {
		return
	}
	id, ok := fileID(c)
	if !ok {
		return
	}

	rec, err := h.service.SetVisibility(c.Request.Context(), userID, id, isPublic)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rec)
}

// Download streams the raw bytes, not an envelope.
func (h *Handler) Download(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}
	width, err := ParseWidth(c.Query("size"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	viewer := Anonymous
	if userID, ok := middleware.UserID(c); ok {
		viewer = UserViewer(userID)
	}

	content, err := h.service.Download(c.Request.Context(), viewer, id, width)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.Data(http.StatusOK, content.ContentType, content.Data)
}
