package user

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/queueflow/queueflow-api/internal/handler"
	"github.com/queueflow/queueflow-api/internal/middleware"
	"github.com/queueflow/queueflow-api/internal/model"
	"github.com/queueflow/queueflow-api/internal/service/user"
)

type Handler struct {
	service *user.Service
	cache   *middleware.ResponseCache
}

func NewHandler(service *user.Service) *Handler {
	return &Handler{
		service: service,
		cache:   middleware.NewResponseCache(10*time.Second, time.Minute),
	}
}

// ListUsers is admin-only, enforced by the RequireAdmin middleware on the
// route.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}

func (h *Handler) UpdateRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	var req model.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateRole(c.Request.Context(), id, req.Role)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) PatientStats(c *gin.Context) {
	claims, ok := handler.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	stats, err := h.service.PatientStats(c.Request.Context(), claims.UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

func (h *Handler) UpdateBusinessHours(c *gin.Context) {
	claims, ok := handler.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req model.UpdateBusinessHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateBusinessHours(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated.BusinessHours))
}

// QueueCounts is the public queue-length endpoint for a business.
func (h *Handler) QueueCounts(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	counts, err := h.service.QueueCounts(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(counts))
}

// BusinessName exposes only the display name of a business.
func (h *Handler) BusinessName(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	u, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"business_name": u.BusinessName}))
}

// BusinessBySlug resolves a business from its URL slug for the public
// booking pages.
func (h *Handler) BusinessBySlug(c *gin.Context) {
	u, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
}

func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	// Queue counts change on every transition and are never cached.
	r.GET("/queue-status/:userId", h.QueueCounts)

	cached := r.Group("", h.cache.Cache())
	cached.GET("/business-name/:userId", h.BusinessName)
	cached.GET("/business/:slug", h.BusinessBySlug)
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/patient-stats", h.PatientStats)
	r.PUT("/business-hours", h.UpdateBusinessHours)
}

// RegisterAdminRoutes are mounted behind the admin middleware.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/users", h.ListUsers)
	r.PUT("/users/:userId/role", h.UpdateRole)
}
