package queue

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/queueflow/queueflow-api/internal/handler"
	"github.com/queueflow/queueflow-api/internal/model"
	"github.com/queueflow/queueflow-api/internal/service/queue"
)

type Handler struct {
	service *queue.Service
}

func NewHandler(service *queue.Service) *Handler {
	return &Handler{service: service}
}

// AddPatient places a walk-in on the authenticated owner's queue.
func (h *Handler) AddPatient(c *gin.Context) {
	claims, ok := handler.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.service.AddPatient(c.Request.Context(), claims.UserID, &req, false)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(result))
}

// CustomerAdd is the unauthenticated self-registration onto a business's
// queue.
func (h *Handler) CustomerAdd(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.service.AddPatient(c.Request.Context(), userID, &req, true)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(result))
}

func (h *Handler) Waitlist(c *gin.Context) {
	claims, ok := handler.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	entries, err := h.service.Waitlist(c.Request.Context(), claims)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}

func (h *Handler) Serving(c *gin.Context) {
	claims, ok := handler.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	entries, err := h.service.Serving(c.Request.Context(), claims)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}

func (h *Handler) AllPatients(c *gin.Context) {
	claims, ok := handler.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	entries, err := h.service.AllEntries(c.Request.Context(), claims)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}

func (h *Handler) GetPatient(c *gin.Context) {
	claims, ok := handler.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	patient, err := h.service.GetPatient(c.Request.Context(), claims, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}

// Serve moves a waiting patient to serving.
func (h *Handler) Serve(c *gin.Context) {
	h.transition(c, h.service.Serve)
}

// Complete finishes a serving patient's consultation.
func (h *Handler) Complete(c *gin.Context) {
	h.transition(c, h.service.Complete)
}

// Cancel drops a waiting patient off the queue.
func (h *Handler) Cancel(c *gin.Context) {
	claims, ok := handler.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	patient, err := h.service.Cancel(c.Request.Context(), claims, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}

// PublicWaitlist is the unauthenticated name-only queue view.
func (h *Handler) PublicWaitlist(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	entries, err := h.service.PublicWaitlist(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}

// SelfCancel lets a customer drop themselves off a waitlist without a token.
func (h *Handler) SelfCancel(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	patient, err := h.service.SelfCancel(c.Request.Context(), userID, patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, claims *model.TokenClaims, id uuid.UUID) (*model.QueueEntry, error)) {
	claims, ok := handler.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	entry, err := fn(c.Request.Context(), claims, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entry))
}

func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/customeradd/:userId", h.CustomerAdd)
	r.GET("/public-waitlist/:userId", h.PublicWaitlist)
	r.DELETE("/patientremove/:id/:userId", h.SelfCancel)
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/patient", h.AddPatient)
	r.GET("/waitlist", h.Waitlist)
	r.GET("/serving", h.Serving)
	r.GET("/allpatient", h.AllPatients)
	r.GET("/patient/:id", h.GetPatient)
	r.PUT("/patient/:id/serve", h.Serve)
	r.PUT("/patient/:id/complete", h.Complete)
	r.PUT("/patient/:id/cancelled", h.Cancel)
}
