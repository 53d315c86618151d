package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/queueflow/queueflow-api/internal/handler"
	"github.com/queueflow/queueflow-api/internal/model"
	"github.com/queueflow/queueflow-api/internal/service/appointment"
	"github.com/queueflow/queueflow-api/internal/service/schedule"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

// AvailableSlots returns the free 30-minute windows of a business for a
// date given as YYYY-MM-DD (interpreted as an IST calendar day).
func (h *Handler) AvailableSlots(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	day, err := time.ParseInLocation("2006-01-02", c.Param("date"), schedule.IST)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date format"))
		return
	}

	slots, err := h.service.AvailableSlots(c.Request.Context(), userID, day)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

// Book is the unauthenticated customer booking endpoint.
func (h *Handler) Book(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.service.Book(c.Request.Context(), userID, &req, true)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(result))
}

// AddBooking books a slot on the authenticated owner's own calendar.
func (h *Handler) AddBooking(c *gin.Context) {
	claims, ok := handler.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.service.Book(c.Request.Context(), claims.UserID, &req, false)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(result))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	claims, ok := handler.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	appointments, err := h.service.ListForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) TodayBookings(c *gin.Context) {
	claims, ok := handler.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	bookings, err := h.service.TodayBookings(c.Request.Context(), claims.UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(bookings))
}

func (h *Handler) CancelBooking(c *gin.Context) {
	claims, ok := handler.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	id, err := uuid.Parse(c.Param("appointmentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	appt, err := h.service.Cancel(c.Request.Context(), claims.UserID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appt))
}

// MoveToWaitlist converts a scheduled appointment into a walk-in queue
// entry.
func (h *Handler) MoveToWaitlist(c *gin.Context) {
	claims, ok := handler.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	id, err := uuid.Parse(c.Param("appointmentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	patient, entry, err := h.service.MoveToWaitlist(c.Request.Context(), claims.UserID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(gin.H{
		"patient":     patient,
		"queue_entry": entry,
	}))
}

func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/available-slots/:userId/:date", h.AvailableSlots)
	r.POST("/book/:userId", h.Book)
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/add-booking", h.AddBooking)
	r.GET("/user-appointments", h.ListAppointments)
	r.GET("/today-bookings", h.TodayBookings)
	r.PUT("/cancel-booking/:appointmentId", h.CancelBooking)
	// Older clients still call /cancel; same semantics.
	r.PUT("/cancel/:appointmentId", h.CancelBooking)
	r.POST("/move-to-waitlist/:appointmentId", h.MoveToWaitlist)
}
