package handlers

import (
	"errors"
	"net/http"

	"glowdesk/middleware"
	"glowdesk/models"
	"glowdesk/services/scheduling"
	"glowdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SchedulingHandler exposes the scheduling engine over HTTP.
type SchedulingHandler struct {
	Engine scheduling.Service
	Logger *zap.Logger
}

// NewSchedulingHandler constructs a SchedulingHandler.
func NewSchedulingHandler(engine scheduling.Service, logger *zap.Logger) *SchedulingHandler {
	return &SchedulingHandler{Engine: engine, Logger: logger}
}

// BookAppointment creates a new appointment.
func (h *SchedulingHandler) BookAppointment(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	// Online bookings belong to the authenticated caller.
	if req.CustomerID == "" && req.WalkInCustomer == "" {
		req.CustomerID = middleware.CallerID(c)
	}

	appt, err := h.Engine.Book(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"appointment": appt})
}

// CancelAppointment cancels an existing appointment.
func (h *SchedulingHandler) CancelAppointment(c *gin.Context) {
	appointmentID := c.Param("appointmentID")
	callerID := middleware.CallerID(c)

	if err := h.Engine.Cancel(c.Request.Context(), callerID, appointmentID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.AppointmentStatusCancelled})
}

// RescheduleAppointment moves an appointment to a new date and time.
func (h *SchedulingHandler) RescheduleAppointment(c *gin.Context) {
	appointmentID := c.Param("appointmentID")
	callerID := middleware.CallerID(c)

	var req models.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	appt, err := h.Engine.Reschedule(c.Request.Context(), callerID, appointmentID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// respondError maps engine taxonomy errors onto HTTP status codes.
func (h *SchedulingHandler) respondError(c *gin.Context, err error) {
	var conflict *scheduling.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":      "schedule conflict",
			"employeeId": conflict.EmployeeID,
		})
	case errors.Is(err, scheduling.ErrInvalidRequest):
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
	case errors.Is(err, scheduling.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, scheduling.ErrForbidden):
		utils.JSONError(c, http.StatusForbidden, "forbidden", "caller has no rights over this appointment")
	case errors.Is(err, scheduling.ErrAlreadyCancelled):
		utils.JSONError(c, http.StatusConflict, "already cancelled", err.Error())
	case errors.Is(err, scheduling.ErrTooLateToCancel),
		errors.Is(err, scheduling.ErrTooLateToReschedule):
		utils.JSONError(c, http.StatusUnprocessableEntity, "lead time violated", err.Error())
	case errors.Is(err, scheduling.ErrClosed):
		utils.JSONError(c, http.StatusUnprocessableEntity, "closed", err.Error())
	default:
		h.Logger.Error("scheduling operation failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "transient storage failure", "please retry the operation")
	}
}
