package handlers

import (
	"net/http"

	"glowdesk/models"
	"glowdesk/utils"

	"github.com/gin-gonic/gin"
)

// GetAvailability lists bookable start times for a service, employee and date.
func (h *SchedulingHandler) GetAvailability(c *gin.Context) {
	var query models.AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	slots, err := h.Engine.GetAvailability(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":  query.Date,
		"slots": slots,
	})
}
