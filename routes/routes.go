package routes

import (
	"glowdesk/handlers"
	"glowdesk/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires all endpoints onto the router.
func RegisterRoutes(r *gin.Engine, schedulingHandler *handlers.SchedulingHandler) {
	r.Use(cors.Default())

	r.GET("/health", handlers.HealthHandler)

	api := r.Group("/api/scheduling")
	api.GET("/availability", schedulingHandler.GetAvailability)

	authed := api.Group("")
	authed.Use(middleware.JWTAuthMiddleware())
	{
		authed.POST("/appointments", schedulingHandler.BookAppointment)
		authed.POST("/appointments/:appointmentID/cancel", schedulingHandler.CancelAppointment)
		authed.PUT("/appointments/:appointmentID/schedule", schedulingHandler.RescheduleAppointment)
	}
}
