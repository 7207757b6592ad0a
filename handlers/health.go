package handlers

import (
	"net/http"

	"glowdesk/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler returns the latest recorded health snapshot.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, utils.GetHealthStatus())
}
