package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health answers the platform's reachability probe.
func Health(merchant string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "API RUNNING FOR MERCHANT => "+merchant)
	}
}
