package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/FlameWater5625/TravelleroTralala/services"
)

// Recommendations handles POST /api/recommendations. Provider failures show
// up as absent sections in a 200 response; only bad input is an error.
func (h *Handler) Recommendations(c *gin.Context) {
	var req services.TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.aggregator.Aggregate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "aggregation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build recommendations"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// validationMessage strips the sentinel prefix from a wrapped ErrValidation.
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": ")
}
