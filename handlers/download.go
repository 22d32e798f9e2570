package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FlameWater5625/TravelleroTralala/middleware"
	"github.com/FlameWater5625/TravelleroTralala/services"
)

// DownloadItinerary handles GET /api/itineraire/:id/pdf.
func (h *Handler) DownloadItinerary(c *gin.Context) {
	it, ok := h.ownedItinerary(c)
	if !ok {
		return
	}
	id, _ := middleware.IdentityFrom(c)

	var prefs services.PreferenceSet
	_ = json.Unmarshal([]byte(it.Preferences), &prefs)

	pdfBytes, err := services.GenerateItineraryPDF(services.ItinerarySheet{
		ID:          it.ID,
		Traveler:    traveler(id),
		Destination: it.Destination,
		Date:        it.Date,
		Budget:      it.Budget,
		Preferences: prefs,
		CreatedAt:   it.CreatedAt,
	})
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "PDF generation failed", "id", it.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=itineraire-"+it.ID+".pdf")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// Health handles GET /api/health.
func (h *Handler) Health(c *gin.Context) {
	dbStatus := "ok"
	if h.db == nil {
		dbStatus = "not initialized"
	} else if err := h.db.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "TravelleroTralala API",
		"database": dbStatus,
	})
}
