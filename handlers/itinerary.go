package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FlameWater5625/TravelleroTralala/database"
	"github.com/FlameWater5625/TravelleroTralala/identity"
	"github.com/FlameWater5625/TravelleroTralala/middleware"
	"github.com/FlameWater5625/TravelleroTralala/services"
)

type CreateItineraryResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type ItineraryResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Destination string    `json:"destination"`
	Date        string    `json:"date"`
	Budget      float64   `json:"budget"`
	Preferences []string  `json:"preferences"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateItinerary handles POST /api/itineraire. Missing fields are reported
// as a 500 like any other failed insert; nothing is written in either case.
func (h *Handler) CreateItinerary(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req services.ItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	draft, err := req.Validate(id.UID)
	switch {
	case errors.Is(err, services.ErrUserMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	case errors.Is(err, services.ErrValidation):
		h.logger.WarnContext(c.Request.Context(), "itinerary rejected", "uid", id.UID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save itinerary: " + validationMessage(err)})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save itinerary"})
		return
	}

	it := &database.Itinerary{
		UserID:      draft.UserID,
		Destination: draft.Destination,
		Date:        draft.Date,
		Budget:      draft.Budget,
		Preferences: draft.Preferences.String(),
	}
	if err := h.itineraries.Create(c.Request.Context(), it); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "failed to save itinerary", "uid", id.UID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save itinerary"})
		return
	}

	h.logger.InfoContext(c.Request.Context(), "itinerary saved", "id", it.ID, "uid", it.UserID)
	c.JSON(http.StatusCreated, CreateItineraryResponse{Message: "Itinerary created", ID: it.ID})
}

// GetItinerary handles GET /api/itineraire/:id.
func (h *Handler) GetItinerary(c *gin.Context) {
	it, ok := h.ownedItinerary(c)
	if !ok {
		return
	}

	var prefs []string
	if err := json.Unmarshal([]byte(it.Preferences), &prefs); err != nil || prefs == nil {
		prefs = []string{}
	}
	c.JSON(http.StatusOK, ItineraryResponse{
		ID:          it.ID,
		UserID:      it.UserID,
		Destination: it.Destination,
		Date:        it.Date.Format("2006-01-02"),
		Budget:      it.Budget,
		Preferences: prefs,
		CreatedAt:   it.CreatedAt,
	})
}

// ownedItinerary loads the :id itinerary and writes the error response
// itself when it is missing or belongs to someone else.
func (h *Handler) ownedItinerary(c *gin.Context) (*database.Itinerary, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return nil, false
	}

	it, err := h.itineraries.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Itinerary not found"})
		return nil, false
	case err != nil:
		h.logger.ErrorContext(c.Request.Context(), "failed to load itinerary", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load itinerary"})
		return nil, false
	}

	// Someone else's itinerary is reported as missing.
	if it.UserID != id.UID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Itinerary not found"})
		return nil, false
	}
	return it, true
}

func traveler(id identity.Identity) string {
	if id.Email != "" {
		return id.Email
	}
	return id.UID
}
