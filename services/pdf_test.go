package services_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlameWater5625/TravelleroTralala/services"
)

func TestGenerateItineraryPDF(t *testing.T) {
	out, err := services.GenerateItineraryPDF(services.ItinerarySheet{
		ID:          "5f1c8a52-8f0e-4a43-9b0e-3f4a1c2d9e10",
		Traveler:    "voyageur@example.com",
		Destination: "Séville",
		Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Budget:      1500,
		Preferences: services.PreferenceSet{"culture", "food"},
		CreatedAt:   time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 500)
}

func TestGenerateItineraryPDF_NoPreferences(t *testing.T) {
	out, err := services.GenerateItineraryPDF(services.ItinerarySheet{ID: "x", Destination: "Oslo"})

	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
