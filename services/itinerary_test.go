package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlameWater5625/TravelleroTralala/services"
)

func validItinerary() services.ItineraryRequest {
	return services.ItineraryRequest{
		UserID:      "user-42",
		Destination: "Lisbonne",
		Date:        "2024-06-01",
		Budget:      1500,
		Preferences: services.PreferenceSet{"food"},
	}
}

func TestItineraryRequest_Validate(t *testing.T) {
	got, err := validItinerary().Validate("user-42")

	require.NoError(t, err)
	assert.Equal(t, "user-42", got.UserID)
	assert.Equal(t, "2024-06-01", got.Date.Format("2006-01-02"))
	assert.Equal(t, services.PreferenceSet{"food"}, got.Preferences)
}

func TestItineraryRequest_Validate_UserFromCredential(t *testing.T) {
	req := validItinerary()
	req.UserID = ""

	got, err := req.Validate("user-42")

	require.NoError(t, err)
	assert.Equal(t, "user-42", got.UserID)
}

func TestItineraryRequest_Validate_UserMismatch(t *testing.T) {
	_, err := validItinerary().Validate("someone-else")

	require.ErrorIs(t, err, services.ErrUserMismatch)
}

func TestItineraryRequest_Validate_RequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*services.ItineraryRequest)
		want   string
	}{
		{"destination", func(r *services.ItineraryRequest) { r.Destination = "" }, "destination is required"},
		{"date", func(r *services.ItineraryRequest) { r.Date = "" }, "date is required"},
		{"budget", func(r *services.ItineraryRequest) { r.Budget = 0 }, "budget is required"},
		{"preferences", func(r *services.ItineraryRequest) { r.Preferences = nil }, "preferences is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validItinerary()
			tc.mutate(&req)

			_, err := req.Validate("user-42")

			require.ErrorIs(t, err, services.ErrValidation)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestItineraryRequest_Validate_EmptyPreferencesAllowed(t *testing.T) {
	req := validItinerary()
	req.Preferences = services.PreferenceSet{}

	_, err := req.Validate("user-42")

	require.NoError(t, err)
}
