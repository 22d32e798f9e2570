package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUserMismatch is returned when the body names a different user than the
// verified credential.
var ErrUserMismatch = errors.New("userId does not match the authenticated user")

// ItineraryRequest is the body of a save-itinerary call.
type ItineraryRequest struct {
	UserID      string        `json:"userId"`
	Destination string        `json:"destination" validate:"required"`
	Date        string        `json:"date" validate:"required,datetime=2006-01-02"`
	Budget      float64       `json:"budget" validate:"required,gt=0"`
	Preferences PreferenceSet `json:"preferences" validate:"required,dive,oneof=adventure culture relaxation food"`
}

// NewItinerary is a validated ItineraryRequest bound to its owner.
type NewItinerary struct {
	UserID      string
	Destination string
	Date        time.Time
	Budget      float64
	Preferences PreferenceSet
}

// Validate binds the request to the verified uid. An empty body userId
// defaults to uid; a different one is refused.
func (r ItineraryRequest) Validate(uid string) (NewItinerary, error) {
	r.UserID = strings.TrimSpace(r.UserID)
	if r.UserID != "" && r.UserID != uid {
		return NewItinerary{}, ErrUserMismatch
	}
	r.Destination = strings.TrimSpace(r.Destination)

	if err := validate.Struct(r); err != nil {
		return NewItinerary{}, validationError(err)
	}
	if uid == "" {
		return NewItinerary{}, fmt.Errorf("%w: userId is required", ErrValidation)
	}

	date, _ := time.Parse(dateLayout, r.Date)
	return NewItinerary{
		UserID:      uid,
		Destination: r.Destination,
		Date:        date,
		Budget:      r.Budget,
		Preferences: r.Preferences,
	}, nil
}
