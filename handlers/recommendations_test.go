package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlameWater5625/TravelleroTralala/services"
)

const tripBody = `{"destination":"Lisbonne","startDate":"2024-06-01","endDate":"2024-06-04","budget":1500,"preferences":{"culture":true,"food":true}}`

func TestRecommendations_PartialFailureIsStill200(t *testing.T) {
	// Real aggregator over fakes: hotels fail, everything else answers.
	agg := services.NewAggregator(services.Providers{
		Weather: weatherFunc(func(context.Context, string) ([]services.Forecast, error) {
			return []services.Forecast{{Condition: "Clear"}}, nil
		}),
		Recommendations: recommenderFunc(func(context.Context, services.RecommendationQuery) ([]services.Recommendation, error) {
			return []services.Recommendation{{Title: "Fado night"}}, nil
		}),
		Hotels: hotelsFunc(func(context.Context, services.HotelQuery) ([]services.Hotel, error) {
			return nil, errors.New("timeout")
		}),
		Flights: flightsFunc(func(context.Context, services.FlightQuery) ([]services.Flight, error) {
			return []services.Flight{{Airline: "TAP Air Portugal", Price: 180}}, nil
		}),
	}, services.AggregatorOptions{DefaultOrigin: "PAR", Timeout: time.Second}, nil, nil)
	srv := newServer(nil, agg)

	rec := do(t, srv, http.MethodPost, "/api/recommendations", "", tripBody)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 3, body["duration"])
	assert.Equal(t, "ok", body["weather"].(map[string]any)["status"])
	assert.Equal(t, "ok", body["activities"].(map[string]any)["status"])
	assert.Equal(t, "ok", body["flights"].(map[string]any)["status"])
	hotels := body["hotels"].(map[string]any)
	assert.Equal(t, "absent", hotels["status"])
	assert.Nil(t, hotels["data"])
}

func TestRecommendations_ValidationError(t *testing.T) {
	calls := 0
	agg := &mockAggregator{aggregate: func(_ context.Context, req services.TripRequest) (services.Recommendations, error) {
		calls++
		_, err := req.Validate()
		return services.Recommendations{}, err
	}}
	srv := newServer(nil, agg)
	body := `{"destination":"Lisbonne","startDate":"2024-06-04","endDate":"2024-06-01"}`

	rec := do(t, srv, http.MethodPost, "/api/recommendations", "", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "endDate must not be before startDate", decode(t, rec)["error"])
	assert.Equal(t, 1, calls)
}

func TestRecommendations_MalformedJSON(t *testing.T) {
	agg := &mockAggregator{aggregate: func(context.Context, services.TripRequest) (services.Recommendations, error) {
		t.Fatal("aggregator must not run on malformed input")
		return services.Recommendations{}, nil
	}}
	srv := newServer(nil, agg)

	rec := do(t, srv, http.MethodPost, "/api/recommendations", "", `{"preferences":"culture"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendations_UnexpectedError(t *testing.T) {
	agg := &mockAggregator{aggregate: func(context.Context, services.TripRequest) (services.Recommendations, error) {
		return services.Recommendations{}, fmt.Errorf("unexpected")
	}}
	srv := newServer(nil, agg)

	rec := do(t, srv, http.MethodPost, "/api/recommendations", "", tripBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// Function adapters for the provider interfaces.

type weatherFunc func(context.Context, string) ([]services.Forecast, error)

func (f weatherFunc) Forecast(ctx context.Context, city string) ([]services.Forecast, error) {
	return f(ctx, city)
}

type recommenderFunc func(context.Context, services.RecommendationQuery) ([]services.Recommendation, error)

func (f recommenderFunc) Recommend(ctx context.Context, q services.RecommendationQuery) ([]services.Recommendation, error) {
	return f(ctx, q)
}

type hotelsFunc func(context.Context, services.HotelQuery) ([]services.Hotel, error)

func (f hotelsFunc) SearchHotels(ctx context.Context, q services.HotelQuery) ([]services.Hotel, error) {
	return f(ctx, q)
}

type flightsFunc func(context.Context, services.FlightQuery) ([]services.Flight, error)

func (f flightsFunc) SearchFlights(ctx context.Context, q services.FlightQuery) ([]services.Flight, error) {
	return f(ctx, q)
}
