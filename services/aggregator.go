package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Provider names, used in logs, metrics and absent reasons.
const (
	ProviderWeather         = "weather"
	ProviderRecommendations = "recommendations"
	ProviderHotels          = "hotels"
	ProviderFlights         = "flights"
)

type WeatherProvider interface {
	Forecast(ctx context.Context, city string) ([]Forecast, error)
}

type RecommendationProvider interface {
	Recommend(ctx context.Context, q RecommendationQuery) ([]Recommendation, error)
}

type HotelProvider interface {
	SearchHotels(ctx context.Context, q HotelQuery) ([]Hotel, error)
}

type FlightProvider interface {
	SearchFlights(ctx context.Context, q FlightQuery) ([]Flight, error)
}

// Providers groups the four upstreams. A nil field is reported absent as
// "not configured".
type Providers struct {
	Weather         WeatherProvider
	Recommendations RecommendationProvider
	Hotels          HotelProvider
	Flights         FlightProvider
}

type SectionStatus string

const (
	SectionOK     SectionStatus = "ok"
	SectionAbsent SectionStatus = "absent"
)

// Section is one provider's outcome: either ok with data, or absent with a
// reason. Data is null on the wire when absent.
type Section[T any] struct {
	Status SectionStatus `json:"status"`
	Data   []T           `json:"data"`
	Reason string        `json:"reason,omitempty"`
}

func present[T any](data []T) Section[T] {
	if data == nil {
		data = []T{}
	}
	return Section[T]{Status: SectionOK, Data: data}
}

func absent[T any](reason string) Section[T] {
	return Section[T]{Status: SectionAbsent, Reason: reason}
}

func (s Section[T]) OK() bool { return s.Status == SectionOK }

// Recommendations is the combined view of one aggregation.
type Recommendations struct {
	Destination string                  `json:"destination"`
	StartDate   string                  `json:"startDate"`
	EndDate     string                  `json:"endDate"`
	Duration    int                     `json:"duration"`
	Budget      float64                 `json:"budget"`
	HotelBudget float64                 `json:"hotelBudget"`
	Weather     Section[Forecast]       `json:"weather"`
	Activities  Section[Recommendation] `json:"activities"`
	Hotels      Section[Hotel]          `json:"hotels"`
	Flights     Section[Flight]         `json:"flights"`
}

type AggregatorOptions struct {
	DefaultOrigin    string
	HotelBudgetShare float64
	Timeout          time.Duration
}

// Aggregator fans a trip out to the four providers and joins the results.
// It holds no per-request state and is safe for concurrent use.
type Aggregator struct {
	providers Providers
	opts      AggregatorOptions
	logger    *slog.Logger
	metrics   *Metrics
}

func NewAggregator(p Providers, opts AggregatorOptions, logger *slog.Logger, metrics *Metrics) *Aggregator {
	if opts.HotelBudgetShare <= 0 {
		opts.HotelBudgetShare = 0.4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{providers: p, opts: opts, logger: logger, metrics: metrics}
}

// Aggregate validates req and queries every provider concurrently under one
// deadline. The only error it returns is a validation error; provider
// failures come back as absent sections.
func (a *Aggregator) Aggregate(ctx context.Context, req TripRequest) (Recommendations, error) {
	trip, err := req.Validate()
	if err != nil {
		return Recommendations{}, err
	}
	if trip.Origin == "" {
		trip.Origin = a.opts.DefaultOrigin
	}

	out := Recommendations{
		Destination: trip.Destination,
		StartDate:   trip.StartDate(),
		EndDate:     trip.EndDate(),
		Duration:    trip.Duration(),
		Budget:      trip.Budget,
		HotelBudget: trip.HotelBudget(a.opts.HotelBudgetShare),
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	// Every goroutine returns nil so a failing provider never cancels its
	// siblings; each writes only its own section.
	var g errgroup.Group
	g.Go(func() error {
		out.Weather = fetch(ctx, a, ProviderWeather, func(ctx context.Context) ([]Forecast, error) {
			if a.providers.Weather == nil {
				return nil, ErrNotConfigured
			}
			return a.providers.Weather.Forecast(ctx, trip.Destination)
		})
		return nil
	})
	g.Go(func() error {
		out.Activities = fetch(ctx, a, ProviderRecommendations, func(ctx context.Context) ([]Recommendation, error) {
			if a.providers.Recommendations == nil {
				return nil, ErrNotConfigured
			}
			return a.providers.Recommendations.Recommend(ctx, RecommendationQuery{
				Destination: trip.Destination,
				Preferences: trip.Preferences,
				Duration:    out.Duration,
			})
		})
		return nil
	})
	g.Go(func() error {
		out.Hotels = fetch(ctx, a, ProviderHotels, func(ctx context.Context) ([]Hotel, error) {
			if a.providers.Hotels == nil {
				return nil, ErrNotConfigured
			}
			return a.providers.Hotels.SearchHotels(ctx, HotelQuery{
				Destination: trip.Destination,
				CheckIn:     out.StartDate,
				CheckOut:    out.EndDate,
				MaxTotal:    out.HotelBudget,
			})
		})
		return nil
	})
	g.Go(func() error {
		out.Flights = fetch(ctx, a, ProviderFlights, func(ctx context.Context) ([]Flight, error) {
			if a.providers.Flights == nil {
				return nil, ErrNotConfigured
			}
			return a.providers.Flights.SearchFlights(ctx, FlightQuery{
				Origin:        trip.Origin,
				Destination:   trip.Destination,
				DepartureDate: out.StartDate,
				ReturnDate:    out.EndDate,
				MaxPrice:      trip.Budget,
			})
		})
		return nil
	})
	_ = g.Wait()

	return out, nil
}

type callResult[T any] struct {
	data []T
	err  error
}

// fetch runs one provider call and converts its outcome into a Section.
// A call still running when ctx ends is abandoned and reported absent.
func fetch[T any](ctx context.Context, a *Aggregator, provider string, call func(context.Context) ([]T, error)) Section[T] {
	start := time.Now()
	done := make(chan callResult[T], 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult[T]{err: fmt.Errorf("provider panicked: %v", r)}
			}
		}()
		data, err := call(ctx)
		done <- callResult[T]{data: data, err: err}
	}()

	var res callResult[T]
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	elapsed := time.Since(start)

	if res.err != nil {
		reason := absentReason(res.err)
		a.metrics.observe(provider, reason, elapsed)
		a.logger.WarnContext(ctx, "provider call failed",
			"provider", provider,
			"reason", reason,
			"error", res.err,
			"duration_ms", elapsed.Milliseconds(),
		)
		return absent[T](reason)
	}

	a.metrics.observe(provider, string(SectionOK), elapsed)
	a.logger.DebugContext(ctx, "provider call succeeded",
		"provider", provider,
		"results", len(res.data),
		"duration_ms", elapsed.Milliseconds(),
	)
	return present(res.data)
}

func absentReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline exceeded"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrNotConfigured):
		return "not configured"
	default:
		return "provider error"
	}
}
