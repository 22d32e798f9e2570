// Package handlers implements the HTTP API on top of gin.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/FlameWater5625/TravelleroTralala/database"
	"github.com/FlameWater5625/TravelleroTralala/middleware"
	"github.com/FlameWater5625/TravelleroTralala/services"
)

// ItineraryStore is the persistence the itinerary routes need.
type ItineraryStore interface {
	Create(ctx context.Context, it *database.Itinerary) error
	Get(ctx context.Context, id string) (*database.Itinerary, error)
}

// Aggregator produces the combined recommendations for a trip.
type Aggregator interface {
	Aggregate(ctx context.Context, req services.TripRequest) (services.Recommendations, error)
}

// Pinger reports database reachability for the health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	itineraries ItineraryStore
	aggregator  Aggregator
	db          Pinger
	logger      *slog.Logger
}

func New(itineraries ItineraryStore, aggregator Aggregator, db Pinger, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{itineraries: itineraries, aggregator: aggregator, db: db, logger: logger}
}

type RouterOptions struct {
	AllowedOrigins []string
	// Metrics, when set, is served at GET /metrics.
	Metrics http.Handler
}

// NewRouter mounts every route. gate guards the itinerary routes.
func NewRouter(h *Handler, gate gin.HandlerFunc, opts RouterOptions) *gin.Engine {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:5173"}
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(h.logger))
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.POST("/recommendations", h.Recommendations)

		itineraries := api.Group("/itineraire", gate)
		itineraries.POST("", h.CreateItinerary)
		itineraries.GET("/:id", h.GetItinerary)
		itineraries.GET("/:id/pdf", h.DownloadItinerary)
	}
	return r
}
