// Package config loads application configuration from environment variables,
// reading an optional .env file first.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the API server and CLI need.
type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	// AllowedOrigins always includes the local dev front ends; FRONTEND_URL
	// adds to it as a comma-separated list.
	AllowedOrigins []string

	DatabaseURL string

	Amadeus     AmadeusConfig
	Weather     WeatherConfig
	HuggingFace HuggingFaceConfig
	Firebase    FirebaseConfig
	Planner     PlannerConfig
}

type AmadeusConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
}

type WeatherConfig struct {
	APIKey  string
	BaseURL string
}

type HuggingFaceConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// FirebaseConfig points at the service account used to verify ID tokens.
type FirebaseConfig struct {
	CredentialsFile string
	ProjectID       string
}

// PlannerConfig tunes the recommendation fan-out.
type PlannerConfig struct {
	// DefaultOrigin is used for flight search when the request names no origin.
	DefaultOrigin string
	// HotelBudgetShare is the fraction of the trip budget allocated to lodging.
	HotelBudgetShare float64
	// ProviderTimeout bounds the whole fan-out; providers still pending at
	// expiry are reported absent.
	ProviderTimeout time.Duration
}

// Load reads configuration from the environment. A missing .env file is not
// an error. Every invalid or missing required value is reported in one error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: append([]string{"http://localhost:5173", "http://localhost:3000"}, splitCSV(os.Getenv("FRONTEND_URL"))...),
		DatabaseURL:    buildDSN(),
		Amadeus: AmadeusConfig{
			ClientID:     os.Getenv("AMADEUS_CLIENT_ID"),
			ClientSecret: os.Getenv("AMADEUS_CLIENT_SECRET"),
			BaseURL:      amadeusBaseURL(os.Getenv("AMADEUS_ENV")),
		},
		Weather: WeatherConfig{
			APIKey:  os.Getenv("OPENWEATHER_API_KEY"),
			BaseURL: getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"),
		},
		HuggingFace: HuggingFaceConfig{
			APIKey:  os.Getenv("HUGGINGFACE_API_KEY"),
			Model:   getEnv("HF_MODEL", "mistralai/Mistral-7B-Instruct-v0.3"),
			BaseURL: getEnv("HF_BASE_URL", "https://api-inference.huggingface.co"),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", "firebaseServiceAccountKey.json"),
			ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		},
		Planner: PlannerConfig{
			DefaultOrigin: strings.ToUpper(getEnv("DEFAULT_ORIGIN", "PAR")),
		},
	}

	var problems []string

	share, err := strconv.ParseFloat(getEnv("HOTEL_BUDGET_SHARE", "0.4"), 64)
	if err != nil || share <= 0 || share > 1 {
		problems = append(problems, "HOTEL_BUDGET_SHARE must be a number in (0, 1]")
	}
	cfg.Planner.HotelBudgetShare = share

	timeout, err := time.ParseDuration(getEnv("PROVIDER_TIMEOUT", "20s"))
	if err != nil || timeout <= 0 {
		problems = append(problems, "PROVIDER_TIMEOUT must be a positive duration (e.g. 20s)")
	}
	cfg.Planner.ProviderTimeout = timeout

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

func buildDSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	pass := getEnv("DB_PASSWORD", "postgres")
	name := getEnv("DB_NAME", "travellero")
	sslmode := getEnv("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pass, name, sslmode)
}

func amadeusBaseURL(env string) string {
	if base := os.Getenv("AMADEUS_BASE_URL"); base != "" {
		return base
	}
	if env == "production" {
		return "https://api.amadeus.com"
	}
	return "https://test.api.amadeus.com"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
