package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotConfigured is returned by provider clients that lack credentials.
var ErrNotConfigured = errors.New("provider not configured")

// Forecast is one 3-hourly forecast point for the destination.
type Forecast struct {
	Time         time.Time `json:"time"`
	TemperatureC float64   `json:"temperature_c"`
	FeelsLikeC   float64   `json:"feels_like_c"`
	Humidity     int       `json:"humidity"`
	WindSpeedMS  float64   `json:"wind_speed_ms"`
	Condition    string    `json:"condition"`
	Description  string    `json:"description"`
	Icon         string    `json:"icon,omitempty"`
}

// WeatherClient talks to the OpenWeatherMap 5-day forecast API.
type WeatherClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewWeatherClient(apiKey, baseURL string) *WeatherClient {
	return &WeatherClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type owmForecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
}

// Forecast returns the upcoming forecast points for a city name.
func (c *WeatherClient) Forecast(ctx context.Context, city string) ([]Forecast, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data/2.5/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openweather error (%d): %s", resp.StatusCode, string(body))
	}

	var parsed owmForecastResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse forecast: %w", err)
	}

	out := make([]Forecast, 0, len(parsed.List))
	for _, item := range parsed.List {
		f := Forecast{
			Time:         time.Unix(item.Dt, 0).UTC(),
			TemperatureC: item.Main.Temp,
			FeelsLikeC:   item.Main.FeelsLike,
			Humidity:     item.Main.Humidity,
			WindSpeedMS:  item.Wind.Speed,
		}
		if len(item.Weather) > 0 {
			f.Condition = item.Weather[0].Main
			f.Description = item.Weather[0].Description
			f.Icon = item.Weather[0].Icon
		}
		out = append(out, f)
	}
	return out, nil
}
