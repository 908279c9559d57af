// Package weather answers location weather questions via the keyless
// Open-Meteo geocoding and forecast APIs.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/errandlabs/errand/internal/capability"
)

// Tool implements capability.Tool for current conditions and a short
// forecast.
type Tool struct {
	geocodeURL  string
	forecastURL string
	client      *http.Client
}

// New builds the weather tool.
func New() *Tool {
	return &Tool{
		geocodeURL:  "https://geocoding-api.open-meteo.com",
		forecastURL: "https://api.open-meteo.com",
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *Tool) Name() string { return "weather" }

func (t *Tool) Description() string {
	return "Returns current weather and a short forecast for a named location."
}

func (t *Tool) InputSchema() []capability.Field {
	return []capability.Field{
		{Name: "location", Type: "string", Description: "city or place name", Required: true},
	}
}

func (t *Tool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	location := capability.StringArg(args, "location", "city", "place", "query")
	if location == "" {
		return "", fmt.Errorf("weather requires a location")
	}

	place, err := t.geocode(ctx, location)
	if err != nil {
		return "", fmt.Errorf("geocode %q: %w", location, err)
	}
	fc, err := t.forecast(ctx, place.Latitude, place.Longitude)
	if err != nil {
		return "", fmt.Errorf("forecast for %s: %w", place.Name, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weather for %s", place.Name)
	if place.Country != "" {
		fmt.Fprintf(&b, ", %s", place.Country)
	}
	fmt.Fprintf(&b, ":\nNow: %.1f°C, wind %.1f km/h, %s\n",
		fc.Current.Temperature, fc.Current.WindSpeed, describeWeatherCode(fc.Current.WeatherCode))

	for i, day := range fc.Daily.Time {
		if i >= len(fc.Daily.TempMax) || i >= len(fc.Daily.TempMin) {
			break
		}
		fmt.Fprintf(&b, "%s: %.1f°C to %.1f°C\n", day, fc.Daily.TempMin[i], fc.Daily.TempMax[i])
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

type place struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (t *Tool) geocode(ctx context.Context, location string) (place, error) {
	u := fmt.Sprintf("%s/v1/search?name=%s&count=1", t.geocodeURL, url.QueryEscape(location))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return place{}, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return place{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return place{}, fmt.Errorf("status %d", resp.StatusCode)
	}
	var raw struct {
		Results []place `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return place{}, err
	}
	if len(raw.Results) == 0 {
		return place{}, fmt.Errorf("no such place")
	}
	return raw.Results[0], nil
}

type forecastData struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time    []string  `json:"time"`
		TempMax []float64 `json:"temperature_2m_max"`
		TempMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func (t *Tool) forecast(ctx context.Context, lat, lon float64) (forecastData, error) {
	u := fmt.Sprintf("%s/v1/forecast?latitude=%f&longitude=%f&current=temperature_2m,wind_speed_10m,weather_code&daily=temperature_2m_max,temperature_2m_min&forecast_days=3&timezone=auto",
		t.forecastURL, lat, lon)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return forecastData{}, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return forecastData{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return forecastData{}, fmt.Errorf("status %d", resp.StatusCode)
	}
	var fc forecastData
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return forecastData{}, err
	}
	return fc, nil
}

// describeWeatherCode maps WMO weather interpretation codes to text.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 3:
		return "partly cloudy"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 61 && code <= 67:
		return "rain"
	case code >= 71 && code <= 77:
		return "snow"
	case code >= 80 && code <= 82:
		return "rain showers"
	case code == 85 || code == 86:
		return "snow showers"
	case code >= 95:
		return "thunderstorm"
	default:
		return "mixed conditions"
	}
}
