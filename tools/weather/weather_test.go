package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestTool(t *testing.T) (*Tool, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "Nowhereville" {
			w.Write([]byte(`{"results": []}`))
			return
		}
		w.Write([]byte(`{"results": [{"name": "Oslo", "country": "Norway", "latitude": 59.91, "longitude": 10.75}]}`))
	})
	mux.HandleFunc("/v1/forecast", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"current": {"temperature_2m": 14.2, "wind_speed_10m": 11.5, "weather_code": 61},
			"daily": {
				"time": ["2026-08-26", "2026-08-27"],
				"temperature_2m_max": [16.0, 17.5],
				"temperature_2m_min": [9.1, 10.0]
			}
		}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tool := New()
	tool.geocodeURL = srv.URL
	tool.forecastURL = srv.URL
	tool.client = srv.Client()
	return tool, srv
}

func TestInvokeReportsConditions(t *testing.T) {
	tool, _ := newTestTool(t)

	out, err := tool.Invoke(context.Background(), map[string]interface{}{"location": "Oslo"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	for _, want := range []string{"Oslo, Norway", "14.2°C", "rain", "2026-08-27"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}
}

func TestInvokeFallsBackToQueryArg(t *testing.T) {
	tool, _ := newTestTool(t)

	out, err := tool.Invoke(context.Background(), map[string]interface{}{"query": "Oslo"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !strings.Contains(out, "Oslo") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestInvokeErrorsOnUnknownPlace(t *testing.T) {
	tool, _ := newTestTool(t)

	if _, err := tool.Invoke(context.Background(), map[string]interface{}{"location": "Nowhereville"}); err == nil {
		t.Fatal("unknown place must error")
	}
}

func TestInvokeRequiresLocation(t *testing.T) {
	tool, _ := newTestTool(t)

	if _, err := tool.Invoke(context.Background(), map[string]interface{}{}); err == nil {
		t.Fatal("missing location must error")
	}
}

func TestDescribeWeatherCode(t *testing.T) {
	cases := map[int]string{0: "clear sky", 2: "partly cloudy", 63: "rain", 73: "snow", 96: "thunderstorm"}
	for code, want := range cases {
		if got := describeWeatherCode(code); got != want {
			t.Errorf("code %d = %q, want %q", code, got, want)
		}
	}
}
