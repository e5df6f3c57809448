package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const openMeteoURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteo fetches hourly archive/forecast data for a fixed location.
type OpenMeteo struct {
	client    *http.Client
	latitude  float64
	longitude float64
	startHour int
	endHour   int
}

func NewOpenMeteo(latitude, longitude float64, startHour, endHour int) *OpenMeteo {
	return &OpenMeteo{
		client:    &http.Client{Timeout: 10 * time.Second},
		latitude:  latitude,
		longitude: longitude,
		startHour: startHour,
		endHour:   endHour,
	}
}

type openMeteoResponse struct {
	Hourly struct {
		Time          []string  `json:"time"`
		Temperature   []float64 `json:"temperature_2m"`
		Precipitation []float64 `json:"precipitation"`
		CloudCover    []float64 `json:"cloudcover"`
	} `json:"hourly"`
}

// Fetch returns the hourly samples for the given calendar day, filtered to
// the work window [startHour, endHour).
func (o *OpenMeteo) Fetch(ctx context.Context, day time.Time) ([]Sample, error) {
	date := day.Format("2006-01-02")

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(o.latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(o.longitude, 'f', -1, 64))
	params.Set("hourly", "temperature_2m,precipitation,cloudcover")
	params.Set("timezone", "auto")
	params.Set("start_date", date)
	params.Set("end_date", date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openMeteoURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	res, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting open-meteo: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo returned %s", res.Status)
	}

	var body openMeteoResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding open-meteo response: %w", err)
	}

	h := body.Hourly
	samples := make([]Sample, 0, o.endHour-o.startHour)
	for i, stamp := range h.Time {
		if i >= len(h.Temperature) || i >= len(h.Precipitation) || i >= len(h.CloudCover) {
			break
		}
		// Hourly stamps come as "2006-01-02T15:04".
		if len(stamp) < 13 {
			continue
		}
		hour, err := strconv.Atoi(stamp[11:13])
		if err != nil {
			continue
		}
		if hour < o.startHour || hour >= o.endHour {
			continue
		}
		samples = append(samples, Sample{
			Hour:          hour,
			Temp:          h.Temperature[i],
			CloudCover:    h.CloudCover[i],
			Precipitation: h.Precipitation[i],
		})
	}
	return samples, nil
}
