package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"writer_digest_bot/internal/domain/digest"
)

var ErrMissingField = fmt.Errorf("forecast response is missing a field")

// Client fetches daily forecasts from the Open-Meteo API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	latitude   float64
	longitude  float64
	timezone   string
}

func NewClient(httpClient *http.Client, endpoint string, latitude, longitude float64, timezone string) *Client {
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		latitude:   latitude,
		longitude:  longitude,
		timezone:   timezone,
	}
}

type forecastResponse struct {
	Daily *struct {
		WeatherCode []*int     `json:"weathercode"`
		TempMax     []*float64 `json:"temperature_2m_max"`
		TempMin     []*float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func (c *Client) requestURL() (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid weather endpoint: %w", err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(c.latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.longitude, 'f', -1, 64))
	q.Set("daily", "weathercode,temperature_2m_max,temperature_2m_min")
	q.Set("timezone", c.timezone)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Today returns the first daily entry of the forecast.
func (c *Client) Today(ctx context.Context) (*digest.Forecast, error) {
	reqURL, err := c.requestURL()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build forecast request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("forecast api error: status %s, body %s", resp.Status, string(body))
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode forecast: %w", err)
	}
	return parseToday(&payload)
}

func parseToday(p *forecastResponse) (*digest.Forecast, error) {
	if p.Daily == nil {
		return nil, fmt.Errorf("%w: daily", ErrMissingField)
	}
	d := p.Daily
	if len(d.TempMax) == 0 || d.TempMax[0] == nil {
		return nil, fmt.Errorf("%w: temperature_2m_max", ErrMissingField)
	}
	if len(d.TempMin) == 0 || d.TempMin[0] == nil {
		return nil, fmt.Errorf("%w: temperature_2m_min", ErrMissingField)
	}

	f := &digest.Forecast{MaxTemp: *d.TempMax[0], MinTemp: *d.TempMin[0]}
	if len(d.WeatherCode) > 0 && d.WeatherCode[0] != nil {
		f.WeatherCode = *d.WeatherCode[0]
		f.HasCode = true
	}
	return f, nil
}
