package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"wanderlust/listings-service/internal/app/listings/entity"
)

// openCageResponse - нужная часть ответа OpenCage forward geocoding
type openCageResponse struct {
	Results []struct {
		Formatted string `json:"formatted"`
		Geometry  *struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		} `json:"geometry"`
	} `json:"results"`
}

// OpenCageClient реализует Provider поверх HTTP API OpenCage
type OpenCageClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewOpenCageClient создает HTTP клиент геокодера
func NewOpenCageClient(apiURL, apiKey string, timeoutSec int) *OpenCageClient {
	return &OpenCageClient{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
	}
}

// Lookup выполняет прямое геокодирование текста
func (c *OpenCageClient) Lookup(ctx context.Context, text string) ([]Result, error) {
	endpoint, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse geocoder url: %w", err)
	}

	query := endpoint.Query()
	query.Set("q", text)
	query.Set("key", c.apiKey)
	query.Set("limit", "1")
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("geocoder returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload openCageResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal geocoder response: %w", err)
	}

	results := make([]Result, 0, len(payload.Results))
	for _, r := range payload.Results {
		// Кандидат без координат пропускается, а не превращается в (0, 0)
		if r.Geometry == nil || r.Geometry.Lat == nil || r.Geometry.Lng == nil {
			continue
		}
		results = append(results, Result{
			Coordinates: entity.Coordinates{
				Longitude: *r.Geometry.Lng,
				Latitude:  *r.Geometry.Lat,
			},
			FormattedAddress: r.Formatted,
		})
	}

	return results, nil
}
