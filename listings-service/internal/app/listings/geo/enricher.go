package geo

import (
	"context"
	"math"
	"time"

	"wanderlust/listings-service/internal/app/listings/entity"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/metrics"
)

// FallbackCoordinates используются при любой неудаче геокодирования
// Значение должно совпадать побайтно с уже сохраненными объявлениями
var FallbackCoordinates = entity.Coordinates{Longitude: 78.9629, Latitude: 20.5937}

// DefaultTimeout - верхняя граница одного обращения к провайдеру
const DefaultTimeout = 5 * time.Second

// Result - один кандидат, найденный провайдером
type Result struct {
	Coordinates      entity.Coordinates
	FormattedAddress string
}

// Provider - внешний сервис прямого геокодирования
type Provider interface {
	Lookup(ctx context.Context, text string) ([]Result, error)
}

// Enricher превращает текст адреса в координаты
// Никогда не возвращает ошибку: при сбое отдает FallbackCoordinates и исходный текст
type Enricher struct {
	provider Provider
	timeout  time.Duration
}

// NewEnricher создает обогатитель с заданным провайдером
// timeout <= 0 заменяется на DefaultTimeout
func NewEnricher(provider Provider, timeout time.Duration) *Enricher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Enricher{
		provider: provider,
		timeout:  timeout,
	}
}

// Enrich возвращает координаты и нормализованный адрес для текста
func (e *Enricher) Enrich(ctx context.Context, location string) (entity.Coordinates, string) {
	if e == nil || e.provider == nil {
		return fallback(location, "provider is not configured", nil)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	results, err := e.provider.Lookup(lookupCtx, location)
	metrics.GeocodeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return fallback(location, "lookup failed", err)
	}
	if len(results) == 0 {
		return fallback(location, "no results", nil)
	}

	best := results[0]
	if !validCoordinates(best.Coordinates) {
		return fallback(location, "invalid coordinates", nil)
	}

	resolved := best.FormattedAddress
	if resolved == "" {
		resolved = location
	}

	metrics.GeocodeRequests.WithLabelValues("success").Inc()
	return best.Coordinates, resolved
}

func fallback(location, reason string, err error) (entity.Coordinates, string) {
	metrics.GeocodeRequests.WithLabelValues("fallback").Inc()

	event := logger.Warn().
		Str("location", location).
		Str("reason", reason)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg("Geocoding failed, using fallback coordinates")

	return FallbackCoordinates, location
}

func validCoordinates(c entity.Coordinates) bool {
	for _, v := range []float64{c.Longitude, c.Latitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return c.Longitude >= -180 && c.Longitude <= 180 && c.Latitude >= -90 && c.Latitude <= 90
}
