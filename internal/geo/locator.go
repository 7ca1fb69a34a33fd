// Package geo reverse-geocodes a coordinate into the address fields used to
// prefill delivery details.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrLookupFailed       = errors.New("location lookup failed")
)

type Locator interface {
	Locate(ctx context.Context, lat, lon float64) (domain.Location, error)
}

// NominatimLocator queries a Nominatim compatible /reverse endpoint.
type NominatimLocator struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[domain.Location]
}

type reverseResponse struct {
	Address struct {
		County   string `json:"county"`
		City     string `json:"city"`
		Town     string `json:"town"`
		State    string `json:"state"`
		Postcode string `json:"postcode"`
		Country  string `json:"country"`
	} `json:"address"`
	Error string `json:"error"`
}

func NewNominatimLocator(baseURL string, timeout time.Duration, log *zap.Logger) *NominatimLocator {
	return &NominatimLocator{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "storefront/1.0",
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New[domain.Location](circuitbreaker.DefaultConfig("geo"), log, func(err error) bool {
			return !errors.Is(err, ErrInvalidCoordinates)
		}),
	}
}

func (l *NominatimLocator) Locate(ctx context.Context, lat, lon float64) (domain.Location, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.Location{}, ErrInvalidCoordinates
	}

	loc, err := l.breaker.Execute(func() (domain.Location, error) {
		return l.reverse(ctx, lat, lon)
	})
	if err != nil {
		if circuitbreaker.IsOpen(err) {
			return domain.Location{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
		}
		return domain.Location{}, err
	}
	return loc, nil
}

func (l *NominatimLocator) reverse(ctx context.Context, lat, lon float64) (domain.Location, error) {
	q := url.Values{
		"format": {"jsonv2"},
		"lat":    {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":    {strconv.FormatFloat(lon, 'f', 6, 64)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return domain.Location{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return domain.Location{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Location{}, fmt.Errorf("%w: status %d", ErrLookupFailed, resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Location{}, fmt.Errorf("%w: decode: %w", ErrLookupFailed, err)
	}
	if body.Error != "" {
		return domain.Location{}, fmt.Errorf("%w: %s", ErrLookupFailed, body.Error)
	}

	a := body.Address
	county := a.County
	if county == "" {
		county = a.City
	}
	if county == "" {
		county = a.Town
	}
	return domain.Location{
		County:   county,
		State:    a.State,
		Postcode: a.Postcode,
		Country:  a.Country,
	}, nil
}
