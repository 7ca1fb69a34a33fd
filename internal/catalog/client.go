package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
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
	"golang.org/x/sync/singleflight"
)

const (
	maxResponseBytes = 8 << 20

	defaultTimeout = 10 * time.Second
)

// Client talks to the remote product REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	group      singleflight.Group
	timeout    time.Duration
	log        *zap.Logger
}

type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	breaker    circuitbreaker.Config
	log        *zap.Logger
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

func WithBreaker(cfg circuitbreaker.Config) Option {
	return func(o *clientOptions) { o.breaker = cfg }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	o := clientOptions{breaker: circuitbreaker.DefaultConfig("catalog")}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: o.httpClient,
		breaker:    circuitbreaker.New[[]byte](o.breaker, o.log, isFailure),
		timeout:    timeout,
		log:        o.log,
	}
}

// isFailure reports whether err says something about the catalog's health.
// A missing product or a caller that went away does not.
func isFailure(err error) bool {
	return !errors.Is(err, ErrProductNotFound) && !errors.Is(err, context.Canceled)
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := c.get(ctx, "/products/", nil)
	if err != nil {
		return nil, err
	}
	return decodeProducts(body)
}

func (c *Client) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	body, err := c.get(ctx, "/products/category/", url.Values{"type": {category}})
	if err != nil {
		return nil, err
	}
	return decodeProducts(body)
}

// GetProduct collapses concurrent lookups of the same id into one request.
// The shared request outlives any single caller; each caller stops waiting
// when its own ctx is done.
func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	key := strconv.FormatInt(id, 10)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		body, err := c.get(shared, "/products/"+key+"/", nil)
		if err != nil {
			return domain.Product{}, err
		}
		return decodeProduct(body)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.Product{}, res.Err
		}
		return res.Val.(domain.Product), nil
	case <-ctx.Done():
		return domain.Product{}, ctx.Err()
	}
}

func (c *Client) Search(ctx context.Context, query string) ([]domain.Product, error) {
	body, err := c.get(ctx, "/products/search/", url.Values{"q": {query}})
	if err != nil {
		return nil, err
	}
	return decodeProducts(body)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrProductNotFound
		case resp.StatusCode >= http.StatusBadRequest:
			return nil, fmt.Errorf("%w: %s returned %d", ErrUnavailable, path, resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	})
	if err != nil {
		if circuitbreaker.IsOpen(err) {
			c.log.Warn("catalog call rejected", zap.String("path", path), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, err
	}
	return body, nil
}

// decodeProducts accepts either {"products": [...]} or a bare array.
func decodeProducts(body []byte) ([]domain.Product, error) {
	var envelope struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Products != nil {
		return envelope.Products, nil
	}

	var products []domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// decodeProduct accepts either {"product": {...}} or a bare object.
func decodeProduct(body []byte) (domain.Product, error) {
	var envelope struct {
		Product *domain.Product `json:"product"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Product != nil {
		return *envelope.Product, nil
	}

	var p domain.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return domain.Product{}, fmt.Errorf("decode product: %w", err)
	}
	if p.ID == 0 {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}
