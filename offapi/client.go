package offapi

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

	"github.com/qyinm/offtui/types"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://world.openfoodfacts.org"
	DefaultUserAgent = "offtui/1.0 (+https://github.com/qyinm/offtui)"
	DefaultPageSize  = 20

	// maxBodyBytes caps a decoded response. The full category list is
	// the largest payload the catalog serves.
	maxBodyBytes = 64 << 20
)

// Config controls how the client talks to the catalog.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	RPS       float64
	Burst     int
	PageSize  int
}

// Client implements types.ProductSource against the Open Food Facts API.
// Every call is a single attempt; callers decide what a failure means.
type Client struct {
	client    *http.Client
	baseURL   string
	userAgent string
	pageSize  int
	limiter   *rate.Limiter
	logger    *zap.Logger
	maxBody   int64
}

// statusError is a non-2xx answer from the catalog.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: status %d, body: %s", ErrUpstream, e.code, e.body)
}

func (e *statusError) Unwrap() error { return ErrUpstream }

// Compile-time interface check
var _ types.ProductSource = (*Client)(nil)

// New creates a new Client. Zero config fields fall back to defaults.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		pageSize:  cfg.PageSize,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		logger:    logger.Named("offapi"),
		maxBody:   maxBodyBytes,
	}
}

// Categories fetches the full category list.
func (c *Client) Categories(ctx context.Context) ([]types.Category, error) {
	var resp wireCategoriesResponse
	if err := c.getJSON(ctx, c.baseURL+"/categories.json", &resp); err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}

	categories := make([]types.Category, 0, len(resp.Tags))
	for _, t := range resp.Tags {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			continue
		}
		name := strings.TrimSpace(t.Name)
		if name == "" {
			name = id
		}
		categories = append(categories, types.NewCategory(id, name, t.Products.asInt()))
	}
	return categories, nil
}

// SearchProducts runs a keyword search. An empty term matches everything.
func (c *Client) SearchProducts(ctx context.Context, q types.SearchQuery) (types.ProductPage, error) {
	page := normalizePage(q.Page)
	params := url.Values{}
	params.Set("search_terms", q.Term)
	params.Set("json", "true")
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(c.pageSize))
	if cat := strings.TrimSpace(q.Category); cat != "" {
		params.Set("action", "process")
		params.Set("tagtype_0", "categories")
		params.Set("tag_contains_0", "contains")
		params.Set("tag_0", cat)
	}

	var resp wireListResponse
	if err := c.getJSON(ctx, c.baseURL+"/cgi/search.pl?"+params.Encode(), &resp); err != nil {
		return types.ProductPage{}, fmt.Errorf("search products: %w", err)
	}
	return resp.toPage(page), nil
}

// CategoryProducts lists one page of a category.
func (c *Client) CategoryProducts(ctx context.Context, categoryID string, page int) (types.ProductPage, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return types.ProductPage{}, fmt.Errorf("category products: empty category id")
	}
	page = normalizePage(page)
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	endpoint := fmt.Sprintf("%s/category/%s.json?%s", c.baseURL, url.PathEscape(categoryID), params.Encode())
	var resp wireListResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return types.ProductPage{}, fmt.Errorf("category products: %w", err)
	}
	return resp.toPage(page), nil
}

// GetProduct looks up a single product by barcode. A 404, or a response
// without a product payload, yields ErrProductNotFound.
func (c *Client) GetProduct(ctx context.Context, barcode string) (types.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return types.Product{}, ErrProductNotFound
	}

	endpoint := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(barcode))
	var resp wireProductResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return types.Product{}, fmt.Errorf("get product %s: %w", barcode, ErrProductNotFound)
		}
		return types.Product{}, fmt.Errorf("get product %s: %w", barcode, err)
	}
	if resp.Product == nil {
		return types.Product{}, ErrProductNotFound
	}

	product := resp.Product.toProduct()
	if product.Code() == "" {
		product = types.NewProduct(barcode, product.Name(), product.Categories(), product.Grade(),
			product.Ingredients(), product.ImageURL(), product.Brands(), product.Labels(), product.Nutriments())
	}
	return product, nil
}

// getJSON performs one GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("url", endpoint), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBody)).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
