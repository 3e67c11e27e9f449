package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/velora-shop/storefront/pkg/config"
	pkgerrors "github.com/velora-shop/storefront/pkg/errors"
	"github.com/velora-shop/storefront/pkg/logger"
	"github.com/velora-shop/storefront/pkg/metrics"
)

// Client is a stateless REST client for the storefront backend. All state,
// including the bearer token, is passed in by the caller per request.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logg       *logger.Logger
	metrics    *metrics.ClientMetrics
}

// NewClient builds an API client from the provided config.
func NewClient(cfg config.APIConfig, logg *logger.Logger, m *metrics.ClientMetrics) (*Client, error) {
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logg:       logg,
		metrics:    m,
	}, nil
}

func validateBaseURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base url must be http(s), got %q", raw)
	}
	return nil
}

// Login exchanges credentials for a session. The payload is validated
// before any network traffic.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	if err := validatePayload(creds); err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodPost, "/login", "", nil, creds, "login")
	if err != nil {
		return nil, err
	}
	var resp LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode login response")
	}
	if strings.TrimSpace(resp.Token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDecode, "login response missing token")
	}
	return &resp, nil
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context, token string) (*Profile, error) {
	body, err := c.do(ctx, http.MethodGet, "/admin/profile", token, nil, nil, "profile")
	if err != nil {
		return nil, err
	}
	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode profile")
	}
	return &profile, nil
}

// Categories lists the top-level categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	body, err := c.do(ctx, http.MethodGet, "/category", "", nil, nil, "categories")
	if err != nil {
		return nil, err
	}
	return decodeList[Category](body, "categories")
}

func (c *Client) Subcategories(ctx context.Context) ([]Subcategory, error) {
	body, err := c.do(ctx, http.MethodGet, "/subcategory", "", nil, nil, "subcategories")
	if err != nil {
		return nil, err
	}
	return decodeList[Subcategory](body, "subcategories")
}

func (c *Client) Subsubcategories(ctx context.Context) ([]Subsubcategory, error) {
	body, err := c.do(ctx, http.MethodGet, "/subsubcategory", "", nil, nil, "subsubcategories")
	if err != nil {
		return nil, err
	}
	return decodeList[Subsubcategory](body, "subsubcategories")
}

func (c *Client) Brands(ctx context.Context) ([]Brand, error) {
	body, err := c.do(ctx, http.MethodGet, "/brand", "", nil, nil, "brands")
	if err != nil {
		return nil, err
	}
	return decodeList[Brand](body, "brands")
}

// Products lists products for the given query. The token is optional; when
// present the backend scopes the list to the caller's visibility.
func (c *Client) Products(ctx context.Context, query ProductQuery) ([]Product, error) {
	query = query.Normalized()
	params := url.Values{}
	params.Set("sort", query.Sort)
	params.Set("order", query.Order)
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	body, err := c.do(ctx, http.MethodGet, "/products", query.Token, params, nil, "products")
	if err != nil {
		return nil, err
	}
	return decodeList[Product](body, "products")
}

// SearchProducts runs a filtered product search.
func (c *Client) SearchProducts(ctx context.Context, filters Filters) ([]Product, error) {
	body, err := c.do(ctx, http.MethodPost, "/products/search", "", nil, filters, "products_search")
	if err != nil {
		return nil, err
	}
	return decodeList[Product](body, "products")
}

// ProductByID fetches a single product with its variants.
func (c *Client) ProductByID(ctx context.Context, id string) (*Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	body, err := c.do(ctx, http.MethodGet, "/productby/"+url.PathEscape(id), "", nil, nil, "product")
	if err != nil {
		return nil, err
	}
	var product Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode product")
	}
	return &product, nil
}

// SaveCart mirrors the cart server-side for the logged-in user.
func (c *Client) SaveCart(ctx context.Context, token string, items []OrderItem) error {
	_, err := c.do(ctx, http.MethodPut, "/user/cart", token, nil, map[string]any{"items": items}, "cart")
	return err
}

// SaveAddress stores the shipping address on the user record.
func (c *Client) SaveAddress(ctx context.Context, token string, addr Address) error {
	if err := validatePayload(addr); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPut, "/user/address", token, nil, addr, "address")
	return err
}

// PlaceOrder submits an order. An idempotency key guards against duplicate
// submissions when the caller retries after a transport failure.
func (c *Client) PlaceOrder(ctx context.Context, token string, input OrderInput) (*Order, error) {
	if err := validatePayload(input); err != nil {
		return nil, err
	}
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	body, err := c.doWithHeaders(ctx, http.MethodPost, "/user/order", token, nil, input, "order", headers)
	if err != nil {
		return nil, err
	}
	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode order")
	}
	return &order, nil
}

func (c *Client) ListReviews(ctx context.Context, productID string) ([]Review, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	body, err := c.do(ctx, http.MethodGet, "/review/"+url.PathEscape(productID), "", nil, nil, "reviews")
	if err != nil {
		return nil, err
	}
	return decodeList[Review](body, "reviews")
}

func (c *Client) CreateReview(ctx context.Context, token string, input ReviewInput) (*Review, error) {
	if err := validatePayload(input); err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodPost, "/review", token, nil, input, "reviews")
	if err != nil {
		return nil, err
	}
	var review Review
	if err := json.Unmarshal(body, &review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode review")
	}
	return &review, nil
}

// CreatePaymentIntent asks the backend for a payment intent covering the
// given amount. The hosted payment element consumes the client secret; this
// client never talks to the payment provider itself.
func (c *Client) CreatePaymentIntent(ctx context.Context, token string, amountCents int64) (*PaymentIntent, error) {
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	payload := map[string]int64{"amount_cents": amountCents}
	body, err := c.do(ctx, http.MethodPost, "/payment-intent", token, nil, payload, "payment_intent")
	if err != nil {
		return nil, err
	}
	var intent PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode payment intent")
	}
	return &intent, nil
}

// UploadImage streams an image to the backend's upload endpoint.
func (c *Client) UploadImage(ctx context.Context, token, filename string, r io.Reader) (*ImageRef, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "filename is required")
	}

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build multipart body")
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read image")
	}
	if err := writer.Close(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalize multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image", buf)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setCommonHeaders(req, token)

	body, err := c.send(req, "image_upload")
	if err != nil {
		return nil, err
	}
	var ref ImageRef
	if err := json.Unmarshal(body, &ref); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode image ref")
	}
	return &ref, nil
}

// RemoveImage deletes a previously uploaded image by its public ID.
func (c *Client) RemoveImage(ctx context.Context, token, publicID string) error {
	if strings.TrimSpace(publicID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "public id is required")
	}
	_, err := c.do(ctx, http.MethodDelete, "/image/"+url.PathEscape(publicID), token, nil, nil, "image_remove")
	return err
}

func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, payload any, resource string) ([]byte, error) {
	return c.doWithHeaders(ctx, method, path, token, query, payload, resource, nil)
}

func (c *Client) doWithHeaders(ctx context.Context, method, path, token string, query url.Values, payload any, resource string, headers map[string]string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		body = bytes.NewReader(encoded)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	c.setCommonHeaders(req, token)

	return c.send(req, resource)
}

func (c *Client) setCommonHeaders(req *http.Request, token string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) send(req *http.Request, resource string) ([]byte, error) {
	ctx := c.logg.WithResource(req.Context(), resource)
	ctx = c.logg.WithRequestID(ctx, req.Header.Get("X-Request-ID"))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveRequest(resource, time.Since(start))
	if err != nil {
		c.metrics.IncFailure(resource)
		c.logg.Error(ctx, "request failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call backend")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncFailure(resource)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.IncFailure(resource)
		apiErr := pkgerrors.New(pkgerrors.FromStatus(resp.StatusCode), errorMessage(body, resp.StatusCode))
		c.logg.Warn(c.logg.WithField(ctx, "status", resp.StatusCode), "backend rejected request")
		return nil, apiErr
	}

	c.logg.Debug(ctx, "request completed")
	return body, nil
}

func errorMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return http.StatusText(status)
}
