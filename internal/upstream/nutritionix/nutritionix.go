// Package nutritionix provides a thin HTTP client for the Nutritionix v2
// track API (https://trackapi.nutritionix.com/v2).
//
// Three endpoints are wrapped:
//
//   - GET  /search/instant    - free-text food search ([Client.InstantSearch])
//   - POST /natural/nutrients - natural-language nutrient lookup ([Client.NaturalNutrients])
//   - POST /natural/exercise  - natural-language calorie-burn estimation ([Client.NaturalExercise])
//
// Every request carries the static x-app-id / x-app-key credential headers.
// A non-2xx response is returned as a [*upstream.StatusError]; the client
// performs no retries and sets no deadline beyond the HTTP client timeout.
package nutritionix

import (
	"bytes"
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

	"github.com/nutrifit/nutrifit/internal/observe"
	"github.com/nutrifit/nutrifit/internal/upstream"
)

// apiLabel is the value of the "api" metric attribute on all requests.
const apiLabel = "nutritionix"

// DefaultBaseURL is the production Nutritionix API endpoint.
const DefaultBaseURL = "https://trackapi.nutritionix.com/v2"

const defaultTimeout = 30 * time.Second

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Useful for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics attaches upstream request and error counters. Every request
// increments the request counter labelled with the endpoint path and status;
// transport failures and non-2xx responses additionally increment the error
// counter.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client is a Nutritionix API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	appID      string
	appKey     string
	httpClient *http.Client
	metrics    *observe.Metrics
}

// New creates a Client authenticating with the given application ID and key.
// Both credentials must be non-empty.
func New(appID, appKey string, opts ...Option) (*Client, error) {
	if appID == "" || appKey == "" {
		return nil, errors.New("nutritionix: appID and appKey must not be empty")
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		appID:   appID,
		appKey:  appKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ---- response types ----

// Photo holds the image URLs attached to a food record.
type Photo struct {
	Thumb string `json:"thumb"`
}

// Food is a single food record as returned by the instant-search and
// natural-nutrients endpoints. Identity fields and the calorie count are
// pointers so that null values in the provider response survive into tool
// output; the remaining nutrient fields default to zero when absent,
// matching how the tools consume them.
type Food struct {
	FoodName           *string  `json:"food_name"`
	BrandName          *string  `json:"brand_name"`
	ServingQty         *float64 `json:"serving_qty"`
	ServingUnit        *string  `json:"serving_unit"`
	ServingWeightGrams *float64 `json:"serving_weight_grams"`
	TagName            *string  `json:"tag_name"`
	TagID              *string  `json:"tag_id"`
	NixBrandID         *string  `json:"nix_brand_id"`
	NixItemID          *string  `json:"nix_item_id"`

	Calories     *float64 `json:"nf_calories"`
	TotalFat     float64  `json:"nf_total_fat"`
	SaturatedFat float64  `json:"nf_saturated_fat"`
	Cholesterol  float64  `json:"nf_cholesterol"`
	Sodium       float64  `json:"nf_sodium"`
	Carbohydrate float64  `json:"nf_total_carbohydrate"`
	DietaryFiber float64  `json:"nf_dietary_fiber"`
	Sugars       float64  `json:"nf_sugars"`
	Protein      float64  `json:"nf_protein"`
	Potassium    float64  `json:"nf_potassium"`
	Phosphorus   float64  `json:"nf_phosphorus"`

	Photo *Photo `json:"photo"`
}

// InstantSearchResult is the response envelope of GET /search/instant.
type InstantSearchResult struct {
	Common  []Food `json:"common"`
	Branded []Food `json:"branded"`
}

// NutrientsResult is the response envelope of POST /natural/nutrients.
type NutrientsResult struct {
	Foods []Food `json:"foods"`
}

// ExerciseEntry is a single exercise estimate from POST /natural/exercise.
type ExerciseEntry struct {
	Name         *string  `json:"name"`
	DurationMin  *float64 `json:"duration_min"`
	MET          *float64 `json:"met"`
	Calories     *float64 `json:"nf_calories"`
	UserWeightKg *float64 `json:"user_weight_kg"`
}

// ExerciseResult is the response envelope of POST /natural/exercise.
type ExerciseResult struct {
	Exercises []ExerciseEntry `json:"exercises"`
}

// ---- endpoints ----

// InstantSearch performs a free-text food search with detailed=true and
// returns the common and branded result buckets.
func (c *Client) InstantSearch(ctx context.Context, query string) (*InstantSearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("detailed", "true")

	var out InstantSearchResult
	if err := c.get(ctx, "/search/instant", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// naturalQuery is the JSON body shared by the natural-language endpoints.
type naturalQuery struct {
	Query    string   `json:"query"`
	WeightKg *float64 `json:"weight_kg,omitempty"`
}

// NaturalNutrients resolves a natural-language food query (e.g. "2 cups rice,
// 100g chicken breast") into per-food nutrient records.
func (c *Client) NaturalNutrients(ctx context.Context, query string) (*NutrientsResult, error) {
	var out NutrientsResult
	if err := c.post(ctx, "/natural/nutrients", naturalQuery{Query: query}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NaturalExercise resolves a natural-language exercise query (e.g. "45 minutes
// running") into calorie-burn estimates. weightKg is attached as a hint when
// positive.
func (c *Client) NaturalExercise(ctx context.Context, query string, weightKg float64) (*ExerciseResult, error) {
	body := naturalQuery{Query: query}
	if weightKg > 0 {
		body.WeightKg = &weightKg
	}
	var out ExerciseResult
	if err := c.post(ctx, "/natural/exercise", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---- request plumbing ----

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("nutritionix: create request for %s: %w", path, err)
	}
	return c.do(req, path, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("nutritionix: marshal body for %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("nutritionix: create request for %s: %w", path, err)
	}
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	req.Header.Set("x-app-id", c.appID)
	req.Header.Set("x-app-key", c.appKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observeRequest(req.Context(), path, "transport_error", true)
		return fmt.Errorf("nutritionix: %s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observeRequest(req.Context(), path, "transport_error", true)
		return fmt.Errorf("nutritionix: read response for %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observeRequest(req.Context(), path, strconv.Itoa(resp.StatusCode), true)
		return &upstream.StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	c.observeRequest(req.Context(), path, strconv.Itoa(resp.StatusCode), false)

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("nutritionix: decode response for %s: %w", path, err)
	}
	return nil
}

// observeRequest feeds the upstream counters when metrics are attached.
func (c *Client) observeRequest(ctx context.Context, path, status string, failed bool) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordUpstreamRequest(ctx, apiLabel, path, status)
	if failed {
		c.metrics.RecordUpstreamError(ctx, apiLabel, path)
	}
}
