// Package wger provides a thin HTTP client for the public WGER exercise
// database API (https://wger.de/api/v2). The API requires no credentials;
// requests carry only a fixed Accept header and an identifying User-Agent.
//
// All exercise list queries are constrained to English via the fixed
// language=2 filter. A non-2xx response is returned as a
// [*upstream.StatusError]; no retries are performed.
package wger

import (
	"context"
	"encoding/json"
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
const apiLabel = "wger"

// DefaultBaseURL is the public WGER API endpoint.
const DefaultBaseURL = "https://wger.de/api/v2"

// DefaultUserAgent identifies this server to the WGER API.
const DefaultUserAgent = "nutrifit-mcp-server/1.0"

// languageEnglish is the WGER language ID attached to all exercise queries.
const languageEnglish = 2

const defaultTimeout = 30 * time.Second

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Useful for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithUserAgent overrides the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
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

// Client is a WGER API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	metrics    *observe.Metrics
}

// New creates a Client targeting the public WGER API.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ---- response types ----

// Exercise is a single exercise record from GET /exercise/.
type Exercise struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Category         int    `json:"category"`
	Muscles          []int  `json:"muscles"`
	MusclesSecondary []int  `json:"muscles_secondary"`
	Equipment        []int  `json:"equipment"`
}

// ExercisePage is the paginated envelope of GET /exercise/.
type ExercisePage struct {
	Count   int        `json:"count"`
	Results []Exercise `json:"results"`
}

// EquipmentEntry is a single equipment record from GET /equipment/.
type EquipmentEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// EquipmentPage is the paginated envelope of GET /equipment/.
type EquipmentPage struct {
	Count   int              `json:"count"`
	Results []EquipmentEntry `json:"results"`
}

// Workout is a single workout record from GET /workout/.
type Workout struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	// CreationDate is a pointer so a missing value surfaces as null in tool
	// output rather than an empty string.
	CreationDate *string `json:"creation_date"`
	Comment      string  `json:"comment"`
}

// WorkoutPage is the paginated envelope of GET /workout/.
type WorkoutPage struct {
	Count   int       `json:"count"`
	Results []Workout `json:"results"`
}

// ---- filters ----

// ExerciseFilter selects which exercises GET /exercise/ returns. Exactly one
// of Search, MuscleID, or EquipmentID is typically set; Limit caps the page
// size. The English language filter is always applied.
type ExerciseFilter struct {
	Search      string
	MuscleID    int
	EquipmentID int
	Limit       int
}

// ---- endpoints ----

// Exercises lists exercises matching the filter.
func (c *Client) Exercises(ctx context.Context, f ExerciseFilter) (*ExercisePage, error) {
	params := url.Values{}
	if f.Search != "" {
		params.Set("search", f.Search)
	}
	if f.MuscleID > 0 {
		params.Set("muscles", strconv.Itoa(f.MuscleID))
	}
	if f.EquipmentID > 0 {
		params.Set("equipment", strconv.Itoa(f.EquipmentID))
	}
	params.Set("limit", strconv.Itoa(f.Limit))
	params.Set("language", strconv.Itoa(languageEnglish))

	var out ExercisePage
	if err := c.get(ctx, "/exercise/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Equipment lists up to limit equipment entries.
func (c *Client) Equipment(ctx context.Context, limit int) (*EquipmentPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var out EquipmentPage
	if err := c.get(ctx, "/equipment/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Workouts lists up to limit public workout records.
func (c *Client) Workouts(ctx context.Context, limit int) (*WorkoutPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var out WorkoutPage
	if err := c.get(ctx, "/workout/", params, &out); err != nil {
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
		return fmt.Errorf("wger: create request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observeRequest(req.Context(), path, "transport_error", true)
		return fmt.Errorf("wger: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observeRequest(req.Context(), path, "transport_error", true)
		return fmt.Errorf("wger: read response for %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observeRequest(req.Context(), path, strconv.Itoa(resp.StatusCode), true)
		return &upstream.StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	c.observeRequest(req.Context(), path, strconv.Itoa(resp.StatusCode), false)

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("wger: decode response for %s: %w", path, err)
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
