package strava

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

	"go.uber.org/zap"
)

const (
	defaultBaseURL      = "https://www.strava.com/api/v3"
	defaultTokenURL     = "https://www.strava.com/oauth/token"
	defaultAuthorizeURL = "https://www.strava.com/oauth/authorize"

	// MaxPerPage is the remote per_page ceiling.
	MaxPerPage = 200

	// DefaultTimeout is the fixed per-request budget; exceeding it surfaces
	// as a transient APIError.
	DefaultTimeout = 30 * time.Second

	// OAuthScope requested during authorization.
	OAuthScope = "read,activity:read_all"
)

// Client talks to the Strava v3 API. Methods issue one request each; retry
// scheduling belongs to the caller via RetryPolicy.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	tokenURL     string
	authorizeURL string
	clientID     string
	clientSecret string
	logger       *zap.Logger
}

// Option configures optional Client behaviour.
type Option func(*Client)

// WithBaseURLs overrides the remote endpoints, used by tests to point the
// client at a stub server.
func WithBaseURLs(baseURL, tokenURL, authorizeURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
		c.tokenURL = tokenURL
		c.authorizeURL = authorizeURL
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a Strava API client.
func NewClient(clientID, clientSecret string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		baseURL:      defaultBaseURL,
		tokenURL:     defaultTokenURL,
		authorizeURL: defaultAuthorizeURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthorizationURL builds the user-facing OAuth authorize URL. No network
// call happens here.
func (c *Client) AuthorizationURL(redirectURI string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", redirectURI)
	q.Set("approval_prompt", "force")
	q.Set("scope", OAuthScope)
	return c.authorizeURL + "?" + q.Encode()
}

// ExchangeCode swaps an authorization code for a token triple and the
// athlete profile.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")

	return c.postToken(ctx, form)
}

// RefreshAccessToken exchanges a refresh token for a new token triple.
// Refresh tokens are single-use on the remote side: a second refresh with
// the same token fails with ErrAuthExpired.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	return c.postToken(ctx, form)
}

func (c *Client) postToken(ctx context.Context, form url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token TokenResponse
	if err := c.do(req, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// ListActivities fetches one page of the athlete's activities. PerPage is
// clamped to MaxPerPage before the call.
func (c *Client) ListActivities(ctx context.Context, accessToken string, opts ListOptions) ([]Activity, error) {
	q := url.Values{}
	if opts.After > 0 {
		q.Set("after", strconv.FormatInt(opts.After, 10))
	}
	if opts.Before > 0 {
		q.Set("before", strconv.FormatInt(opts.Before, 10))
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))

	perPage := opts.PerPage
	if perPage < 1 {
		perPage = 30
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	q.Set("per_page", strconv.Itoa(perPage))

	var activities []Activity
	if err := c.get(ctx, accessToken, "/athlete/activities", q, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// GetActivityDetail fetches the detailed representation of one activity.
func (c *Client) GetActivityDetail(ctx context.Context, accessToken string, activityID int64) (*Activity, error) {
	q := url.Values{}
	q.Set("include_all_efforts", "false")

	var activity Activity
	if err := c.get(ctx, accessToken, fmt.Sprintf("/activities/%d", activityID), q, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// GetActivityStreams fetches time-series streams keyed by type. Streams are
// optional on the remote side: a 404 yields an empty set, not an error.
func (c *Client) GetActivityStreams(ctx context.Context, accessToken string, activityID int64, keys []string) (StreamSet, error) {
	if len(keys) == 0 {
		keys = []string{"time", "distance", "heartrate", "cadence", "velocity_smooth", "altitude"}
	}

	q := url.Values{}
	q.Set("keys", strings.Join(keys, ","))
	q.Set("key_by_type", "true")

	var streams StreamSet
	err := c.get(ctx, accessToken, fmt.Sprintf("/activities/%d/streams", activityID), q, &streams)
	if errors.Is(err, ErrNotFound) {
		return StreamSet{}, nil
	}
	if err != nil {
		return nil, err
	}
	return streams, nil
}

func (c *Client) get(ctx context.Context, accessToken, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and transport failures are transient for the caller's
		// retry loop.
		return &APIError{Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Body: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("strava request failed",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
		)
		return statusError(resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
