package xclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"flocksync/internal/metrics"
	"flocksync/internal/model"
)

// Client defines the Twitter reads the sync pipelines use.
type Client interface {
	GetUserByID(ctx context.Context, userID string) (model.User, error)
	GetUserByScreenName(ctx context.Context, screenName string) (model.User, error)
	// GetUserTimeline returns the user's recent original tweets, with
	// replies and retweets excluded at the query level.
	GetUserTimeline(ctx context.Context, userID string) ([]model.Tweet, error)
}

// Credentials are the OAuth 1.0a application and user tokens for the
// v1.1 API.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// HTTPClient is an OAuth 1.0a signed client for Twitter API v1.1.
// It is safe for concurrent use.
type HTTPClient struct {
	baseURL     string
	creds       Credentials
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
	nowFn       func() time.Time
	nonceFn     func() string
}

func NewHTTPClient(creds Credentials) *HTTPClient {
	return &HTTPClient{
		baseURL:     "https://api.twitter.com/1.1",
		creds:       creds,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		limiter:     newDefaultLimiter(),
		maxAttempts: getEnvInt("TWITTER_API_MAX_ATTEMPTS", 5),
		baseBackoff: time.Duration(getEnvInt("TWITTER_API_BASE_BACKOFF_MS", 500)) * time.Millisecond,
		nowFn:       time.Now,
		nonceFn:     defaultNonce,
	}
}

func (c *HTTPClient) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	if userID == "" {
		return model.User{}, errors.New("empty user id")
	}
	return c.getUser(ctx, map[string]string{"user_id": userID})
}

func (c *HTTPClient) GetUserByScreenName(ctx context.Context, screenName string) (model.User, error) {
	if screenName == "" {
		return model.User{}, errors.New("empty screen name")
	}
	return c.getUser(ctx, map[string]string{"screen_name": screenName})
}

func (c *HTTPClient) getUser(ctx context.Context, params map[string]string) (model.User, error) {
	var out model.User
	resp, err := c.get(ctx, "users/show", "/users/show.json", params)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return out, decodeAPIError(resp)
	}
	var raw struct {
		IDStr           string `json:"id_str"`
		ScreenName      string `json:"screen_name"`
		FollowersCount  int    `json:"followers_count"`
		StatusesCount   int    `json:"statuses_count"`
		ProfileImageURL string `json:"profile_image_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return out, err
	}
	out = model.User{
		ID:         raw.IDStr,
		ScreenName: raw.ScreenName,
		Followers:  raw.FollowersCount,
		TweetCount: raw.StatusesCount,
		PicURL:     raw.ProfileImageURL,
	}
	return out, nil
}

func (c *HTTPClient) GetUserTimeline(ctx context.Context, userID string) ([]model.Tweet, error) {
	if userID == "" {
		return nil, errors.New("empty user id")
	}
	params := map[string]string{
		"user_id":         userID,
		"count":           "200",
		"trim_user":       "true",
		"exclude_replies": "true",
		"include_rts":     "false",
	}
	resp, err := c.get(ctx, "user_timeline", "/statuses/user_timeline.json", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, decodeAPIError(resp)
	}
	var raw []struct {
		IDStr         string `json:"id_str"`
		CreatedAt     string `json:"created_at"`
		RetweetCount  int    `json:"retweet_count"`
		FavoriteCount int    `json:"favorite_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	out := make([]model.Tweet, 0, len(raw))
	for _, t := range raw {
		// v1.1 format: Mon Jan 2 15:04:05 -0700 2006
		ts, _ := time.Parse(time.RubyDate, t.CreatedAt)
		out = append(out, model.Tweet{
			ID:            t.IDStr,
			CreatedAt:     ts,
			RetweetCount:  t.RetweetCount,
			FavoriteCount: t.FavoriteCount,
		})
	}
	return out, nil
}

// get builds a signed GET for path with the given query params, waits
// for the limiter, and sends it with retries.
func (c *HTTPClient) get(ctx context.Context, endpoint, path string, params map[string]string) (*http.Response, error) {
	reqURL := c.baseURL + path + "?" + encodeQuery(params)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	c.oauth1Sign(req, params)
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.doWithRetry(ctx, endpoint, req)
}

// doWithRetry retries 429 and 5xx responses with jittered exponential
// backoff, honoring Retry-After. The final response is returned
// undecoded so callers see the terminal status.
func (c *HTTPClient) doWithRetry(ctx context.Context, endpoint string, req *http.Request) (*http.Response, error) {
	backoff := c.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err == nil {
			retryable := resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599)
			if !retryable || attempt == c.maxAttempts {
				return resp, nil
			}
			wait := backoff
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					wait = time.Duration(secs) * time.Second
				} else if t, err := http.ParseTime(ra); err == nil {
					if d := time.Until(t); d > 0 {
						wait = d
					}
				}
			}
			_ = resp.Body.Close()
			metrics.IncAPIRetry(endpoint)
			// jitter +/-20%
			if jitter := time.Duration(float64(wait) * 0.2); jitter > 0 {
				wait = wait - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter))
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
			continue
		}
		lastErr = err
		if attempt == c.maxAttempts {
			break
		}
		metrics.IncAPIRetry(endpoint)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxAttempts, lastErr)
}
