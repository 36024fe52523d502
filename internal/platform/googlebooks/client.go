// Package googlebooks is a small client for the Google Books volumes API.
package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://www.googleapis.com/books/v1"

// ErrNotFound is returned when a volume id does not exist.
var ErrNotFound = errors.New("googlebooks: volume not found")

type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

type VolumeInfo struct {
	Title         string     `json:"title"`
	Subtitle      string     `json:"subtitle"`
	Authors       []string   `json:"authors"`
	Publisher     string     `json:"publisher"`
	PublishedDate string     `json:"publishedDate"`
	Description   string     `json:"description"`
	PageCount     int        `json:"pageCount"`
	Categories    []string   `json:"categories"`
	Language      string     `json:"language"`
	PreviewLink   string     `json:"previewLink"`
	ImageLinks    ImageLinks `json:"imageLinks"`
}

type SearchInfo struct {
	TextSnippet string `json:"textSnippet"`
}

type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
	SearchInfo SearchInfo `json:"searchInfo"`
}

type VolumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithBackoff sets the first retry delay; it doubles on every attempt.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// NewClient builds a client; apiKey may be empty for anonymous quota.
func NewClient(apiKey string, rps int, maxRetries int, opts ...Option) *Client {
	if rps <= 0 {
		rps = 1
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search queries volumes. lang restricts results to one language when set.
func (c *Client) Search(ctx context.Context, query, lang string, startIndex, limit int) (*VolumesResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("startIndex", fmt.Sprint(startIndex))
	params.Set("maxResults", fmt.Sprint(limit))
	params.Set("printType", "books")
	if lang != "" {
		params.Set("langRestrict", lang)
	}

	var res VolumesResponse
	if err := c.get(ctx, "/volumes", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Newest lists recently published volumes for a subject.
func (c *Client) Newest(ctx context.Context, subject string, limit int) (*VolumesResponse, error) {
	params := url.Values{}
	params.Set("q", "subject:"+subject)
	params.Set("orderBy", "newest")
	params.Set("maxResults", fmt.Sprint(limit))
	params.Set("printType", "books")

	var res VolumesResponse
	if err := c.get(ctx, "/volumes", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Volume fetches one volume by id.
func (c *Client) Volume(ctx context.Context, id string) (*Volume, error) {
	var v Volume
	if err := c.get(ctx, "/volumes/"+url.PathEscape(id), url.Values{}, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			backoff := c.backoff * time.Duration(1<<uint(i-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		retry, err := c.do(ctx, u, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, u string, target any) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return false, json.NewDecoder(resp.Body).Decode(target)
	case resp.StatusCode == http.StatusNotFound:
		return false, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return true, fmt.Errorf("googlebooks: unexpected status code: %d", resp.StatusCode)
	default:
		return false, fmt.Errorf("googlebooks: unexpected status code: %d", resp.StatusCode)
	}
}
