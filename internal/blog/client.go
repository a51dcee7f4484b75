// Package blog reads published posts from the clinic's headless CMS
// (a Sanity-compatible query API).
package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lumina-dental/portal/pkg/logging"
)

// Post is a published blog entry as rendered by the portal.
type Post struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Body        string    `json:"body,omitempty"`
	Author      string    `json:"author,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

const (
	listQuery = `*[_type == "post"] | order(publishedAt desc){_id, title, "slug": slug.current, excerpt, author, "imageUrl": mainImage.asset->url, publishedAt}`
	slugQuery = `*[_type == "post" && slug.current == $slug][0]{_id, title, "slug": slug.current, excerpt, body, author, "imageUrl": mainImage.asset->url, publishedAt}`
)

// Config holds the CMS connection settings. BaseURL, when set, overrides
// the URL derived from ProjectID and Dataset (useful for proxies and tests).
type Config struct {
	BaseURL   string
	ProjectID string
	Dataset   string
	Version   string
	Timeout   time.Duration
}

// Client queries the CMS over its HTTP query endpoint. Only published
// documents are visible; no token is sent.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
}

// NewClient constructs a CMS client. An empty ProjectID yields a disabled
// client whose queries fail with ErrDisabled.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	version := cfg.Version
	if version == "" {
		version = "2024-01-01"
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" && cfg.ProjectID != "" {
		dataset := cfg.Dataset
		if dataset == "" {
			dataset = "production"
		}
		baseURL = fmt.Sprintf("https://%s.api.sanity.io/v%s/data/query/%s", cfg.ProjectID, version, dataset)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
	}
}

// ErrDisabled is returned when no CMS project is configured.
var ErrDisabled = fmt.Errorf("blog: cms not configured")

// ErrNotFound is returned when no post matches the requested slug.
var ErrNotFound = fmt.Errorf("blog: post not found")

// Posts lists published posts, newest first.
func (c *Client) Posts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := c.query(ctx, listQuery, nil, &posts); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

// PostBySlug fetches a single published post by slug.
func (c *Client) PostBySlug(ctx context.Context, slug string) (*Post, error) {
	var post *Post
	params := map[string]string{"slug": slug}
	if err := c.query(ctx, slugQuery, params, &post); err != nil {
		return nil, fmt.Errorf("get post %q: %w", slug, err)
	}
	if post == nil || post.ID == "" {
		return nil, ErrNotFound
	}
	return post, nil
}

func (c *Client) query(ctx context.Context, groq string, params map[string]string, out interface{}) error {
	if c.baseURL == "" {
		return ErrDisabled
	}

	q := url.Values{}
	q.Set("query", groq)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode param %s: %w", name, err)
		}
		q.Set("$"+name, string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 300 {
			msg = msg[:300]
		}
		c.logger.Warn("cms query failed", "status", resp.StatusCode, "body", msg)
		return fmt.Errorf("cms returned %d", resp.StatusCode)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
