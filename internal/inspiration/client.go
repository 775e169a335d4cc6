// Package inspiration supplies prompt ideas: quotes from a public quote API,
// random background photo URLs and a fixed catalogue of prompt suggestions.
package inspiration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"artforge/internal/config"
)

const (
	defaultAuthor = "Anonymous"
	cacheKey      = "artforge:inspiration:quotes"
)

type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

type Background struct {
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

type quoteResponse struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

type Client struct {
	quoteURL  string
	picsumURL string
	http      *http.Client
	cache     *redis.Client
	cacheTTL  time.Duration
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewClient builds an inspiration client. cache may be nil, in which case every
// Quotes call goes to the quote API.
func NewClient(cfg config.InspirationConfig, cache *redis.Client, log zerolog.Logger) *Client {
	return &Client{
		quoteURL:  cfg.QuoteURL,
		picsumURL: strings.TrimRight(cfg.PicsumURL, "/"),
		http:      &http.Client{Timeout: cfg.Timeout},
		cache:     cache,
		cacheTTL:  cfg.CacheTTL,
		timeout:   cfg.Timeout,
		now:       time.Now,
		log:       log,
	}
}

func (c *Client) Quote(ctx context.Context) (Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.quoteURL, nil)
	if err != nil {
		return Quote{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Quote{}, fmt.Errorf("fetch quote: status %d", resp.StatusCode)
	}

	var payload quoteResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err != nil {
		return Quote{}, fmt.Errorf("decode quote: %w", err)
	}
	if strings.TrimSpace(payload.Content) == "" {
		return Quote{}, errors.New("quote has no content")
	}

	author := strings.TrimSpace(payload.Author)
	if author == "" {
		author = defaultAuthor
	}
	return Quote{Text: payload.Content, Author: author}, nil
}

// Quotes returns up to n quotes, skipping failed fetches. All fetches share one
// deadline of the configured timeout. An unreachable quote API yields an empty
// list rather than an error.
func (c *Client) Quotes(ctx context.Context, n int) []Quote {
	if n <= 0 {
		return []Quote{}
	}
	if cached, ok := c.cached(ctx, n); ok {
		return cached
	}

	fetchCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	quotes := make([]Quote, 0, n)
	for i := 0; i < n; i++ {
		quote, err := c.Quote(fetchCtx)
		if err != nil {
			c.log.Debug().Err(err).Msg("quote fetch failed")
			if fetchCtx.Err() != nil {
				break
			}
			continue
		}
		quotes = append(quotes, quote)
	}

	if len(quotes) > 0 {
		c.store(ctx, n, quotes)
	}
	return quotes
}

func (c *Client) cached(ctx context.Context, n int) ([]Quote, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, cacheKeyFor(n)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("quote cache read failed")
		}
		return nil, false
	}
	var quotes []Quote
	if err := json.Unmarshal(raw, &quotes); err != nil {
		return nil, false
	}
	return quotes, true
}

func (c *Client) store(ctx context.Context, n int, quotes []Quote) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(quotes)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, cacheKeyFor(n), raw, c.cacheTTL).Err(); err != nil {
		c.log.Warn().Err(err).Msg("quote cache write failed")
	}
}

func cacheKeyFor(n int) string {
	return fmt.Sprintf("%s:%d", cacheKey, n)
}

// Backgrounds returns n random photo URLs at width x height with 200x150 thumbnails.
func (c *Client) Backgrounds(n, width, height int) []Background {
	seed := c.now().Unix()
	out := make([]Background, 0, n)
	for i := 0; i < n; i++ {
		random := seed + int64(i)
		out = append(out, Background{
			URL:       fmt.Sprintf("%s/%d/%d?random=%d", c.picsumURL, width, height, random),
			Thumbnail: fmt.Sprintf("%s/200/150?random=%d", c.picsumURL, random),
		})
	}
	return out
}
