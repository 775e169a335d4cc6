package generation

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"artforge/internal/config"
)

type ErrorKind string

const (
	KindTransport      ErrorKind = "transport"
	KindUpstreamStatus ErrorKind = "upstream_status"
	KindEmptyPayload   ErrorKind = "empty_payload"
)

// Error describes a failed provider call. StatusCode is set for KindUpstreamStatus.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUpstreamStatus:
		return fmt.Sprintf("generation provider returned status %d", e.StatusCode)
	case KindEmptyPayload:
		return "generation provider returned an empty payload"
	default:
		if e.Err != nil {
			return fmt.Sprintf("generation transport: %v", e.Err)
		}
		return "generation transport failure"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the provider failure kind of err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Kind, true
	}
	return "", false
}

var errPayloadTooLarge = errors.New("payload exceeds size limit")

type Client struct {
	baseURL   string
	clientTag string
	maxBytes  int64
	http      *http.Client
	logger    zerolog.Logger
}

func NewClient(cfg config.GenerationConfig, logger zerolog.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for local providers
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		clientTag: cfg.ClientTag,
		maxBytes:  cfg.MaxBytes,
		http:      &http.Client{Transport: transport},
		logger:    logger,
	}
}

// Generate fetches a rendered image for an already path-encoded prompt. The call is
// bounded by timeout and by ctx, and is never retried.
func (c *Client) Generate(ctx context.Context, encodedPrompt string, width, height int, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	target := c.requestURL(encodedPrompt, width, height)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	if c.clientTag != "" {
		req.Header.Set("User-Agent", c.clientTag)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &Error{Kind: KindUpstreamStatus, StatusCode: resp.StatusCode}
	}

	body, err := c.readBody(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	if len(body) == 0 {
		return nil, &Error{Kind: KindEmptyPayload}
	}

	c.logger.Debug().
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("generation provider responded")

	return body, nil
}

func (c *Client) requestURL(encodedPrompt string, width, height int) string {
	query := url.Values{}
	query.Set("width", strconv.Itoa(width))
	query.Set("height", strconv.Itoa(height))
	query.Set("nologo", "true")
	return c.baseURL + "/" + encodedPrompt + "?" + query.Encode()
}

func (c *Client) readBody(r io.Reader) ([]byte, error) {
	if c.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, c.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.maxBytes {
		return nil, errPayloadTooLarge
	}
	return body, nil
}
