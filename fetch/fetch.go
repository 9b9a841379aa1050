// Package fetch performs the bounded, browser-like HTTP GETs used to talk to
// the caption endpoints.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultTimeout  = 8 * time.Second
	DefaultMaxBytes = 10 << 20

	AcceptJSON = "application/json, text/plain, */*"
	AcceptText = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

var ErrTooLarge = errors.New("response body too large")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected http status %d from %s", e.Status, e.URL)
}

type Options struct {
	HTTPClient *http.Client
	UserAgent  string
	Timeout    time.Duration
	MaxBytes   int64
}

type Client struct {
	http      *http.Client
	userAgent string
	timeout   time.Duration
	maxBytes  int64
}

func NewClient(opts Options) *Client {
	c := &Client{
		http:      opts.HTTPClient,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		maxBytes:  opts.MaxBytes,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.maxBytes <= 0 {
		c.maxBytes = DefaultMaxBytes
	}
	return c
}

// Bytes fetches rawURL with the given Accept header. Each call is bounded by
// the client timeout.
func (c *Client) Bytes(ctx context.Context, rawURL, accept string) ([]byte, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, errors.Wrapf(err, "invalid url %q", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: rawURL, Status: resp.StatusCode}
	}

	if resp.ContentLength > c.maxBytes {
		return nil, errors.Wrapf(ErrTooLarge, "content-length %d exceeds %d", resp.ContentLength, c.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read body")
	}
	if int64(len(data)) > c.maxBytes {
		return nil, errors.Wrapf(ErrTooLarge, "body exceeds %d bytes", c.maxBytes)
	}
	return data, nil
}

func (c *Client) Text(ctx context.Context, rawURL string) (string, error) {
	data, err := c.Bytes(ctx, rawURL, AcceptText)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// JSON fetches rawURL and decodes the body into dst.
func (c *Client) JSON(ctx context.Context, rawURL string, dst any) error {
	data, err := c.Bytes(ctx, rawURL, AcceptJSON)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.Wrap(err, "failed to decode json")
	}
	return nil
}
