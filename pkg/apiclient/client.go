// Package apiclient is the HTTP transport shared by the storefront cart,
// buy-now and migration clients. It speaks the backend's JSON envelope and
// folds every failure into an *Error so callers never need to recover from
// anything else.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cuong200111/baitap-sub001/pkg/global"
	"github.com/cuong200111/baitap-sub001/pkg/models"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 1 << 20
	maxCauseBytes  = 512
)

// Envelope is the backend's response shape. Stock fields are only present on
// add-to-cart and buy-now responses.
type Envelope struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message,omitempty"`
	Data    json.RawMessage          `json:"data,omitempty"`
	Errors  []global.ValidationError `json:"errors,omitempty"`
	models.StockDetails
}

// TokenSource supplies the bearer token to forward, or "" for none.
type TokenSource func(ctx context.Context) string

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Token      TokenSource
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("apiclient: base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("apiclient: invalid base URL: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		token:      cfg.Token,
	}, nil
}

// Call performs one request. The returned error is always an *Error; a
// non-nil envelope is returned alongside stock rejections so callers can
// inspect the full payload.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, body interface{}) (*Envelope, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindTransport, Message: "Failed to encode request", Cause: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, transportError(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if token := c.token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env Envelope
		if json.Unmarshal(raw, &env) == nil && env.StockStatus != "" {
			return &env, Rejection(env.Message, stockOf(&env))
		}
		return nil, httpError(resp.StatusCode, bodyCause(raw, env.Message))
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, decodeError(err)
	}
	if !env.Success {
		return &env, Rejection(env.Message, stockOf(&env))
	}
	return &env, nil
}

// DecodeData unmarshals the envelope's data field. An absent data field
// yields the zero value.
func DecodeData[T any](env *Envelope) (T, error) {
	var out T
	if env == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, decodeError(err)
	}
	return out, nil
}

func stockOf(env *Envelope) *models.StockDetails {
	if env.StockStatus == "" {
		return nil
	}
	stock := env.StockDetails
	return &stock
}

func bodyCause(raw []byte, message string) error {
	if message != "" {
		return errors.New(message)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil
	}
	if len(text) > maxCauseBytes {
		text = text[:maxCauseBytes] + "..."
	}
	return errors.New(text)
}
