package pagestore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"

	"codebase-docgen/internal/config"
	"codebase-docgen/internal/errs"
	"codebase-docgen/internal/metrics"
	"codebase-docgen/internal/utils"
	"codebase-docgen/pkg/logger"
)

const (
	API_CONTENT = "/rest/api/content"
	serviceName = "confluence"
)

type spaceRef struct {
	Key string `json:"key"`
}

type storage struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

type pageBody struct {
	Wiki storage `json:"wiki"`
}

type ancestor struct {
	ID string `json:"id"`
}

type version struct {
	Number int `json:"number"`
}

// pagePayload is the create/update request body.
type pagePayload struct {
	ID        string     `json:"id,omitempty"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Space     spaceRef   `json:"space"`
	Body      pageBody   `json:"body"`
	Ancestors []ancestor `json:"ancestors,omitempty"`
	Version   *version   `json:"version,omitempty"`
}

// Client is a PageStore backed by the Confluence REST content API.
type Client struct {
	cfg        config.PageStoreConfig
	httpClient *fasthttp.Client
	authHeader string
	logger     logger.Logger
	metrics    *metrics.PublishMetrics
}

var _ PageStore = (*Client)(nil)

// NewClient validates cfg and builds a client authenticating with email and API token.
func NewClient(cfg config.PageStoreConfig, logger logger.Logger, m *metrics.PublishMetrics) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url cannot be empty")
	}
	if cfg.Email == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("email and api_token are required")
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultPageStoreConfig.Timeout
	}
	if m == nil {
		m = metrics.NewNopPublishMetrics()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg: cfg,
		httpClient: &fasthttp.Client{
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxConnsPerHost:     16,
		},
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.Email+":"+cfg.APIToken)),
		logger:     logger,
		metrics:    m,
	}, nil
}

func (c *Client) Find(ctx context.Context, title, space string) (*PageRef, bool) {
	respBody, err := c.send(ctx, fasthttp.MethodGet, API_CONTENT, func(args *fasthttp.Args) {
		args.Add("title", title)
		args.Add("spaceKey", space)
		args.Add("expand", "version")
	}, nil)
	if err != nil {
		c.logger.Error("failed to look up page '%s' in space %s: %v", title, space, err)
		return nil, false
	}

	first := gjson.GetBytes(respBody, "results.0")
	if !first.Exists() {
		c.logger.Debug("page '%s' not found in space %s", title, space)
		return nil, false
	}
	ref := &PageRef{
		ID:      first.Get("id").String(),
		Version: int(first.Get("version.number").Int()),
	}
	if ref.ID == "" {
		c.logger.Error("page lookup for '%s' returned a result without an id", title)
		return nil, false
	}
	if ref.Version < 1 {
		c.logger.Error("page lookup for '%s': %v: page %s has version %q",
			title, errs.ErrMalformedResponse, ref.ID, first.Get("version.number").Raw)
		return nil, false
	}
	c.logger.Debug("found page '%s' id=%s version=%d", title, ref.ID, ref.Version)
	return ref, true
}

func (c *Client) Upsert(ctx context.Context, req UpsertRequest) (*UpsertResult, error) {
	existing, found := c.Find(ctx, req.Title, req.Space)

	var (
		result *UpsertResult
		err    error
	)
	if found {
		result, err = c.update(ctx, existing, req, ActionUpdated)
	} else {
		result, err = c.create(ctx, req, ActionCreated)
	}

	if found && errors.Is(err, errs.ErrVersionConflict) {
		c.logger.Warn("version conflict updating page '%s', re-fetching", req.Title)
		fresh, ok := c.Find(ctx, req.Title, req.Space)
		if ok {
			result, err = c.update(ctx, fresh, req, ActionConflictUpdated)
		} else {
			c.logger.Warn("page '%s' disappeared after version conflict, creating it", req.Title)
			result, err = c.create(ctx, req, ActionConflictRecreated)
		}
	}

	if err != nil {
		c.metrics.Pages.WithLabelValues(metrics.PageFailed).Inc()
		return nil, fmt.Errorf("failed to publish page '%s': %w", req.Title, err)
	}
	c.metrics.Pages.WithLabelValues(string(result.Action)).Inc()
	c.logger.Info("page '%s' %s (id=%s, version=%d)", req.Title, result.Action, result.ID, result.Version)
	return result, nil
}

func (c *Client) create(ctx context.Context, req UpsertRequest, action Action) (*UpsertResult, error) {
	payload := newPayload(req)
	respBody, err := c.send(ctx, fasthttp.MethodPost, API_CONTENT, nil, payload)
	if err != nil {
		return nil, err
	}
	return parseResult(respBody, action, 1)
}

func (c *Client) update(ctx context.Context, existing *PageRef, req UpsertRequest, action Action) (*UpsertResult, error) {
	payload := newPayload(req)
	payload.ID = existing.ID
	payload.Version = &version{Number: existing.Version + 1}
	respBody, err := c.send(ctx, fasthttp.MethodPut, API_CONTENT+"/"+existing.ID, nil, payload)
	if err != nil {
		return nil, err
	}
	return parseResult(respBody, action, existing.Version+1)
}

func newPayload(req UpsertRequest) *pagePayload {
	p := &pagePayload{
		Type:  "page",
		Title: req.Title,
		Space: spaceRef{Key: req.Space},
		Body:  pageBody{Wiki: storage{Value: req.Body, Representation: "wiki"}},
	}
	if req.ParentID != "" {
		p.Ancestors = []ancestor{{ID: req.ParentID}}
	}
	return p
}

// parseResult reads the page id and version from a write response, falling back to the expected version.
func parseResult(respBody []byte, action Action, expectedVersion int) (*UpsertResult, error) {
	id := gjson.GetBytes(respBody, "id").String()
	if id == "" {
		return nil, fmt.Errorf("%w: write response has no page id", errs.ErrMalformedResponse)
	}
	v := int(gjson.GetBytes(respBody, "version.number").Int())
	if v == 0 {
		v = expectedVersion
	}
	return &UpsertResult{ID: id, Version: v, Action: action}, nil
}

// isTransient is true for network failures, throttling and server faults.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *errs.StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return !errors.Is(err, errs.ErrMalformedResponse)
}

// send issues one API call, retrying transient failures with exponential backoff.
func (c *Client) send(ctx context.Context, method, path string, query func(*fasthttp.Args), payload any) ([]byte, error) {
	var reqBody []byte
	if payload != nil {
		var err error
		if reqBody, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	attempt := 0
	opts := append(
		utils.BackoffOptions(ctx, c.cfg.MaxAttempts, c.cfg.RetryDelay, c.cfg.MaxDelay, isTransient),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("%s %s attempt %d/%d failed: %v", method, path, n+1, c.cfg.MaxAttempts, err)
		}),
	)
	return retry.DoWithData(func() ([]byte, error) {
		if attempt++; attempt > 1 {
			c.metrics.PageStoreRetries.Inc()
		}
		return c.do(ctx, method, path, query, reqBody)
	}, opts...)
}

func (c *Client) do(ctx context.Context, method, path string, query func(*fasthttp.Args), reqBody []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(c.cfg.BaseURL + path)
	if query != nil {
		query(req.URI().QueryArgs())
	}
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(reqBody)
	}

	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := c.httpClient.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return nil, errs.NewStatusError(serviceName, status, resp.Body())
	}
	// resp is released on return
	return append([]byte(nil), resp.Body()...), nil
}
