// Package api is the authenticated request pipeline for the MangaDex REST API.
// It attaches bearer tokens, renews expired sessions once, reports quota state
// and maps every failure to an *Error.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/tonymushah/mangadex-api-sub002/constant"
	"github.com/tonymushah/mangadex-api-sub002/credentials"
	"github.com/tonymushah/mangadex-api-sub002/log"
	"github.com/tonymushah/mangadex-api-sub002/network"
	"github.com/tonymushah/mangadex-api-sub002/ratelimit"
)

// Options configure a Client.
type Options struct {
	BaseURL    string
	AuthURL    string
	HTTPClient *http.Client
	// Store is shared by reference. A nil store gets a fresh empty one.
	Store     *credentials.Store
	RateLimit ratelimit.Config
	UserAgent string
	// RefreshTimeout bounds a token refresh independently of the caller that triggered it.
	RefreshTimeout time.Duration
	// Refresher overrides the automatic choice between the legacy and OAuth refresh flows.
	Refresher TokenRefresher
}

// DefaultOptions targets the public API.
func DefaultOptions() Options {
	return Options{
		BaseURL:        constant.APIURL,
		AuthURL:        constant.AuthURL,
		HTTPClient:     network.Client,
		RateLimit:      ratelimit.DefaultConfig(),
		UserAgent:      constant.UserAgent,
		RefreshTimeout: 30 * time.Second,
	}
}

// Client executes endpoints. It is safe for concurrent use.
type Client struct {
	baseURL   string
	authURL   string
	http      *http.Client
	store     *credentials.Store
	tracker   *ratelimit.Tracker
	userAgent string
	refresh   *coordinator
}

// NewClient builds a client, filling unset options from DefaultOptions.
func NewClient(opts Options) *Client {
	def := DefaultOptions()

	if opts.BaseURL == "" {
		opts.BaseURL = def.BaseURL
	}
	if opts.AuthURL == "" {
		opts.AuthURL = def.AuthURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = def.HTTPClient
	}
	if opts.Store == nil {
		opts.Store = credentials.NewStore()
	}
	if opts.RateLimit == (ratelimit.Config{}) {
		opts.RateLimit = def.RateLimit
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = def.RefreshTimeout
	}

	c := &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		authURL:   strings.TrimRight(opts.AuthURL, "/"),
		http:      opts.HTTPClient,
		store:     opts.Store,
		tracker:   ratelimit.NewTracker(opts.RateLimit),
		userAgent: opts.UserAgent,
	}
	c.refresh = &coordinator{client: c, refresher: opts.Refresher, timeout: opts.RefreshTimeout}

	return c
}

// Credentials returns the store shared by every request of this client.
func (c *Client) Credentials() *credentials.Store {
	return c.store
}

// HTTPClient returns the underlying HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Tracker returns the quota header parser.
func (c *Client) Tracker() *ratelimit.Tracker {
	return c.tracker
}

// Limited wraps a decoded payload with the quota state of its response.
type Limited[T any] struct {
	Data      T
	RateLimit ratelimit.State
}

// Execute runs the endpoint and decodes a 2xx body into T.
func Execute[T any](ctx context.Context, c *Client, ep Endpoint) (Limited[T], error) {
	var out Limited[T]
	state, err := c.Do(ctx, ep, &out.Data)
	out.RateLimit = state
	return out, err
}

// Do runs the endpoint and decodes a 2xx body into out, which may be nil to discard it.
func (c *Client) Do(ctx context.Context, ep Endpoint, out any) (ratelimit.State, error) {
	target, err := ep.URL(c.baseURL)
	if err != nil {
		return ratelimit.State{}, err
	}

	token := mo.None[string]()
	switch ep.Auth {
	case AuthRequired:
		session, ok := c.store.Session().Get()
		if !ok {
			return ratelimit.State{}, newUnauthenticated(errors.New("no session token"))
		}
		token = mo.Some(session)
	case AuthOptional:
		token = c.store.Session()
	}

	res, err := c.send(ctx, ep, target, token)
	if err != nil {
		return ratelimit.State{}, err
	}

	if res.status == http.StatusUnauthorized {
		stale, carried := token.Get()
		if !carried {
			return res.state, &Error{Kind: KindUnauthenticated, Status: res.status, Errors: parseErrorDetails(res.body)}
		}

		fresh, err := c.refresh.renew(ctx, stale)
		if err != nil {
			return res.state, err
		}

		log.Debugf("retrying %s after token refresh", ep)
		res, err = c.send(ctx, ep, target, mo.Some(fresh))
		if err != nil {
			return ratelimit.State{}, err
		}

		if res.status == http.StatusUnauthorized {
			return res.state, &Error{Kind: KindUnauthenticated, Status: res.status, Errors: parseErrorDetails(res.body)}
		}
	}

	return res.state, c.handle(res, out)
}

type response struct {
	status int
	header http.Header
	body   []byte
	state  ratelimit.State
}

// send performs one round trip and reads the whole body.
func (c *Client) send(ctx context.Context, ep Endpoint, target string, token mo.Option[string]) (*response, error) {
	body, contentType, err := ep.body()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, target, body)
	if err != nil {
		return nil, NewValidation("endpoint", err.Error())
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if session, ok := token.Get(); ok {
		req.Header.Set("Authorization", "Bearer "+session)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warnf("%s %s: %v", ep.Method, target, err)
		return nil, NewTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(fmt.Errorf("read body: %w", err))
	}

	state := c.tracker.Observe(resp.Header)
	log.WithFields(log.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
		"quota":    state,
	}).Debugf("%s %s", ep.Method, target)

	return &response{
		status: resp.StatusCode,
		header: resp.Header,
		body:   data,
		state:  state,
	}, nil
}

func (c *Client) handle(res *response, out any) error {
	switch {
	case res.status >= 200 && res.status < 300:
		if out == nil || res.status == http.StatusNoContent {
			return nil
		}
		if len(strings.TrimSpace(string(res.body))) == 0 {
			return newDecode(io.ErrUnexpectedEOF, res.body)
		}
		if err := json.Unmarshal(res.body, out); err != nil {
			return newDecode(err, res.body)
		}
		return nil
	case res.status == http.StatusTooManyRequests:
		return &Error{
			Kind:       KindRateLimited,
			Status:     res.status,
			Errors:     parseErrorDetails(res.body),
			RetryAfter: c.tracker.RetryAfter(res.state, res.body),
		}
	default:
		return NewHTTPError(res.status, res.body)
	}
}
