// Package network builds the HTTP clients used to reach the API and the @Home network.
package network

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/viper"
	"github.com/tonymushah/mangadex-api-sub002/constant"
	"github.com/tonymushah/mangadex-api-sub002/key"
	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"
)

// Options describe a client. Zero values disable the matching feature.
type Options struct {
	Timeout           time.Duration
	Proxy             string
	RequestsPerSecond float64
	UserAgent         string
}

// Client is the default shared client, without proxy or pacing.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: &userAgentTransport{next: newTransport(), agent: constant.UserAgent},
}

// OptionsFromConfig reads client options from the global configuration.
func OptionsFromConfig() Options {
	return Options{
		Timeout:           time.Duration(viper.GetInt(key.APITimeout)) * time.Second,
		Proxy:             viper.GetString(key.APIProxy),
		RequestsPerSecond: viper.GetFloat64(key.APIRequestsPerSecond),
		UserAgent:         viper.GetString(key.APIUserAgent),
	}
}

// New builds an http.Client from options.
func New(opts Options) (*http.Client, error) {
	transport := newTransport()

	if opts.Proxy != "" {
		if err := configureProxy(transport, opts.Proxy); err != nil {
			return nil, err
		}
	}

	var rt http.RoundTripper = transport

	if opts.RequestsPerSecond > 0 {
		burst := max(int(opts.RequestsPerSecond), 1)
		rt = &limitedTransport{
			next:    rt,
			limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst),
		}
	}

	agent := opts.UserAgent
	if agent == "" {
		agent = constant.UserAgent
	}
	rt = &userAgentTransport{next: rt, agent: agent}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: rt,
	}, nil
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}

func configureProxy(transport *http.Transport, proxyURL string) error {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("invalid proxy URL: %w", err)
	}

	switch parsed.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(parsed)
	case "socks5", "socks5h":
		var auth *proxy.Auth
		if parsed.User != nil {
			password, _ := parsed.User.Password()
			auth = &proxy.Auth{User: parsed.User.Username(), Password: password}
		}

		dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
		if err != nil {
			return fmt.Errorf("create SOCKS5 proxy: %w", err)
		}

		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	default:
		return fmt.Errorf("unsupported proxy scheme: %s", parsed.Scheme)
	}

	return nil
}

// limitedTransport paces outgoing requests. Waiting honours the request context.
type limitedTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}

type userAgentTransport struct {
	next  http.RoundTripper
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return t.next.RoundTrip(clone)
}
