package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/samber/mo"
	"github.com/tonymushah/mangadex-api-sub002/credentials"
	"github.com/tonymushah/mangadex-api-sub002/log"
	"golang.org/x/sync/singleflight"
)

// Tokens is the outcome of a login or refresh.
type Tokens struct {
	Session string
	// Refresh may be empty when the server keeps the previous refresh token valid.
	Refresh   string
	ExpiresIn time.Duration
}

// TokenRefresher exchanges a refresh token for a new session.
type TokenRefresher interface {
	Refresh(ctx context.Context, c *Client, creds credentials.Credentials) (Tokens, error)
}

// LegacyRefresher uses POST /auth/refresh.
type LegacyRefresher struct{}

type legacyTokenResponse struct {
	Result string `json:"result"`
	Token  struct {
		Session string `json:"session"`
		Refresh string `json:"refresh"`
	} `json:"token"`
	Message string `json:"message"`
}

func (LegacyRefresher) Refresh(ctx context.Context, c *Client, creds credentials.Credentials) (Tokens, error) {
	var resp legacyTokenResponse
	ep := Post("/auth/refresh", map[string]string{"token": creds.Refresh.OrEmpty()})
	if _, err := c.Do(ctx, ep, &resp); err != nil {
		return Tokens{}, err
	}

	if resp.Result != "ok" || resp.Token.Session == "" {
		return Tokens{}, newUnauthenticated(errors.New("refresh rejected: " + resp.Message))
	}

	return Tokens{Session: resp.Token.Session, Refresh: resp.Token.Refresh}, nil
}

// OAuthRefresher uses the refresh_token grant of the OpenID Connect token endpoint.
type OAuthRefresher struct{}

const oauthTokenPath = "/realms/mangadex/protocol/openid-connect/token"

type oauthTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

func (t oauthTokenResponse) tokens() Tokens {
	return Tokens{
		Session:   t.AccessToken,
		Refresh:   t.RefreshToken,
		ExpiresIn: time.Duration(t.ExpiresIn) * time.Second,
	}
}

func (OAuthRefresher) Refresh(ctx context.Context, c *Client, creds credentials.Credentials) (Tokens, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", creds.Refresh.OrEmpty())
	form.Set("client_id", creds.ClientID.OrEmpty())
	if secret, ok := creds.ClientSecret.Get(); ok {
		form.Set("client_secret", secret)
	}

	var resp oauthTokenResponse
	ep := Endpoint{Method: http.MethodPost, BaseURL: c.authURL, Path: oauthTokenPath, Body: form}
	if _, err := c.Do(ctx, ep, &resp); err != nil {
		return Tokens{}, err
	}

	if resp.AccessToken == "" {
		return Tokens{}, newUnauthenticated(errors.New("token endpoint returned no access token"))
	}

	return resp.tokens(), nil
}

// coordinator serialises refreshes: concurrent 401s share one in-flight call.
type coordinator struct {
	client    *Client
	refresher TokenRefresher
	timeout   time.Duration
	group     singleflight.Group
}

const refreshKey = "refresh"

// renew returns a session to retry with after stale was rejected.
func (co *coordinator) renew(ctx context.Context, stale string) (string, error) {
	return co.flight(ctx, mo.Some(stale))
}

// force refreshes regardless of the stored session.
func (co *coordinator) force(ctx context.Context) (string, error) {
	return co.flight(ctx, mo.None[string]())
}

// flight joins the in-flight refresh or starts one. When stale is given and the
// store already holds a different session, that session is returned without a call.
func (co *coordinator) flight(ctx context.Context, stale mo.Option[string]) (string, error) {
	superseded := func() (string, bool) {
		rejected, ok := stale.Get()
		if !ok {
			return "", false
		}
		current, ok := co.client.store.Session().Get()
		return current, ok && current != rejected
	}

	if current, ok := superseded(); ok {
		return current, nil
	}

	// The refresh outlives the caller that triggered it; other waiters depend on it.
	detached := context.WithoutCancel(ctx)
	ch := co.group.DoChan(refreshKey, func() (any, error) {
		if current, ok := superseded(); ok {
			return current, nil
		}

		rctx, cancel := context.WithTimeout(detached, co.timeout)
		defer cancel()
		return co.run(rctx)
	})

	select {
	case <-ctx.Done():
		return "", NewTransportError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (co *coordinator) run(ctx context.Context) (string, error) {
	store := co.client.store

	creds, ok := store.Get().Get()
	if !ok || creds.Refresh.IsAbsent() {
		store.Clear()
		return "", newUnauthenticated(errors.New("no refresh token"))
	}

	refresher := co.refresher
	if refresher == nil {
		refresher = LegacyRefresher{}
		if creds.HasClient() {
			refresher = OAuthRefresher{}
		}
	}

	log.Info("refreshing session")
	tokens, err := refresher.Refresh(ctx, co.client, creds)
	if err != nil {
		if rejected(err) {
			log.Warnf("refresh rejected: %v", err)
			store.Clear()
			return "", newUnauthenticated(err)
		}
		log.Errorf("refresh failed: %v", err)
		return "", err
	}

	if tokens.Refresh == "" {
		tokens.Refresh = creds.Refresh.OrEmpty()
	}
	store.SetTokens(tokens.Session, tokens.Refresh, tokens.ExpiresIn)

	return tokens.Session, nil
}

// rejected reports whether the server refused the refresh token itself.
func rejected(err error) bool {
	e, ok := AsError(err)
	if !ok {
		return false
	}
	switch e.Kind {
	case KindUnauthenticated, KindValidation:
		return true
	case KindHTTP:
		return e.Status >= 400 && e.Status < 500
	default:
		return false
	}
}
