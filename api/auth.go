package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/samber/mo"
	"github.com/tonymushah/mangadex-api-sub002/credentials"
)

// LoginParams are the legacy username/email and password credentials.
type LoginParams struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// Validate checks the lengths the API enforces.
func (p LoginParams) Validate() error {
	if p.Username == "" && p.Email == "" {
		return NewValidation("username", "username or email is required")
	}
	if p.Username != "" {
		if n := utf8.RuneCountInString(p.Username); n > 64 {
			return NewValidation("username", "must be between 1 and 64 characters")
		}
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return NewValidation("email", "must be an email address")
	}
	if n := utf8.RuneCountInString(p.Password); n < 8 || n > 1024 {
		return NewValidation("password", "must be between 8 and 1024 characters")
	}
	return nil
}

// Login authenticates with the legacy flow and stores the token pair.
func (c *Client) Login(ctx context.Context, params LoginParams) (Tokens, error) {
	if err := params.Validate(); err != nil {
		return Tokens{}, err
	}

	var resp legacyTokenResponse
	if _, err := c.Do(ctx, Post("/auth/login", params), &resp); err != nil {
		return Tokens{}, err
	}

	if resp.Result != "ok" || resp.Token.Session == "" {
		return Tokens{}, newUnauthenticated(errors.New("login rejected: " + resp.Message))
	}

	tokens := Tokens{Session: resp.Token.Session, Refresh: resp.Token.Refresh}
	// Legacy tokens refresh through /auth/refresh, so any stored OAuth client identity is dropped.
	c.store.Set(credentials.Credentials{
		Session: mo.Some(tokens.Session),
		Refresh: mo.EmptyableToOption(tokens.Refresh),
	})
	return tokens, nil
}

// OAuthParams are the password grant credentials of a personal API client.
type OAuthParams struct {
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
}

// Validate checks that every grant field is present.
func (p OAuthParams) Validate() error {
	switch {
	case p.Username == "":
		return NewValidation("username", "is required")
	case p.Password == "":
		return NewValidation("password", "is required")
	case p.ClientID == "":
		return NewValidation("client_id", "is required")
	case p.ClientSecret == "":
		return NewValidation("client_secret", "is required")
	}
	return nil
}

// LoginOAuth authenticates through the OpenID Connect password grant.
// The client identity is kept in the store so later refreshes use the same flow.
func (c *Client) LoginOAuth(ctx context.Context, params OAuthParams) (Tokens, error) {
	if err := params.Validate(); err != nil {
		return Tokens{}, err
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", params.Username)
	form.Set("password", params.Password)
	form.Set("client_id", params.ClientID)
	form.Set("client_secret", params.ClientSecret)

	var resp oauthTokenResponse
	ep := Endpoint{Method: http.MethodPost, BaseURL: c.authURL, Path: oauthTokenPath, Body: form}
	if _, err := c.Do(ctx, ep, &resp); err != nil {
		return Tokens{}, err
	}

	if resp.AccessToken == "" {
		return Tokens{}, newUnauthenticated(errors.New("token endpoint returned no access token"))
	}

	tokens := resp.tokens()
	c.store.SetClient(params.ClientID, params.ClientSecret)
	c.store.SetTokens(tokens.Session, tokens.Refresh, tokens.ExpiresIn)
	return tokens, nil
}

// Refresh renews the session now, sharing any refresh already in flight.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	return c.refresh.force(ctx)
}

// Logout ends a legacy session on the server and clears the stored tokens.
// OAuth sessions are only cleared locally.
func (c *Client) Logout(ctx context.Context) error {
	creds, ok := c.store.Get().Get()
	if !ok || creds.Session.IsAbsent() {
		return nil
	}
	defer c.store.Clear()

	if creds.HasClient() {
		return nil
	}

	_, err := c.Do(ctx, Post("/auth/logout", nil).WithAuth(AuthRequired), nil)
	if IsKind(err, KindUnauthenticated) {
		return nil
	}
	return err
}

// TokenCheck describes the current session as seen by the server.
type TokenCheck struct {
	Result          string   `json:"result"`
	IsAuthenticated bool     `json:"isAuthenticated"`
	Roles           []string `json:"roles"`
	Permissions     []string `json:"permissions"`
}

// CheckToken asks the server about the current session.
func (c *Client) CheckToken(ctx context.Context) (TokenCheck, error) {
	res, err := Execute[TokenCheck](ctx, c, Get("/auth/check").WithAuth(AuthOptional))
	return res.Data, err
}
