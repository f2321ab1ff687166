package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// AuthMode says whether a request carries the session token.
type AuthMode int

const (
	// AuthNone never sends a token.
	AuthNone AuthMode = iota
	// AuthOptional sends the token when one is stored.
	AuthOptional
	// AuthRequired fails fast when no token is stored.
	AuthRequired
)

func (m AuthMode) String() string {
	switch m {
	case AuthOptional:
		return "optional"
	case AuthRequired:
		return "required"
	default:
		return "none"
	}
}

// Endpoint describes one HTTP call. Build a new value per call.
type Endpoint struct {
	Method string
	// BaseURL overrides the client's base URL, e.g. for the OAuth host.
	BaseURL string
	// Path may contain {name} placeholders filled from PathParams.
	Path       string
	PathParams map[string]string
	Query      *Query
	// Body is form encoded when it is url.Values and JSON encoded otherwise.
	Body any
	Auth AuthMode
}

// Get builds a GET endpoint.
func Get(path string) Endpoint {
	return Endpoint{Method: http.MethodGet, Path: path}
}

// Post builds a POST endpoint.
func Post(path string, body any) Endpoint {
	return Endpoint{Method: http.MethodPost, Path: path, Body: body}
}

// Delete builds a DELETE endpoint.
func Delete(path string) Endpoint {
	return Endpoint{Method: http.MethodDelete, Path: path}
}

// WithParam returns a copy with a path parameter set.
func (e Endpoint) WithParam(name, value string) Endpoint {
	params := make(map[string]string, len(e.PathParams)+1)
	for k, v := range e.PathParams {
		params[k] = v
	}
	params[name] = value
	e.PathParams = params
	return e
}

// WithQuery returns a copy carrying the query.
func (e Endpoint) WithQuery(q *Query) Endpoint {
	e.Query = q
	return e
}

// WithAuth returns a copy with the auth mode set.
func (e Endpoint) WithAuth(mode AuthMode) Endpoint {
	e.Auth = mode
	return e
}

var placeholder = regexp.MustCompile(`\{([^{}/]+)\}`)

// URL resolves the full request URL against base.
func (e Endpoint) URL(base string) (string, error) {
	if e.BaseURL != "" {
		base = e.BaseURL
	}

	var missing string
	path := placeholder.ReplaceAllStringFunc(e.Path, func(m string) string {
		name := m[1 : len(m)-1]
		value, ok := e.PathParams[name]
		if !ok || value == "" {
			if missing == "" {
				missing = name
			}
			return m
		}
		return url.PathEscape(value)
	})

	if missing != "" {
		return "", NewValidation(missing, "path parameter is required")
	}

	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	if encoded := e.Query.Encode(); encoded != "" {
		u += "?" + encoded
	}

	return u, nil
}

// body encodes the payload and returns its content type.
func (e Endpoint) body() (io.Reader, string, error) {
	switch b := e.Body.(type) {
	case nil:
		return nil, "", nil
	case url.Values:
		return strings.NewReader(b.Encode()), "application/x-www-form-urlencoded", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", NewValidation("body", fmt.Sprintf("cannot encode: %v", err))
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func (e Endpoint) String() string {
	return e.Method + " " + e.Path
}
