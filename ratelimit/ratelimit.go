// Package ratelimit turns server-communicated quota headers into a State and a wait suggestion.
// It holds no history; every response is judged on its own headers.
package ratelimit

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"
)

// Config names the headers the server uses.
type Config struct {
	LimitHeader      string
	RemainingHeader  string
	ResetHeader      string
	RetryAfterHeader string
}

// DefaultConfig returns the header names MangaDex sends.
func DefaultConfig() Config {
	return Config{
		LimitHeader:      "X-RateLimit-Limit",
		RemainingHeader:  "X-RateLimit-Remaining",
		ResetHeader:      "X-RateLimit-Retry-After",
		RetryAfterHeader: "Retry-After",
	}
}

// State is the quota snapshot carried by a single response.
type State struct {
	Limit      mo.Option[int]
	Remaining  mo.Option[int]
	ResetAt    mo.Option[time.Time]
	RetryAfter mo.Option[time.Duration]
}

func (s State) String() string {
	show := func(o mo.Option[int]) string {
		if v, ok := o.Get(); ok {
			return strconv.Itoa(v)
		}
		return "?"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "remaining=%s/%s", show(s.Remaining), show(s.Limit))
	if at, ok := s.ResetAt.Get(); ok {
		fmt.Fprintf(&b, " reset=%s", at.UTC().Format(time.RFC3339))
	}
	if d, ok := s.RetryAfter.Get(); ok {
		fmt.Fprintf(&b, " retry_after=%s", d)
	}
	return b.String()
}

// Tracker is a stateless calculator over response headers.
type Tracker struct {
	Config Config
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewTracker returns a tracker for the given header names.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{Config: cfg, Now: time.Now}
}

func (t *Tracker) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

// Observe parses the quota headers. Missing or malformed values stay absent.
func (t *Tracker) Observe(h http.Header) State {
	var s State

	s.Limit = parseInt(h.Get(t.Config.LimitHeader))
	s.Remaining = parseInt(h.Get(t.Config.RemainingHeader))

	if reset, ok := parseInt(h.Get(t.Config.ResetHeader)).Get(); ok {
		s.ResetAt = mo.Some(time.Unix(int64(reset), 0))
	}

	s.RetryAfter = t.parseRetryAfter(h.Get(t.Config.RetryAfterHeader))
	return s
}

// ShouldWait suggests a delay only when the next call would certainly be rejected.
func (t *Tracker) ShouldWait(s State) mo.Option[time.Duration] {
	remaining, ok := s.Remaining.Get()
	if !ok || remaining > 0 {
		return mo.None[time.Duration]()
	}

	at, ok := s.ResetAt.Get()
	if !ok {
		return mo.None[time.Duration]()
	}

	wait := at.Sub(t.now())
	if wait <= 0 {
		return mo.None[time.Duration]()
	}
	return mo.Some(wait)
}

// RetryAfter resolves the delay for a 429: the explicit header first,
// then the quota reset, then hints in the body.
func (t *Tracker) RetryAfter(s State, body []byte) mo.Option[time.Duration] {
	if d, ok := s.RetryAfter.Get(); ok {
		return mo.Some(d)
	}
	if d, ok := t.ShouldWait(s).Get(); ok {
		return mo.Some(d)
	}
	return RetryAfterFromBody(body)
}

func (t *Tracker) parseRetryAfter(value string) mo.Option[time.Duration] {
	value = strings.TrimSpace(value)
	if value == "" {
		return mo.None[time.Duration]()
	}

	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		if seconds < 0 || math.IsNaN(seconds) {
			return mo.None[time.Duration]()
		}
		return mo.Some(scale(seconds, time.Second))
	}

	if at, err := http.ParseTime(value); err == nil {
		return mo.Some(max(at.Sub(t.now()), 0))
	}

	return mo.None[time.Duration]()
}

var retryHint = regexp.MustCompile(`(?i)retry\D{0,16}?(\d+(?:\.\d+)?)\s*(ms|milliseconds?|s|seconds?|m|minutes?)?`)

// RetryAfterFromBody extracts a retry delay from a 429 body.
// It understands retry_after/retryAfter seconds and "retry after N" phrases in error details.
func RetryAfterFromBody(body []byte) mo.Option[time.Duration] {
	if len(body) == 0 {
		return mo.None[time.Duration]()
	}

	var payload struct {
		RetryAfter      *float64 `json:"retry_after"`
		RetryAfterCamel *float64 `json:"retryAfter"`
		Errors          []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return fromPhrase(string(body))
	}

	for _, v := range []*float64{payload.RetryAfter, payload.RetryAfterCamel} {
		if v != nil && *v >= 0 {
			return mo.Some(scale(*v, time.Second))
		}
	}

	for _, e := range payload.Errors {
		if d, ok := fromPhrase(e.Detail).Get(); ok {
			return mo.Some(d)
		}
		if d, ok := fromPhrase(e.Title).Get(); ok {
			return mo.Some(d)
		}
	}

	return mo.None[time.Duration]()
}

func fromPhrase(s string) mo.Option[time.Duration] {
	m := retryHint.FindStringSubmatch(s)
	if m == nil {
		return mo.None[time.Duration]()
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return mo.None[time.Duration]()
	}

	unit := time.Second
	switch {
	case strings.HasPrefix(strings.ToLower(m[2]), "ms"), strings.HasPrefix(strings.ToLower(m[2]), "milli"):
		unit = time.Millisecond
	case strings.HasPrefix(strings.ToLower(m[2]), "m"):
		unit = time.Minute
	}

	return mo.Some(scale(n, unit))
}

// scale converts n units to a Duration, saturating instead of overflowing.
func scale(n float64, unit time.Duration) time.Duration {
	if n >= float64(math.MaxInt64)/float64(unit) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(n * float64(unit))
}

func parseInt(value string) mo.Option[int] {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return mo.None[int]()
	}
	return mo.Some(n)
}
