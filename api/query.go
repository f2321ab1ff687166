package api

import (
	"net/url"
	"strings"
)

type queryPair struct {
	key   string
	value string
}

// Query is an ordered query string builder following the API's bracket conventions.
// A nil *Query encodes to the empty string.
type Query struct {
	pairs []queryPair
}

// NewQuery returns an empty query.
func NewQuery() *Query {
	return &Query{}
}

// Set appends key=value. Empty values are skipped.
func (q *Query) Set(key, value string) *Query {
	if value != "" {
		q.pairs = append(q.pairs, queryPair{key: key, value: value})
	}
	return q
}

// Add appends one key[]=value pair per value, in order.
func (q *Query) Add(key string, values ...string) *Query {
	for _, v := range values {
		q.pairs = append(q.pairs, queryPair{key: key + "[]", value: v})
	}
	return q
}

// Keyed appends key[sub]=value, as used by order[createdAt]=desc.
func (q *Query) Keyed(key, sub, value string) *Query {
	if value != "" {
		q.pairs = append(q.pairs, queryPair{key: key + "[" + sub + "]", value: value})
	}
	return q
}

// Len returns the number of pairs.
func (q *Query) Len() int {
	if q == nil {
		return 0
	}
	return len(q.pairs)
}

// Encode renders the query. Brackets in keys stay literal.
func (q *Query) Encode() string {
	if q == nil {
		return ""
	}

	var b strings.Builder
	for i, p := range q.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeKey(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

func escapeKey(key string) string {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return url.QueryEscape(key)
	}
	return url.QueryEscape(key[:open]) + key[open:]
}
