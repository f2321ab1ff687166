// Package download fetches chapter pages from the @Home network.
package download

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tonymushah/mangadex-api-sub002/api"
	"github.com/tonymushah/mangadex-api-sub002/constant"
	"github.com/tonymushah/mangadex-api-sub002/log"
)

// Options configure a Downloader.
type Options struct {
	// ReportURL receives page health reports. Empty means the public endpoint.
	ReportURL    string
	Report       bool
	ForcePort443 bool
	Quality      Quality
}

// Page is one fetched chapter page.
type Page struct {
	// Index is the position in the manifest, starting at zero.
	Index    int
	Filename string
	Data     []byte
	Cached   bool
	Duration time.Duration
}

// Downloader resolves manifests through the API client and streams pages over its HTTP client.
type Downloader struct {
	client *api.Client
	http   *http.Client
	opts   Options
}

// New creates a Downloader.
func New(client *api.Client, opts Options) *Downloader {
	if opts.ReportURL == "" {
		opts.ReportURL = constant.ReportURL
	}
	return &Downloader{client: client, http: client.HTTPClient(), opts: opts}
}

// Quality returns the configured default quality.
func (d *Downloader) Quality() Quality {
	return d.opts.Quality
}

// Manifest asks the API which @Home server holds the chapter.
func (d *Downloader) Manifest(ctx context.Context, chapterID string) (Manifest, error) {
	if _, err := uuid.Parse(chapterID); err != nil {
		return Manifest{}, api.NewValidation("chapter id", "must be a UUID")
	}

	query := api.NewQuery()
	if d.opts.ForcePort443 {
		query.Set("forcePort443", "true")
	}

	ep := api.Get("/at-home/server/{id}").
		WithParam("id", chapterID).
		WithQuery(query).
		WithAuth(api.AuthOptional)

	res, err := api.Execute[atHomeResponse](ctx, d.client, ep)
	if err != nil {
		return Manifest{}, err
	}

	return res.Data.manifest(), nil
}

// Stream lazily fetches the pages in manifest order. Each page is requested only
// when the consumer asks for it and nothing is fetched after the consumer stops.
// When only is given, just those filenames are fetched, keeping manifest order.
func (d *Downloader) Stream(ctx context.Context, m Manifest, q Quality, only ...string) iter.Seq2[Page, error] {
	names := m.Filenames(q)
	wanted := lo.Keyify(only)

	return func(yield func(Page, error) bool) {
		for i, name := range names {
			if len(wanted) > 0 {
				if _, ok := wanted[name]; !ok {
					continue
				}
			}

			if err := ctx.Err(); err != nil {
				yield(Page{Index: i, Filename: name}, api.NewTransportError(err))
				return
			}

			page, err := d.fetch(ctx, m, q, i, name)
			if !yield(page, err) {
				return
			}
		}
	}
}

func (d *Downloader) fetch(ctx context.Context, m Manifest, q Quality, index int, name string) (Page, error) {
	page := Page{Index: index, Filename: name}
	target := m.PageURL(q, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return page, api.NewValidation("page url", err.Error())
	}

	start := time.Now()
	resp, err := d.http.Do(req)
	if err != nil {
		page.Duration = time.Since(start)
		d.report(ctx, m, target, false, false, 0, page.Duration)
		return page, api.NewTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	page.Duration = time.Since(start)
	page.Cached = strings.HasPrefix(strings.ToUpper(resp.Header.Get("X-Cache")), "HIT")

	if err != nil {
		d.report(ctx, m, target, false, page.Cached, len(data), page.Duration)
		return page, api.NewTransportError(fmt.Errorf("read page: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		d.report(ctx, m, target, false, page.Cached, len(data), page.Duration)
		return page, api.NewHTTPError(resp.StatusCode, data)
	}

	page.Data = data
	d.report(ctx, m, target, true, page.Cached, len(data), page.Duration)
	return page, nil
}

type report struct {
	URL      string `json:"url"`
	Success  bool   `json:"success"`
	Cached   bool   `json:"cached"`
	Bytes    int    `json:"bytes"`
	Duration int64  `json:"duration"`
}

// report tells the @Home network how a fetch went. Failures are logged only.
func (d *Downloader) report(ctx context.Context, m Manifest, target string, success, cached bool, size int, took time.Duration) {
	if !d.opts.Report || !m.IsHome() {
		return
	}

	body, err := json.Marshal(report{
		URL:      target,
		Success:  success,
		Cached:   cached,
		Bytes:    size,
		Duration: took.Milliseconds(),
	})
	if err != nil {
		log.Warnf("encode @Home report: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.opts.ReportURL, bytes.NewReader(body))
	if err != nil {
		log.Warnf("build @Home report: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		log.Warnf("send @Home report: %v", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		log.Warnf("@Home report rejected: %d", resp.StatusCode)
	}
}
