package download

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/tonymushah/mangadex-api-sub002/api"
	"github.com/tonymushah/mangadex-api-sub002/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

type home struct {
	server       *httptest.Server
	baseURL      string
	forcePort    atomic.Value
	mu           sync.Mutex
	fetched      []string
	reports      []report
	reportStatus int
	missing      string
}

func newHome() *home {
	h := &home{reportStatus: http.StatusOK}
	h.forcePort.Store("")

	mux := http.NewServeMux()
	mux.HandleFunc("/at-home/server/", func(w http.ResponseWriter, r *http.Request) {
		h.forcePort.Store(r.URL.Query().Get("forcePort443"))
		base := h.baseURL
		if base == "" {
			base = h.server.URL
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result":  "ok",
			"baseUrl": base,
			"chapter": map[string]any{
				"hash":      "h1",
				"data":      []string{"x1-a.png", "x2-b.png", "x3-c.jpg"},
				"dataSaver": []string{"x1-a.jpg", "x2-b.jpg", "x3-c.jpg"},
			},
		})
	})
	mux.HandleFunc("/data/h1/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/data/h1/")
		h.mu.Lock()
		h.fetched = append(h.fetched, name)
		h.mu.Unlock()

		if name == h.missing {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("X-Cache", "HIT")
		_, _ = w.Write([]byte("page:" + name))
	})
	mux.HandleFunc("/data-saver/h1/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/data-saver/h1/")
		h.mu.Lock()
		h.fetched = append(h.fetched, "saver:"+name)
		h.mu.Unlock()
		_, _ = w.Write([]byte("small:" + name))
	})
	mux.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		var rep report
		_ = json.NewDecoder(r.Body).Decode(&rep)
		h.mu.Lock()
		h.reports = append(h.reports, rep)
		h.mu.Unlock()
		w.WriteHeader(h.reportStatus)
	})

	h.server = httptest.NewServer(mux)
	return h
}

func (h *home) downloader(opts Options, httpClient *http.Client) *Downloader {
	if httpClient == nil {
		httpClient = h.server.Client()
	}
	client := api.NewClient(api.Options{BaseURL: h.server.URL, HTTPClient: httpClient})
	opts.ReportURL = h.server.URL + "/report"
	return New(client, opts)
}

// rewrite sends every request to the test server whatever host it names.
type rewrite struct {
	target *url.URL
}

func (r rewrite) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.URL.Scheme = r.target.Scheme
	clone.URL.Host = r.target.Host
	return http.DefaultTransport.RoundTrip(clone)
}

func TestManifest(t *testing.T) {
	Convey("Given an @Home server", t, func() {
		h := newHome()
		defer h.server.Close()

		Convey("A manifest should be resolved for a chapter UUID", func() {
			m, err := h.downloader(Options{ForcePort443: true}, nil).Manifest(context.Background(), uuid.NewString())

			So(err, ShouldBeNil)
			So(m.Hash, ShouldEqual, "h1")
			So(m.Filenames(QualityData), ShouldResemble, []string{"x1-a.png", "x2-b.png", "x3-c.jpg"})
			So(m.Filenames(QualityDataSaver)[0], ShouldEqual, "x1-a.jpg")
			So(h.forcePort.Load(), ShouldEqual, "true")
		})

		Convey("A malformed chapter id should be rejected", func() {
			_, err := h.downloader(Options{}, nil).Manifest(context.Background(), "not-a-uuid")
			So(api.IsKind(err, api.KindValidation), ShouldBeTrue)
		})
	})

	Convey("Given manifests", t, func() {
		m := Manifest{BaseURL: "https://node.example.net:443/token/", Hash: "h"}

		Convey("PageURL should join the parts", func() {
			So(m.PageURL(QualityDataSaver, "p.jpg"), ShouldEqual, "https://node.example.net:443/token/data-saver/h/p.jpg")
		})

		Convey("IsHome should exclude the origin site", func() {
			So(m.IsHome(), ShouldBeTrue)
			So(Manifest{BaseURL: "https://uploads.mangadex.org"}.IsHome(), ShouldBeFalse)
			So(Manifest{BaseURL: "https://mangadex.org"}.IsHome(), ShouldBeFalse)
			So(Manifest{BaseURL: "::bad"}.IsHome(), ShouldBeFalse)
		})
	})
}

func TestStream(t *testing.T) {
	Convey("Given a manifest", t, func() {
		h := newHome()
		defer h.server.Close()

		d := h.downloader(Options{}, nil)
		m, err := d.Manifest(context.Background(), uuid.NewString())
		So(err, ShouldBeNil)

		Convey("Pages should be yielded in manifest order", func() {
			var names []string
			for page, err := range d.Stream(context.Background(), m, QualityData) {
				So(err, ShouldBeNil)
				So(string(page.Data), ShouldEqual, "page:"+page.Filename)
				So(page.Cached, ShouldBeTrue)
				names = append(names, page.Filename)
			}

			So(names, ShouldResemble, []string{"x1-a.png", "x2-b.png", "x3-c.jpg"})
			So(h.fetched, ShouldResemble, names)
		})

		Convey("Nothing should be fetched before the consumer pulls", func() {
			_ = d.Stream(context.Background(), m, QualityData)
			So(h.fetched, ShouldBeEmpty)
		})

		Convey("Fetching should stop as soon as the consumer stops", func() {
			for page := range d.Stream(context.Background(), m, QualityData) {
				if page.Index == 1 {
					break
				}
			}
			So(h.fetched, ShouldResemble, []string{"x1-a.png", "x2-b.png"})
		})

		Convey("Only the requested filenames should be fetched, keeping their index", func() {
			var indexes []int
			for page, err := range d.Stream(context.Background(), m, QualityData, "x3-c.jpg", "x1-a.png") {
				So(err, ShouldBeNil)
				indexes = append(indexes, page.Index)
			}
			So(indexes, ShouldResemble, []int{0, 2})
			So(h.fetched, ShouldResemble, []string{"x1-a.png", "x3-c.jpg"})
		})

		Convey("Data saver pages should come from their own path", func() {
			for _, err := range d.Stream(context.Background(), m, QualityDataSaver) {
				So(err, ShouldBeNil)
			}
			So(h.fetched[0], ShouldEqual, "saver:x1-a.jpg")
		})

		Convey("A failed page should be reported in place without ending the stream", func() {
			h.missing = "x2-b.png"
			var failures []string
			count := 0
			for page, err := range d.Stream(context.Background(), m, QualityData) {
				count++
				if err != nil {
					So(api.IsStatus(err, http.StatusNotFound), ShouldBeTrue)
					failures = append(failures, page.Filename)
				}
			}
			So(count, ShouldEqual, 3)
			So(failures, ShouldResemble, []string{"x2-b.png"})
		})

		Convey("A cancelled context should end the stream with a transport error", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			var errs []error
			for _, err := range d.Stream(ctx, m, QualityData) {
				errs = append(errs, err)
			}
			So(errs, ShouldHaveLength, 1)
			So(api.IsKind(errs[0], api.KindTransport), ShouldBeTrue)
			So(h.fetched, ShouldBeEmpty)
		})
	})
}

func TestReport(t *testing.T) {
	Convey("Given reporting is enabled", t, func() {
		h := newHome()
		defer h.server.Close()

		Convey("Every page from an @Home server should be reported", func() {
			d := h.downloader(Options{Report: true}, nil)
			m, err := d.Manifest(context.Background(), uuid.NewString())
			So(err, ShouldBeNil)

			for _, err := range d.Stream(context.Background(), m, QualityData) {
				So(err, ShouldBeNil)
			}

			So(h.reports, ShouldHaveLength, 3)
			So(h.reports[0].Success, ShouldBeTrue)
			So(h.reports[0].Cached, ShouldBeTrue)
			So(h.reports[0].Bytes, ShouldEqual, len("page:x1-a.png"))
			So(h.reports[0].URL, ShouldEndWith, "/data/h1/x1-a.png")
		})

		Convey("Failed pages should be reported as failures", func() {
			h.missing = "x1-a.png"
			d := h.downloader(Options{Report: true}, nil)
			m, _ := d.Manifest(context.Background(), uuid.NewString())

			for range d.Stream(context.Background(), m, QualityData) {
			}
			So(h.reports[0].Success, ShouldBeFalse)
		})

		Convey("A rejected report should not surface", func() {
			h.reportStatus = http.StatusInternalServerError
			d := h.downloader(Options{Report: true}, nil)
			m, _ := d.Manifest(context.Background(), uuid.NewString())

			for _, err := range d.Stream(context.Background(), m, QualityData) {
				So(err, ShouldBeNil)
			}
			So(h.reports, ShouldHaveLength, 3)
		})

		Convey("Pages served by the origin site should not be reported", func() {
			h.baseURL = "https://uploads.mangadex.org"
			target, _ := url.Parse(h.server.URL)
			d := h.downloader(Options{Report: true}, &http.Client{Transport: rewrite{target: target}})
			m, err := d.Manifest(context.Background(), uuid.NewString())
			So(err, ShouldBeNil)
			So(m.IsHome(), ShouldBeFalse)

			for _, err := range d.Stream(context.Background(), m, QualityData) {
				So(err, ShouldBeNil)
			}
			So(h.fetched, ShouldHaveLength, 3)
			So(h.reports, ShouldBeEmpty)
		})
	})

	Convey("Given reporting is disabled", t, func() {
		h := newHome()
		defer h.server.Close()

		d := h.downloader(Options{}, nil)
		m, _ := d.Manifest(context.Background(), uuid.NewString())
		for range d.Stream(context.Background(), m, QualityData) {
		}
		So(h.reports, ShouldBeEmpty)
	})
}

func TestSave(t *testing.T) {
	Convey("Given a chapter", t, func() {
		h := newHome()
		defer h.server.Close()

		d := h.downloader(Options{}, nil)
		dir := "/chapters/" + uuid.NewString()

		Convey("Every page should be written with a numbered name", func() {
			var seen []int
			result, err := d.Save(context.Background(), uuid.NewString(), dir, func(p Page, err error) {
				seen = append(seen, p.Index)
			})

			So(err, ShouldBeNil)
			So(result.Pages, ShouldEqual, 3)
			So(result.Failed, ShouldBeEmpty)
			So(seen, ShouldResemble, []int{0, 1, 2})

			data, err := filesystem.API().ReadFile(dir + "/002.png")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "page:x2-b.png")

			exists := lo.Must(filesystem.API().Exists(dir + "/003.jpg"))
			So(exists, ShouldBeTrue)
		})

		Convey("Failed pages should be listed for a retry", func() {
			h.missing = "x2-b.png"
			result, err := d.Save(context.Background(), uuid.NewString(), dir, nil)

			So(err, ShouldBeNil)
			So(result.Pages, ShouldEqual, 2)
			So(result.Failed, ShouldResemble, []string{"x2-b.png"})

			h.missing = ""
			h.fetched = nil
			retry, err := d.Save(context.Background(), uuid.NewString(), dir, nil, result.Failed...)
			So(err, ShouldBeNil)
			So(retry.Pages, ShouldEqual, 1)
			So(h.fetched, ShouldResemble, []string{"x2-b.png"})
		})
	})

	Convey("PageName should number from one", t, func() {
		So(PageName(0, "x1-abc.PNG"), ShouldEqual, "001.png")
		So(PageName(11, "y.jpg"), ShouldEqual, "012.jpg")
	})
}
