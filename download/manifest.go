package download

import (
	"net/url"
	"strings"
)

// Quality selects the original or compressed page set.
type Quality int

const (
	QualityData Quality = iota
	QualityDataSaver
)

// String returns the path segment used by @Home servers.
func (q Quality) String() string {
	if q == QualityDataSaver {
		return "data-saver"
	}
	return "data"
}

// Manifest locates the pages of one chapter on an @Home server.
type Manifest struct {
	BaseURL   string
	Hash      string
	Data      []string
	DataSaver []string
}

// Filenames returns the pages of the given quality in reading order.
func (m Manifest) Filenames(q Quality) []string {
	if q == QualityDataSaver {
		return m.DataSaver
	}
	return m.Data
}

// PageURL builds the address of a single page.
func (m Manifest) PageURL(q Quality, filename string) string {
	return strings.TrimRight(m.BaseURL, "/") + "/" + q.String() + "/" + m.Hash + "/" + filename
}

// IsHome reports whether the pages are served by the @Home network rather than the origin site.
// Only @Home servers take part in health reporting.
func (m Manifest) IsHome() bool {
	u, err := url.Parse(m.BaseURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host != "mangadex.org" && !strings.HasSuffix(host, ".mangadex.org")
}

type atHomeResponse struct {
	Result  string `json:"result"`
	BaseURL string `json:"baseUrl"`
	Chapter struct {
		Hash      string   `json:"hash"`
		Data      []string `json:"data"`
		DataSaver []string `json:"dataSaver"`
	} `json:"chapter"`
}

func (r atHomeResponse) manifest() Manifest {
	return Manifest{
		BaseURL:   r.BaseURL,
		Hash:      r.Chapter.Hash,
		Data:      r.Chapter.Data,
		DataSaver: r.Chapter.DataSaver,
	}
}
