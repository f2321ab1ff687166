// Package mangadex maps a curated set of MangaDex resources onto api endpoints.
package mangadex

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tonymushah/mangadex-api-sub002/api"
)

// LocalizedString maps language codes to text.
type LocalizedString map[string]string

// UnmarshalJSON accepts the empty array the API sends instead of an empty object.
func (l *LocalizedString) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); bytes.Equal(trimmed, []byte("[]")) || bytes.Equal(trimmed, []byte("null")) {
		*l = LocalizedString{}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*l = m
	return nil
}

// Get returns the text in the first available language of langs, then English,
// then romanized Japanese, then any language.
func (l LocalizedString) Get(langs ...string) string {
	candidates := append(append([]string{}, langs...), "en", "ja-ro")
	for _, lang := range candidates {
		if s, ok := l[lang]; ok && s != "" {
			return s
		}
	}

	keys := lo.Keys(l)
	sort.Strings(keys)
	for _, k := range keys {
		if l[k] != "" {
			return l[k]
		}
	}
	return ""
}

// Relationship links an entity to another one. Attributes are present when the
// related type was requested through includes[].
type Relationship struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Related    string          `json:"related,omitempty"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
}

// Decode unmarshals the expanded attributes into v. It reports false when they were not included.
func (r Relationship) Decode(v any) (bool, error) {
	if len(r.Attributes) == 0 || bytes.Equal(r.Attributes, []byte("null")) {
		return false, nil
	}
	return true, json.Unmarshal(r.Attributes, v)
}

// Entity is the common shape of every resource object.
type Entity[A any] struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Attributes    A              `json:"attributes"`
	Relationships []Relationship `json:"relationships"`
}

// Related returns the relationships of the given type.
func (e Entity[A]) Related(kind string) []Relationship {
	return lo.Filter(e.Relationships, func(r Relationship, _ int) bool {
		return r.Type == kind
	})
}

// EntityResponse wraps a single entity.
type EntityResponse[T any] struct {
	Result   string `json:"result"`
	Response string `json:"response"`
	Data     T      `json:"data"`
}

// Collection is a page of entities.
type Collection[T any] struct {
	Result   string `json:"result"`
	Response string `json:"response"`
	Data     []T    `json:"data"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
	Total    int    `json:"total"`
}

// HasMore reports whether another page follows.
func (c Collection[T]) HasMore() bool {
	return c.Offset+len(c.Data) < c.Total
}

type MangaAttributes struct {
	Title                        LocalizedString   `json:"title"`
	AltTitles                    []LocalizedString `json:"altTitles"`
	Description                  LocalizedString   `json:"description"`
	IsLocked                     bool              `json:"isLocked"`
	Links                        map[string]string `json:"links"`
	OriginalLanguage             string            `json:"originalLanguage"`
	LastVolume                   string            `json:"lastVolume"`
	LastChapter                  string            `json:"lastChapter"`
	PublicationDemographic       string            `json:"publicationDemographic"`
	Status                       string            `json:"status"`
	Year                         int               `json:"year"`
	ContentRating                string            `json:"contentRating"`
	Tags                         []Tag             `json:"tags"`
	State                        string            `json:"state"`
	CreatedAt                    time.Time         `json:"createdAt"`
	UpdatedAt                    time.Time         `json:"updatedAt"`
	Version                      int               `json:"version"`
	AvailableTranslatedLanguages []string          `json:"availableTranslatedLanguages"`
	LatestUploadedChapter        string            `json:"latestUploadedChapter"`
}

// DisplayTitle picks the title, falling back to alternative titles in the preferred languages.
func (a MangaAttributes) DisplayTitle(langs ...string) string {
	for _, lang := range langs {
		if s, ok := a.Title[lang]; ok && s != "" {
			return s
		}
		for _, alt := range a.AltTitles {
			if s, ok := alt[lang]; ok && s != "" {
				return s
			}
		}
	}
	return a.Title.Get(langs...)
}

type ChapterAttributes struct {
	Title              string    `json:"title"`
	Volume             string    `json:"volume"`
	Chapter            string    `json:"chapter"`
	Pages              int       `json:"pages"`
	TranslatedLanguage string    `json:"translatedLanguage"`
	Uploader           string    `json:"uploader"`
	ExternalURL        string    `json:"externalUrl"`
	Version            int       `json:"version"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	PublishAt          time.Time `json:"publishAt"`
	ReadableAt         time.Time `json:"readableAt"`
}

type TagAttributes struct {
	Name        LocalizedString `json:"name"`
	Description LocalizedString `json:"description"`
	Group       string          `json:"group"`
	Version     int             `json:"version"`
}

type UserAttributes struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Version  int      `json:"version"`
}

type CoverAttributes struct {
	Description string `json:"description"`
	Volume      string `json:"volume"`
	FileName    string `json:"fileName"`
	Locale      string `json:"locale"`
	Version     int    `json:"version"`
}

type AuthorAttributes struct {
	Name      string          `json:"name"`
	ImageURL  string          `json:"imageUrl"`
	Biography LocalizedString `json:"biography"`
	Version   int             `json:"version"`
}

type (
	Manga   = Entity[MangaAttributes]
	Chapter = Entity[ChapterAttributes]
	Tag     = Entity[TagAttributes]
	User    = Entity[UserAttributes]
	Cover   = Entity[CoverAttributes]
	Author  = Entity[AuthorAttributes]
)

// Authors returns the names of the expanded author and artist relationships.
func Authors(m Manga) []string {
	var names []string
	for _, r := range m.Relationships {
		if r.Type != "author" && r.Type != "artist" {
			continue
		}
		var attrs AuthorAttributes
		if ok, err := r.Decode(&attrs); ok && err == nil && attrs.Name != "" {
			names = append(names, attrs.Name)
		}
	}
	return lo.Uniq(names)
}

// CoverURL returns the cover image address when the cover_art relationship was included.
func CoverURL(uploadsURL string, m Manga) (string, bool) {
	for _, r := range m.Related("cover_art") {
		var attrs CoverAttributes
		if ok, err := r.Decode(&attrs); ok && err == nil && attrs.FileName != "" {
			return uploadsURL + "/covers/" + m.ID + "/" + attrs.FileName, true
		}
	}
	return "", false
}

// Order is a single order[field]=direction clause.
type Order struct {
	Field     string
	Direction string
}

// Asc orders by field ascending.
func Asc(field string) Order { return Order{Field: field, Direction: "asc"} }

// Desc orders by field descending.
func Desc(field string) Order { return Order{Field: field, Direction: "desc"} }

func validateID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return api.NewValidation(field, "must be a UUID")
	}
	return nil
}
