package mangadex

import (
	"context"
	"strconv"

	"github.com/tonymushah/mangadex-api-sub002/api"
)

// MangaSearchParams filter GET /manga.
type MangaSearchParams struct {
	Title                       string
	Limit                       int
	Offset                      int
	Includes                    []string
	ContentRating               []string
	AvailableTranslatedLanguage []string
	IncludedTags                []string
	Status                      []string
	Order                       []Order
}

// Endpoint builds the descriptor.
func (p MangaSearchParams) Endpoint() api.Endpoint {
	q := api.NewQuery().Set("title", p.Title)
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	q.Add("includes", p.Includes...).
		Add("contentRating", p.ContentRating...).
		Add("availableTranslatedLanguage", p.AvailableTranslatedLanguage...).
		Add("includedTags", p.IncludedTags...).
		Add("status", p.Status...)
	for _, o := range p.Order {
		q.Keyed("order", o.Field, o.Direction)
	}

	return api.Get("/manga").WithQuery(q)
}

// SearchManga lists manga matching the parameters.
func SearchManga(ctx context.Context, c *api.Client, p MangaSearchParams) (Collection[Manga], error) {
	res, err := api.Execute[Collection[Manga]](ctx, c, p.Endpoint())
	return res.Data, err
}

// GetManga fetches one manga, expanding the given relationship types.
func GetManga(ctx context.Context, c *api.Client, id string, includes ...string) (Manga, error) {
	if err := validateID("manga id", id); err != nil {
		return Manga{}, err
	}

	ep := api.Get("/manga/{id}").
		WithParam("id", id).
		WithQuery(api.NewQuery().Add("includes", includes...))

	res, err := api.Execute[EntityResponse[Manga]](ctx, c, ep)
	return res.Data.Data, err
}

// FeedParams filter GET /manga/{id}/feed.
type FeedParams struct {
	Limit              int
	Offset             int
	TranslatedLanguage []string
	ContentRating      []string
	Includes           []string
	Order              []Order
}

func (p FeedParams) query() *api.Query {
	q := api.NewQuery()
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	q.Add("translatedLanguage", p.TranslatedLanguage...).
		Add("contentRating", p.ContentRating...).
		Add("includes", p.Includes...)
	for _, o := range p.Order {
		q.Keyed("order", o.Field, o.Direction)
	}
	return q
}

// MangaFeed lists the chapters of a manga.
func MangaFeed(ctx context.Context, c *api.Client, id string, p FeedParams) (Collection[Chapter], error) {
	if err := validateID("manga id", id); err != nil {
		return Collection[Chapter]{}, err
	}

	ep := api.Get("/manga/{id}/feed").WithParam("id", id).WithQuery(p.query())
	res, err := api.Execute[Collection[Chapter]](ctx, c, ep)
	return res.Data, err
}

// GetChapter fetches one chapter.
func GetChapter(ctx context.Context, c *api.Client, id string) (Chapter, error) {
	if err := validateID("chapter id", id); err != nil {
		return Chapter{}, err
	}

	res, err := api.Execute[EntityResponse[Chapter]](ctx, c, api.Get("/chapter/{id}").WithParam("id", id))
	return res.Data.Data, err
}

// Tags lists every manga tag.
func Tags(ctx context.Context, c *api.Client) ([]Tag, error) {
	res, err := api.Execute[Collection[Tag]](ctx, c, api.Get("/manga/tag"))
	return res.Data.Data, err
}

// Statistics aggregates community numbers for a manga.
type Statistics struct {
	Rating struct {
		Average      float64        `json:"average"`
		Bayesian     float64        `json:"bayesian"`
		Distribution map[string]int `json:"distribution"`
	} `json:"rating"`
	Follows  int `json:"follows"`
	Comments struct {
		ThreadID     int `json:"threadId"`
		RepliesCount int `json:"repliesCount"`
	} `json:"comments"`
}

// MangaStatistics fetches the statistics of a manga.
func MangaStatistics(ctx context.Context, c *api.Client, id string) (Statistics, error) {
	if err := validateID("manga id", id); err != nil {
		return Statistics{}, err
	}

	type response struct {
		Result     string                `json:"result"`
		Statistics map[string]Statistics `json:"statistics"`
	}

	res, err := api.Execute[response](ctx, c, api.Get("/statistics/manga/{id}").WithParam("id", id))
	if err != nil {
		return Statistics{}, err
	}
	return res.Data.Statistics[id], nil
}
