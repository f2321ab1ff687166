package mangadex

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/tonymushah/mangadex-api-sub002/api"
)

// Me returns the logged in user.
func Me(ctx context.Context, c *api.Client) (User, error) {
	res, err := api.Execute[EntityResponse[User]](ctx, c, api.Get("/user/me").WithAuth(api.AuthRequired))
	return res.Data.Data, err
}

// FollowedManga lists the manga the user follows.
func FollowedManga(ctx context.Context, c *api.Client, limit, offset int) (Collection[Manga], error) {
	q := api.NewQuery()
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	ep := api.Get("/user/follows/manga").WithQuery(q).WithAuth(api.AuthRequired)
	res, err := api.Execute[Collection[Manga]](ctx, c, ep)
	return res.Data, err
}

// FollowManga adds a manga to the follow list.
func FollowManga(ctx context.Context, c *api.Client, id string) error {
	if err := validateID("manga id", id); err != nil {
		return err
	}
	_, err := c.Do(ctx, api.Post("/manga/{id}/follow", nil).WithParam("id", id).WithAuth(api.AuthRequired), nil)
	return err
}

// UnfollowManga removes a manga from the follow list.
func UnfollowManga(ctx context.Context, c *api.Client, id string) error {
	if err := validateID("manga id", id); err != nil {
		return err
	}
	_, err := c.Do(ctx, api.Delete("/manga/{id}/follow").WithParam("id", id).WithAuth(api.AuthRequired), nil)
	return err
}

// IsFollowingManga reports whether the user follows the manga. The API answers 404 when not.
func IsFollowingManga(ctx context.Context, c *api.Client, id string) (bool, error) {
	if err := validateID("manga id", id); err != nil {
		return false, err
	}

	_, err := c.Do(ctx, api.Get("/user/follows/manga/{id}").WithParam("id", id).WithAuth(api.AuthRequired), nil)
	switch {
	case err == nil:
		return true, nil
	case api.IsStatus(err, http.StatusNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Rating is the user's score for a manga.
type Rating struct {
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

// Ratings returns the user's ratings keyed by manga id.
func Ratings(ctx context.Context, c *api.Client, ids ...string) (map[string]Rating, error) {
	for _, id := range ids {
		if err := validateID("manga id", id); err != nil {
			return nil, err
		}
	}

	type response struct {
		Result  string            `json:"result"`
		Ratings map[string]Rating `json:"ratings"`
	}

	ep := api.Get("/rating").WithQuery(api.NewQuery().Add("manga", ids...)).WithAuth(api.AuthRequired)
	res, err := api.Execute[response](ctx, c, ep)
	if err != nil {
		return nil, err
	}
	if res.Data.Ratings == nil {
		return map[string]Rating{}, nil
	}
	return res.Data.Ratings, nil
}

// SetRating scores a manga from 1 to 10.
func SetRating(ctx context.Context, c *api.Client, id string, rating int) error {
	if err := validateID("manga id", id); err != nil {
		return err
	}
	if rating < 1 || rating > 10 {
		return api.NewValidation("rating", "must be between 1 and 10")
	}

	ep := api.Post("/rating/{id}", map[string]int{"rating": rating}).WithParam("id", id).WithAuth(api.AuthRequired)
	_, err := c.Do(ctx, ep, nil)
	return err
}

// DeleteRating removes the user's score for a manga.
func DeleteRating(ctx context.Context, c *api.Client, id string) error {
	if err := validateID("manga id", id); err != nil {
		return err
	}
	_, err := c.Do(ctx, api.Delete("/rating/{id}").WithParam("id", id).WithAuth(api.AuthRequired), nil)
	return err
}

// ReadMarkers lists the chapter ids of a manga marked as read.
func ReadMarkers(ctx context.Context, c *api.Client, mangaID string) ([]string, error) {
	if err := validateID("manga id", mangaID); err != nil {
		return nil, err
	}

	type response struct {
		Result string   `json:"result"`
		Data   []string `json:"data"`
	}

	res, err := api.Execute[response](ctx, c, api.Get("/manga/{id}/read").WithParam("id", mangaID).WithAuth(api.AuthRequired))
	return res.Data.Data, err
}

// MarkChapters updates the read markers of a manga in one call.
func MarkChapters(ctx context.Context, c *api.Client, mangaID string, read, unread []string) error {
	if err := validateID("manga id", mangaID); err != nil {
		return err
	}

	body := struct {
		Read   []string `json:"chapterIdsRead"`
		Unread []string `json:"chapterIdsUnread"`
	}{Read: nonNil(read), Unread: nonNil(unread)}

	ep := api.Post("/manga/{id}/read", body).WithParam("id", mangaID).WithAuth(api.AuthRequired)
	_, err := c.Do(ctx, ep, nil)
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
