package mangadex

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/tonymushah/mangadex-api-sub002/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCache(t *testing.T) {
	Convey("Given an empty cache", t, func() {
		So(ClearCache(), ShouldBeNil)

		f, server, client := newFake(false)
		defer server.Close()

		id := uuid.NewString()
		f.routes["GET /manga/"+id] = respond(map[string]any{"result": "ok", "data": map[string]any{"id": id, "type": "manga"}})
		f.routes["GET /manga/tag"] = respond(map[string]any{"result": "ok", "data": []map[string]any{{"id": "t1"}}})

		Convey("CachedManga should hit the API once per key", func() {
			for i := 0; i < 3; i++ {
				m, err := CachedManga(context.Background(), client, id, "author")
				So(err, ShouldBeNil)
				So(m.ID, ShouldEqual, id)
			}
			So(f.requests, ShouldHaveLength, 1)

			_, err := CachedManga(context.Background(), client, id)
			So(err, ShouldBeNil)
			So(f.requests, ShouldHaveLength, 2)
		})

		Convey("CachedTags should hit the API once", func() {
			for i := 0; i < 2; i++ {
				tags, err := CachedTags(context.Background(), client)
				So(err, ShouldBeNil)
				So(tags, ShouldHaveLength, 1)
			}
			So(f.requests, ShouldHaveLength, 1)
			So(f.requests[0].Method, ShouldEqual, http.MethodGet)
		})

		Convey("Failures should not be cached", func() {
			_, err := CachedManga(context.Background(), client, "bad-id")
			So(err, ShouldNotBeNil)
			So(mangaCacher.Get("bad-id").IsAbsent(), ShouldBeTrue)
		})
	})
}
