package mangadex

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const mangaJSON = `{
	"id": "a96676e5-8ae2-425e-b549-7f15dd34a6d8",
	"type": "manga",
	"attributes": {
		"title": {"ja-ro": "Komi-san wa Komyushou desu."},
		"altTitles": [{"en": "Komi Can't Communicate"}, {"ja": "古見さんは、コミュ症です。"}],
		"description": [],
		"status": "ongoing",
		"year": 2016,
		"createdAt": "2018-11-22T23:24:25+00:00",
		"tags": [{"id": "t1", "type": "tag", "attributes": {"name": {"en": "Comedy"}, "group": "genre"}}]
	},
	"relationships": [
		{"id": "au1", "type": "author", "attributes": {"name": "Oda Tomohito"}},
		{"id": "au1", "type": "artist", "attributes": {"name": "Oda Tomohito"}},
		{"id": "c1", "type": "cover_art", "attributes": {"fileName": "cover.jpg"}},
		{"id": "m2", "type": "manga", "related": "doujinshi"}
	]
}`

func TestTypes(t *testing.T) {
	Convey("Given a manga document", t, func() {
		var m Manga
		So(json.Unmarshal([]byte(mangaJSON), &m), ShouldBeNil)

		Convey("An empty description array should decode", func() {
			So(m.Attributes.Description, ShouldBeEmpty)
			So(m.Attributes.Year, ShouldEqual, 2016)
			So(m.Attributes.CreatedAt.Year(), ShouldEqual, 2018)
		})

		Convey("DisplayTitle should prefer alternative titles in the wanted language", func() {
			So(m.Attributes.DisplayTitle("en"), ShouldEqual, "Komi Can't Communicate")
			So(m.Attributes.DisplayTitle(), ShouldEqual, "Komi-san wa Komyushou desu.")
		})

		Convey("Authors should collapse author and artist", func() {
			So(Authors(m), ShouldResemble, []string{"Oda Tomohito"})
		})

		Convey("CoverURL should use the included cover", func() {
			u, ok := CoverURL("https://uploads.example.org", m)
			So(ok, ShouldBeTrue)
			So(u, ShouldEqual, "https://uploads.example.org/covers/a96676e5-8ae2-425e-b549-7f15dd34a6d8/cover.jpg")
		})

		Convey("Related should filter by type", func() {
			related := m.Related("manga")
			So(related, ShouldHaveLength, 1)
			So(related[0].Related, ShouldEqual, "doujinshi")

			ok, err := related[0].Decode(&AuthorAttributes{})
			So(ok, ShouldBeFalse)
			So(err, ShouldBeNil)
		})

		Convey("Embedded tags should be entities", func() {
			So(m.Attributes.Tags[0].Attributes.Name.Get(), ShouldEqual, "Comedy")
		})
	})

	Convey("Given localized strings", t, func() {
		l := LocalizedString{"fr": "Bonjour", "en": "Hello", "de": ""}

		So(l.Get("fr"), ShouldEqual, "Bonjour")
		So(l.Get("de"), ShouldEqual, "Hello")
		So(LocalizedString{"ko": "annyeong", "it": "ciao"}.Get(), ShouldEqual, "ciao")
		So(LocalizedString{}.Get("en"), ShouldBeEmpty)

		Convey("Get should not modify the caller's slice", func() {
			langs := make([]string, 1, 4)
			langs[0] = "fr"
			_ = l.Get(langs...)
			So(langs[:cap(langs)][1], ShouldBeEmpty)
		})
	})

	Convey("Given collections", t, func() {
		So(Collection[Manga]{Data: make([]Manga, 10), Offset: 0, Total: 25}.HasMore(), ShouldBeTrue)
		So(Collection[Manga]{Data: make([]Manga, 5), Offset: 20, Total: 25}.HasMore(), ShouldBeFalse)
	})
}

func TestSearchEndpoint(t *testing.T) {
	Convey("Given search parameters", t, func() {
		p := MangaSearchParams{
			Title:         "komi",
			Limit:         5,
			Includes:      []string{"author", "artist"},
			ContentRating: []string{"safe"},
			Order:         []Order{Desc("followedCount")},
		}

		u, err := p.Endpoint().URL("https://api.example.org")
		So(err, ShouldBeNil)
		So(u, ShouldEqual, "https://api.example.org/manga?title=komi&limit=5&includes[]=author&includes[]=artist&contentRating[]=safe&order[followedCount]=desc")
	})
}
