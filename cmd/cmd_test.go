package cmd

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/tonymushah/mangadex-api-sub002/config"
	"github.com/tonymushah/mangadex-api-sub002/credentials"
	"github.com/tonymushah/mangadex-api-sub002/key"
	"github.com/tonymushah/mangadex-api-sub002/mangadex"
	"github.com/tonymushah/mangadex-api-sub002/where"
)

func TestDidYouMean(t *testing.T) {
	Convey("Given an unknown config key", t, func() {
		err := errUnknownKey("search.limt")

		Convey("The error should name the closest known key", func() {
			So(err.Error(), ShouldContainSubstring, "search.limt")
			So(err.Error(), ShouldContainSubstring, key.SearchLimit)
		})
	})

	Convey("Without candidates only the value is reported", t, func() {
		So(didYouMean("target", "x", nil).Error(), ShouldNotContainSubstring, "did you mean")
	})
}

func TestParseValue(t *testing.T) {
	Convey("parseValue should follow the type of the default", t, func() {
		v, err := parseValue(key.SearchLimit, []string{"25"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 25)

		v, err = parseValue(key.APIRequestsPerSecond, []string{"2.5"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 2.5)

		v, err = parseValue(key.DownloadDataSaver, []string{"true"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, true)

		v, err = parseValue(key.SearchLanguages, []string{"en", "fr"})
		So(err, ShouldBeNil)
		So(v, ShouldResemble, []string{"en", "fr"})

		v, err = parseValue(key.APIProxy, []string{"socks5://localhost:1080"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, "socks5://localhost:1080")
	})

	Convey("parseValue should reject malformed values", t, func() {
		_, err := parseValue(key.SearchLimit, []string{"ten"})
		So(err, ShouldNotBeNil)

		_, err = parseValue(key.LogsWrite, []string{"maybe"})
		So(err, ShouldNotBeNil)

		_, err = parseValue("nope", []string{"1"})
		So(err, ShouldNotBeNil)

		_, err = parseValue(key.SearchLimit, nil)
		So(err, ShouldNotBeNil)
	})
}

func TestClientOptions(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		for k, field := range config.Default {
			viper.Set(k, field.Value)
		}

		store := credentials.NewStore()
		client := &http.Client{}
		opts := clientOptions(client, store)

		Convey("The api options should mirror it", func() {
			So(opts.BaseURL, ShouldEqual, viper.GetString(key.APIBaseURL))
			So(opts.HTTPClient, ShouldEqual, client)
			So(opts.Store, ShouldEqual, store)
			So(opts.RateLimit.RemainingHeader, ShouldEqual, "X-RateLimit-Remaining")
			So(opts.RateLimit.ResetHeader, ShouldEqual, "X-RateLimit-Retry-After")
			So(opts.RefreshTimeout, ShouldEqual, 30*time.Second)
		})

		Convey("Overridden header names should be used", func() {
			viper.Set(key.RateLimitRemainingHeader, "X-Quota-Left")
			So(clientOptions(client, store).RateLimit.RemainingHeader, ShouldEqual, "X-Quota-Left")
		})
	})
}

func TestMatchTags(t *testing.T) {
	tags := []mangadex.Tag{
		{ID: "423e2eae-a7a2-4a8b-ac03-a8351462d71d", Attributes: mangadex.TagAttributes{Name: mangadex.LocalizedString{"en": "Romance"}}},
		{ID: "4d32cc48-9f00-4cca-9b5a-a839f0764984", Attributes: mangadex.TagAttributes{Name: mangadex.LocalizedString{"en": "Comedy"}}},
	}

	Convey("Tag names should resolve case-insensitively", t, func() {
		ids, err := matchTags(tags, []string{"comedy", "ROMANCE"})
		So(err, ShouldBeNil)
		So(ids, ShouldResemble, []string{tags[1].ID, tags[0].ID})
	})

	Convey("Ids should pass through", t, func() {
		ids, err := matchTags(tags, []string{"b98c6e57-6d1f-4bf7-8b1f-6f6b1a5c2a11"})
		So(err, ShouldBeNil)
		So(ids, ShouldResemble, []string{"b98c6e57-6d1f-4bf7-8b1f-6f6b1a5c2a11"})
	})

	Convey("Unknown names should fail", t, func() {
		_, err := matchTags(tags, []string{"isekai"})
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "isekai")
	})
}

func TestChapterNames(t *testing.T) {
	Convey("Given a chapter", t, func() {
		ch := mangadex.Chapter{
			ID: "a54c491c-8e4c-4e97-8873-5b79e59da210",
			Attributes: mangadex.ChapterAttributes{
				Volume:             "2",
				Chapter:            "11",
				Title:              "The Date?",
				TranslatedLanguage: "en",
			},
		}

		Convey("The directory name should be sanitized", func() {
			So(chapterDirName(ch), ShouldEqual, "Vol.2_Ch.11_The_Date")
		})

		Convey("The list line should show the numbering", func() {
			line := chapterLine(ch, map[string]struct{}{})
			So(line, ShouldContainSubstring, "Vol.2 Ch.11 - The Date?")
			So(line, ShouldContainSubstring, "[en]")
		})

		Convey("A oneshot without numbers should still get a name", func() {
			ch.Attributes = mangadex.ChapterAttributes{}
			So(chapterDirName(ch), ShouldEqual, "Oneshot")
		})
	})
}

func TestSchema(t *testing.T) {
	Convey("Every schema target should reflect", t, func() {
		for name, target := range schemaTargets {
			data, err := json.Marshal(reflectSchema(target))
			So(err, ShouldBeNil)
			So(len(data), ShouldBeGreaterThan, 0)
			So(name, ShouldNotBeEmpty)
		}
	})

	Convey("Generic types should get readable names", t, func() {
		data, err := json.Marshal(reflectSchema(schemaTargets["search"]))
		So(err, ShouldBeNil)
		So(string(data), ShouldContainSubstring, "Entity_MangaAttributes")
		So(strings.Contains(string(data), "github.com"), ShouldBeFalse)
	})
}

func TestEnvNames(t *testing.T) {
	Convey("envNames should list prefixed variables once", t, func() {
		names := envNames()
		So(names, ShouldContain, "MANGADEX_API_PROXY")
		So(names, ShouldContain, where.EnvConfigPath)
		So(names, ShouldContain, "MANGADEX_RATELIMIT_REMAINING_HEADER")
	})
}
