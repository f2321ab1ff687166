package util

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tonymushah/mangadex-api-sub002/filesystem"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		Convey("Should replace invalid chars", func() {
			So(SanitizeFilename("Kaguya-sama: Love is War?"), ShouldEqual, "Kaguya-sama_Love_is_War")
		})
		Convey("Should collapse underscores", func() {
			So(SanitizeFilename("vol__1"), ShouldEqual, "vol_1")
		})
		Convey("Should trim separators", func() {
			So(SanitizeFilename("-chapter-"), ShouldEqual, "chapter")
		})
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "page", "pages"), ShouldEqual, "1 page")
		So(Quantify(0, "page", "pages"), ShouldEqual, "0 pages")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("cache"), ShouldEqual, "Cache")
		So(Capitalize("ébène"), ShouldEqual, "Ébène")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestFormatBytes(t *testing.T) {
	Convey("FormatBytes", t, func() {
		So(FormatBytes(512), ShouldEqual, "512 B")
		So(FormatBytes(1536), ShouldEqual, "1.5 KiB")
		So(FormatBytes(3*1024*1024), ShouldEqual, "3.0 MiB")
	})
}

func TestWrap(t *testing.T) {
	Convey("Wrap should break long text into lines", t, func() {
		text := strings.Repeat("word ", 20)
		for _, line := range strings.Split(Wrap(text, 30), "\n") {
			So(len(strings.TrimSpace(line)), ShouldBeLessThanOrEqualTo, 30)
		}
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max and Min", t, func() {
		So(Max(3, 9, 1), ShouldEqual, 9)
		So(Min(3, 9, 1), ShouldEqual, 1)
		So(Max[int](), ShouldEqual, 0)
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete should remove directories recursively", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()
		So(fs.WriteFile("/tmp/chapter/001.png", []byte("x"), 0644), ShouldBeNil)

		So(Delete("/tmp/chapter"), ShouldBeNil)
		exists, _ := fs.Exists("/tmp/chapter")
		So(exists, ShouldBeFalse)

		So(Delete("/tmp/missing"), ShouldNotBeNil)
	})
}
