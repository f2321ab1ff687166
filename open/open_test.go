package open

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCommand(t *testing.T) {
	Convey("command should pick the platform handler", t, func() {
		cmd, ok := command("linux", "https://mangadex.org/title/x")
		So(ok, ShouldBeTrue)
		So(cmd.Args, ShouldResemble, []string{"xdg-open", "https://mangadex.org/title/x"})

		cmd, ok = command("darwin", "u")
		So(ok, ShouldBeTrue)
		So(cmd.Args[0], ShouldEqual, "open")

		_, ok = command("plan9", "u")
		So(ok, ShouldBeFalse)
	})
}
