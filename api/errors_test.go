package api

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestError(t *testing.T) {
	Convey("Given API errors", t, func() {
		Convey("Sentinels should match by kind", func() {
			err := fmt.Errorf("wrapped: %w", newUnauthenticated(errors.New("no session token")))
			So(errors.Is(err, ErrUnauthenticated), ShouldBeTrue)
			So(errors.Is(err, ErrRateLimited), ShouldBeFalse)
		})

		Convey("HTTP errors should list the API error array", func() {
			err := NewHTTPError(404, []byte(`{"result":"error","errors":[{"id":"x","status":404,"title":"Not found","detail":"Manga could not be found"}]}`))
			So(err.Errors, ShouldHaveLength, 1)
			So(err.Error(), ShouldEqual, "http 404: Not found: Manga could not be found")
			So(IsStatus(err, 404), ShouldBeTrue)
		})

		Convey("HTTP errors without an error array should still describe the status", func() {
			err := NewHTTPError(502, []byte("<html>bad gateway</html>"))
			So(err.Errors, ShouldBeEmpty)
			So(err.Error(), ShouldEqual, "http 502")
		})

		Convey("Rate limit errors should mention the delay", func() {
			err := &Error{Kind: KindRateLimited, RetryAfter: mo.Some(3 * time.Second)}
			So(err.Error(), ShouldEqual, "rate limited, retry after 3s")
		})

		Convey("Validation errors should name the field", func() {
			So(NewValidation("password", "too short").Error(), ShouldEqual, "invalid password: too short")
		})

		Convey("Decode errors should keep the raw body", func() {
			err := newDecode(errors.New("unexpected end"), []byte("{"))
			So(string(err.Body), ShouldEqual, "{")
			So(errors.Unwrap(err), ShouldNotBeNil)
		})

		Convey("Transport errors should detect deadlines", func() {
			So(NewTransportError(context.DeadlineExceeded).Timeout(), ShouldBeTrue)
			So(NewTransportError(errors.New("connection reset")).Timeout(), ShouldBeFalse)
			So(NewValidation("a", "b").Timeout(), ShouldBeFalse)
		})

		Convey("Kinds should have names", func() {
			So(KindRateLimited.String(), ShouldEqual, "rate limited")
			So(AuthRequired.String(), ShouldEqual, "required")
		})
	})
}
