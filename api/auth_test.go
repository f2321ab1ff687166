package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/tonymushah/mangadex-api-sub002/credentials"
)

func TestLogin(t *testing.T) {
	Convey("Given a login endpoint", t, func() {
		var (
			calls    atomic.Int32
			username atomic.Value
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			var params LoginParams
			_ = json.NewDecoder(r.Body).Decode(&params)
			username.Store(params.Username)
			writeJSON(w, 200, map[string]any{"result": "ok", "token": map[string]string{"session": "s1", "refresh": "r1"}})
		}))
		defer server.Close()

		store := credentials.NewStore()
		client := newTestClient(server, store)

		Convey("Valid credentials should populate the store", func() {
			tokens, err := client.Login(context.Background(), LoginParams{Username: "validuser", Password: "longenough1"})

			So(err, ShouldBeNil)
			So(tokens.Session, ShouldEqual, "s1")
			So(store.Session().OrEmpty(), ShouldEqual, "s1")
			So(store.Get().MustGet().Refresh.OrEmpty(), ShouldEqual, "r1")
			So(username.Load(), ShouldEqual, "validuser")
		})

		Convey("A short password should be rejected before any call", func() {
			_, err := client.Login(context.Background(), LoginParams{Username: "validuser", Password: "short"})

			So(IsKind(err, KindValidation), ShouldBeTrue)
			e, _ := AsError(err)
			So(e.Field, ShouldEqual, "password")
			So(calls.Load(), ShouldEqual, 0)
			So(store.Get().IsAbsent(), ShouldBeTrue)
		})

		Convey("A long username should be rejected", func() {
			_, err := client.Login(context.Background(), LoginParams{Username: strings.Repeat("u", 65), Password: "longenough1"})
			So(IsKind(err, KindValidation), ShouldBeTrue)
			So(calls.Load(), ShouldEqual, 0)
		})

		Convey("Missing username and email should be rejected", func() {
			_, err := client.Login(context.Background(), LoginParams{Password: "longenough1"})
			So(IsKind(err, KindValidation), ShouldBeTrue)
		})

		Convey("An email should be accepted instead of a username", func() {
			_, err := client.Login(context.Background(), LoginParams{Email: "me@example.org", Password: "longenough1"})
			So(err, ShouldBeNil)
			So(calls.Load(), ShouldEqual, 1)
		})
	})

	Convey("Given a store still holding a personal client identity", t, func() {
		var legacy, oidc atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/auth/login":
				writeJSON(w, 200, map[string]any{"result": "ok", "token": map[string]string{"session": "s1", "refresh": "r1"}})
			case "/auth/refresh":
				legacy.Add(1)
				writeJSON(w, 200, map[string]any{"result": "ok", "token": map[string]string{"session": "s2", "refresh": "r2"}})
			case oauthTokenPath:
				oidc.Add(1)
				writeJSON(w, 400, map[string]any{"error": "invalid_grant"})
			default:
				if r.Header.Get("Authorization") != "Bearer s2" {
					writeJSON(w, 401, map[string]any{"result": "error"})
					return
				}
				writeJSON(w, 200, okPayload{Result: "ok", Value: 1})
			}
		}))
		defer server.Close()

		store := credentials.NewStore()
		store.SetClient("personal-client", "secret")
		client := newTestClient(server, store)

		_, err := client.Login(context.Background(), LoginParams{Username: "validuser", Password: "longenough1"})
		So(err, ShouldBeNil)

		Convey("The client identity should be dropped", func() {
			So(store.Get().MustGet().HasClient(), ShouldBeFalse)
		})

		Convey("An expired session should renew through the legacy flow", func() {
			res, err := Execute[okPayload](context.Background(), client, Get("/protected").WithAuth(AuthRequired))

			So(err, ShouldBeNil)
			So(res.Data.Value, ShouldEqual, 1)
			So(legacy.Load(), ShouldEqual, 1)
			So(oidc.Load(), ShouldEqual, 0)

			c := store.Get().MustGet()
			So(c.Session.OrEmpty(), ShouldEqual, "s2")
			So(c.ClientID.IsAbsent(), ShouldBeTrue)
		})
	})

	Convey("Given a login endpoint rejecting the password", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 401, map[string]any{"result": "error", "errors": []map[string]any{{"status": 401, "title": "Invalid credentials"}}})
		}))
		defer server.Close()

		store := credentials.NewStore()
		_, err := newTestClient(server, store).Login(context.Background(), LoginParams{Username: "validuser", Password: "longenough1"})

		So(IsKind(err, KindUnauthenticated), ShouldBeTrue)
		So(store.Get().IsAbsent(), ShouldBeTrue)
	})
}

func TestLoginOAuth(t *testing.T) {
	Convey("Given a token endpoint", t, func() {
		var form atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseForm()
			form.Store(r.PostForm)
			writeJSON(w, 200, map[string]any{"access_token": "a1", "refresh_token": "o1", "expires_in": 900, "token_type": "Bearer"})
		}))
		defer server.Close()

		store := credentials.NewStore()
		client := newTestClient(server, store)

		Convey("The password grant should store tokens and client identity", func() {
			tokens, err := client.LoginOAuth(context.Background(), OAuthParams{
				Username: "validuser", Password: "longenough1", ClientID: "personal-client", ClientSecret: "secret",
			})

			So(err, ShouldBeNil)
			So(tokens.Session, ShouldEqual, "a1")

			c := store.Get().MustGet()
			So(c.Session.OrEmpty(), ShouldEqual, "a1")
			So(c.Refresh.OrEmpty(), ShouldEqual, "o1")
			So(c.ClientID.OrEmpty(), ShouldEqual, "personal-client")
			So(c.ExpiresAt.IsPresent(), ShouldBeTrue)

			sent := form.Load().(url.Values)
			So(sent.Get("grant_type"), ShouldEqual, "password")
			So(sent.Get("client_secret"), ShouldEqual, "secret")
		})

		Convey("A missing client id should be rejected", func() {
			_, err := client.LoginOAuth(context.Background(), OAuthParams{Username: "u", Password: "p", ClientSecret: "s"})
			So(IsKind(err, KindValidation), ShouldBeTrue)
			So(form.Load(), ShouldBeNil)
		})
	})
}

func TestLogout(t *testing.T) {
	Convey("Given a logged in legacy session", t, func() {
		var (
			calls atomic.Int32
			auth  atomic.Value
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			auth.Store(r.Header.Get("Authorization"))
			writeJSON(w, 200, map[string]string{"result": "ok"})
		}))
		defer server.Close()

		store := tokenStore("s1", "r1")
		err := newTestClient(server, store).Logout(context.Background())

		So(err, ShouldBeNil)
		So(calls.Load(), ShouldEqual, 1)
		So(auth.Load(), ShouldEqual, "Bearer s1")
		So(store.Get().IsAbsent(), ShouldBeTrue)
	})

	Convey("Given an OAuth session", t, func() {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		store := credentials.NewStore(credentials.WithCredentials(credentials.Credentials{
			Session:  mo.Some("a1"),
			ClientID: mo.Some("personal-client"),
		}))
		err := newTestClient(server, store).Logout(context.Background())

		So(err, ShouldBeNil)
		So(calls.Load(), ShouldEqual, 0)
		So(store.Session().IsAbsent(), ShouldBeTrue)
		So(store.Get().MustGet().ClientID.OrEmpty(), ShouldEqual, "personal-client")
	})

	Convey("Given no session", t, func() {
		So(NewClient(Options{}).Logout(context.Background()), ShouldBeNil)
	})
}

func TestCheckToken(t *testing.T) {
	Convey("Given an auth check endpoint", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authenticated := r.Header.Get("Authorization") == "Bearer s1"
			writeJSON(w, 200, map[string]any{"result": "ok", "isAuthenticated": authenticated, "roles": []string{"ROLE_USER"}})
		}))
		defer server.Close()

		Convey("A valid session should be reported as authenticated", func() {
			check, err := newTestClient(server, tokenStore("s1", "r1")).CheckToken(context.Background())
			So(err, ShouldBeNil)
			So(check.IsAuthenticated, ShouldBeTrue)
			So(check.Roles, ShouldContain, "ROLE_USER")
		})

		Convey("An anonymous client should still get an answer", func() {
			check, err := newTestClient(server, nil).CheckToken(context.Background())
			So(err, ShouldBeNil)
			So(check.IsAuthenticated, ShouldBeFalse)
		})
	})

	Convey("Given an explicit refresh", t, func() {
		a := &authServer{next: "s2"}
		a.valid.Store("s2")
		server := httptest.NewServer(a.handler())
		defer server.Close()

		store := tokenStore("s1", "r1")
		session, err := newTestClient(server, store).Refresh(context.Background())

		So(err, ShouldBeNil)
		So(session, ShouldEqual, "s2")
		So(store.Session().OrEmpty(), ShouldEqual, "s2")
		So(a.refreshes.Load(), ShouldEqual, 1)
	})
}
