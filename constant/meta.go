// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// App is the canonical application identifier used for filesystem paths and CLI branding.
	App = "mangadex"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// Repository is the GitHub owner/name releases are published under.
	Repository = "tonymushah/mangadex-api-sub002"

	// UserAgent identifies this client to the MangaDex API, which rejects requests with spoofed browser agents.
	UserAgent = App + "-go/" + Version
)

// Remote hosts used by the client.
const (
	APIURL     = "https://api.mangadex.org"
	AuthURL    = "https://auth.mangadex.org"
	SiteURL    = "https://mangadex.org"
	UploadsURL = "https://uploads.mangadex.org"
	ReportURL  = "https://api.mangadex.network/report"
)

// Build metadata, overridden through -ldflags.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
