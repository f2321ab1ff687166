// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// API Transport - these keys describe how the client reaches the MangaDex API.
const (
	APIBaseURL           = "api.base_url"
	APIAuthURL           = "api.auth_url"
	APITimeout           = "api.timeout"
	APIUserAgent         = "api.user_agent"
	APIRequestsPerSecond = "api.requests_per_second"
	APIProxy             = "api.proxy"
)

// Rate Limit Headers - the server dictates these names, so they stay configurable.
const (
	RateLimitLimitHeader      = "ratelimit.limit_header"
	RateLimitRemainingHeader  = "ratelimit.remaining_header"
	RateLimitResetHeader      = "ratelimit.reset_header"
	RateLimitRetryAfterHeader = "ratelimit.retry_after_header"
)

// Authentication - client identity for the OAuth flow and local persistence of the session.
const (
	AuthClientID     = "auth.client_id"
	AuthClientSecret = "auth.client_secret"
	AuthRemember     = "auth.remember"
)

// Chapter Downloads - these keys govern page retrieval from the @Home network.
const (
	DownloadDataSaver    = "download.data_saver"
	DownloadReport       = "download.report"
	DownloadForcePort443 = "download.force_port_443"
	DownloadPath         = "download.path"
)

// Search Discovery - defaults applied to manga searches.
const (
	SearchLimit                = "search.limit"
	SearchLanguages            = "search.languages"
	SearchContentRating        = "search.content_rating"
	SearchShowQuerySuggestions = "search.show_query_suggestions"
)

// Iconography
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
