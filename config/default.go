package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/tonymushah/mangadex-api-sub002/constant"
	"github.com/tonymushah/mangadex-api-sub002/key"
	"github.com/tonymushah/mangadex-api-sub002/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.TypeName(),
	})
}

// TypeName returns the name of the field's underlying value type.
func (f *Field) TypeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.APIBaseURL, constant.APIURL, "Base URL of the MangaDex API")
	register(key.APIAuthURL, constant.AuthURL, "OpenID Connect token endpoint used for personal client logins")
	register(key.APITimeout, 30, "HTTP timeout in seconds.\nSet to 0 to disable")
	register(key.APIUserAgent, constant.UserAgent, "User agent sent with every request")
	register(key.APIRequestsPerSecond, 0.0, "Client side request pacing.\nSet to 0 to disable, the server quota still applies")
	register(key.APIProxy, "", "Proxy URL. Supports http, https and socks5 schemes")
	register(key.RateLimitLimitHeader, "X-RateLimit-Limit", "Response header carrying the request quota")
	register(key.RateLimitRemainingHeader, "X-RateLimit-Remaining", "Response header carrying the remaining request count")
	register(key.RateLimitResetHeader, "X-RateLimit-Retry-After", "Response header carrying the quota reset time as a unix timestamp")
	register(key.RateLimitRetryAfterHeader, "Retry-After", "Response header carrying the retry delay in seconds")
	register(key.AuthClientID, "", "Personal API client id.\nWhen set, login goes through the OAuth token endpoint")
	register(key.AuthClientSecret, "", "Personal API client secret")
	register(key.AuthRemember, true, "Persist the session in the system keyring")
	register(key.DownloadDataSaver, false, "Download compressed data-saver pages")
	register(key.DownloadReport, true, "Report page fetch outcomes to the @Home network")
	register(key.DownloadForcePort443, false, "Ask for an @Home server listening on port 443")
	register(key.DownloadPath, "", "Directory chapters are saved to.\nEmpty means the platform downloads directory")
	register(key.SearchLimit, 10, "Limit of search results to show")
	register(key.SearchLanguages, []string{"en"}, "Preferred languages for titles and chapter feeds")
	register(key.SearchContentRating, []string{"safe", "suggestive"}, "Content ratings included in searches")
	register(key.SearchShowQuerySuggestions, true, "Show query suggestions when searching")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(style.Mauve),
	"blue":     style.Fg(style.Blue),
	"cyan":     style.Fg(style.Teal),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(style.Green)(b)
			}
			return style.Fg(style.Red)(b)
		case string:
			return style.Fg(style.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
