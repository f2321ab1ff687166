package cmd

import (
	"net/http"
	"sync"
	"time"

	"github.com/spf13/viper"
	"github.com/tonymushah/mangadex-api-sub002/api"
	"github.com/tonymushah/mangadex-api-sub002/auth"
	"github.com/tonymushah/mangadex-api-sub002/credentials"
	"github.com/tonymushah/mangadex-api-sub002/download"
	"github.com/tonymushah/mangadex-api-sub002/key"
	"github.com/tonymushah/mangadex-api-sub002/log"
	"github.com/tonymushah/mangadex-api-sub002/network"
	"github.com/tonymushah/mangadex-api-sub002/ratelimit"
)

var (
	httpClient = sync.OnceValue(func() *http.Client {
		client, err := network.New(network.OptionsFromConfig())
		if err != nil {
			handleErr(err)
		}
		return client
	})

	apiClient = sync.OnceValue(func() *api.Client {
		return api.NewClient(clientOptions(httpClient(), newStore()))
	})
)

// clientOptions maps the configuration onto api options.
func clientOptions(httpClient *http.Client, store *credentials.Store) api.Options {
	return api.Options{
		BaseURL:    viper.GetString(key.APIBaseURL),
		AuthURL:    viper.GetString(key.APIAuthURL),
		HTTPClient: httpClient,
		Store:      store,
		RateLimit: ratelimit.Config{
			LimitHeader:      viper.GetString(key.RateLimitLimitHeader),
			RemainingHeader:  viper.GetString(key.RateLimitRemainingHeader),
			ResetHeader:      viper.GetString(key.RateLimitResetHeader),
			RetryAfterHeader: viper.GetString(key.RateLimitRetryAfterHeader),
		},
		UserAgent:      viper.GetString(key.APIUserAgent),
		RefreshTimeout: time.Duration(viper.GetInt(key.APITimeout)) * time.Second,
	}
}

// newStore seeds the credential store from the keyring and mirrors every change back when auth.remember is set.
func newStore() *credentials.Store {
	opts := []credentials.Option{}

	if viper.GetBool(key.AuthRemember) {
		saved, err := auth.Load()
		if err != nil {
			log.Warnf("load credentials: %v", err)
		}
		if c, ok := saved.Get(); ok {
			opts = append(opts, credentials.WithCredentials(c))
		}
		opts = append(opts, credentials.WithObserver(auth.Observer()))
	}

	return credentials.NewStore(opts...)
}

func newDownloader(dataSaver bool) *download.Downloader {
	quality := download.QualityData
	if dataSaver {
		quality = download.QualityDataSaver
	}
	return download.New(apiClient(), download.Options{
		Report:       viper.GetBool(key.DownloadReport),
		ForcePort443: viper.GetBool(key.DownloadForcePort443),
		Quality:      quality,
	})
}
