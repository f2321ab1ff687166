// Package config registers every setting with its default and loads the TOML file and MANGADEX_* environment on top.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tonymushah/mangadex-api-sub002/constant"
	"github.com/tonymushah/mangadex-api-sub002/filesystem"
	"github.com/tonymushah/mangadex-api-sub002/icon"
	"github.com/tonymushah/mangadex-api-sub002/key"
	"github.com/tonymushah/mangadex-api-sub002/where"
)

// EnvKeyReplacer maps dotted keys to environment names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// maxPageSize is the largest limit the API accepts on list endpoints.
const maxPageSize = 100

// Setup loads defaults, environment and the config file, then validates the result.
// A missing config file is not an error.
func Setup() error {
	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	var notFound viper.ConfigFileNotFoundError
	if err := viper.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return err
	}

	return Validate()
}

// Validate rejects values the client cannot work with.
func Validate() error {
	var errs []error

	if viper.GetInt(key.APITimeout) < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", key.APITimeout))
	}
	if viper.GetFloat64(key.APIRequestsPerSecond) < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", key.APIRequestsPerSecond))
	}
	if limit := viper.GetInt(key.SearchLimit); limit < 1 || limit > maxPageSize {
		errs = append(errs, fmt.Errorf("%s must be between 1 and %d", key.SearchLimit, maxPageSize))
	}
	if proxy := viper.GetString(key.APIProxy); proxy != "" {
		if u, err := url.Parse(proxy); err != nil || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s is not a valid URL: %q", key.APIProxy, proxy))
		}
	}
	if _, err := logrus.ParseLevel(viper.GetString(key.LogsLevel)); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", key.LogsLevel, err))
	}
	if variant := viper.GetString(key.IconsVariant); !lo.Contains(icon.AvailableVariants(), variant) {
		errs = append(errs, fmt.Errorf("%s must be one of %s", key.IconsVariant, strings.Join(icon.AvailableVariants(), ", ")))
	}

	return errors.Join(errs...)
}
