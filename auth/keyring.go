// Package auth persists the client session in the system keyring between runs.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/mo"
	"github.com/tonymushah/mangadex-api-sub002/constant"
	"github.com/tonymushah/mangadex-api-sub002/credentials"
	"github.com/tonymushah/mangadex-api-sub002/log"
	"github.com/zalando/go-keyring"
)

const (
	service = constant.App + "-cli"
	user    = "session"
)

// Save stores the credentials snapshot.
func Save(c credentials.Credentials) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	return keyring.Set(service, user, string(data))
}

// Load returns the stored snapshot, or None when nothing was saved.
func Load() (mo.Option[credentials.Credentials], error) {
	data, err := keyring.Get(service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return mo.None[credentials.Credentials](), nil
	}
	if err != nil {
		return mo.None[credentials.Credentials](), err
	}

	var c credentials.Credentials
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return mo.None[credentials.Credentials](), fmt.Errorf("decode credentials: %w", err)
	}
	if c.IsZero() {
		return mo.None[credentials.Credentials](), nil
	}
	return mo.Some(c), nil
}

// Delete forgets the stored snapshot. Deleting nothing is not an error.
func Delete() error {
	if err := keyring.Delete(service, user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// Observer mirrors every store mutation into the keyring, so refreshed tokens survive restarts.
func Observer() credentials.Observer {
	return func(c mo.Option[credentials.Credentials]) {
		var err error
		if value, ok := c.Get(); ok {
			err = Save(value)
		} else {
			err = Delete()
		}
		if err != nil {
			log.Warnf("persist credentials: %v", err)
		}
	}
}
