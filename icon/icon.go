// Package icon renders status symbols in the variant picked with icons.variant.
package icon

import (
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/tonymushah/mangadex-api-sub002/key"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants returns every supported icon style.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

func (d *iconDef) in(variant string) string {
	switch variant {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return d.plain
	}
}

// variant returns the configured variant, plain when unknown.
func variant() string {
	if v := viper.GetString(key.IconsVariant); lo.Contains(AvailableVariants(), v) {
		return v
	}
	return plain
}

// Get returns the rendered symbol for i, or an empty string for an unregistered icon.
func Get(i Icon) string {
	d, ok := icons[i]
	if !ok {
		return ""
	}
	return d.in(variant())
}
