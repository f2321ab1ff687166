package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/tonymushah/mangadex-api-sub002/auth"
	"github.com/tonymushah/mangadex-api-sub002/icon"
	"github.com/tonymushah/mangadex-api-sub002/mangadex"
	"github.com/tonymushah/mangadex-api-sub002/query"
	"github.com/tonymushah/mangadex-api-sub002/util"
	"github.com/tonymushah/mangadex-api-sub002/where"
)

type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	clear    func() error
}

var clearTargets = []clearTarget{
	{"cache directory", "cache", mo.Some("c"), func() error {
		if err := mangadex.ClearCache(); err != nil {
			return err
		}
		return util.Delete(where.Cache())
	}},
	{"queries history", "queries", mo.Some("q"), query.Forget},
	{"saved session", "session", mo.Some("s"), auth.Delete},
	{"temp directory", "temp", mo.None[string](), func() error {
		return util.Delete(where.Temp())
	}},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if short, ok := target.argShort.Get(); ok {
			clearCmd.Flags().BoolP(target.argLong, short, false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear caches and stored state",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}

			anyCleared = true
			e := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))
			err := target.clear()
			e()
			handleErr(err)
			fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), util.Capitalize(target.name))
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}
