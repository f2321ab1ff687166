package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tonymushah/mangadex-api-sub002/api"
	"github.com/tonymushah/mangadex-api-sub002/key"
	"github.com/tonymushah/mangadex-api-sub002/mangadex"
	"github.com/tonymushah/mangadex-api-sub002/style"
)

func init() {
	rootCmd.AddCommand(tagsCmd)
	tagsCmd.Flags().StringP("group", "g", "", "Only list tags of this group (genre, theme, format, content)")
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List manga tags",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		tags, err := mangadex.CachedTags(cmd.Context(), apiClient())
		handleErr(err)

		group := lo.Must(cmd.Flags().GetString("group"))
		langs := viper.GetStringSlice(key.SearchLanguages)

		grouped := lo.GroupBy(tags, func(t mangadex.Tag) string {
			return t.Attributes.Group
		})
		groups := lo.Keys(grouped)
		slices.Sort(groups)

		for _, g := range groups {
			if group != "" && g != group {
				continue
			}

			fmt.Println(style.New().Bold(true).Foreground(style.AccentColor).Render(g))

			names := lo.Map(grouped[g], func(t mangadex.Tag, _ int) string {
				return fmt.Sprintf("  %s %s", t.Attributes.Name.Get(langs...), style.Faint(t.ID))
			})
			slices.Sort(names)
			fmt.Println(strings.Join(names, "\n"))
		}
	},
}

// resolveTags maps tag names to ids. Ids are passed through untouched.
func resolveTags(cmd *cobra.Command, client *api.Client, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	tags, err := mangadex.CachedTags(cmd.Context(), client)
	if err != nil {
		return nil, err
	}
	return matchTags(tags, names)
}

func matchTags(tags []mangadex.Tag, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		if _, err := uuid.Parse(name); err == nil {
			ids = append(ids, name)
			continue
		}

		tag, ok := lo.Find(tags, func(t mangadex.Tag) bool {
			return lo.SomeBy(lo.Values(t.Attributes.Name), func(n string) bool {
				return strings.EqualFold(n, name)
			})
		})
		if !ok {
			return nil, fmt.Errorf("unknown tag %s", style.Fg(style.ErrorColor)(name))
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}
