package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tonymushah/mangadex-api-sub002/icon"
	"github.com/tonymushah/mangadex-api-sub002/key"
	"github.com/tonymushah/mangadex-api-sub002/log"
	"github.com/tonymushah/mangadex-api-sub002/mangadex"
	"github.com/tonymushah/mangadex-api-sub002/query"
	"github.com/tonymushah/mangadex-api-sub002/style"
	"github.com/tonymushah/mangadex-api-sub002/util"
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolP("json", "j", false, "Print the raw response as JSON")
	searchCmd.Flags().IntP("limit", "l", 0, "Maximum number of results, defaults to "+key.SearchLimit)
	searchCmd.Flags().Int("offset", 0, "Number of results to skip")
	searchCmd.Flags().StringSlice("lang", nil, "Translated languages, defaults to "+key.SearchLanguages)
	searchCmd.Flags().StringSlice("rating", nil, "Content ratings, defaults to "+key.SearchContentRating)
	searchCmd.Flags().StringSlice("tag", nil, "Tag names or ids the manga must have")
}

var searchCmd = &cobra.Command{
	Use:   "search <title>",
	Short: "Search manga by title",
	Args:  cobra.MinimumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	},
	Run: func(cmd *cobra.Command, args []string) {
		title := strings.Join(args, " ")

		limit := lo.Must(cmd.Flags().GetInt("limit"))
		if limit <= 0 {
			limit = viper.GetInt(key.SearchLimit)
		}
		langs := lo.Must(cmd.Flags().GetStringSlice("lang"))
		if len(langs) == 0 {
			langs = viper.GetStringSlice(key.SearchLanguages)
		}
		ratings := lo.Must(cmd.Flags().GetStringSlice("rating"))
		if len(ratings) == 0 {
			ratings = viper.GetStringSlice(key.SearchContentRating)
		}

		client := apiClient()

		tags, err := resolveTags(cmd, client, lo.Must(cmd.Flags().GetStringSlice("tag")))
		handleErr(err)

		erase := util.PrintErasable(fmt.Sprintf("%s Searching %s...", icon.Get(icon.Progress), style.Fg(style.AccentColor)(title)))
		result, err := mangadex.SearchManga(cmd.Context(), client, mangadex.MangaSearchParams{
			Title:                       title,
			Limit:                       limit,
			Offset:                      lo.Must(cmd.Flags().GetInt("offset")),
			Includes:                    []string{"author", "artist"},
			ContentRating:               ratings,
			AvailableTranslatedLanguage: langs,
			IncludedTags:                tags,
			Order:                       []mangadex.Order{mangadex.Desc("relevance")},
		})
		erase()
		handleErr(err)

		if err := query.Remember(title, 1); err != nil {
			log.Warnf("remember query: %v", err)
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(os.Stdout).Encode(result))
			return
		}

		if len(result.Data) == 0 {
			fmt.Printf("%s No manga found for %s\n", icon.Get(icon.Search), style.Fg(style.WarningColor)(title))
			return
		}

		for i, m := range result.Data {
			printMangaLine(m, langs)
			if i < len(result.Data)-1 {
				fmt.Println()
			}
		}

		fmt.Printf("\n%s\n", style.Faint(fmt.Sprintf(
			"%s of %d",
			util.Quantify(len(result.Data), "result", "results"),
			result.Total,
		)))
	},
}

func printMangaLine(m mangadex.Manga, langs []string) {
	header := style.Bold(m.Attributes.DisplayTitle(langs...))
	if m.Attributes.Year > 0 {
		header += " " + style.Faint(fmt.Sprintf("(%d)", m.Attributes.Year))
	}

	fmt.Println(header)
	fmt.Println(style.Fg(style.SecondaryColor)(m.ID))

	details := lo.Compact([]string{
		strings.Join(mangadex.Authors(m), ", "),
		m.Attributes.Status,
		m.Attributes.ContentRating,
	})
	if len(details) > 0 {
		fmt.Println(style.Faint(strings.Join(details, " · ")))
	}
}
