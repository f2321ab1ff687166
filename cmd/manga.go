package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tonymushah/mangadex-api-sub002/api"
	"github.com/tonymushah/mangadex-api-sub002/constant"
	"github.com/tonymushah/mangadex-api-sub002/icon"
	"github.com/tonymushah/mangadex-api-sub002/key"
	"github.com/tonymushah/mangadex-api-sub002/log"
	"github.com/tonymushah/mangadex-api-sub002/mangadex"
	"github.com/tonymushah/mangadex-api-sub002/open"
	"github.com/tonymushah/mangadex-api-sub002/style"
	"github.com/tonymushah/mangadex-api-sub002/util"
)

func init() {
	rootCmd.AddCommand(mangaCmd)
	mangaCmd.Flags().BoolP("open", "o", false, "Open the manga page in the browser")
}

var mangaCmd = &cobra.Command{
	Use:   "manga <id>",
	Short: "Show details of a manga",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]

		if lo.Must(cmd.Flags().GetBool("open")) {
			handleErr(open.Start(constant.SiteURL + "/title/" + id))
			return
		}

		client := apiClient()
		langs := viper.GetStringSlice(key.SearchLanguages)

		m, err := mangadex.CachedManga(cmd.Context(), client, id, "author", "artist", "cover_art")
		handleErr(err)

		printMangaLine(m, langs)

		width := util.Min(util.TerminalWidth(80), 100)
		if description := m.Attributes.Description.Get(langs...); description != "" {
			fmt.Println()
			fmt.Println(util.Wrap(description, width))
		}

		if tags := lo.Map(m.Attributes.Tags, func(t mangadex.Tag, _ int) string {
			return t.Attributes.Name.Get(langs...)
		}); len(tags) > 0 {
			fmt.Println()
			fmt.Println(util.Wrap(style.Fg(style.SecondaryColor)(strings.Join(tags, ", ")), width))
		}

		if cover, ok := mangadex.CoverURL(constant.UploadsURL, m); ok {
			fmt.Printf("\n%s %s\n", style.Faint("cover"), cover)
		}

		stats, err := mangadex.MangaStatistics(cmd.Context(), client, id)
		if err != nil {
			log.Warnf("statistics of %s: %v", id, err)
		} else {
			fmt.Printf(
				"%s %.2f  %s %d\n",
				icon.Get(icon.Rating), stats.Rating.Bayesian,
				icon.Get(icon.Follow), stats.Follows,
			)
		}

		if client.Credentials().Session().IsAbsent() {
			return
		}

		following, err := mangadex.IsFollowingManga(cmd.Context(), client, id)
		if err != nil {
			log.Warnf("follow status of %s: %v", id, err)
			return
		}
		ratings, err := mangadex.Ratings(cmd.Context(), client, id)
		if err != nil {
			log.Warnf("rating of %s: %v", id, err)
			return
		}

		line := style.Faint("not following")
		if following {
			line = style.Fg(style.SuccessColor)("following")
		}
		if r, ok := ratings[id]; ok {
			line += style.Faint(fmt.Sprintf(" · rated %d/10", r.Rating))
		}
		fmt.Println(line)
	},
}

func init() {
	rootCmd.AddCommand(chaptersCmd)
	chaptersCmd.Flags().StringSlice("lang", nil, "Translated languages, defaults to "+key.SearchLanguages)
	chaptersCmd.Flags().IntP("limit", "l", 100, "Maximum number of chapters")
	chaptersCmd.Flags().Int("offset", 0, "Number of chapters to skip")
	chaptersCmd.Flags().Bool("read", false, "Mark read chapters, requires login")
}

var chaptersCmd = &cobra.Command{
	Use:   "chapters <manga-id>",
	Short: "List the chapters of a manga",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		langs := lo.Must(cmd.Flags().GetStringSlice("lang"))
		if len(langs) == 0 {
			langs = viper.GetStringSlice(key.SearchLanguages)
		}

		client := apiClient()
		feed, err := mangadex.MangaFeed(cmd.Context(), client, id, mangadex.FeedParams{
			Limit:              lo.Must(cmd.Flags().GetInt("limit")),
			Offset:             lo.Must(cmd.Flags().GetInt("offset")),
			TranslatedLanguage: langs,
			ContentRating:      viper.GetStringSlice(key.SearchContentRating),
			Order:              []mangadex.Order{mangadex.Asc("volume"), mangadex.Asc("chapter")},
		})
		handleErr(err)

		read := map[string]struct{}{}
		if lo.Must(cmd.Flags().GetBool("read")) {
			markers, err := mangadex.ReadMarkers(cmd.Context(), client, id)
			if api.IsKind(err, api.KindUnauthenticated) {
				handleErr(fmt.Errorf("--read needs a session: %w", err))
			}
			handleErr(err)
			read = lo.Keyify(markers)
		}

		for _, ch := range feed.Data {
			fmt.Println(chapterLine(ch, read))
		}

		fmt.Printf("\n%s\n", style.Faint(fmt.Sprintf(
			"%s of %d",
			util.Quantify(len(feed.Data), "chapter", "chapters"),
			feed.Total,
		)))
	},
}

func chapterLine(ch mangadex.Chapter, read map[string]struct{}) string {
	a := ch.Attributes

	var b strings.Builder
	if a.Volume != "" {
		b.WriteString("Vol." + a.Volume + " ")
	}
	if a.Chapter != "" {
		b.WriteString("Ch." + a.Chapter)
	} else {
		b.WriteString("Oneshot")
	}
	if a.Title != "" {
		b.WriteString(" - " + a.Title)
	}

	mark := " "
	if _, ok := read[ch.ID]; ok {
		mark = style.Fg(style.SuccessColor)(icon.Get(icon.Success))
	}

	return fmt.Sprintf(
		"%s %s %s %s",
		mark,
		style.Fg(style.SecondaryColor)(ch.ID),
		style.Faint("["+a.TranslatedLanguage+"]"),
		b.String(),
	)
}

// chapterDirName names the directory a chapter is saved in.
func chapterDirName(ch mangadex.Chapter) string {
	a := ch.Attributes
	name := lo.Ternary(a.Chapter != "", "Ch."+a.Chapter, "Oneshot")
	if a.Volume != "" {
		name = "Vol." + a.Volume + " " + name
	}
	if a.Title != "" {
		name += " " + a.Title
	}
	if sanitized := util.SanitizeFilename(name); sanitized != "" {
		return sanitized
	}
	return ch.ID
}
