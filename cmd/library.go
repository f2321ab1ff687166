package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tonymushah/mangadex-api-sub002/key"
	"github.com/tonymushah/mangadex-api-sub002/mangadex"
	"github.com/tonymushah/mangadex-api-sub002/style"
)

func init() {
	rootCmd.AddCommand(followCmd, unfollowCmd, followsCmd, rateCmd)

	followsCmd.Flags().IntP("limit", "l", 10, "Maximum number of manga")
	followsCmd.Flags().Int("offset", 0, "Number of manga to skip")

	rateCmd.Flags().Bool("delete", false, "Remove the rating instead")
}

var followCmd = &cobra.Command{
	Use:   "follow <manga-id>",
	Short: "Follow a manga",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(mangadex.FollowManga(cmd.Context(), apiClient(), args[0]))
		success("following %s", style.Fg(style.SecondaryColor)(args[0]))
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <manga-id>",
	Short: "Stop following a manga",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(mangadex.UnfollowManga(cmd.Context(), apiClient(), args[0]))
		success("unfollowed %s", style.Fg(style.SecondaryColor)(args[0]))
	},
}

var followsCmd = &cobra.Command{
	Use:   "follows",
	Short: "List followed manga",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		page, err := mangadex.FollowedManga(
			cmd.Context(),
			apiClient(),
			lo.Must(cmd.Flags().GetInt("limit")),
			lo.Must(cmd.Flags().GetInt("offset")),
		)
		handleErr(err)

		langs := viper.GetStringSlice(key.SearchLanguages)
		for i, m := range page.Data {
			printMangaLine(m, langs)
			if i < len(page.Data)-1 {
				fmt.Println()
			}
		}
		if page.HasMore() {
			fmt.Printf("\n%s\n", style.Faint(fmt.Sprintf("more with --offset %d", page.Offset+len(page.Data))))
		}
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate <manga-id> [1-10]",
	Short: "Rate a manga or remove the rating",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]

		if lo.Must(cmd.Flags().GetBool("delete")) {
			handleErr(mangadex.DeleteRating(cmd.Context(), apiClient(), id))
			success("removed rating of %s", style.Fg(style.SecondaryColor)(id))
			return
		}

		if len(args) < 2 {
			handleErr(errors.New("rating is required unless --delete is set"))
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			handleErr(fmt.Errorf("invalid rating %q", args[1]))
		}

		handleErr(mangadex.SetRating(cmd.Context(), apiClient(), id, rating))
		success("rated %s %s", style.Fg(style.SecondaryColor)(id), style.Bold(fmt.Sprintf("%d/10", rating)))
	},
}
