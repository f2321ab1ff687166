package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tonymushah/mangadex-api-sub002/download"
	"github.com/tonymushah/mangadex-api-sub002/icon"
	"github.com/tonymushah/mangadex-api-sub002/key"
	"github.com/tonymushah/mangadex-api-sub002/mangadex"
	"github.com/tonymushah/mangadex-api-sub002/style"
	"github.com/tonymushah/mangadex-api-sub002/util"
	"github.com/tonymushah/mangadex-api-sub002/where"
)

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringP("output", "o", "", "Directory to save into, defaults to "+key.DownloadPath)
	downloadCmd.Flags().BoolP("data-saver", "d", false, "Download compressed pages")
	downloadCmd.Flags().IntP("retries", "r", 1, "How many times failed pages are retried")
	downloadCmd.Flags().BoolP("quiet", "q", false, "Hide the progress bar")
}

var downloadCmd = &cobra.Command{
	Use:   "download <chapter-id>",
	Short: "Download the pages of a chapter",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		client := apiClient()

		chapter, err := mangadex.GetChapter(cmd.Context(), client, id)
		handleErr(err)

		base := lo.Must(cmd.Flags().GetString("output"))
		if base == "" {
			base = viper.GetString(key.DownloadPath)
		}
		if base == "" {
			base = where.Downloads()
		}
		dir := filepath.Join(base, chapterDirName(chapter))

		dataSaver := viper.GetBool(key.DownloadDataSaver)
		if cmd.Flags().Changed("data-saver") {
			dataSaver = lo.Must(cmd.Flags().GetBool("data-saver"))
		}
		downloader := newDownloader(dataSaver)

		quiet := lo.Must(cmd.Flags().GetBool("quiet"))
		retries := lo.Must(cmd.Flags().GetInt("retries"))

		var (
			result download.SaveResult
			only   []string
			saved  int
			size   int64
		)
		for attempt := 0; attempt <= retries; attempt++ {
			total := lo.Ternary(len(only) > 0, len(only), chapter.Attributes.Pages)

			var bar *pb.ProgressBar
			if !quiet {
				bar = pb.New(total)
				bar.Set("prefix", icon.Get(icon.Download)+" ")
				bar.SetTemplateString(`{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{etime . }}`)
				bar.Start()
			}

			result, err = downloader.Save(cmd.Context(), id, dir, func(page download.Page, err error) {
				if bar != nil {
					bar.Increment()
				}
			}, only...)

			if bar != nil {
				bar.Finish()
			}
			handleErr(err)

			saved += result.Pages
			size += result.Bytes
			if len(result.Failed) == 0 {
				break
			}
			only = result.Failed
		}

		if len(result.Failed) > 0 {
			handleErr(fmt.Errorf(
				"%s could not be downloaded: %v",
				util.Quantify(len(result.Failed), "page", "pages"),
				result.Failed,
			))
		}

		success(
			"saved %s (%s) to %s",
			util.Quantify(saved, "page", "pages"),
			util.FormatBytes(size),
			style.Fg(style.AccentColor)(dir),
		)
	},
}
