package cmd

import (
	"os"
	"slices"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tonymushah/mangadex-api-sub002/config"
	"github.com/tonymushah/mangadex-api-sub002/style"
	"github.com/tonymushah/mangadex-api-sub002/where"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Only show variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Only show variables that are unset")

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

// envNames lists every supported environment variable.
func envNames() []string {
	names := lo.Map(config.EnvExposed, func(key string, _ int) string {
		field := config.Field{Key: key}
		return field.Env()
	})
	names = append(names, where.EnvConfigPath)
	slices.Sort(names)
	return slices.Compact(names)
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))

		for _, env := range envNames() {
			value := os.Getenv(env)
			present := value != ""

			if (!present && setOnly) || (present && unsetOnly) {
				continue
			}

			cmd.Print(style.New().Bold(true).Foreground(style.AccentColor).Render(env))
			cmd.Print("=")

			if present {
				cmd.Println(style.Fg(style.SuccessColor)(value))
			} else {
				cmd.Println(style.Fg(style.ErrorColor)("unset"))
			}
		}
	},
}
