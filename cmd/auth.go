package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tonymushah/mangadex-api-sub002/api"
	"github.com/tonymushah/mangadex-api-sub002/credentials"
	"github.com/tonymushah/mangadex-api-sub002/icon"
	"github.com/tonymushah/mangadex-api-sub002/key"
	"github.com/tonymushah/mangadex-api-sub002/mangadex"
	"github.com/tonymushah/mangadex-api-sub002/style"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringP("username", "u", "", "Account username, or email for the legacy flow")
	loginCmd.Flags().StringP("password", "p", "", "Account password, prompted when omitted")
	loginCmd.Flags().Bool("oauth", false, "Use the OAuth password grant with a personal API client")
	loginCmd.Flags().String("client-id", "", "Personal client id, defaults to "+key.AuthClientID)
	loginCmd.Flags().String("client-secret", "", "Personal client secret, defaults to "+key.AuthClientSecret)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to MangaDex",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		username := lo.Must(cmd.Flags().GetString("username"))
		password := lo.Must(cmd.Flags().GetString("password"))

		if username == "" {
			handleErr(survey.AskOne(&survey.Input{Message: "Username"}, &username, survey.WithValidator(survey.Required)))
		}

		if password == "" {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				handleErr(errors.New("password is required, pass it with --password"))
			}
			handleErr(survey.AskOne(&survey.Password{Message: "Password"}, &password, survey.WithValidator(survey.Required)))
		}

		client := apiClient()

		if lo.Must(cmd.Flags().GetBool("oauth")) {
			clientID := lo.Must(cmd.Flags().GetString("client-id"))
			if clientID == "" {
				clientID = viper.GetString(key.AuthClientID)
			}
			clientSecret := lo.Must(cmd.Flags().GetString("client-secret"))
			if clientSecret == "" {
				clientSecret = viper.GetString(key.AuthClientSecret)
			}

			_, err := client.LoginOAuth(cmd.Context(), api.OAuthParams{
				Username:     username,
				Password:     password,
				ClientID:     clientID,
				ClientSecret: clientSecret,
			})
			handleErr(err)
		} else {
			params := api.LoginParams{Username: username, Password: password}
			if strings.Contains(username, "@") {
				params = api.LoginParams{Email: username, Password: password}
			}
			_, err := client.Login(cmd.Context(), params)
			handleErr(err)
		}

		success("logged in as %s", style.Fg(style.AccentColor)(username))
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
	logoutCmd.Flags().Bool("forget", false, "Also forget the personal client identity")
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client := apiClient()
		handleErr(client.Logout(cmd.Context()))

		if lo.Must(cmd.Flags().GetBool("forget")) {
			client.Credentials().Set(credentials.Credentials{})
		}

		success("logged out")
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed in user",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client := apiClient()

		check, err := client.CheckToken(cmd.Context())
		handleErr(err)
		if !check.IsAuthenticated {
			handleErr(errors.New("not logged in, run " + style.Fg(style.WarningColor)("mangadex login")))
		}

		me, err := mangadex.Me(cmd.Context(), client)
		handleErr(err)

		fmt.Printf("%s %s\n", icon.Get(icon.Lock), style.Bold(me.Attributes.Username))
		fmt.Printf("%s %s\n", style.Faint("id   "), me.ID)
		fmt.Printf("%s %s\n", style.Faint("roles"), strings.Join(me.Attributes.Roles, ", "))

		if c, ok := client.Credentials().Get().Get(); ok {
			if at, ok := c.ExpiresAt.Get(); ok {
				fmt.Printf("%s %s\n", style.Faint("until"), at.Local().Format("2006-01-02 15:04"))
			}
		}
	},
}
