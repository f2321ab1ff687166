package cmd

import (
	"encoding/json"
	"os"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tonymushah/mangadex-api-sub002/mangadex"
)

// schemaTargets are the documents printed by the --json flags.
var schemaTargets = map[string]any{
	"search":   mangadex.Collection[mangadex.Manga]{},
	"chapters": mangadex.Collection[mangadex.Chapter]{},
	"tags":     []mangadex.Tag{},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringP("target", "t", "search", "Document to describe: "+strings.Join(lo.Keys(schemaTargets), ", "))
	lo.Must0(schemaCmd.RegisterFlagCompletionFunc("target", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return lo.Keys(schemaTargets), cobra.ShellCompDirectiveNoFileComp
	}))
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the JSON outputs",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		target := lo.Must(cmd.Flags().GetString("target"))
		value, ok := schemaTargets[target]
		if !ok {
			handleErr(didYouMean("target", target, lo.Keys(schemaTargets)))
		}

		handleErr(json.NewEncoder(os.Stdout).Encode(reflectSchema(value)))
	},
}

func reflectSchema(v any) *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.Namer = func(t reflect.Type) string {
		name := t.Name()
		// generic instantiations carry their full type arguments
		if i := strings.IndexByte(name, '['); i >= 0 {
			arg := name[strings.LastIndexByte(name, '.')+1:]
			return name[:i] + "_" + strings.TrimRight(arg, "]")
		}
		return name
	}
	return reflector.Reflect(v)
}
