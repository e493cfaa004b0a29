package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTypeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "type <locator>",
		Short: "Print the content type of a locator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := parseTarget(args[0])
			if err != nil {
				return err
			}

			gw, err := a.openGateway(cmd.Context())
			if err != nil {
				return err
			}
			defer gw.Close()

			ct, err := gw.Type(loc)
			if err != nil {
				return classify(err)
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"locator": loc.String(), "uri": loc.URI(), "type": ct})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ct)
			return nil
		},
	}
}
