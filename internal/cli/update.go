package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pets/pkg/types"
)

func newUpdateCmd(a *app) *cobra.Command {
	var f petFlags
	cmd := &cobra.Command{
		Use:   "update <id|locator>",
		Short: "Change fields of a pet",
		Long: `Update writes only the flags you pass; other fields keep their values.

EXAMPLES:

  pets update 1 --weight 9
  pets update /pets/1 --breed "" --gender female
  pets update 1 --values '{"weight":9}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := parseTarget(args[0])
			if err != nil {
				return err
			}
			values, err := f.values(cmd)
			if err != nil {
				return err
			}

			gw, err := a.openGateway(cmd.Context())
			if err != nil {
				return err
			}
			defer gw.Close()

			n, err := gw.Update(cmd.Context(), loc, values, types.Selection{})
			if err != nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return writeJSON(out, map[string]any{"locator": loc, "rows": n, "fields": values})
			}
			if n == 0 {
				warning.Fprintf(out, "No pet matched %s\n", loc)
				return nil
			}
			success.Fprintf(out, "Updated %s\n", plural(n))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func plural(n int64) string {
	if n == 1 {
		return "1 pet"
	}
	return fmt.Sprintf("%d pets", n)
}
