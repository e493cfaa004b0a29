package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pets/pkg/types"
)

func newDeleteCmd(a *app) *cobra.Command {
	var all, yes bool
	cmd := &cobra.Command{
		Use:     "delete [<id|locator>]",
		Aliases: []string{"rm"},
		Short:   "Delete a pet, or every pet with --all",
		Long: `Delete one pet by id or locator, or every pet with --all --yes.

CAUTION:

  This permanently deletes rows. There is no undo.

EXAMPLES:

  pets delete 3
  pets delete --all --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var loc types.Locator
			switch {
			case all && len(args) > 0:
				return userError(errors.New("pass an id or --all, not both"))
			case all:
				if !yes {
					return userError(errors.New("refusing to delete every pet without --yes"))
				}
				loc = types.Collection()
			case len(args) == 1:
				target, err := parseTarget(args[0])
				if err != nil {
					return err
				}
				loc = target
			default:
				return userError(errors.New("delete needs an id or --all"))
			}

			gw, err := a.openGateway(cmd.Context())
			if err != nil {
				return err
			}
			defer gw.Close()

			n, err := gw.Delete(cmd.Context(), loc, types.Selection{})
			if err != nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return writeJSON(out, map[string]any{"locator": loc, "rows": n})
			}
			if n == 0 {
				warning.Fprintf(out, "No pet matched %s\n", loc)
				return nil
			}
			warning.Fprintf(out, "Deleted %s\n", plural(n))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every pet")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm --all")
	return cmd
}
