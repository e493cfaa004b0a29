package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pets/pkg/types"
)

func newListCmd(a *app) *cobra.Command {
	var (
		sortOrder string
		where     string
		whereArgs []string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List pets",
		Long: `List every pet in the catalog.

Use --where for an SQL filter with ? placeholders bound by --arg, and
--sort for an ORDER BY clause.

EXAMPLES:

  pets list
  pets list --sort "name ASC"
  pets list --where "breed = ?" --arg Terrier`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := types.Selection{Where: where}
			for _, arg := range whereArgs {
				sel.Args = append(sel.Args, arg)
			}
			pets, err := a.query(cmd, types.Collection(), types.QueryOptions{Selection: sel, SortOrder: sortOrder})
			if err != nil {
				return err
			}

			if a.flags.jsonMode {
				if pets == nil {
					pets = []types.Pet{}
				}
				return writeJSON(cmd.OutOrStdout(), pets)
			}
			printPets(cmd.OutOrStdout(), pets)
			return nil
		},
	}
	cmd.Flags().StringVarP(&sortOrder, "sort", "s", "", "ORDER BY clause, e.g. \"weight DESC\"")
	cmd.Flags().StringVar(&where, "where", "", "WHERE clause with ? placeholders")
	cmd.Flags().StringArrayVar(&whereArgs, "arg", nil, "value bound to a --where placeholder (repeatable)")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|locator>",
		Short: "Show one pet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := parseTarget(args[0])
			if err != nil {
				return err
			}
			if !loc.IsItem() {
				return userError(types.ErrUnsupportedLocator)
			}
			pets, err := a.query(cmd, loc, types.QueryOptions{})
			if err != nil {
				return err
			}
			if len(pets) == 0 {
				return errNotFound(loc)
			}

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), pets[0])
			}
			printPet(cmd.OutOrStdout(), pets[0])
			return nil
		},
	}
}

// query runs a gateway query and drains the result.
func (a *app) query(cmd *cobra.Command, loc types.Locator, opts types.QueryOptions) ([]types.Pet, error) {
	gw, err := a.openGateway(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer gw.Close()

	rows, err := gw.Query(cmd.Context(), loc, opts)
	if err != nil {
		return nil, classify(err)
	}
	pets, err := types.Collect(rows)
	if err != nil {
		return nil, classify(err)
	}
	return pets, nil
}
