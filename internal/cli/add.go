package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pets/pkg/types"
)

func newAddCmd(a *app) *cobra.Command {
	var f petFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a pet to the catalog",
		Long: `Add a pet. Only the flags you pass are written; gender and weight
default to unknown and 0. A name is required.

EXAMPLES:

  pets add --name Toto --breed Terrier --gender male --weight 7
  pets add -n Binky -g female
  pets add --values '{"name":"Rex","breed":"Beagle","weight":12}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := f.values(cmd)
			if err != nil {
				return err
			}
			return a.insert(cmd, values)
		},
	}
	f.register(cmd)
	return cmd
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a sample pet",
		Long:  "Insert the sample pet Toto (Terrier, male, 7 kg). Each run adds another row.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.insert(cmd, types.SeedValues())
		},
	}
}

// insert writes values to the collection and reports the new locator.
func (a *app) insert(cmd *cobra.Command, values types.Values) error {
	gw, err := a.openGateway(cmd.Context())
	if err != nil {
		return err
	}
	defer gw.Close()

	loc, err := gw.Insert(cmd.Context(), types.Collection(), values)
	if err != nil {
		return classify(err)
	}

	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		return writeJSON(out, map[string]any{"locator": loc, "id": loc.ID(), "fields": values})
	}
	success.Fprintf(out, "Added %s\n", loc)
	return nil
}

// errNotFound reports an item locator with no row.
func errNotFound(loc types.Locator) error {
	return userError(fmt.Errorf("pet %s not found", loc))
}
