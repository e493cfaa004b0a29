package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pets/pkg/types"
)

var (
	faint   = color.New(color.Faint)
	bold    = color.New(color.Bold)
	success = color.New(color.FgGreen)
	warning = color.New(color.FgYellow)
)

// breedLabel renders an empty breed as "unknown".
func breedLabel(breed string) string {
	if breed == "" {
		return "unknown"
	}
	return breed
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printPets writes one line per pet: ID NAME BREED GENDER WEIGHT.
func printPets(w io.Writer, pets []types.Pet) {
	if len(pets) == 0 {
		fmt.Fprintln(w, "No pets found.")
		return
	}
	for _, p := range pets {
		fmt.Fprintf(w, "%s %s %s %s %d\n",
			faint.Sprintf("%4d", p.ID),
			padRight(p.Name, 16),
			padRight(breedLabel(p.Breed), 16),
			padRight(p.Gender.String(), 8),
			p.Weight)
	}
}

// printPet writes a labelled block for a single pet.
func printPet(w io.Writer, p types.Pet) {
	bold.Fprintln(w, p.Name)
	fmt.Fprintf(w, "  %s %s\n", faint.Sprint("locator:"), types.Item(p.ID))
	fmt.Fprintf(w, "  %s %s\n", faint.Sprint("breed:  "), breedLabel(p.Breed))
	fmt.Fprintf(w, "  %s %s\n", faint.Sprint("gender: "), p.Gender)
	fmt.Fprintf(w, "  %s %d\n", faint.Sprint("weight: "), p.Weight)
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// parseTarget accepts a bare id or a locator. A bare id follows the item
// locator rules.
func parseTarget(arg string) (types.Locator, error) {
	if _, err := strconv.ParseInt(arg, 10, 64); err == nil {
		arg = "/" + types.PathPets + "/" + arg
	}
	loc, err := types.ParseLocator(arg)
	if err != nil {
		return types.Locator{}, userError(err)
	}
	return loc, nil
}

// petFlags binds the mutable pet fields as flags.
type petFlags struct {
	payload string
	name    string
	breed   string
	gender  string
	weight  int
}

func (f *petFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.payload, "values", "", `JSON object of columns, e.g. '{"name":"Rex","weight":3}'`)
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "pet name")
	cmd.Flags().StringVarP(&f.breed, "breed", "b", "", "pet breed")
	cmd.Flags().StringVarP(&f.gender, "gender", "g", "", "gender: unknown, male, female, or 0-2")
	cmd.Flags().IntVarP(&f.weight, "weight", "w", 0, "weight in kilograms")
}

// values returns a payload holding --values and the field flags set on the
// command line. Field flags override the same column in --values.
func (f *petFlags) values(cmd *cobra.Command) (types.Values, error) {
	v := types.NewValues()
	if cmd.Flags().Changed("values") {
		if err := json.Unmarshal([]byte(f.payload), &v); err != nil {
			return types.Values{}, userError(fmt.Errorf("--values: %w", err))
		}
	}
	if cmd.Flags().Changed("name") {
		v = v.SetName(f.name)
	}
	if cmd.Flags().Changed("breed") {
		v = v.SetBreed(f.breed)
	}
	if cmd.Flags().Changed("gender") {
		g, err := types.ParseGender(f.gender)
		if err != nil {
			return types.Values{}, userError(err)
		}
		v = v.SetGender(g)
	}
	if cmd.Flags().Changed("weight") {
		v = v.SetWeight(f.weight)
	}
	return v, nil
}
