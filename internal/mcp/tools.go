package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mesh-intelligence/pets/pkg/types"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_pets",
		Description: "List pets, optionally filtered by an SQL WHERE clause and sorted",
	}, s.handleListPets)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_pet",
		Description: "Get one pet by id",
	}, s.handleGetPet)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_pet",
		Description: "Add a pet; name is required, gender (0 unknown, 1 male, 2 female) and weight default to 0",
	}, s.handleAddPet)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_pet",
		Description: "Change the given fields of a pet; columns missing from fields are left alone",
	}, s.handleUpdatePet)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_pet",
		Description: "Delete a pet by id",
	}, s.handleDeletePet)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_all_pets",
		Description: "Delete every pet; requires confirm=true",
	}, s.handleDeleteAllPets)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "seed_pets",
		Description: "Insert the sample pet Toto (Terrier, male, 7)",
	}, s.handleSeedPets)
}

// Tool input/output types

type listPetsInput struct {
	Where string   `json:"where,omitempty" jsonschema:"SQL WHERE clause with ? placeholders"`
	Args  []string `json:"args,omitempty" jsonschema:"values bound to the WHERE placeholders"`
	Sort  string   `json:"sort,omitempty" jsonschema:"SQL ORDER BY clause such as name ASC"`
}

type listPetsOutput struct {
	Pets  []types.Pet `json:"pets"`
	Count int         `json:"count"`
}

type idInput struct {
	ID int64 `json:"id" jsonschema:"pet id"`
}

type petOutput struct {
	Locator string    `json:"locator"`
	Pet     types.Pet `json:"pet"`
}

type addPetInput struct {
	Name   string  `json:"name" jsonschema:"pet name"`
	Breed  *string `json:"breed,omitempty" jsonschema:"pet breed"`
	Gender *int    `json:"gender,omitempty" jsonschema:"0 unknown, 1 male, 2 female"`
	Weight *int    `json:"weight,omitempty" jsonschema:"weight, not negative"`
}

type updatePetInput struct {
	ID     int64          `json:"id" jsonschema:"pet id"`
	Fields map[string]any `json:"fields" jsonschema:"columns to change keyed by name: name, breed, gender (0-2), weight"`
}

type deleteAllInput struct {
	Confirm bool `json:"confirm" jsonschema:"must be true"`
}

type emptyInput struct{}

type insertOutput struct {
	ID      int64  `json:"id"`
	Locator string `json:"locator"`
	Message string `json:"message"`
}

type rowsOutput struct {
	Locator string `json:"locator"`
	Rows    int64  `json:"rows"`
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleListPets(ctx context.Context, req *mcp.CallToolRequest, input listPetsInput) (*mcp.CallToolResult, listPetsOutput, error) {
	sel := types.Selection{Where: input.Where}
	for _, a := range input.Args {
		sel.Args = append(sel.Args, a)
	}
	pets, err := s.query(ctx, types.Collection(), types.QueryOptions{Selection: sel, SortOrder: input.Sort})
	if err != nil {
		return nil, listPetsOutput{}, err
	}
	if pets == nil {
		pets = []types.Pet{}
	}
	return nil, listPetsOutput{Pets: pets, Count: len(pets)}, nil
}

func (s *Server) handleGetPet(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, petOutput, error) {
	loc := types.Item(input.ID)
	pets, err := s.query(ctx, loc, types.QueryOptions{})
	if err != nil {
		return nil, petOutput{}, err
	}
	if len(pets) == 0 {
		return nil, petOutput{}, fmt.Errorf("pet %s not found", loc)
	}
	return nil, petOutput{Locator: loc.String(), Pet: pets[0]}, nil
}

func (s *Server) handleAddPet(ctx context.Context, req *mcp.CallToolRequest, input addPetInput) (*mcp.CallToolResult, insertOutput, error) {
	values := types.NewValues().SetName(input.Name)
	if input.Breed != nil {
		values = values.SetBreed(*input.Breed)
	}
	if input.Gender != nil {
		values = values.SetGender(types.Gender(*input.Gender))
	}
	if input.Weight != nil {
		values = values.SetWeight(*input.Weight)
	}
	return s.insert(ctx, values)
}

func (s *Server) handleSeedPets(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, insertOutput, error) {
	return s.insert(ctx, types.SeedValues())
}

func (s *Server) handleUpdatePet(ctx context.Context, req *mcp.CallToolRequest, input updatePetInput) (*mcp.CallToolResult, rowsOutput, error) {
	values, err := types.ValuesFromMap(input.Fields)
	if err != nil {
		return nil, rowsOutput{}, err
	}

	loc := types.Item(input.ID)
	n, err := s.gw.Update(ctx, loc, values, types.Selection{})
	if err != nil {
		return nil, rowsOutput{}, err
	}
	return nil, rowsOutput{Locator: loc.String(), Rows: n, Message: rowsMessage("updated", loc, n)}, nil
}

func (s *Server) handleDeletePet(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, rowsOutput, error) {
	return s.delete(ctx, types.Item(input.ID))
}

func (s *Server) handleDeleteAllPets(ctx context.Context, req *mcp.CallToolRequest, input deleteAllInput) (*mcp.CallToolResult, rowsOutput, error) {
	if !input.Confirm {
		return nil, rowsOutput{}, errors.New("delete_all_pets requires confirm=true")
	}
	return s.delete(ctx, types.Collection())
}

func (s *Server) insert(ctx context.Context, values types.Values) (*mcp.CallToolResult, insertOutput, error) {
	loc, err := s.gw.Insert(ctx, types.Collection(), values)
	if err != nil {
		return nil, insertOutput{}, err
	}
	return nil, insertOutput{
		ID:      loc.ID(),
		Locator: loc.String(),
		Message: fmt.Sprintf("added %s", loc),
	}, nil
}

func (s *Server) delete(ctx context.Context, loc types.Locator) (*mcp.CallToolResult, rowsOutput, error) {
	n, err := s.gw.Delete(ctx, loc, types.Selection{})
	if err != nil {
		return nil, rowsOutput{}, err
	}
	return nil, rowsOutput{Locator: loc.String(), Rows: n, Message: rowsMessage("deleted", loc, n)}, nil
}

func (s *Server) query(ctx context.Context, loc types.Locator, opts types.QueryOptions) ([]types.Pet, error) {
	rows, err := s.gw.Query(ctx, loc, opts)
	if err != nil {
		return nil, err
	}
	return types.Collect(rows)
}

func rowsMessage(verb string, loc types.Locator, n int64) string {
	if n == 0 {
		return fmt.Sprintf("no pet matched %s", loc)
	}
	return fmt.Sprintf("%s %d row(s) at %s", verb, n, loc)
}
