package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pets/pkg/types"
)

// recorder collects observer callbacks.
type recorder struct {
	mu      sync.Mutex
	changes []types.Change
}

func (r *recorder) observe(c types.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) all() []types.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.Change(nil), r.changes...)
}

// openGateway opens a gateway on a fresh data dir and closes it on cleanup.
func openGateway(t *testing.T, opts Options) *Gateway {
	t.Helper()
	g, err := Open(context.Background(), types.Config{DataDir: t.TempDir()}, opts)
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })
	return g
}

func queryAll(t *testing.T, g *Gateway, loc types.Locator, opts types.QueryOptions) []types.Pet {
	t.Helper()
	r, err := g.Query(context.Background(), loc, opts)
	require.NoError(t, err)
	pets, err := types.Collect(r)
	require.NoError(t, err)
	return pets
}

func TestGateway_Initialize(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	g := NewGateway(types.Config{DataDir: dir}, Options{})
	ctx := context.Background()

	require.NoError(t, g.Initialize(ctx))
	require.NoError(t, g.Initialize(ctx), "initialize on an open gateway is a no-op")
	defer g.Close()

	_, err := os.Stat(filepath.Join(dir, types.DefaultDBName))
	assert.NoError(t, err, "pets.db created")

	v, err := schemaVersion(ctx, g.db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
}

func TestGateway_InitializeInvalidConfig(t *testing.T) {
	g := NewGateway(types.Config{DataDir: t.TempDir(), DBName: "../escape.db"}, Options{})
	assert.ErrorIs(t, g.Initialize(context.Background()), types.ErrDBNameInvalid)
}

func TestGateway_InitializeStorageFailure(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	g := NewGateway(types.Config{DataDir: filepath.Join(blocker, "data")}, Options{})
	assert.ErrorIs(t, g.Initialize(context.Background()), types.ErrStorage)
}

func TestGateway_Closed(t *testing.T) {
	ctx := context.Background()
	toto := types.NewValues().SetName("Toto")

	check := func(t *testing.T, g *Gateway) {
		_, err := g.Query(ctx, types.Collection(), types.QueryOptions{})
		assert.ErrorIs(t, err, types.ErrGatewayClosed)
		_, err = g.Insert(ctx, types.Collection(), toto)
		assert.ErrorIs(t, err, types.ErrGatewayClosed)
		_, err = g.Update(ctx, types.Item(1), toto, types.Selection{})
		assert.ErrorIs(t, err, types.ErrGatewayClosed)
		_, err = g.Delete(ctx, types.Collection(), types.Selection{})
		assert.ErrorIs(t, err, types.ErrGatewayClosed)
		_, err = g.Type(types.Collection())
		assert.ErrorIs(t, err, types.ErrGatewayClosed)
		_, err = g.Subscribe(types.Collection())
		assert.ErrorIs(t, err, types.ErrGatewayClosed)
	}

	t.Run("before initialize", func(t *testing.T) {
		check(t, NewGateway(types.Config{DataDir: t.TempDir()}, Options{}))
	})

	t.Run("after close", func(t *testing.T) {
		g, err := Open(ctx, types.Config{DataDir: t.TempDir()}, Options{})
		require.NoError(t, err)
		require.NoError(t, g.Close())
		require.NoError(t, g.Close(), "close is idempotent")
		check(t, g)
	})
}

func TestGateway_ReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	g, err := Open(ctx, types.Config{DataDir: t.TempDir()}, Options{})
	require.NoError(t, err)

	loc, err := g.Insert(ctx, types.Collection(), types.NewValues().SetName("Toto"))
	require.NoError(t, err)
	require.NoError(t, g.Close())

	require.NoError(t, g.Initialize(ctx))
	defer g.Close()
	pets := queryAll(t, g, loc, types.QueryOptions{})
	require.Len(t, pets, 1)
	assert.Equal(t, "Toto", pets[0].Name)
}

func TestGateway_InsertToto(t *testing.T) {
	rec := &recorder{}
	g := openGateway(t, Options{Observer: rec.observe})
	ctx := context.Background()

	loc, err := g.Insert(ctx, types.Collection(),
		types.NewValues().SetName("Toto").SetBreed("Terrier").SetGender(types.GenderMale).SetWeight(7))
	require.NoError(t, err)
	assert.True(t, loc.IsItem())
	assert.Equal(t, int64(1), loc.ID())
	assert.Equal(t, "/pets/1", loc.String())

	pets := queryAll(t, g, loc, types.QueryOptions{})
	require.Len(t, pets, 1)
	assert.Equal(t, types.Pet{ID: 1, Name: "Toto", Breed: "Terrier", Gender: types.GenderMale, Weight: 7}, pets[0])

	changes := rec.all()
	require.Len(t, changes, 1)
	assert.Equal(t, types.OpInsert, changes[0].Op)
	assert.True(t, changes[0].Locator.IsCollection())
	assert.Equal(t, int64(1), changes[0].Rows)
}

func TestGateway_InsertDefaults(t *testing.T) {
	g := openGateway(t, Options{})

	loc, err := g.Insert(context.Background(), types.Collection(), types.NewValues().SetName("Rex"))
	require.NoError(t, err)

	pets := queryAll(t, g, loc, types.QueryOptions{})
	require.Len(t, pets, 1)
	assert.Equal(t, "", pets[0].Breed)
	assert.Equal(t, types.GenderUnknown, pets[0].Gender)
	assert.Equal(t, 0, pets[0].Weight)
}

func TestGateway_InsertRejected(t *testing.T) {
	tests := []struct {
		name    string
		loc     types.Locator
		values  types.Values
		wantErr error
	}{
		{
			name:    "empty name",
			loc:     types.Collection(),
			values:  types.NewValues().SetName("").SetBreed("X").SetGender(types.GenderUnknown).SetWeight(0),
			wantErr: types.ErrInvalidPayload,
		},
		{
			name:    "missing name",
			loc:     types.Collection(),
			values:  types.NewValues().SetBreed("X").SetWeight(3),
			wantErr: types.ErrInvalidPayload,
		},
		{
			name:    "gender out of range",
			loc:     types.Collection(),
			values:  types.NewValues().SetName("Rex").SetGender(types.Gender(3)),
			wantErr: types.ErrInvalidPayload,
		},
		{
			name:    "negative weight",
			loc:     types.Collection(),
			values:  types.NewValues().SetName("Rex").SetWeight(-1),
			wantErr: types.ErrInvalidPayload,
		},
		{
			name:    "empty payload",
			loc:     types.Collection(),
			values:  types.NewValues(),
			wantErr: types.ErrEmptyPayload,
		},
		{
			name:    "item locator",
			loc:     types.Item(1),
			values:  types.NewValues().SetName("Rex"),
			wantErr: types.ErrUnsupportedLocator,
		},
		{
			name:    "unknown locator",
			loc:     types.Locator{},
			values:  types.NewValues().SetName("Rex"),
			wantErr: types.ErrUnsupportedLocator,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			g := openGateway(t, Options{Observer: rec.observe})

			_, err := g.Insert(context.Background(), tt.loc, tt.values)
			require.ErrorIs(t, err, tt.wantErr)

			assert.Empty(t, queryAll(t, g, types.Collection(), types.QueryOptions{}), "storage unchanged")
			assert.Empty(t, rec.all())
		})
	}
}

func TestGateway_RoundTrip(t *testing.T) {
	g := openGateway(t, Options{})
	ctx := context.Background()

	inputs := []types.Pet{
		{Name: "Toto", Breed: "Terrier", Gender: types.GenderMale, Weight: 7},
		{Name: "Binky", Breed: "", Gender: types.GenderFemale, Weight: 0},
		{Name: "Ünïcødé 🐕", Breed: "O'Brien \"quoted\"", Gender: types.GenderUnknown, Weight: 1 << 30},
	}
	for _, in := range inputs {
		loc, err := g.Insert(ctx, types.Collection(), in.Values())
		require.NoError(t, err)

		pets := queryAll(t, g, loc, types.QueryOptions{})
		require.Len(t, pets, 1)
		in.ID = loc.ID()
		assert.Equal(t, in, pets[0])
	}
}

func TestGateway_UpdatePartial(t *testing.T) {
	rec := &recorder{}
	g := openGateway(t, Options{Observer: rec.observe})
	ctx := context.Background()

	loc, err := g.Insert(ctx, types.Collection(),
		types.NewValues().SetName("Toto").SetBreed("Terrier").SetGender(types.GenderMale).SetWeight(7))
	require.NoError(t, err)

	n, err := g.Update(ctx, loc, types.NewValues().SetWeight(9), types.Selection{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	pets := queryAll(t, g, loc, types.QueryOptions{})
	require.Len(t, pets, 1)
	assert.Equal(t, types.Pet{ID: 1, Name: "Toto", Breed: "Terrier", Gender: types.GenderMale, Weight: 9}, pets[0])

	changes := rec.all()
	require.Len(t, changes, 2)
	assert.Equal(t, types.OpUpdate, changes[1].Op)
	assert.Equal(t, loc, changes[1].Locator)
}

func TestGateway_UpdateRejected(t *testing.T) {
	rec := &recorder{}
	g := openGateway(t, Options{Observer: rec.observe})
	ctx := context.Background()

	loc, err := g.Insert(ctx, types.Collection(), types.NewValues().SetName("Toto").SetWeight(7))
	require.NoError(t, err)

	tests := []struct {
		name   string
		values types.Values
	}{
		{name: "empty name", values: types.NewValues().SetName("")},
		{name: "bad gender", values: types.NewValues().SetGender(types.Gender(7))},
		{name: "negative weight", values: types.NewValues().SetWeight(-3)},
		{name: "empty payload", values: types.NewValues()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := g.Update(ctx, loc, tt.values, types.Selection{})
			require.ErrorIs(t, err, types.ErrInvalidPayload)
			assert.Equal(t, types.RowsRejected, n)
		})
	}

	pets := queryAll(t, g, loc, types.QueryOptions{})
	require.Len(t, pets, 1)
	assert.Equal(t, "Toto", pets[0].Name)
	assert.Equal(t, 7, pets[0].Weight)
	assert.Len(t, rec.all(), 1, "only the insert notified")
}

func TestGateway_UpdateNoMatch(t *testing.T) {
	rec := &recorder{}
	g := openGateway(t, Options{Observer: rec.observe})
	ctx := context.Background()

	sub, err := g.Subscribe(types.Collection())
	require.NoError(t, err)
	defer sub.Cancel()

	n, err := g.Update(ctx, types.Item(999), types.NewValues().SetWeight(1), types.Selection{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Empty(t, rec.all())
	assert.Empty(t, sub.Changes())
}

func TestGateway_UpdateSelection(t *testing.T) {
	g := openGateway(t, Options{})
	ctx := context.Background()

	for _, name := range []string{"Toto", "Rex", "Fido"} {
		breed := "Terrier"
		if name == "Fido" {
			breed = "Beagle"
		}
		_, err := g.Insert(ctx, types.Collection(), types.NewValues().SetName(name).SetBreed(breed))
		require.NoError(t, err)
	}

	n, err := g.Update(ctx, types.Collection(), types.NewValues().SetWeight(5),
		types.Selection{Where: "breed = ?", Args: []any{"Terrier"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	heavy := queryAll(t, g, types.Collection(), types.QueryOptions{
		Selection: types.Selection{Where: "weight = ?", Args: []any{5}},
	})
	assert.Len(t, heavy, 2)

	// An item locator ignores the caller's selection.
	n, err = g.Update(ctx, types.Item(3), types.NewValues().SetWeight(1),
		types.Selection{Where: "breed = ?", Args: []any{"Terrier"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGateway_Delete(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, g *Gateway) {
		for _, name := range []string{"Toto", "Rex", "Fido"} {
			_, err := g.Insert(ctx, types.Collection(), types.NewValues().SetName(name))
			require.NoError(t, err)
		}
	}

	t.Run("item", func(t *testing.T) {
		g := openGateway(t, Options{})
		seed(t, g)
		n, err := g.Delete(ctx, types.Item(2), types.Selection{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.Len(t, queryAll(t, g, types.Collection(), types.QueryOptions{}), 2)
		assert.Empty(t, queryAll(t, g, types.Item(2), types.QueryOptions{}))
	})

	t.Run("missing item", func(t *testing.T) {
		rec := &recorder{}
		g := openGateway(t, Options{Observer: rec.observe})
		seed(t, g)
		sub, err := g.Subscribe(types.Item(999))
		require.NoError(t, err)
		defer sub.Cancel()

		n, err := g.Delete(ctx, types.Item(999), types.Selection{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
		assert.Len(t, rec.all(), 3, "only the inserts notified")
		assert.Empty(t, sub.Changes())
	})

	t.Run("collection", func(t *testing.T) {
		rec := &recorder{}
		g := openGateway(t, Options{Observer: rec.observe})
		seed(t, g)
		n, err := g.Delete(ctx, types.Collection(), types.Selection{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.Empty(t, queryAll(t, g, types.Collection(), types.QueryOptions{}))

		changes := rec.all()
		require.Len(t, changes, 4)
		assert.Equal(t, types.OpDelete, changes[3].Op)
		assert.Equal(t, int64(3), changes[3].Rows)
	})

	t.Run("collection with selection", func(t *testing.T) {
		g := openGateway(t, Options{})
		seed(t, g)
		n, err := g.Delete(ctx, types.Collection(), types.Selection{Where: "name LIKE ?", Args: []any{"R%"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("empty collection", func(t *testing.T) {
		g := openGateway(t, Options{})
		n, err := g.Delete(ctx, types.Collection(), types.Selection{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("unknown locator", func(t *testing.T) {
		g := openGateway(t, Options{})
		_, err := g.Delete(ctx, types.Locator{}, types.Selection{})
		assert.ErrorIs(t, err, types.ErrUnsupportedLocator)
	})
}

func TestGateway_Query(t *testing.T) {
	g := openGateway(t, Options{})
	ctx := context.Background()

	for _, name := range []string{"Toto", "Binky", "Rex"} {
		_, err := g.Insert(ctx, types.Collection(), types.NewValues().SetName(name).SetWeight(len(name)))
		require.NoError(t, err)
	}

	t.Run("sort order", func(t *testing.T) {
		pets := queryAll(t, g, types.Collection(), types.QueryOptions{SortOrder: "name ASC"})
		require.Len(t, pets, 3)
		assert.Equal(t, []string{"Binky", "Rex", "Toto"}, []string{pets[0].Name, pets[1].Name, pets[2].Name})
	})

	t.Run("projection", func(t *testing.T) {
		r, err := g.Query(ctx, types.Item(1), types.QueryOptions{Columns: []string{types.ColumnName}})
		require.NoError(t, err)
		assert.Equal(t, []string{types.ColumnName}, r.Columns())
		pets, err := types.Collect(r)
		require.NoError(t, err)
		require.Len(t, pets, 1)
		assert.Equal(t, types.Pet{Name: "Toto"}, pets[0])
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := g.Query(ctx, types.Collection(), types.QueryOptions{Columns: []string{"owner"}})
		assert.ErrorIs(t, err, types.ErrUnknownColumn)
	})

	t.Run("item overrides selection", func(t *testing.T) {
		pets := queryAll(t, g, types.Item(2), types.QueryOptions{
			Selection: types.Selection{Where: "name = ?", Args: []any{"Toto"}},
		})
		require.Len(t, pets, 1)
		assert.Equal(t, "Binky", pets[0].Name)
	})

	t.Run("bad selection", func(t *testing.T) {
		_, err := g.Query(ctx, types.Collection(), types.QueryOptions{
			Selection: types.Selection{Where: "no_such_column = 1"},
		})
		assert.ErrorIs(t, err, types.ErrStorage)
	})

	t.Run("unknown locator", func(t *testing.T) {
		_, err := g.Query(ctx, types.Locator{}, types.QueryOptions{})
		assert.ErrorIs(t, err, types.ErrUnsupportedLocator)
	})
}

func TestGateway_RowsChanges(t *testing.T) {
	g := openGateway(t, Options{})
	ctx := context.Background()

	r, err := g.Query(ctx, types.Item(1), types.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.Item(1), r.Locator())

	// Inserts notify the collection, which overlaps every item.
	_, err = g.Insert(ctx, types.Collection(), types.NewValues().SetName("Toto"))
	require.NoError(t, err)

	select {
	case c := <-r.Changes():
		assert.Equal(t, types.OpInsert, c.Op)
	default:
		t.Fatal("expected a change on the cursor")
	}

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	_, ok := <-r.Changes()
	assert.False(t, ok, "changes closed with the cursor")
}

func TestGateway_Type(t *testing.T) {
	g := openGateway(t, Options{})

	ct, err := g.Type(types.Collection())
	require.NoError(t, err)
	assert.Equal(t, types.ContentTypeDir, ct)

	ct, err = g.Type(types.Item(4))
	require.NoError(t, err)
	assert.Equal(t, types.ContentTypeItem, ct)

	_, err = g.Type(types.Locator{})
	assert.ErrorIs(t, err, types.ErrUnsupportedLocator)
}

func TestGateway_SubscribeUnknown(t *testing.T) {
	g := openGateway(t, Options{})
	_, err := g.Subscribe(types.Locator{})
	assert.ErrorIs(t, err, types.ErrUnsupportedLocator)
}

func TestGateway_CloseEndsSubscriptions(t *testing.T) {
	g, err := Open(context.Background(), types.Config{DataDir: t.TempDir()}, Options{})
	require.NoError(t, err)

	sub, err := g.Subscribe(types.Collection())
	require.NoError(t, err)
	require.NoError(t, g.Close())

	_, ok := <-sub.Changes()
	assert.False(t, ok)
}

func setUserVersion(t *testing.T, path string, v int) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("PRAGMA user_version = " + strconv.Itoa(v))
	require.NoError(t, err)
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()

	t.Run("newer schema is refused", func(t *testing.T) {
		cfg := types.Config{DataDir: t.TempDir()}
		setUserVersion(t, cfg.DBPath(), SchemaVersion+1)

		_, err := Open(ctx, cfg, Options{})
		assert.ErrorIs(t, err, types.ErrSchemaTooNew)
	})

	t.Run("older schema is recreated", func(t *testing.T) {
		cfg := types.Config{DataDir: t.TempDir()}
		g, err := Open(ctx, cfg, Options{})
		require.NoError(t, err)
		_, err = g.Insert(ctx, types.Collection(), types.NewValues().SetName("Toto"))
		require.NoError(t, err)
		require.NoError(t, g.Close())

		setUserVersion(t, cfg.DBPath(), -1)

		require.NoError(t, g.Initialize(ctx))
		defer g.Close()
		assert.Empty(t, queryAll(t, g, types.Collection(), types.QueryOptions{}))

		v, err := schemaVersion(ctx, g.db)
		require.NoError(t, err)
		assert.Equal(t, SchemaVersion, v)
	})
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "plain path", path: "/tmp/pets.db", want: "file:/tmp/pets.db?"},
		{name: "question mark", path: "/tmp/a?b/pets.db", want: "file:/tmp/a%3Fb/pets.db?"},
		{name: "hash", path: "/tmp/a#b/pets.db", want: "file:/tmp/a%23b/pets.db?"},
		{name: "percent", path: "/tmp/100%/pets.db", want: "file:/tmp/100%25/pets.db?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dsn(tt.path)
			assert.True(t, strings.HasPrefix(got, tt.want), "dsn = %q", got)
			assert.Contains(t, got, "_pragma=busy_timeout%285000%29")
			assert.Contains(t, got, "_pragma=journal_mode%28WAL%29")
		})
	}
}

func TestGateway_DataDirWithURICharacters(t *testing.T) {
	for _, name := range []string{"a?b", "a#b", "a%3Fb"} {
		t.Run(name, func(t *testing.T) {
			parent := t.TempDir()
			dir := filepath.Join(parent, name)
			cfg := types.Config{DataDir: dir}
			ctx := context.Background()

			g, err := Open(ctx, cfg, Options{})
			require.NoError(t, err)
			_, err = g.Insert(ctx, types.Collection(), types.SeedValues())
			require.NoError(t, err)
			require.NoError(t, g.Close())

			_, err = os.Stat(filepath.Join(dir, types.DefaultDBName))
			require.NoError(t, err, "database lives inside the data dir")

			entries, err := os.ReadDir(parent)
			require.NoError(t, err)
			require.Len(t, entries, 1, "nothing written next to the data dir")
			assert.Equal(t, name, entries[0].Name())

			g, err = Open(ctx, cfg, Options{})
			require.NoError(t, err)
			defer g.Close()
			pets := queryAll(t, g, types.Collection(), types.QueryOptions{})
			require.Len(t, pets, 1)
			assert.Equal(t, "Toto", pets[0].Name)
		})
	}
}

func TestGateway_NotifyAfterClose(t *testing.T) {
	rec := &recorder{}
	g := NewGateway(types.Config{DataDir: t.TempDir()}, Options{Observer: rec.observe})
	require.NoError(t, g.Initialize(context.Background()))
	require.NoError(t, g.Close())

	// A mutation that finished its write just before Close reaches notify
	// with the gateway already closed.
	g.notify(types.Collection(), types.OpInsert, 1)
	assert.Empty(t, rec.all())
}
