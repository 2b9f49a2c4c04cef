package devserver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "todos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStoreContract(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			tasks, err := store.List(ctx)
			require.NoError(t, err)
			assert.NotNil(t, tasks)
			assert.Empty(t, tasks)

			first, err := store.Create(ctx, "Buy milk")
			require.NoError(t, err)
			assert.Equal(t, "1", first.ID)
			assert.Equal(t, "Buy milk", first.Text)

			second, err := store.Create(ctx, "Walk dog")
			require.NoError(t, err)
			assert.Equal(t, "2", second.ID)

			tasks, err = store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"2", "1"}, tasks.IDs())

			require.NoError(t, store.Delete(ctx, "1"))
			assert.ErrorIs(t, store.Delete(ctx, "1"), ErrNotFound)
			assert.ErrorIs(t, store.Delete(ctx, "nope"), ErrNotFound)

			tasks, err = store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"2"}, tasks.IDs())
		})
	}
}

func TestSQLiteStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.db")
	ctx := context.Background()

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = store.Create(ctx, "Buy milk")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	tasks, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Text)

	next, err := reopened.Create(ctx, "Walk dog")
	require.NoError(t, err)
	assert.Equal(t, "2", next.ID)
}

func TestMemoryStoreListIsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.Create(ctx, "a")
	require.NoError(t, err)

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	tasks[0].Text = "changed"

	again, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Text)
}
