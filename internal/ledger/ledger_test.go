package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	blobs   map[string][]byte
	loadErr error
	saveErr error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (m *memStore) Load(ctx context.Context, name string) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.blobs[name], nil
}

func (m *memStore) Save(ctx context.Context, name string, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.blobs[name] = append([]byte(nil), data...)
	return nil
}

type record struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
}

func recordKey(r *record) string { return r.ID }

func TestLedger_LoadMissingOrEmpty(t *testing.T) {
	store := newMemStore()
	l := New("records", store, recordKey)

	require.NoError(t, l.Load(context.Background()))
	assert.Equal(t, 0, l.Len())

	store.blobs["records"] = []byte("  \n")
	require.NoError(t, l.Load(context.Background()))
	assert.Equal(t, 0, l.Len())
}

func TestLedger_SaveLoadKeepsOrder(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	l := New("records", store, recordKey)
	l.Put(&record{ID: "b", Value: 2})
	l.Put(&record{ID: "a", Value: 1})
	l.Put(&record{ID: "c", Value: 3})
	l.Put(&record{ID: "a", Value: 10})
	require.NoError(t, l.Save(ctx))

	reloaded := New("records", store, recordKey)
	require.NoError(t, reloaded.Load(ctx))

	all := reloaded.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, 10, all[1].Value)

	last, ok := reloaded.Last()
	require.True(t, ok)
	assert.Equal(t, "c", last.ID)
}

func TestLedger_Delete(t *testing.T) {
	l := New("records", newMemStore(), recordKey)
	l.Put(&record{ID: "a"})
	l.Put(&record{ID: "b"})

	assert.True(t, l.Delete("a"))
	assert.False(t, l.Delete("a"))
	assert.False(t, l.Has("a"))
	assert.Equal(t, 1, l.Len())

	last, ok := l.Last()
	require.True(t, ok)
	assert.Equal(t, "b", last.ID)

	l.Delete("b")
	_, ok = l.Last()
	assert.False(t, ok)
}

func TestLedger_StoreErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")

	store := newMemStore()
	store.saveErr = boom
	l := New("records", store, recordKey)
	l.Put(&record{ID: "a"})
	assert.ErrorIs(t, l.Save(ctx), boom)

	store.loadErr = boom
	assert.ErrorIs(t, l.Load(ctx), boom)

	store.loadErr = nil
	store.blobs["records"] = []byte("{not json")
	assert.Error(t, l.Load(ctx))
}

func TestLedger_UpsertRestoresOnSaveError(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	l := New("records", store, recordKey)
	require.NoError(t, l.Upsert(ctx, &record{ID: "a", Value: 1}))
	require.NoError(t, l.Upsert(ctx, &record{ID: "b", Value: 2}))

	store.saveErr = errors.New("disk full")

	err := l.Upsert(ctx, &record{ID: "c", Value: 3})
	require.ErrorIs(t, err, store.saveErr)
	assert.False(t, l.Has("c"))
	assert.Equal(t, 2, l.Len())

	err = l.Upsert(ctx, &record{ID: "a", Value: 100})
	require.ErrorIs(t, err, store.saveErr)
	a, ok := l.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, a.Value)

	last, ok := l.Last()
	require.True(t, ok)
	assert.Equal(t, "b", last.ID)

	store.saveErr = nil
	require.NoError(t, l.Upsert(ctx, &record{ID: "c", Value: 3}))
	assert.Equal(t, 3, l.Len())
}

func TestLedger_RemoveRestoresOnSaveError(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	l := New("records", store, recordKey)
	require.NoError(t, l.Upsert(ctx, &record{ID: "a"}))
	require.NoError(t, l.Upsert(ctx, &record{ID: "b"}))
	saves := store.saves

	removed, err := l.Remove(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, saves, store.saves)

	store.saveErr = errors.New("disk full")
	removed, err = l.Remove(ctx, "a")
	require.ErrorIs(t, err, store.saveErr)
	assert.False(t, removed)

	all := l.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)

	store.saveErr = nil
	removed, err = l.Remove(ctx, "a")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, l.Has("a"))
}
