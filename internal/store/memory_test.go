package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "settings", map[string]any{"title": "Trattoria", "showMap": true}))

	var got map[string]any
	require.NoError(t, s.Get(ctx, "settings", &got))
	require.Equal(t, "Trattoria", got["title"])
	require.Equal(t, true, got["showMap"])
}

func TestMemoryStoreGetAbsentPathLeavesZeroValue(t *testing.T) {
	s := NewMemoryStore()

	var got map[string]any
	require.NoError(t, s.Get(context.Background(), "products/missing", &got))
	require.Nil(t, got)
}

func TestMemoryStorePushAssignsSortableKeys(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.Push(ctx, "products", map[string]any{"name": "Margherita"})
	require.NoError(t, err)
	second, err := s.Push(ctx, "products", map[string]any{"name": "Diavola"})
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.Less(t, first, second)

	var got map[string]map[string]any
	require.NoError(t, s.Get(ctx, "products", &got))
	require.Len(t, got, 2)
	require.Equal(t, "Margherita", got[first]["name"])
}

func TestMemoryStorePushOntoLegacyArrayKeepsEntries(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "categories", []any{"Burger", "Pizza"}))

	id, err := s.Push(ctx, "categories", map[string]any{"name": "Dessert"})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, s.Get(ctx, "categories", &got))
	require.Len(t, got, 3)
	require.Equal(t, "Burger", got["0"])
	require.Equal(t, "Pizza", got["1"])
	require.Equal(t, map[string]any{"name": "Dessert"}, got[id])
}

func TestMemoryStoreUpdateMergesFields(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "products/p1", map[string]any{"name": "Margherita", "price": 9.5}))
	require.NoError(t, s.Update(ctx, "products/p1", map[string]any{"price": 10.0}))

	var got map[string]any
	require.NoError(t, s.Get(ctx, "products/p1", &got))
	require.Equal(t, "Margherita", got["name"])
	require.Equal(t, 10.0, got["price"])
}

func TestMemoryStoreUpdateNilFieldDeletes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "products/p1", map[string]any{"name": "Margherita", "image": "data:image/png;base64,xyz"}))
	require.NoError(t, s.Update(ctx, "products/p1", map[string]any{"image": nil}))

	var got map[string]any
	require.NoError(t, s.Get(ctx, "products/p1", &got))
	require.NotContains(t, got, "image")
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "gallery/g1", map[string]any{"image": "a"}))
	require.NoError(t, s.Delete(ctx, "gallery/g1"))
	require.NoError(t, s.Delete(ctx, "gallery/g1"))

	var got map[string]any
	require.NoError(t, s.Get(ctx, "gallery/g1", &got))
	require.Nil(t, got)
}

func TestMemoryStoreHeterogeneousValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "categories", []any{"Burger", "Pizza"}))
	var list any
	require.NoError(t, s.Get(ctx, "categories", &list))
	require.Equal(t, []any{"Burger", "Pizza"}, list)

	require.NoError(t, s.Set(ctx, "categories", "Pizza"))
	var scalar any
	require.NoError(t, s.Get(ctx, "categories", &scalar))
	require.Equal(t, "Pizza", scalar)
}
