package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatvoice/go-flatvoice/pkg/catalog"
)

func intp(v int) *int { return &v }

func TestStoreSearch(t *testing.T) {
	store := catalog.NewStore(catalog.Seed())

	t.Run("empty query returns everything in catalog order", func(t *testing.T) {
		got := store.Search(catalog.Query{})
		require.Len(t, got, store.Len())
		assert.Equal(t, "apt-001", got[0].ID)
		assert.Equal(t, "apt-008", got[len(got)-1].ID)
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		// apt-002 costs exactly 1200000; both bounds pinned to it must match.
		got := store.Search(catalog.Query{PriceMin: intp(1200000), PriceMax: intp(1200000)})
		require.Len(t, got, 1)
		assert.Equal(t, "apt-002", got[0].ID)
	})

	t.Run("excluded ids are skipped", func(t *testing.T) {
		got := store.Search(catalog.Query{District: "Центральный", Exclude: []string{"apt-001", "apt-003"}})
		require.Len(t, got, 1)
		assert.Equal(t, "apt-008", got[0].ID)
	})

	t.Run("district matches case-insensitively", func(t *testing.T) {
		got := store.Search(catalog.Query{District: "ленинский"})
		require.Len(t, got, 2)
	})

	t.Run("spoken district fragment matches catalog value", func(t *testing.T) {
		// The query may contain the catalog value or vice versa.
		got := store.Search(catalog.Query{District: "октябрьский район города"})
		require.Len(t, got, 2)
		for _, l := range got {
			assert.Equal(t, "Октябрьский", l.District)
		}
	})

	t.Run("floor and area bounds combine", func(t *testing.T) {
		got := store.Search(catalog.Query{AreaMin: intp(50), FloorMax: intp(7)})
		ids := make([]string, 0, len(got))
		for _, l := range got {
			ids = append(ids, l.ID)
		}
		assert.ElementsMatch(t, []string{"apt-001", "apt-006", "apt-008"}, ids)
	})

	t.Run("no match returns empty", func(t *testing.T) {
		got := store.Search(catalog.Query{District: "Несуществующий"})
		assert.Empty(t, got)
	})
}

func TestStoreSearchMidpointRanking(t *testing.T) {
	store := catalog.NewStore([]catalog.Listing{
		{ID: "a", Price: 1000000},
		{ID: "b", Price: 1500000},
		{ID: "c", Price: 2000000},
		{ID: "d", Price: 1500000},
	})

	t.Run("both price bounds rank by distance to midpoint", func(t *testing.T) {
		// Midpoint is 1500000: b and d sit on it, a and c are 500000 away.
		got := store.Search(catalog.Query{PriceMin: intp(1000000), PriceMax: intp(2000000)})
		require.Len(t, got, 4)
		assert.Equal(t, "b", got[0].ID)
		assert.Equal(t, "d", got[1].ID) // stable: ties keep catalog order
	})

	t.Run("single bound preserves catalog order", func(t *testing.T) {
		got := store.Search(catalog.Query{PriceMax: intp(2000000)})
		require.Len(t, got, 4)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "b", got[1].ID)
	})
}

func TestStoreGet(t *testing.T) {
	store := catalog.NewStore(catalog.Seed())

	l, ok := store.Get("apt-003")
	require.True(t, ok)
	assert.Equal(t, "Центральный", l.District)

	_, ok = store.Get("nope")
	assert.False(t, ok)
}

func TestDistrictMatch(t *testing.T) {
	assert.True(t, catalog.DistrictMatch("Центральный", "центральный"))
	assert.True(t, catalog.DistrictMatch("Центральный", "Центр"))
	assert.True(t, catalog.DistrictMatch("Центр", "Центральный или рядом"))
	assert.False(t, catalog.DistrictMatch("Центральный", "Ленинский"))
	assert.False(t, catalog.DistrictMatch("", "Ленинский"))
	assert.False(t, catalog.DistrictMatch("Центральный", "  "))
}

func TestLoadFile(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.json")
		data := `[{"id":"x-1","district":"Тестовый","area":40,"floor":2,"price":1000000}]`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		store, err := catalog.LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 1, store.Len())
		l, ok := store.Get("x-1")
		require.True(t, ok)
		assert.Equal(t, "Тестовый", l.District)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := catalog.LoadFile(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
		_, err := catalog.LoadFile(path)
		assert.Error(t, err)
	})
}
