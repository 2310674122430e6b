package recipes

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCatalogState_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.json")
	doc := []byte(`[{"name":"Tortilla","dietary_type":"vegetarian","difficulty":"normal","required_products":[{"product_id":1,"quantity":4}]}]`)
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	state := NewFileCatalogState(path)
	b, err := state.Load(context.Background())
	require.NoError(t, err)

	var catalog []Recipe
	require.NoError(t, json.Unmarshal(b, &catalog))
	require.Len(t, catalog, 1)
	assert.Equal(t, "Tortilla", catalog[0].Name)
	assert.Equal(t, DietVegetarian, catalog[0].DietaryType)
	assert.Equal(t, DifficultyNormal, catalog[0].Difficulty)
	require.Len(t, catalog[0].RequiredProducts, 1)
	assert.Equal(t, 1, catalog[0].RequiredProducts[0].ProductID)
	assert.Equal(t, 4.0, catalog[0].RequiredProducts[0].Quantity)
}

func TestFileCatalogState_LoadMissingFile(t *testing.T) {
	state := NewFileCatalogState(filepath.Join(t.TempDir(), "missing.json"))
	_, err := state.Load(context.Background())
	assert.Error(t, err)
}

func TestTestCatalogState(t *testing.T) {
	state := NewTestCatalogState([]byte("[]"))
	b, err := state.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), b)

	_, err = NewTestCatalogStateWithError().Load(context.Background())
	assert.Error(t, err)
}
