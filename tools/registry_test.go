package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	registry, err := NewRegistry(&mockRecommender{}, &mockFetcher{}, &mockSetter{})
	require.NoError(t, err)

	tools := registry.GetTools()
	require.Len(t, tools, 3)

	for _, name := range []string{"recipe_search", "inventory_get", "stock_set"} {
		tool, err := registry.GetTool(name)
		require.NoError(t, err)
		assert.Equal(t, name, tool.Name())
		assert.NotNil(t, tool.InputSchema())
	}
}

func TestRegistry_GetTool_NotFound(t *testing.T) {
	registry, err := NewRegistry(&mockRecommender{}, &mockFetcher{}, &mockSetter{})
	require.NoError(t, err)

	_, err = registry.GetTool("order_pizza")
	assert.ErrorContains(t, err, "not found")
}

func TestRegistry_RejectsDuplicateRegistration(t *testing.T) {
	registry := Registry{}
	tool := NewInventoryGet(&mockFetcher{})
	require.NoError(t, registry.register(tool))
	assert.ErrorContains(t, registry.register(tool), "registered twice")
}
