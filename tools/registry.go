package tools

import (
	"fmt"
)

// Registry maps tool names to implementations.
type Registry map[string]Tool

// NewRegistry builds the registry of agent-facing tools, validating each
// entry at registration time.
func NewRegistry(scorer recommender, inv inventoryFetcher, gateway stockSetter) (*Registry, error) {
	entries := []Tool{
		NewRecipeSearch(scorer),
		NewInventoryGet(inv),
		NewStockSet(gateway),
	}

	registry := Registry{}
	for _, tool := range entries {
		if err := registry.register(tool); err != nil {
			return nil, err
		}
	}
	return &registry, nil
}

func (r Registry) register(tool Tool) error {
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool %q has no name", tool.Title())
	}
	if _, exists := r[name]; exists {
		return fmt.Errorf("tool %q registered twice", name)
	}
	if tool.InputSchema() == nil {
		return fmt.Errorf("tool %q has no input schema", name)
	}
	r[name] = tool
	return nil
}

// GetTools returns all tools in the registry as a slice.
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(*r))
	for _, tool := range *r {
		tools = append(tools, tool)
	}
	return tools
}

// GetTool retrieves a tool by name from the registry.
func (r Registry) GetTool(name string) (Tool, error) {
	tool, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("tool %q not found in registry", name)
	}
	return tool, nil
}
