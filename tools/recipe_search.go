package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"recomendachef/recipes"
)

type recommender interface {
	Recommend(ctx context.Context, diet recipes.DietaryType, difficulty recipes.Difficulty) ([]recipes.Recipe, error)
}

type RecipeSearch struct{ scorer recommender }

func NewRecipeSearch(scorer recommender) *RecipeSearch { return &RecipeSearch{scorer: scorer} }

func (t *RecipeSearch) Name() string  { return "recipe_search" }
func (t *RecipeSearch) Title() string { return "Search Recipes" }
func (t *RecipeSearch) Description() string {
	return "Returns up to 3 recipes ranked by dietary type (normal, vegetarian, vegan, celiac), difficulty (easy, normal, hard) and pantry availability. Both filters default to normal."
}

func (t *RecipeSearch) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"dietary_type": {
				Type:        "string",
				Description: "One of: normal, vegetarian, vegan, celiac. Defaults to normal, which includes every type.",
			},
			"difficulty": {
				Type:        "string",
				Description: "One of: easy, normal, hard. Defaults to normal.",
			},
		},
	}
}

func (t *RecipeSearch) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"recipes": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"name":         {Type: "string"},
						"dietary_type": {Type: "string"},
						"difficulty":   {Type: "string"},
						"score":        {Type: "integer"},
					},
					Required: []string{"name", "score"},
				},
			},
		},
		Required: []string{"recipes"},
	}
}

func (t *RecipeSearch) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	diet := recipes.DietNormal
	if v, ok := input["dietary_type"].(string); ok && v != "" {
		diet = recipes.DietaryType(v)
	}
	difficulty := recipes.DifficultyNormal
	if v, ok := input["difficulty"].(string); ok && v != "" {
		difficulty = recipes.Difficulty(v)
	}

	ranked, err := t.scorer.Recommend(ctx, diet, difficulty)
	if err != nil {
		return nil, fmt.Errorf("recipe search: %w", err)
	}

	// marshal -> map[string]any to keep outputs uniform
	b, err := json.Marshal(map[string]any{"recipes": ranked})
	if err != nil {
		return nil, fmt.Errorf("recipe search: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("recipe search: %w", err)
	}
	return m, nil
}
