package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recomendachef/recipes"
)

type mockRecommender struct {
	gotDiet       recipes.DietaryType
	gotDifficulty recipes.Difficulty
	result        []recipes.Recipe
	err           error
}

func (m *mockRecommender) Recommend(ctx context.Context, diet recipes.DietaryType, difficulty recipes.Difficulty) ([]recipes.Recipe, error) {
	m.gotDiet = diet
	m.gotDifficulty = difficulty
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func TestRecipeSearch_Metadata(t *testing.T) {
	tool := NewRecipeSearch(&mockRecommender{})
	assert.Equal(t, "recipe_search", tool.Name())
	assert.NotEmpty(t, tool.Title())
	assert.NotEmpty(t, tool.Description())
	require.NotNil(t, tool.InputSchema())
	assert.Contains(t, tool.InputSchema().Properties, "dietary_type")
	assert.Contains(t, tool.InputSchema().Properties, "difficulty")
	assert.NotNil(t, tool.OutputSchema())
}

func TestRecipeSearch_Run(t *testing.T) {
	scorer := &mockRecommender{result: []recipes.Recipe{
		{Name: "Lentejas", DietaryType: recipes.DietVegan, Difficulty: recipes.DifficultyNormal, Score: 16},
	}}
	tool := NewRecipeSearch(scorer)

	out, err := tool.Run(context.Background(), map[string]any{
		"dietary_type": "vegan",
		"difficulty":   "easy",
	})
	require.NoError(t, err)

	assert.Equal(t, recipes.DietVegan, scorer.gotDiet)
	assert.Equal(t, recipes.DifficultyEasy, scorer.gotDifficulty)

	ranked, ok := out["recipes"].([]any)
	require.True(t, ok)
	require.Len(t, ranked, 1)

	first, ok := ranked[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Lentejas", first["name"])
	assert.Equal(t, "vegan", first["dietary_type"])
	assert.Equal(t, 16.0, first["score"])
}

func TestRecipeSearch_Run_DefaultsToNormal(t *testing.T) {
	scorer := &mockRecommender{result: []recipes.Recipe{}}
	tool := NewRecipeSearch(scorer)

	tests := []struct {
		name  string
		input map[string]any
	}{
		{"empty input", map[string]any{}},
		{"empty strings", map[string]any{"dietary_type": "", "difficulty": ""}},
		{"non-string values", map[string]any{"dietary_type": 7, "difficulty": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tool.Run(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, recipes.DietNormal, scorer.gotDiet)
			assert.Equal(t, recipes.DifficultyNormal, scorer.gotDifficulty)
		})
	}
}

func TestRecipeSearch_Run_ScorerError(t *testing.T) {
	tool := NewRecipeSearch(&mockRecommender{err: errors.New("catalog unreadable")})
	_, err := tool.Run(context.Background(), map[string]any{})
	assert.ErrorContains(t, err, "recipe search")
}
