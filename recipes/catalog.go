package recipes

import (
	"context"
	"errors"
	"os"
)

// DietaryType classifies a recipe's dietary restriction level.
type DietaryType string

const (
	DietNormal     DietaryType = "normal"
	DietVegetarian DietaryType = "vegetarian"
	DietVegan      DietaryType = "vegan"
	DietCeliac     DietaryType = "celiac"
)

// Difficulty classifies how hard a recipe is to prepare.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// RequiredProduct references a pantry product a recipe needs.
type RequiredProduct struct {
	ProductID int     `json:"product_id"`
	Quantity  float64 `json:"quantity,omitempty"`
}

// Recipe is one entry of the immutable recipe catalog. Score is computed per
// scoring request and never persisted.
type Recipe struct {
	Name             string            `json:"name"`
	DietaryType      DietaryType       `json:"dietary_type"`
	Difficulty       Difficulty        `json:"difficulty"`
	RequiredProducts []RequiredProduct `json:"required_products"`
	Score            int               `json:"score"`
}

// CatalogState loads the raw recipe catalog document.
type CatalogState interface {
	Load(ctx context.Context) ([]byte, error)
}

type FileCatalogState struct {
	FilePath string
}

func NewFileCatalogState(filePath string) *FileCatalogState {
	return &FileCatalogState{FilePath: filePath}
}

func (f *FileCatalogState) Load(ctx context.Context) ([]byte, error) {
	return os.ReadFile(f.FilePath)
}

// TestCatalogState is a simple in-memory implementation for testing.
type TestCatalogState struct {
	data []byte
	err  error
}

func NewTestCatalogState(data []byte) *TestCatalogState {
	return &TestCatalogState{data: data}
}

func NewTestCatalogStateWithError() *TestCatalogState {
	return &TestCatalogState{err: errors.New("not found")}
}

func (t *TestCatalogState) Load(ctx context.Context) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.data, nil
}
