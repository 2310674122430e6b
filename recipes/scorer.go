package recipes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"recomendachef/inventory"
)

const (
	// Phase-one cutoff: availability scoring only runs over the best 20
	// preference-scored recipes to bound cost.
	phaseOneCutoff = 20

	// At most 3 recommendations leave the scorer.
	maxRecommendations = 3

	dietaryPoints         = 10
	difficultyMatchPoints = 5
	hardMatchPoints       = 7
	hardNormalPoints      = 2
)

// InventoryReader is the pantry view the scorer awards availability points from.
type InventoryReader interface {
	FetchVisible(ctx context.Context) []inventory.Item
}

// Scorer ranks catalog recipes against dietary preference, difficulty
// preference, and pantry availability.
type Scorer struct {
	catalog   CatalogState
	inventory InventoryReader
}

func NewScorer(catalog CatalogState, inv InventoryReader) *Scorer {
	return &Scorer{catalog: catalog, inventory: inv}
}

// Recommend returns up to 3 recipes ranked by combined score descending.
// Ties keep catalog order.
func (s *Scorer) Recommend(ctx context.Context, diet DietaryType, difficulty Difficulty) ([]Recipe, error) {
	catalog, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return []Recipe{}, nil
	}

	// Phase 1: preference scoring over the full catalog.
	for i := range catalog {
		catalog[i].Score = preferenceScore(catalog[i], diet, difficulty)
	}
	sortByScore(catalog)
	if len(catalog) > phaseOneCutoff {
		catalog = catalog[:phaseOneCutoff]
	}

	// Phase 2: availability scoring over the survivors only.
	available := map[int]bool{}
	for _, item := range s.inventory.FetchVisible(ctx) {
		available[item.ProductID] = true
	}
	for i := range catalog {
		catalog[i].Score += availabilityPoints(catalog[i], available)
	}
	sortByScore(catalog)

	if len(catalog) > maxRecommendations {
		catalog = catalog[:maxRecommendations]
	}

	slog.Info("SCORER: Ranked recipes",
		"dietary_type", diet,
		"difficulty", difficulty,
		"available_products", len(available),
		"returned", len(catalog),
	)
	return catalog, nil
}

func (s *Scorer) load(ctx context.Context) ([]Recipe, error) {
	b, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("read recipe catalog: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return []Recipe{}, nil
	}
	var catalog []Recipe
	if err := json.Unmarshal(b, &catalog); err != nil {
		return nil, fmt.Errorf("parse recipe catalog: %w", err)
	}
	return catalog, nil
}

// preferenceScore awards dietary and difficulty points. A "normal" dietary
// preference is inclusive: it also satisfies vegetarian, vegan, and celiac
// recipes. Vegetarian additionally satisfies vegan (a subset).
func preferenceScore(r Recipe, diet DietaryType, difficulty Difficulty) int {
	score := 0

	switch diet {
	case DietNormal:
		switch r.DietaryType {
		case DietNormal, DietVegetarian, DietVegan, DietCeliac:
			score += dietaryPoints
		}
	case DietVegetarian:
		if r.DietaryType == DietVegetarian || r.DietaryType == DietVegan {
			score += dietaryPoints
		}
	case DietVegan:
		if r.DietaryType == DietVegan {
			score += dietaryPoints
		}
	case DietCeliac:
		if r.DietaryType == DietCeliac {
			score += dietaryPoints
		}
	}

	switch difficulty {
	case DifficultyEasy:
		if r.Difficulty == DifficultyEasy {
			score += difficultyMatchPoints
		}
	case DifficultyNormal:
		if r.Difficulty == DifficultyNormal || r.Difficulty == DifficultyEasy {
			score += difficultyMatchPoints
		}
	case DifficultyHard:
		if r.Difficulty == DifficultyHard {
			score += hardMatchPoints
		}
		if r.Difficulty == DifficultyNormal {
			score += hardNormalPoints
		}
	}

	return score
}

// availabilityPoints awards one point per required product present in the
// visible pantry. Presence only; quantities are not compared.
func availabilityPoints(r Recipe, available map[int]bool) int {
	points := 0
	for _, rp := range r.RequiredProducts {
		if available[rp.ProductID] {
			points++
		}
	}
	return points
}

func sortByScore(catalog []Recipe) {
	sort.SliceStable(catalog, func(i, j int) bool {
		return catalog[i].Score > catalog[j].Score
	})
}
