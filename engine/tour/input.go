package tour

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/compozy/foodtour/engine/core"
)

const (
	DefaultBudgetLevel = "mid-range"
)

// Input parameterizes the execution request. Values are forwarded to the
// service without local validation.
type Input struct {
	Cities             []string `json:"cities"`
	DietaryPreferences []string `json:"dietary_preferences"`
	BudgetLevel        string   `json:"budget_level"`
}

// DefaultInput returns the reference tour: Tokyo and Istanbul, vegetarian,
// mid-range.
func DefaultInput() Input {
	return Input{
		Cities:             []string{"Tokyo", "Istanbul"},
		DietaryPreferences: []string{"vegetarian"},
		BudgetLevel:        DefaultBudgetLevel,
	}
}

// WithDefaults returns a copy of in with every empty field taken from defaults.
// Neither argument is modified.
func (in Input) WithDefaults(defaults Input) (Input, error) {
	out, err := core.DeepCopy(in)
	if err != nil {
		return Input{}, fmt.Errorf("failed to copy tour input: %w", err)
	}
	fallback, err := core.DeepCopy(defaults)
	if err != nil {
		return Input{}, fmt.Errorf("failed to copy tour defaults: %w", err)
	}
	if err := mergo.Merge(&out, fallback); err != nil {
		return Input{}, fmt.Errorf("failed to merge tour defaults: %w", err)
	}
	return out, nil
}
