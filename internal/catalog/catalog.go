// Package catalog reads and writes the food catalog as YAML.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/myrjola/coachstats/internal/analytics"
	"gopkg.in/yaml.v3"
)

// ErrInvalidFood is wrapped by every validation failure returned from Parse.
var ErrInvalidFood = errors.New("invalid food")

const maxGramsPer100g = 100

// File is the YAML document layout.
type File struct {
	Foods []Food `yaml:"foods"`
}

// Food is one catalog entry with macronutrients in grams per 100 grams.
type Food struct {
	Name     string  `yaml:"name"`
	Category string  `yaml:"category"`
	Protein  float64 `yaml:"protein"`
	Carbs    float64 `yaml:"carbs"`
	Fat      float64 `yaml:"fat"`
}

// Parse decodes and validates a catalog document. Unknown fields are rejected.
//
// All invalid entries are reported together.
func Parse(r io.Reader) ([]analytics.FoodItem, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	var (
		items = make([]analytics.FoodItem, 0, len(file.Foods))
		seen  = make(map[string]int, len(file.Foods))
		errs  []error
	)
	for i, f := range file.Foods {
		name := strings.TrimSpace(f.Name)
		if err := f.validate(); err != nil {
			errs = append(errs, fmt.Errorf("food %d (%q): %w", i+1, name, err))
			continue
		}
		folded := strings.ToLower(name)
		if first, ok := seen[folded]; ok {
			errs = append(errs, fmt.Errorf("food %d (%q): %w: duplicate of food %d", i+1, name, ErrInvalidFood, first))
			continue
		}
		seen[folded] = i + 1
		items = append(items, analytics.FoodItem{
			ID:             0,
			Name:           name,
			Category:       analytics.FoodCategory(f.Category),
			ProteinPer100g: f.Protein,
			CarbsPer100g:   f.Carbs,
			FatPer100g:     f.Fat,
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return items, nil
}

func (f Food) validate() error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidFood)
	case !analytics.FoodCategory(f.Category).Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidFood, f.Category)
	case f.Protein < 0 || f.Carbs < 0 || f.Fat < 0:
		return fmt.Errorf("%w: negative macronutrient", ErrInvalidFood)
	case f.Protein+f.Carbs+f.Fat > maxGramsPer100g:
		return fmt.Errorf("%w: macronutrients exceed %d g per 100 g", ErrInvalidFood, maxGramsPer100g)
	}
	return nil
}

// Encode writes foods as a catalog document that Parse accepts.
func Encode(w io.Writer, foods []analytics.FoodItem) error {
	file := File{Foods: make([]Food, 0, len(foods))}
	for _, f := range foods {
		file.Foods = append(file.Foods, Food{
			Name:     f.Name,
			Category: string(f.Category),
			Protein:  f.ProteinPer100g,
			Carbs:    f.CarbsPer100g,
			Fat:      f.FatPer100g,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2) //nolint:mnd // two-space indentation
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close encoder: %w", err)
	}
	return nil
}
