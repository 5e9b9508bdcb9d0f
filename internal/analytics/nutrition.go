package analytics

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
)

// Energy per gram of macronutrient in kcal.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// Match score thresholds.
const (
	excellentMatchScore = 0.90
	fairMatchScore      = 0.75
)

// ErrCategoryMismatch is returned when a swap is requested between foods of different categories.
var ErrCategoryMismatch = errors.New("foods belong to different categories")

// Macros are macronutrient grams and their energy in kcal.
type Macros struct {
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Calories float64 `json:"calories"`
}

// Add returns the component-wise sum.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
		Calories: m.Calories + o.Calories,
	}
}

// Sub returns the signed component-wise difference m - o.
func (m Macros) Sub(o Macros) Macros {
	return Macros{
		Protein:  m.Protein - o.Protein,
		Carbs:    m.Carbs - o.Carbs,
		Fat:      m.Fat - o.Fat,
		Calories: m.Calories - o.Calories,
	}
}

func (m Macros) axis(a Axis) float64 {
	switch a {
	case AxisProtein:
		return m.Protein
	case AxisCarbs:
		return m.Carbs
	case AxisFat:
		return m.Fat
	case AxisCalories:
		return m.Calories
	default:
		return 0
	}
}

// Axis is one of the four compared nutritional dimensions.
type Axis string

const (
	AxisProtein  Axis = "protein"
	AxisCarbs    Axis = "carbs"
	AxisFat      Axis = "fat"
	AxisCalories Axis = "calories"
)

var allAxes = []Axis{AxisProtein, AxisCarbs, AxisFat, AxisCalories} //nolint:gochecknoglobals // read-only

// DefiningAxis returns the macro a category is characterised by. Categories without a dominant macro are matched on
// energy.
func DefiningAxis(category FoodCategory) Axis {
	switch category { //nolint:exhaustive // the remaining categories default to calories
	case FoodCategoryProtein:
		return AxisProtein
	case FoodCategoryCarbs, FoodCategoryBread:
		return AxisCarbs
	case FoodCategoryFat:
		return AxisFat
	default:
		return AxisCalories
	}
}

// MacrosFor computes the macros of grams of food.
func MacrosFor(food FoodItem, grams float64) Macros {
	factor := grams / 100 //nolint:mnd // values are per 100 g
	m := Macros{
		Protein:  food.ProteinPer100g * factor,
		Carbs:    food.CarbsPer100g * factor,
		Fat:      food.FatPer100g * factor,
		Calories: 0,
	}
	m.Calories = m.Protein*kcalPerGramProtein + m.Carbs*kcalPerGramCarbs + m.Fat*kcalPerGramFat
	return m
}

// MatchQuality is the display tier of a swap.
type MatchQuality string

const (
	MatchExcellent MatchQuality = "excellent"
	MatchFair      MatchQuality = "fair"
	MatchPoor      MatchQuality = "poor"
)

// Message is the qualitative explanation shown next to the tier.
func (q MatchQuality) Message() string {
	switch q {
	case MatchExcellent:
		return "Nearly identical macros. Swap freely."
	case MatchFair:
		return "Close enough for most days, but some macros drift."
	case MatchPoor:
		return "Macros differ noticeably. Adjust the rest of the meal."
	default:
		return ""
	}
}

func qualityFor(score float64) MatchQuality {
	switch {
	case score >= excellentMatchScore:
		return MatchExcellent
	case score >= fairMatchScore:
		return MatchFair
	default:
		return MatchPoor
	}
}

// SwapResult describes how much of the target food replaces the source food.
type SwapResult struct {
	Source       FoodItem `json:"source"`
	Target       FoodItem `json:"target"`
	SourceAmount float64  `json:"source_amount"`
	TargetAmount float64  `json:"target_amount"`
	SourceMacros Macros   `json:"source_macros"`
	TargetMacros Macros   `json:"target_macros"`
	// Differences is TargetMacros - SourceMacros.
	Differences  Macros       `json:"differences"`
	MatchScore   float64      `json:"match_score"`
	MatchQuality MatchQuality `json:"match_quality"`
}

// Swap finds the amount of target that matches sourceAmount of source on the category's defining axis.
//
// Foods of different categories are a caller error. A non-positive amount, or a target without any of the
// defining macro, yields the zero SwapResult.
func Swap(source, target FoodItem, sourceAmount float64) (SwapResult, error) {
	if source.Category != target.Category {
		return SwapResult{}, fmt.Errorf("%w: %s is %s, %s is %s",
			ErrCategoryMismatch, source.Name, source.Category, target.Name, target.Category)
	}
	if sourceAmount <= 0 {
		return SwapResult{}, nil
	}

	axis := DefiningAxis(source.Category)
	sourceDensity := MacrosFor(source, 100).axis(axis) //nolint:mnd // per 100 g
	targetDensity := MacrosFor(target, 100).axis(axis) //nolint:mnd // per 100 g
	if targetDensity <= 0 {
		return SwapResult{}, nil
	}

	targetAmount := sourceAmount * sourceDensity / targetDensity
	sourceMacros := MacrosFor(source, sourceAmount)
	targetMacros := MacrosFor(target, targetAmount)
	score := matchScore(sourceMacros, targetMacros)

	return SwapResult{
		Source:       source,
		Target:       target,
		SourceAmount: sourceAmount,
		TargetAmount: targetAmount,
		SourceMacros: sourceMacros,
		TargetMacros: targetMacros,
		Differences:  targetMacros.Sub(sourceMacros),
		MatchScore:   score,
		MatchQuality: qualityFor(score),
	}, nil
}

// matchScore is 1 minus the mean relative difference over all axes, so 1 is a perfect match.
func matchScore(source, target Macros) float64 {
	var total float64
	for _, a := range allAxes {
		s, t := source.axis(a), target.axis(a)
		denominator := math.Max(math.Abs(s), math.Abs(t))
		if denominator == 0 {
			continue
		}
		total += math.Abs(t-s) / denominator
	}
	score := 1 - total/float64(len(allAxes))
	return math.Max(0, math.Min(1, score))
}

// SwapCandidates swaps source into every other catalog food of the same category, best match first.
func SwapCandidates(source FoodItem, sourceAmount float64, catalog []FoodItem) []SwapResult {
	candidates := []SwapResult{}
	if sourceAmount <= 0 {
		return candidates
	}
	for _, food := range catalog {
		if food.ID == source.ID || food.Category != source.Category {
			continue
		}
		result, err := Swap(source, food, sourceAmount)
		if err != nil || result.TargetAmount <= 0 {
			continue
		}
		candidates = append(candidates, result)
	}
	slices.SortFunc(candidates, func(a, b SwapResult) int {
		if c := cmp.Compare(b.MatchScore, a.MatchScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Target.Name, b.Target.Name)
	})
	return candidates
}
