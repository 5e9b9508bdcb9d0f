package analytics

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DraftEntry is the in-progress input for one exercise. Values are kept as typed by the trainee.
type DraftEntry struct {
	Weight     string `json:"weight"`
	Reps       string `json:"reps"`
	RIR        string `json:"rir"`
	IsComplete bool   `json:"isComplete"`
}

// Draft is a cached in-progress workout keyed by exercise ID.
type Draft map[int]DraftEntry

// EncodeDraft serialises draft in the current storage shape.
func EncodeDraft(draft Draft) ([]byte, error) {
	if draft == nil {
		draft = Draft{}
	}
	b, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("marshal draft: %w", err)
	}
	return b, nil
}

// MigrateDraft parses a cached draft blob of any known vintage into the current shape.
//
// When exerciseIDs is non-nil, the result holds exactly those exercises and missing or unreadable entries are
// empty. Malformed input never fails; it degrades to empty entries.
func MigrateDraft(raw []byte, exerciseIDs []int) Draft {
	var blob map[string]json.RawMessage
	if err := json.Unmarshal(raw, &blob); err != nil {
		blob = nil
	}

	parsed := make(Draft, len(blob))
	for key, value := range blob {
		exerciseID, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		parsed[exerciseID] = classifyDraft(value).entry()
	}

	if exerciseIDs == nil {
		return parsed
	}
	draft := make(Draft, len(exerciseIDs))
	for _, exerciseID := range exerciseIDs {
		draft[exerciseID] = parsed[exerciseID]
	}
	return draft
}

// MigrateDraftEntry parses the cached value of a single exercise.
func MigrateDraftEntry(raw []byte) DraftEntry {
	return classifyDraft(raw).entry()
}

// draftVariant is one of currentDraft, legacyMultiSetDraft or corruptDraft.
type draftVariant interface {
	entry() DraftEntry
}

type currentDraft struct {
	DraftEntry
}

func (d currentDraft) entry() DraftEntry {
	return d.DraftEntry
}

// legacyMultiSetDraft is the shape used before drafts were reduced to one representative set per exercise.
type legacyMultiSetDraft struct {
	Sets       []legacySet
	IsComplete bool
}

type legacySet struct {
	Weight lenientString `json:"weight"`
	Reps   lenientString `json:"reps"`
	RIR    lenientString `json:"rir"`
}

// entry projects the heaviest set, breaking weight ties by reps.
func (d legacyMultiSetDraft) entry() DraftEntry {
	result := DraftEntry{Weight: "", Reps: "", RIR: "", IsComplete: d.IsComplete}
	var best SetEntry
	for i, set := range d.Sets {
		candidate := SetEntry{ //nolint:exhaustruct // only weight and reps are ranked
			WeightKg: parseDraftFloat(string(set.Weight)),
			Reps:     parseDraftInt(string(set.Reps)),
		}
		if i == 0 || BetterSet(candidate, best) {
			best = candidate
			result.Weight = string(set.Weight)
			result.Reps = string(set.Reps)
			result.RIR = string(set.RIR)
		}
	}
	return result
}

type corruptDraft struct{}

func (corruptDraft) entry() DraftEntry {
	return DraftEntry{Weight: "", Reps: "", RIR: "", IsComplete: false}
}

// classifyDraft resolves a stored value into its variant once so that nothing downstream branches on shape.
func classifyDraft(raw json.RawMessage) draftVariant {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return corruptDraft{}
	}

	var isComplete lenientBool
	if v, ok := fields["isComplete"]; ok {
		if err := json.Unmarshal(v, &isComplete); err != nil {
			return corruptDraft{}
		}
	}

	if v, ok := fields["sets"]; ok {
		var sets []legacySet
		if err := json.Unmarshal(v, &sets); err != nil {
			return corruptDraft{}
		}
		return legacyMultiSetDraft{Sets: sets, IsComplete: bool(isComplete)}
	}

	_, hasWeight := fields["weight"]
	_, hasReps := fields["reps"]
	_, hasRIR := fields["rir"]
	_, hasComplete := fields["isComplete"]
	if !hasWeight && !hasReps && !hasRIR && !hasComplete {
		return corruptDraft{}
	}

	var set legacySet
	if err := json.Unmarshal(raw, &set); err != nil {
		return corruptDraft{}
	}
	return currentDraft{DraftEntry{
		Weight:     string(set.Weight),
		Reps:       string(set.Reps),
		RIR:        string(set.RIR),
		IsComplete: bool(isComplete),
	}}
}

// lenientString accepts JSON strings, numbers and null.
type lenientString string

func (s *lenientString) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	switch {
	case trimmed == "null":
		*s = ""
	case strings.HasPrefix(trimmed, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return fmt.Errorf("unmarshal string: %w", err)
		}
		*s = lenientString(str)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("unmarshal number: %w", err)
		}
		*s = lenientString(n.String())
	}
	return nil
}

// lenientBool accepts JSON booleans, "true"/"false" strings and null.
type lenientBool bool

func (v *lenientBool) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	switch trimmed {
	case "true", `"true"`:
		*v = true
	case "false", `"false"`, "null":
		*v = false
	default:
		return fmt.Errorf("invalid boolean %s", trimmed)
	}
	return nil
}

func parseDraftFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

func parseDraftInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
