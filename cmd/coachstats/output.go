package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/myrjola/coachstats/internal/analytics"
	"github.com/myrjola/coachstats/internal/coaching"
	"github.com/myrjola/coachstats/internal/ptr"
	"github.com/myrjola/coachstats/internal/report"
)

type outputFormat string

const (
	formatMarkdown outputFormat = "markdown"
	formatHTML     outputFormat = "html"
	formatJSON     outputFormat = "json"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case formatMarkdown, formatHTML, formatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: output format %q", coaching.ErrInvalidInput, s)
	}
}

func writeDashboard(w io.Writer, format outputFormat, d coaching.Dashboard) error {
	switch format {
	case formatHTML:
		return report.DashboardHTML(w, d)
	case formatJSON:
		return writeJSON(w, d)
	case formatMarkdown:
	}
	return report.DashboardMarkdown(w, d)
}

func writeLeaderboard(w io.Writer, format outputFormat, l coaching.Leaderboard) error {
	switch format {
	case formatHTML:
		return report.LeaderboardHTML(w, l)
	case formatJSON:
		return writeJSON(w, l)
	case formatMarkdown:
	}
	return report.LeaderboardMarkdown(w, l)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // two spaces between columns
}

func writeTrend(w io.Writer, trend coaching.StrengthTrend) error {
	_, _ = fmt.Fprintf(w, "%s\n", trend.Exercise.Name)
	if len(trend.Points) == 0 {
		_, _ = fmt.Fprintln(w, "no sets in period")
		return nil
	}
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "DATE\tESTIMATED 1RM")
	for _, p := range trend.Points {
		_, _ = fmt.Fprintf(tw, "%s\t%.1f\n", p.Date.Format(time.DateOnly), p.OneRM)
	}
	return tw.Flush()
}

func writeFoods(w io.Writer, foods []analytics.FoodItem) error {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPROTEIN\tCARBS\tFAT")
	for _, f := range foods {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%.1f\t%.1f\n",
			f.ID, f.Name, f.Category, f.ProteinPer100g, f.CarbsPer100g, f.FatPer100g)
	}
	return tw.Flush()
}

func writeSwaps(w io.Writer, results []analytics.SwapResult) error {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "no replacements")
		return nil
	}
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "FOOD\tGRAMS\tPROTEIN\tCARBS\tFAT\tKCAL\tMATCH")
	for _, r := range results {
		d := r.Differences
		_, _ = fmt.Fprintf(tw, "%s\t%.0f\t%+.1f\t%+.1f\t%+.1f\t%+.0f\t%s\n",
			r.Target.Name, r.TargetAmount, d.Protein, d.Carbs, d.Fat, d.Calories, r.MatchQuality.Message())
	}
	return tw.Flush()
}

// writeFile creates path and hands it to write, closing it afterwards.
func writeFile(path string, write func(f *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return write(f)
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q", coaching.ErrInvalidInput, s)
	}
	return t, nil
}

func parseID(s, kind string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s ID %q", coaching.ErrInvalidInput, kind, s)
	}
	return id, nil
}

func parseTraineeRoutine(args []string) (int, int, error) {
	traineeID, err := parseID(args[0], "trainee")
	if err != nil {
		return 0, 0, err
	}
	routineID, err := parseID(args[1], "routine")
	if err != nil {
		return 0, 0, err
	}
	return traineeID, routineID, nil
}

func parseAmount(s, what string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", coaching.ErrInvalidInput, what, s)
	}
	return f, nil
}

// parseSet parses exercise-id:weight:reps[:rir].
func parseSet(s string) (analytics.SetEntry, error) {
	invalid := fmt.Errorf("%w: set %q, want exercise-id:weight:reps[:rir]", coaching.ErrInvalidInput, s)
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return analytics.SetEntry{}, invalid
	}
	exerciseID, err := parseID(parts[0], "exercise")
	if err != nil {
		return analytics.SetEntry{}, invalid
	}
	weight, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return analytics.SetEntry{}, invalid
	}
	reps, err := strconv.Atoi(parts[2])
	if err != nil {
		return analytics.SetEntry{}, invalid
	}
	set := analytics.SetEntry{ExerciseID: exerciseID, WeightKg: weight, Reps: reps, RIR: nil, Date: time.Time{}}
	if len(parts) == 4 { //nolint:mnd // optional reps in reserve
		rir, rirErr := strconv.Atoi(parts[3])
		if rirErr != nil {
			return analytics.SetEntry{}, invalid
		}
		set.RIR = ptr.Ref(rir)
	}
	return set, nil
}
