// Package report renders dashboards and leaderboards as Markdown and HTML.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"text/template"
	"time"

	"github.com/myrjola/coachstats/internal/analytics"
	"github.com/myrjola/coachstats/internal/coaching"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.md.tmpl
var templateFS embed.FS

var periodNames = map[analytics.Filter]string{ //nolint:gochecknoglobals // lookup table.
	analytics.FilterToday:      "today",
	analytics.FilterWeek:       "this week",
	analytics.FilterMonth:      "this month",
	analytics.FilterThreeMonth: "last three months",
	analytics.FilterYear:       "last year",
	analytics.FilterAll:        "all time",
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"number": formatNumber,
		"signed": func(f float64) string {
			if f > 0 {
				return "+" + formatNumber(f)
			}
			return formatNumber(f)
		},
		"delta": func(d analytics.Delta) string {
			change := formatNumber(d.Change)
			if d.Change > 0 {
				change = "+" + change
			}
			if d.PercentChange == nil {
				return change
			}
			return fmt.Sprintf("%s (%+.0f%%)", change, *d.PercentChange)
		},
		"date": func(t time.Time) string {
			return t.Format(time.DateOnly)
		},
		"period": func(f analytics.Filter) string {
			if name, ok := periodNames[f]; ok {
				return name
			}
			return string(f)
		},
		"window": func(w analytics.Window) string {
			if w.Unbounded() {
				return "Every logged day."
			}
			return fmt.Sprintf("From %s to %s.", w.Start.Format(time.DateTime), w.End.Format(time.DateTime))
		},
		"exercises": func(stats map[int]analytics.ExerciseStats) []analytics.ExerciseStats {
			ids := slices.Sorted(maps.Keys(stats))
			sorted := make([]analytics.ExerciseStats, 0, len(ids))
			for _, id := range ids {
				sorted = append(sorted, stats[id])
			}
			return sorted
		},
		"exerciseName": lookupName("exercise"),
		"traineeName":  lookupName("trainee"),
	}
}

func lookupName(kind string) func(names map[int]string, id int) string {
	return func(names map[int]string, id int) string {
		if name, ok := names[id]; ok {
			return name
		}
		return fmt.Sprintf("%s %d", kind, id)
	}
}

func render(w io.Writer, name string, data any) error {
	t, err := template.New(name).Funcs(templateFuncs()).ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}
	if err = t.Execute(w, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	return nil
}

// DashboardMarkdown writes the dashboard as GitHub flavoured Markdown.
func DashboardMarkdown(w io.Writer, d coaching.Dashboard) error {
	return render(w, "dashboard.md.tmpl", d)
}

// LeaderboardMarkdown writes the leaderboard as GitHub flavoured Markdown.
func LeaderboardMarkdown(w io.Writer, l coaching.Leaderboard) error {
	return render(w, "leaderboard.md.tmpl", l)
}

// DashboardHTML writes the dashboard as an HTML fragment.
func DashboardHTML(w io.Writer, d coaching.Dashboard) error {
	var md bytes.Buffer
	if err := DashboardMarkdown(&md, d); err != nil {
		return err
	}
	return toHTML(w, md.Bytes())
}

// LeaderboardHTML writes the leaderboard as an HTML fragment.
func LeaderboardHTML(w io.Writer, l coaching.Leaderboard) error {
	var md bytes.Buffer
	if err := LeaderboardMarkdown(&md, l); err != nil {
		return err
	}
	return toHTML(w, md.Bytes())
}

func toHTML(w io.Writer, markdown []byte) error {
	converter := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := converter.Convert(markdown, w); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	return nil
}
