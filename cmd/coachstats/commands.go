package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/myrjola/coachstats/internal/analytics"
	"github.com/myrjola/coachstats/internal/coaching"
	"github.com/myrjola/coachstats/internal/logging"
	"github.com/myrjola/coachstats/internal/report"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (app *application) newRootCmd() *cobra.Command {
	var now string

	root := &cobra.Command{
		Use:           "coachstats",
		Short:         "Training and nutrition analytics for coached trainees",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetContext(logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath())))
			if now == "" {
				return nil
			}
			t, err := parseTime(now)
			if err != nil {
				return err
			}
			app.now = func() time.Time { return t }
			return nil
		},
	}
	root.PersistentFlags().StringVar(&now, "now", "",
		"reference time as RFC 3339 or YYYY-MM-DD, defaults to the current time")

	root.AddCommand(app.newTraineeCmd())
	root.AddCommand(app.newProgramCmd())
	root.AddCommand(app.newLogCmd())
	root.AddCommand(app.newDashboardCmd())
	root.AddCommand(app.newLeaderboardCmd())
	root.AddCommand(app.newTrendCmd())
	root.AddCommand(app.newFoodsCmd())
	root.AddCommand(app.newSwapCmd())
	root.AddCommand(app.newDraftCmd())
	root.AddCommand(app.newImportCatalogCmd())
	root.AddCommand(app.newExportCatalogCmd())
	root.AddCommand(app.newReportCmd())
	root.AddCommand(app.newExportCmd())
	return root
}

func (app *application) newTraineeCmd() *cobra.Command {
	trainee := &cobra.Command{Use: "trainee", Short: "Manage trainees"}

	trainee.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Register a trainee and print the ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.service.CreateTrainee(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	})

	trainee.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List trainees",
		RunE: func(cmd *cobra.Command, _ []string) error {
			trainees, err := app.service.Trainees(cmd.Context())
			if err != nil {
				return err
			}
			w := newTabWriter(cmd.OutOrStdout())
			_, _ = fmt.Fprintln(w, "ID\tNAME\tWEEKLY TARGET")
			for _, t := range trainees {
				target := "-"
				if t.HasProgram {
					target = strconv.Itoa(t.WeeklyTarget)
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", t.ID, t.Name, target)
			}
			return w.Flush()
		},
	})
	return trainee
}

func (app *application) newProgramCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "program <trainee-id> <weekly-target>",
		Short: "Set the weekly workout target, 0 removes the program",
		Args:  cobra.ExactArgs(2), //nolint:mnd // trainee and target
		RunE: func(cmd *cobra.Command, args []string) error {
			traineeID, err := parseID(args[0], "trainee")
			if err != nil {
				return err
			}
			target, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: weekly target %q", coaching.ErrInvalidInput, args[1])
			}
			return app.service.SetProgram(cmd.Context(), traineeID, target)
		},
	}
}

func (app *application) newLogCmd() *cobra.Command {
	logCmd := &cobra.Command{Use: "log", Short: "Record workouts, body weight and food"}

	var (
		date       string
		routineID  int
		sets       []string
		incomplete bool
	)
	workoutCmd := &cobra.Command{
		Use:   "workout <trainee-id>",
		Short: "Record a workout and print its ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traineeID, err := parseID(args[0], "trainee")
			if err != nil {
				return err
			}
			day, err := app.day(date)
			if err != nil {
				return err
			}
			log := analytics.WorkoutLog{
				ID:        0,
				TraineeID: traineeID,
				RoutineID: routineID,
				Date:      day,
				Completed: !incomplete,
				StartTime: nil,
				EndTime:   nil,
				Sets:      make([]analytics.SetEntry, 0, len(sets)),
			}
			for _, s := range sets {
				var set analytics.SetEntry
				if set, err = parseSet(s); err != nil {
					return err
				}
				set.Date = day
				log.Sets = append(log.Sets, set)
			}
			id, err := app.service.LogWorkout(cmd.Context(), log)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	workoutCmd.Flags().StringVar(&date, "date", "", "workout date as YYYY-MM-DD, defaults to today")
	workoutCmd.Flags().IntVar(&routineID, "routine", 0, "routine the workout followed")
	workoutCmd.Flags().StringArrayVar(&sets, "set", nil, "set as exercise-id:weight:reps[:rir], repeatable")
	workoutCmd.Flags().BoolVar(&incomplete, "incomplete", false, "mark the workout as not completed")

	var weightDate string
	weightCmd := &cobra.Command{
		Use:   "weight <trainee-id> <kg>",
		Short: "Record body weight",
		Args:  cobra.ExactArgs(2), //nolint:mnd // trainee and weight
		RunE: func(cmd *cobra.Command, args []string) error {
			traineeID, err := parseID(args[0], "trainee")
			if err != nil {
				return err
			}
			kg, err := parseAmount(args[1], "body weight")
			if err != nil {
				return err
			}
			day, err := app.day(weightDate)
			if err != nil {
				return err
			}
			return app.service.AddBodyWeight(cmd.Context(),
				analytics.BodyWeightEntry{TraineeID: traineeID, Date: day, WeightKg: kg})
		},
	}
	weightCmd.Flags().StringVar(&weightDate, "date", "", "reading date as YYYY-MM-DD, defaults to today")

	var foodDate string
	foodCmd := &cobra.Command{
		Use:   "food <trainee-id> <food-id> <grams>",
		Short: "Add food to the day's nutrition log and print the day's totals",
		Args:  cobra.ExactArgs(3), //nolint:mnd // trainee, food and amount
		RunE: func(cmd *cobra.Command, args []string) error {
			traineeID, err := parseID(args[0], "trainee")
			if err != nil {
				return err
			}
			foodID, err := parseID(args[1], "food")
			if err != nil {
				return err
			}
			grams, err := parseAmount(args[2], "amount")
			if err != nil {
				return err
			}
			day, err := app.day(foodDate)
			if err != nil {
				return err
			}
			entry, err := app.service.AddNutrition(cmd.Context(), traineeID, foodID, grams, day)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s protein %.1f g, carbs %.1f g, fat %.1f g, %.0f kcal\n",
				entry.Date.Format(time.DateOnly), entry.TotalProtein, entry.TotalCarbs, entry.TotalFat,
				entry.TotalCalories)
			return nil
		},
	}
	foodCmd.Flags().StringVar(&foodDate, "date", "", "day as YYYY-MM-DD, defaults to today")

	logCmd.AddCommand(workoutCmd, weightCmd, foodCmd)
	return logCmd
}

func (app *application) newDashboardCmd() *cobra.Command {
	var period, format string
	cmd := &cobra.Command{
		Use:   "dashboard <trainee-id>",
		Short: "Summarise a trainee's training and nutrition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traineeID, err := parseID(args[0], "trainee")
			if err != nil {
				return err
			}
			filter, err := analytics.ParseFilter(period)
			if err != nil {
				return err
			}
			out, err := parseFormat(format)
			if err != nil {
				return err
			}
			dashboard, err := app.service.Dashboard(cmd.Context(), traineeID, filter, app.now())
			if err != nil {
				return err
			}
			return writeDashboard(cmd.OutOrStdout(), out, dashboard)
		},
	}
	addPeriodFlag(cmd, &period)
	addFormatFlag(cmd, &format)
	return cmd
}

func (app *application) newLeaderboardCmd() *cobra.Command {
	var period, format string
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank every trainee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := analytics.ParseFilter(period)
			if err != nil {
				return err
			}
			out, err := parseFormat(format)
			if err != nil {
				return err
			}
			leaderboard, err := app.service.Leaderboard(cmd.Context(), filter, app.now())
			if err != nil {
				return err
			}
			return writeLeaderboard(cmd.OutOrStdout(), out, leaderboard)
		},
	}
	addPeriodFlag(cmd, &period)
	addFormatFlag(cmd, &format)
	return cmd
}

func (app *application) newTrendCmd() *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "trend <trainee-id> <exercise-id>",
		Short: "Print the estimated one-rep max per workout",
		Args:  cobra.ExactArgs(2), //nolint:mnd // trainee and exercise
		RunE: func(cmd *cobra.Command, args []string) error {
			traineeID, err := parseID(args[0], "trainee")
			if err != nil {
				return err
			}
			exerciseID, err := parseID(args[1], "exercise")
			if err != nil {
				return err
			}
			filter, err := analytics.ParseFilter(period)
			if err != nil {
				return err
			}
			trend, err := app.service.StrengthTrend(cmd.Context(), traineeID, exerciseID, filter, app.now())
			if err != nil {
				return err
			}
			return writeTrend(cmd.OutOrStdout(), trend)
		},
	}
	addPeriodFlag(cmd, &period)
	return cmd
}

func (app *application) newFoodsCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "foods",
		Short: "List the food catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := analytics.FoodCategory(category)
			if c != "" && !c.Valid() {
				return fmt.Errorf("%w: unknown category %q", coaching.ErrInvalidInput, category)
			}
			foods, err := app.service.Foods(cmd.Context(), c)
			if err != nil {
				return err
			}
			return writeFoods(cmd.OutOrStdout(), foods)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list foods of the category")
	return cmd
}

func (app *application) newSwapCmd() *cobra.Command {
	var target int
	cmd := &cobra.Command{
		Use:   "swap <food-id> <grams>",
		Short: "Find replacements for an amount of food within its category",
		Args:  cobra.ExactArgs(2), //nolint:mnd // food and amount
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceID, err := parseID(args[0], "food")
			if err != nil {
				return err
			}
			grams, err := parseAmount(args[1], "amount")
			if err != nil {
				return err
			}
			var results []analytics.SwapResult
			if target != 0 {
				var result analytics.SwapResult
				if result, err = app.service.SwapFood(cmd.Context(), sourceID, target, grams); err != nil {
					return err
				}
				results = append(results, result)
			} else if results, err = app.service.SwapSuggestions(cmd.Context(), sourceID, grams); err != nil {
				return err
			}
			return writeSwaps(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().IntVar(&target, "to", 0, "swap into this food instead of listing suggestions")
	return cmd
}

func (app *application) newDraftCmd() *cobra.Command {
	draft := &cobra.Command{Use: "draft", Short: "Inspect and edit in-progress workouts"}

	draft.AddCommand(&cobra.Command{
		Use:   "show <trainee-id> <routine-id>",
		Short: "Print the draft of a routine as JSON",
		Args:  cobra.ExactArgs(2), //nolint:mnd // trainee and routine
		RunE: func(cmd *cobra.Command, args []string) error {
			traineeID, routineID, err := parseTraineeRoutine(args)
			if err != nil {
				return err
			}
			d, err := app.service.LoadDraft(cmd.Context(), traineeID, routineID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), d)
		},
	})

	var entry analytics.DraftEntry
	setCmd := &cobra.Command{
		Use:   "set <trainee-id> <routine-id> <exercise-id>",
		Short: "Update one exercise of a draft",
		Args:  cobra.ExactArgs(3), //nolint:mnd // trainee, routine and exercise
		RunE: func(cmd *cobra.Command, args []string) error {
			traineeID, routineID, err := parseTraineeRoutine(args)
			if err != nil {
				return err
			}
			exerciseID, err := parseID(args[2], "exercise")
			if err != nil {
				return err
			}
			d, err := app.service.LoadDraft(cmd.Context(), traineeID, routineID)
			if err != nil {
				return err
			}
			if _, ok := d[exerciseID]; !ok {
				return fmt.Errorf("%w: exercise %d is not in routine %d", coaching.ErrInvalidInput, exerciseID,
					routineID)
			}
			d[exerciseID] = entry
			return app.service.SaveDraft(cmd.Context(), traineeID, routineID, d)
		},
	}
	setCmd.Flags().StringVar(&entry.Weight, "weight", "", "weight as typed")
	setCmd.Flags().StringVar(&entry.Reps, "reps", "", "reps as typed")
	setCmd.Flags().StringVar(&entry.RIR, "rir", "", "reps in reserve as typed")
	setCmd.Flags().BoolVar(&entry.IsComplete, "complete", false, "mark the exercise as done")

	draft.AddCommand(setCmd)
	return draft
}

func (app *application) newImportCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-catalog <file>",
		Short: "Upsert foods from a YAML catalog, - reads standard input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			r := cmd.InOrStdin()
			if args[0] != "-" {
				var f *os.File
				if f, err = os.Open(args[0]); err != nil {
					return fmt.Errorf("open catalog: %w", err)
				}
				defer func() {
					if closeErr := f.Close(); err == nil && closeErr != nil {
						err = fmt.Errorf("close catalog: %w", closeErr)
					}
				}()
				r = f
			}
			n, err := app.service.ImportCatalog(cmd.Context(), r)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d foods\n", n)
			return nil
		},
	}
}

func (app *application) newExportCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-catalog",
		Short: "Write the food catalog as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.service.ExportCatalog(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// maxConcurrentReports bounds the dashboards rendered at once by the report command.
const maxConcurrentReports = 4

func (app *application) newReportCmd() *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "report <dir>",
		Short: "Write HTML dashboards of every trainee and the leaderboard into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := analytics.ParseFilter(period)
			if err != nil {
				return err
			}
			dir := args[0]
			if err = os.MkdirAll(dir, 0o750); err != nil { //nolint:mnd // owner and group
				return fmt.Errorf("create report directory: %w", err)
			}
			ctx := cmd.Context()
			now := app.now()

			trainees, err := app.service.Trainees(ctx)
			if err != nil {
				return err
			}
			// The leaderboard memoizes the work of every trainee for the dashboards that follow.
			leaderboard, err := app.service.Leaderboard(ctx, filter, now)
			if err != nil {
				return err
			}
			if err = writeFile(filepath.Join(dir, "leaderboard.html"), func(f *os.File) error {
				return report.LeaderboardHTML(f, leaderboard)
			}); err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(maxConcurrentReports)
			for _, t := range trainees {
				g.Go(func() error {
					dashboard, dErr := app.service.Dashboard(gctx, t.ID, filter, now)
					if dErr != nil {
						return dErr
					}
					return writeFile(filepath.Join(dir, fmt.Sprintf("trainee-%d.html", t.ID)), func(f *os.File) error {
						return report.DashboardHTML(f, dashboard)
					})
				})
			}
			if err = g.Wait(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d reports to %s\n", len(trainees)+1, dir)
			return nil
		},
	}
	addPeriodFlag(cmd, &period)
	return cmd
}

func (app *application) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <trainee-id> <dir>",
		Short: "Copy everything of a trainee into a standalone database and print its path",
		Args:  cobra.ExactArgs(2), //nolint:mnd // trainee and directory
		RunE: func(cmd *cobra.Command, args []string) error {
			traineeID, err := parseID(args[0], "trainee")
			if err != nil {
				return err
			}
			path, err := app.service.Export(cmd.Context(), traineeID, args[1])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func addPeriodFlag(cmd *cobra.Command, period *string) {
	names := make([]string, 0, len(analytics.Filters()))
	for _, f := range analytics.Filters() {
		names = append(names, string(f))
	}
	cmd.Flags().StringVar(period, "period", string(analytics.FilterWeek), "period: "+strings.Join(names, "|"))
}

func addFormatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVar(format, "format", string(formatMarkdown), "output: markdown|html|json")
}

// day parses a YYYY-MM-DD date, defaulting to the day of the reference time.
func (app *application) day(s string) (time.Time, error) {
	now := app.now()
	if s == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", coaching.ErrInvalidInput, s)
	}
	return t, nil
}
