package analytics

import (
	"cmp"
	"slices"
)

// DetectRecords compares a trainee's per-exercise maxima in current against the preceding window of equal length.
//
// An event is emitted only when the previous maximum is positive. A first-ever lift has no baseline and is not a
// record. An unbounded window has no preceding window and therefore yields no events.
func DetectRecords(logs []WorkoutLog, traineeID int, current Window) []PersonalRecordEvent {
	previous, ok := current.Previous()
	if !ok {
		return []PersonalRecordEvent{}
	}
	return detectRecords(Aggregate(logs, current), Aggregate(logs, previous), traineeID)
}

// DetectCohortRecords detects records for each trainee independently and merges the results.
func DetectCohortRecords(logs []WorkoutLog, traineeIDs []int, current Window) []PersonalRecordEvent {
	previous, ok := current.Previous()
	if !ok {
		return []PersonalRecordEvent{}
	}
	currentSummary := Aggregate(logs, current)
	previousSummary := Aggregate(logs, previous)

	events := []PersonalRecordEvent{}
	for _, traineeID := range traineeIDs {
		events = append(events, detectRecords(currentSummary, previousSummary, traineeID)...)
	}
	sortRecords(events)
	return events
}

func detectRecords(current, previous Summary, traineeID int) []PersonalRecordEvent {
	events := []PersonalRecordEvent{}
	currentStats := current.Trainee(traineeID)
	if currentStats == nil {
		return events
	}
	previousStats := previous.Trainee(traineeID)

	for exerciseID, stats := range currentStats.Exercises {
		previousMax := previousStats.MaxWeight(exerciseID)
		if previousMax <= 0 || stats.MaxWeight <= previousMax {
			continue
		}
		events = append(events, PersonalRecordEvent{
			TraineeID:      traineeID,
			ExerciseID:     exerciseID,
			NewWeight:      stats.MaxWeight,
			PreviousWeight: previousMax,
			Date:           stats.BestDate,
		})
	}
	sortRecords(events)
	return events
}

// sortRecords orders events newest first.
func sortRecords(events []PersonalRecordEvent) {
	slices.SortFunc(events, func(a, b PersonalRecordEvent) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		if c := cmp.Compare(a.TraineeID, b.TraineeID); c != 0 {
			return c
		}
		return cmp.Compare(a.ExerciseID, b.ExerciseID)
	})
}
