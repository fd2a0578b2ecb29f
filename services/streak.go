package services

import (
	"time"

	"github.com/mindgarden/mindgarden/models"
)

// StreakTransition classifies what a check-in did to the streak.
type StreakTransition int

const (
	// TransitionFirst is the user's first-ever check-in.
	TransitionFirst StreakTransition = iota
	// TransitionSameDay is a repeat check-in on the same calendar day.
	TransitionSameDay
	// TransitionContinued extends the streak by one day.
	TransitionContinued
	// TransitionReset restarts the streak after one or more missed days.
	TransitionReset
)

// StreakResult is the outcome of evaluating one check-in against the stored
// streak state.
type StreakResult struct {
	Count       int
	LastCheckIn time.Time
	PlantLevel  string
	Transition  StreakTransition
	DayDelta    int
}

// EvaluateStreak computes the next streak state from the stored state and the
// supplied clock value. It is pure: the caller injects "now".
//
// Day distance is measured midnight-to-midnight, not in elapsed hours, so a
// check-in at 23:50 followed by one at 00:10 the next day counts as one day.
func EvaluateStreak(count int, last *time.Time, now time.Time) StreakResult {
	if last == nil {
		return StreakResult{
			Count:       1,
			LastCheckIn: now,
			PlantLevel:  models.PlantSprout,
			Transition:  TransitionFirst,
		}
	}

	delta := calendarDays(*last, now)
	switch {
	case delta == 0:
		return StreakResult{
			Count:       count,
			LastCheckIn: *last,
			PlantLevel:  PlantLevelFor(count),
			Transition:  TransitionSameDay,
			DayDelta:    0,
		}
	case delta == 1:
		next := count + 1
		return StreakResult{
			Count:       next,
			LastCheckIn: now,
			PlantLevel:  PlantLevelFor(next),
			Transition:  TransitionContinued,
			DayDelta:    1,
		}
	default:
		return StreakResult{
			Count:       1,
			LastCheckIn: now,
			PlantLevel:  models.PlantSprout,
			Transition:  TransitionReset,
			DayDelta:    delta,
		}
	}
}

// PlantLevelFor maps a streak count to its display tier.
func PlantLevelFor(count int) string {
	switch {
	case count >= 14:
		return models.PlantTree
	case count >= 7:
		return models.PlantFlower
	case count >= 3:
		return models.PlantLeaf
	default:
		return models.PlantSprout
	}
}

// NextPlantThreshold returns the streak count at which the next tier unlocks,
// or 0 when the user already reached the highest tier.
func NextPlantThreshold(count int) int {
	switch {
	case count < 3:
		return 3
	case count < 7:
		return 7
	case count < 14:
		return 14
	default:
		return 0
	}
}

// calendarDays counts midnight boundaries crossed between a and b.
func calendarDays(a, b time.Time) int {
	am := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, a.Location())
	bm := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, b.Location())
	return int(bm.Sub(am) / (24 * time.Hour))
}
