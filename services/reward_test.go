package services

import "testing"

func TestRewardFor(t *testing.T) {
	tests := []struct {
		name       string
		transition StreakTransition
		newCount   int
		wantAmount int
		wantDesc   string
	}{
		{"first check-in", TransitionFirst, 1, 10, "First check-in"},
		{"day 2 flat reward", TransitionContinued, 2, 5, "Day 2 streak"},
		{"day 5 not a milestone", TransitionContinued, 5, 5, "Day 5 streak"},
		{"3 day milestone", TransitionContinued, 3, 15, "3-day streak milestone"},
		{"7 day milestone", TransitionContinued, 7, 25, "7-day streak milestone"},
		{"14 day milestone", TransitionContinued, 14, 50, "14-day streak milestone"},
		{"30 day milestone", TransitionContinued, 30, 100, "30-day streak milestone"},
		{"day 31 back to flat", TransitionContinued, 31, 5, "Day 31 streak"},
		{"reset after gap", TransitionReset, 1, 2, "Returned for check-in"},
		{"same day awards nothing", TransitionSameDay, 4, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RewardFor(tt.transition, tt.newCount)
			if got.Amount != tt.wantAmount {
				t.Errorf("RewardFor(%v, %d).Amount = %d, want %d",
					tt.transition, tt.newCount, got.Amount, tt.wantAmount)
			}
			if got.Description != tt.wantDesc {
				t.Errorf("RewardFor(%v, %d).Description = %q, want %q",
					tt.transition, tt.newCount, got.Description, tt.wantDesc)
			}
		})
	}
}
