package services

import "fmt"

// Token amounts for the non-milestone transitions.
const (
	rewardFirstCheckIn = 10
	rewardDailyStreak  = 5
	rewardReturned     = 2
)

// milestoneRewards maps streak counts to their one-off bonus amounts.
var milestoneRewards = map[int]int{
	3:  15,
	7:  25,
	14: 50,
	30: 100,
}

// Reward is a token award produced by one streak transition. A zero Amount
// means no ledger entry should be written.
type Reward struct {
	Amount      int
	Description string
}

// RewardFor maps a streak transition to the tokens it earns.
func RewardFor(transition StreakTransition, newCount int) Reward {
	switch transition {
	case TransitionFirst:
		return Reward{Amount: rewardFirstCheckIn, Description: "First check-in"}
	case TransitionContinued:
		if bonus, ok := milestoneRewards[newCount]; ok {
			return Reward{
				Amount:      bonus,
				Description: fmt.Sprintf("%d-day streak milestone", newCount),
			}
		}
		return Reward{
			Amount:      rewardDailyStreak,
			Description: fmt.Sprintf("Day %d streak", newCount),
		}
	case TransitionReset:
		return Reward{Amount: rewardReturned, Description: "Returned for check-in"}
	default:
		return Reward{}
	}
}
