package game

import "memory-match-server/config"

// VictoryBonus returns the points of the first step whose threshold is above
// moves, or 0 when moves is at or beyond the last threshold. The table must be
// ordered by ascending threshold.
func VictoryBonus(table []config.BonusStep, moves int) int {
	for _, step := range table {
		if moves < step.UnderMoves {
			return step.Points
		}
	}
	return 0
}
