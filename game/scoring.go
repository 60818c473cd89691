package game

// Round length in seconds; also the baseline for scoring.
const RoundDuration = 60

// Points computes the score awarded for a correct guess made while
// timeLeft seconds remained: strictly decreasing in elapsed time, floored
// at 20, capped at 100.
func Points(timeLeft int) int {
	points := 100 - (RoundDuration-timeLeft)*2
	if points < 20 {
		return 20
	}
	return points
}
