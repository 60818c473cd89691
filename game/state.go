package game

// Transition writes are built as absolute field values computed from a
// snapshot. Racing clients that observe the same snapshot therefore write
// identical updates, and last-write-wins converges them.

// roundStartUpdate builds the batched multi-field update that starts
// round `round`: lobby -> guessing on game start, and again on every
// reveal -> next-round advance. One update keeps gameState, drawer,
// timer, logs and per-player resets consistent.
func roundStartUpdate(r *Room, round int) (map[string]any, error) {
	if len(r.Players) < 2 {
		return nil, ErrInsufficientPlayers
	}
	drawer, ok := DrawerForRound(r, round)
	if !ok {
		return nil, ErrInsufficientPlayers
	}

	fields := map[string]any{
		"gameState":     StateGuessing,
		"currentDrawer": drawer.ID,
		"currentWord":   "",
		"timeLeft":      RoundDuration,
		"round":         round,
		"paths":         nil,
		"chatMessages":  nil,
	}
	for id := range r.Players {
		fields["players/"+id+"/hasGuessed"] = false
	}
	return fields, nil
}

// wordChosenUpdate is the drawer's single write after picking a word.
func wordChosenUpdate(word string) map[string]any {
	return map[string]any{
		"gameState":   StateDrawing,
		"currentWord": word,
	}
}

// revealUpdate ends the active round. timeLeft is zeroed only when the
// trigger was the countdown; an all-guessed reveal keeps the remaining
// time on the board.
func revealUpdate(timerExpired bool) map[string]any {
	fields := map[string]any{"gameState": StateReveal}
	if timerExpired {
		fields["timeLeft"] = 0
	}
	return fields
}

// shouldEndGame reports the round-advance boundary: with round = N and N
// players, reveal leads to gameover rather than another round.
func shouldEndGame(r *Room) bool {
	return r.Round >= len(r.Players)
}

func gameoverUpdate() map[string]any {
	return map[string]any{"gameState": StateGameover}
}

// playAgainUpdate resets a finished room back to the lobby. Players and
// their scores are kept; only round-scoped fields are cleared.
func playAgainUpdate() map[string]any {
	return map[string]any{
		"gameState":     StateLobby,
		"round":         1,
		"currentDrawer": nil,
		"currentWord":   "",
		"timeLeft":      RoundDuration,
		"paths":         nil,
		"chatMessages":  nil,
	}
}
