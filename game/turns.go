package game

// DrawerForRound picks the drawer deterministically: round-robin over the
// stable player ordering. Every client observing the same snapshot
// computes the same assignment.
func DrawerForRound(r *Room, round int) (Player, bool) {
	players := r.SortedPlayers()
	if len(players) == 0 {
		return Player{}, false
	}
	return players[(round-1)%len(players)], true
}

// TimerOwnerID elects the ticking client: the first player in the sorted
// list. If that client disconnects mid-round nobody takes over and the
// countdown stalls; a takeover would be a behavior change, not a fix.
func TimerOwnerID(r *Room) (string, bool) {
	players := r.SortedPlayers()
	if len(players) == 0 {
		return "", false
	}
	return players[0].ID, true
}

// allNonDrawersGuessed reports the reveal condition: every player except
// the drawer has used their guess. It must always be evaluated against
// the freshest snapshot's player set, never a captured list.
func allNonDrawersGuessed(r *Room) bool {
	if len(r.Players) < 2 || r.CurrentDrawer == "" {
		return false
	}
	for id, p := range r.Players {
		if id == r.CurrentDrawer {
			continue
		}
		if !p.HasGuessed {
			return false
		}
	}
	return true
}
