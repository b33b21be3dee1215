package engine

// MaxPosition returns the final square number for the configured board
func (gs *GameState) MaxPosition() int {
	return gs.Settings.BoardSize * gs.Settings.BoardSize
}

// CurrentPlayer returns the player whose turn it is
func (gs *GameState) CurrentPlayer() (Player, bool) {
	if gs.CurrentPlayerIndex < 0 || gs.CurrentPlayerIndex >= len(gs.Players) {
		return Player{}, false
	}
	return gs.Players[gs.CurrentPlayerIndex], true
}

// PlayerByID looks up a player by its 1-based ID
func (gs *GameState) PlayerByID(id int) (Player, bool) {
	for _, p := range gs.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// ActivePlayers counts players flagged as active
func (gs *GameState) ActivePlayers() int {
	count := 0
	for _, p := range gs.Players {
		if p.IsActive {
			count++
		}
	}
	return count
}

func (p Player) clone() Player {
	c := p
	c.MoveHistory = append([]Move{}, p.MoveHistory...)
	if p.LastMove != nil {
		last := *p.LastMove
		c.LastMove = &last
	}
	return c
}

// clone returns a deep copy that shares no memory with gs
func (gs GameState) clone() GameState {
	c := gs
	c.Settings.Snakes = append(c.Settings.Snakes[:0:0], gs.Settings.Snakes...)
	c.Settings.Ladders = append(c.Settings.Ladders[:0:0], gs.Settings.Ladders...)

	c.Players = make([]Player, len(gs.Players))
	for i, p := range gs.Players {
		c.Players[i] = p.clone()
	}

	if gs.Winner != nil {
		w := gs.Winner.clone()
		c.Winner = &w
	}
	return c
}
