package model

// GameData is one host data-update cycle: the running flag, the game name and
// the previous and current data frames.
type GameData struct {
	GameRunning bool
	GameName    string
	OldData     *StatusData
	NewData     *StatusData
}

// StatusData is the subset of a host data frame the plugin reads.
type StatusData struct {
	// CarID is the raw car-id label, e.g. "CAR_101".
	CarID string
}

// OldCarID returns the previous frame's car-id label, or "" when there is no previous frame.
func (g *GameData) OldCarID() string {
	if g == nil || g.OldData == nil {
		return ""
	}
	return g.OldData.CarID
}

// NewCarID returns the current frame's car-id label, or "" when there is no current frame.
func (g *GameData) NewCarID() string {
	if g == nil || g.NewData == nil {
		return ""
	}
	return g.NewData.CarID
}
