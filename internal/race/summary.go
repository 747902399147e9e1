package race

// Summary is the immutable outcome of a single race
type Summary struct {
	Winner         string             `json:"winner"`
	Order          []string           `json:"order"`
	Positions      map[string]float64 `json:"positions"`
	Times          map[string]int     `json:"times"`
	TrackCondition float64            `json:"track_condition"`
	Moods          map[string]float64 `json:"moods"`
	Distance       float64            `json:"distance"`
	Seed           int64              `json:"seed"`
	Ticks          int                `json:"ticks"`
}

// Placing returns the 1-based finishing position of a horse, or 0 if it did not run
func (s *Summary) Placing(horseID string) int {
	for i, id := range s.Order {
		if id == horseID {
			return i + 1
		}
	}
	return 0
}

// Margins returns how far each horse was behind the winner's final position
func (s *Summary) Margins() map[string]float64 {
	margins := make(map[string]float64, len(s.Order))
	if len(s.Order) == 0 {
		return margins
	}
	lead := s.Positions[s.Order[0]]
	for _, id := range s.Order {
		margin := lead - s.Positions[id]
		if margin < 0 {
			margin = 0
		}
		margins[id] = margin
	}
	return margins
}

// Tick is a snapshot of the race after one simulation step
type Tick struct {
	Index     int                `json:"tick"`
	Positions map[string]float64 `json:"positions"`
	Finished  []string           `json:"finished"`
}
