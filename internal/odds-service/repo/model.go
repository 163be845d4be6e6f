package repo

import "time"

// Calculation é um cálculo persistido pelo odds-processor-worker.
type Calculation struct {
	ID             string
	Players        int
	HoleCards      string
	CommunityCards string
	Win            float64
	Tie            float64
	HandTypeRates  map[string]float64
	MadeHand       string
	Source         string
	CalculatedAt   time.Time
}
