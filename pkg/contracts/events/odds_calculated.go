package events

import "time"

// Evento publicado no tópico "odds_calculated" após cada cálculo bem-sucedido.
// As cartas seguem a notação canônica do parser (ex: "hA hK").
type OddsCalculated struct {
	CalculationID  string             `json:"calculation_id"`
	Players        int                `json:"players"`
	HoleCards      string             `json:"hole_cards"`
	CommunityCards string             `json:"community_cards"`
	Win            float64            `json:"win"`
	Tie            float64            `json:"tie"`
	HandTypeRates  map[string]float64 `json:"hand_type_rates"`
	MadeHand       string             `json:"made_hand,omitempty"`
	CalculatedAt   time.Time          `json:"calculated_at"`
	Source         string             `json:"source"` // "odds-service"
}
