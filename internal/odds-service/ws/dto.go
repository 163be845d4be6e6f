package ws

import "github.com/radieske/texas-odds/pkg/contracts/events"

// Tópico que recebe todos os cálculos
const TopicAll = "*"

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// HoleCards: "*" ou a notação das hole cards (ex: "hA hK")
type ClientMsg struct {
	Type      string `json:"type"`      // subscribe | unsubscribe | ping
	HoleCards string `json:"holeCards"` // vazio equivale a "*"
}

// CalculationUpdate é enviado aos clientes inscritos
type CalculationUpdate struct {
	Type    string                `json:"type"` // "calculation"
	Payload events.OddsCalculated `json:"payload"`
}
