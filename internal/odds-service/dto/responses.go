package dto

import (
	"time"

	"github.com/radieske/texas-odds/internal/cards"
	"github.com/radieske/texas-odds/internal/odds"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type ParseCardsResponse struct {
	Cards    []cards.Card `json:"cards"`
	Notation string       `json:"notation"`
}

type FormatResponse struct {
	odds.DisplayOdds
	OutOfRange []string `json:"outOfRange,omitempty"`
}

type CalcResponse struct {
	ID             string           `json:"id"`
	Players        int              `json:"players"`
	HoleCards      []cards.Card     `json:"holeCards"`
	CommunityCards []cards.Card     `json:"communityCards"`
	Odds           odds.DisplayOdds `json:"odds"`
	Win            string           `json:"win"` // ex: "12.34%"
	Tie            string           `json:"tie"`
	MadeHand       string           `json:"madeHand,omitempty"`
	OutOfRange     []string         `json:"outOfRange,omitempty"`
	Cached         bool             `json:"cached"`
	CalculatedAt   time.Time        `json:"calculatedAt"`
}

// Calculation é um item do histórico; as cartas ficam na notação curta.
type Calculation struct {
	ID             string           `json:"id"`
	Players        int              `json:"players"`
	HoleCards      string           `json:"holeCards"`
	CommunityCards string           `json:"communityCards"`
	Odds           odds.DisplayOdds `json:"odds"`
	Win            string           `json:"win"`
	Tie            string           `json:"tie"`
	MadeHand       string           `json:"madeHand,omitempty"`
	Source         string           `json:"source"`
	CalculatedAt   time.Time        `json:"calculatedAt"`
}
