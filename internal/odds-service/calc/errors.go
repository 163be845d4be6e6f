package calc

import (
	"errors"
	"fmt"

	"github.com/radieske/texas-odds/internal/cards"
)

// ErrEngine marca falhas do motor externo (rede, status, payload)
var ErrEngine = errors.New("engine odds")

// MalformedHoleCardsError: a string de hole cards não tem exatamente dois tokens
type MalformedHoleCardsError struct {
	Input string
	Count int
}

func (e *MalformedHoleCardsError) Error() string {
	return fmt.Sprintf("hole cards must be exactly two cards, got %d in %q", e.Count, e.Input)
}

type InvalidPlayersError struct {
	Players int
}

func (e *InvalidPlayersError) Error() string {
	return fmt.Sprintf("players must be between %d and %d, got %d", MinPlayers, MaxPlayers, e.Players)
}

// InvalidCommunityCardsError: o board só pode ter 0 (pre-flop), 3, 4 ou 5 cartas
type InvalidCommunityCardsError struct {
	Count int
}

func (e *InvalidCommunityCardsError) Error() string {
	return fmt.Sprintf("community cards must be 0, 3, 4 or 5 cards, got %d", e.Count)
}

type DuplicateCardError struct {
	Card cards.Card
}

func (e *DuplicateCardError) Error() string {
	return fmt.Sprintf("duplicate card %s", e.Card.Notation())
}
