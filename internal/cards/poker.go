package cards

import (
	"errors"
	"fmt"

	"github.com/paulhankin/poker"
)

// ErrDescribeSize indica que Describe só nomeia mãos de 5 ou 7 cartas.
var ErrDescribeSize = errors.New("describe needs exactly 5 or 7 cards")

// ToPoker converte a carta para o tipo da biblioteca paulhankin/poker.
// A biblioteca usa a mesma codificação de rank (Ás = 1).
func ToPoker(c Card) (poker.Card, error) {
	var (
		s    poker.Suit
		zero poker.Card
	)
	switch c.suit {
	case Club:
		s = poker.Club
	case Diamond:
		s = poker.Diamond
	case Heart:
		s = poker.Heart
	case Spade:
		s = poker.Spade
	default:
		return zero, fmt.Errorf("invalid suit %d", c.suit)
	}
	pc, err := poker.MakeCard(s, poker.Rank(c.rank))
	if err != nil {
		return zero, fmt.Errorf("make card %s: %w", c.Notation(), err)
	}
	return pc, nil
}

// Describe retorna a descrição da melhor mão já formada pelas cartas conhecidas
// (ex: "pair of kings"). Não calcula probabilidades.
func Describe(cs []Card) (string, error) {
	if len(cs) != 5 && len(cs) != 7 {
		return "", ErrDescribeSize
	}
	pcs := make([]poker.Card, len(cs))
	for i, c := range cs {
		pc, err := ToPoker(c)
		if err != nil {
			return "", err
		}
		pcs[i] = pc
	}
	return poker.Describe(pcs)
}
