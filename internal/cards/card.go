package cards

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Suit é o naipe de uma carta. Os valores numéricos coincidem com os
// aliases numéricos aceitos pelo parser (1=copas, 2=ouros, 3=paus, 4=espadas).
type Suit uint8

const (
	Heart   Suit = 1 // ♥
	Diamond Suit = 2 // ♦
	Club    Suit = 3 // ♣
	Spade   Suit = 4 // ♠
)

// Ranks com nome. Ás é codificado como 1 (valor baixo), nunca 14.
const (
	Ace   = 1
	Ten   = 10
	Jack  = 11
	Queen = 12
	King  = 13
)

// String retorna o símbolo do naipe.
func (s Suit) String() string {
	switch s {
	case Spade:
		return "♠"
	case Heart:
		return "♥"
	case Diamond:
		return "♦"
	case Club:
		return "♣"
	default:
		return "?"
	}
}

// Name retorna o nome do naipe em minúsculas (usado no JSON).
func (s Suit) Name() string {
	switch s {
	case Spade:
		return "spade"
	case Heart:
		return "heart"
	case Diamond:
		return "diamond"
	case Club:
		return "club"
	default:
		return "unknown"
	}
}

// letter retorna o alias de letra canônico do naipe.
func (s Suit) letter() string {
	switch s {
	case Spade:
		return "s"
	case Heart:
		return "h"
	case Diamond:
		return "d"
	case Club:
		return "c"
	default:
		return "?"
	}
}

// Card é uma carta imutável: naipe + rank em [1,13].
// O valor zero não é uma carta válida.
type Card struct {
	suit Suit
	rank int
}

// NewCard cria uma carta validando naipe e rank.
func NewCard(suit Suit, rank int) (Card, error) {
	if suit < Heart || suit > Spade || rank <= 0 || rank > King {
		return Card{}, fmt.Errorf("invalid card %d, %d", suit, rank)
	}
	return Card{suit: suit, rank: rank}, nil
}

// Suit retorna o naipe da carta.
func (c Card) Suit() Suit { return c.suit }

// Rank retorna o rank da carta (1 = Ás, 11 = Valete, 12 = Dama, 13 = Rei).
func (c Card) Rank() int { return c.rank }

func rankLabel(rank int) string {
	switch rank {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return strconv.Itoa(rank)
	}
}

// String retorna a carta em formato legível, ex: "A♠", "10♥".
func (c Card) String() string {
	return rankLabel(c.rank) + c.suit.String()
}

// Notation retorna o token canônico da carta, aceito de volta por ParseCard.
// Ex: "sA", "hT", "d7".
func (c Card) Notation() string {
	r := rankLabel(c.rank)
	if c.rank == Ten {
		r = "T"
	}
	return c.suit.letter() + r
}

// Notation junta os tokens canônicos das cartas separados por espaço.
func Notation(cs []Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.Notation()
	}
	return strings.Join(parts, " ")
}

// strength coloca o Ás acima do Rei
func strength(rank int) int {
	if rank == Ace {
		return King + 1
	}
	return rank
}

// Canonical retorna uma cópia ordenada por força (maior primeiro) e naipe.
// "hK hA" e "hA hK" viram a mesma sequência.
func Canonical(cs []Card) []Card {
	out := append([]Card(nil), cs...)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := strength(out[i].rank), strength(out[j].rank)
		if si != sj {
			return si > sj
		}
		return out[i].suit > out[j].suit
	})
	return out
}

type cardJSON struct {
	Suit   string `json:"suit"`
	Symbol string `json:"symbol"`
	Rank   int    `json:"rank"`
}

// MarshalJSON serializa a carta para a camada de UI.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{Suit: c.suit.Name(), Symbol: c.suit.String(), Rank: c.rank})
}

// UnmarshalJSON lê o formato produzido por MarshalJSON, validando a carta.
func (c *Card) UnmarshalJSON(b []byte) error {
	var v cardJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	var s Suit
	switch v.Suit {
	case "spade":
		s = Spade
	case "heart":
		s = Heart
	case "diamond":
		s = Diamond
	case "club":
		s = Club
	}
	card, err := NewCard(s, v.Rank)
	if err != nil {
		return err
	}
	*c = card
	return nil
}
