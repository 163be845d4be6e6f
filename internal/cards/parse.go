package cards

import (
	"strconv"
	"strings"
)

// suitAliases mapeia o primeiro caractere de um token para o naipe.
var suitAliases = map[byte]Suit{
	's': Spade, 'S': Spade, '4': Spade,
	'h': Heart, 'H': Heart, '1': Heart,
	'd': Diamond, 'D': Diamond, '2': Diamond,
	'c': Club, 'C': Club, '3': Club,
}

// rankAliases mapeia ranks por letra (comparação em maiúsculas).
var rankAliases = map[string]int{
	"K": King,
	"Q": Queen,
	"J": Jack,
	"T": Ten,
	"A": Ace,
}

// ParseCards converte uma lista de tokens separados por espaço em cartas.
// Entrada vazia retorna um slice vazio. O primeiro token inválido aborta a
// chamada e nenhum resultado parcial é devolvido.
func ParseCards(input string) ([]Card, error) {
	tokens := strings.Fields(input)
	out := make([]Card, 0, len(tokens))
	for _, tok := range tokens {
		c, err := ParseCard(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseCard converte um único token (ex: "hA", "410", "dT") em uma carta.
func ParseCard(token string) (Card, error) {
	if token == "" {
		return Card{}, &UnknownSuitError{Token: token}
	}
	suit, ok := suitAliases[token[0]]
	if !ok {
		return Card{}, &UnknownSuitError{Token: token}
	}
	rank, err := parseRank(token, token[1:])
	if err != nil {
		return Card{}, err
	}
	return Card{suit: suit, rank: rank}, nil
}

func parseRank(token, s string) (int, error) {
	if r, ok := rankAliases[strings.ToUpper(s)]; ok {
		return r, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > King {
		return 0, &InvalidRankError{Token: token, Rank: s}
	}
	return n, nil
}
