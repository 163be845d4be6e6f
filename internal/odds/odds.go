// Package odds normaliza e formata a saída do motor de probabilidades
// (vitória, empate e taxa por tipo de mão) para exibição.
package odds

import (
	"math"
	"sort"
)

// RawOdds é a saída do motor externo. Todas as taxas estão em [0,1].
type RawOdds struct {
	Win           float64            `json:"win"`
	Tie           float64            `json:"tie"`
	HandTypeRates map[string]float64 `json:"handTypeRates"`
}

// DisplayOdds é o resultado pronto para a UI. Win e Tie seguem numéricos;
// apenas as taxas por tipo de mão são formatadas.
type DisplayOdds struct {
	Win           float64           `json:"win"`
	Tie           float64           `json:"tie"`
	HandTypeRates map[string]string `json:"handTypeRates"`
}

// HandTypes lista os tipos de mão em ordem crescente de força.
var HandTypes = []string{
	"HighCard",
	"Pair",
	"TwoPair",
	"ThreeOfAKind",
	"Straight",
	"Flush",
	"FullHouse",
	"FourOfAKind",
	"StraightFlush",
	"RoyalFlush",
}

var handTypeOrder = func() map[string]int {
	m := make(map[string]int, len(HandTypes))
	for i, h := range HandTypes {
		m[h] = i
	}
	return m
}()

// SortedHandTypes retorna as chaves do mapa na ordem de HandTypes;
// chaves desconhecidas vão para o final em ordem alfabética.
func SortedHandTypes[V any](rates map[string]V) []string {
	keys := make([]string, 0, len(rates))
	for k := range rates {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, iok := handTypeOrder[keys[i]]
		oj, jok := handTypeOrder[keys[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// OutOfRange retorna, ordenados, os campos cujo valor está fora de [0,1] (ou é NaN).
// Uma lista não vazia indica violação do contrato do motor.
func OutOfRange(raw RawOdds) []string {
	var bad []string
	if !inRange(raw.Win) {
		bad = append(bad, "win")
	}
	if !inRange(raw.Tie) {
		bad = append(bad, "tie")
	}
	for k, v := range raw.HandTypeRates {
		if !inRange(v) {
			bad = append(bad, k)
		}
	}
	sort.Strings(bad)
	return bad
}

func inRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
