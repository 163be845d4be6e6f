package odds

import (
	"fmt"
	"strconv"
	"strings"
)

// Regras de exibição. O limite é sobre o percentual (rate*100), não sobre a taxa.
const (
	scientificThreshold = 0.01
	fixedDigits         = 2
	mantissaDigits      = 4
)

// Format converte a saída do motor em DisplayOdds. Cada chave de HandTypeRates
// aparece exatamente uma vez no resultado.
func Format(raw RawOdds) DisplayOdds {
	rates := make(map[string]string, len(raw.HandTypeRates))
	for k, v := range raw.HandTypeRates {
		rates[k] = FormatRate(v)
	}
	return DisplayOdds{
		Win:           raw.Win,
		Tie:           raw.Tie,
		HandTypeRates: rates,
	}
}

// FormatRate formata uma taxa em [0,1]:
//   - zero exato: "0" (mão impossível com as cartas conhecidas)
//   - percentual > 0.01: ponto fixo com 2 casas, ex: "12.35%"
//   - caso contrário: notação científica com 4 casas, ex: "3.4521e-4%"
func FormatRate(rate float64) string {
	return formatPercentage(rate * 100)
}

func formatPercentage(p float64) string {
	if p == 0 {
		return "0"
	}
	if p > scientificThreshold {
		return strconv.FormatFloat(p, 'f', fixedDigits, 64) + "%"
	}
	return scientific(p) + "%"
}

// scientific formata com expoente sem zeros à esquerda ("3.4521e-4", "5.0000e+1").
func scientific(v float64) string {
	s := strconv.FormatFloat(v, 'e', mantissaDigits, 64)
	i := strings.IndexByte(s, 'e')
	if i < 0 {
		return s // NaN, Inf
	}
	exp, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return s
	}
	return fmt.Sprintf("%se%+d", s[:i], exp)
}

// FormatPercent formata win/tie para exibição, ex: 0.1234 -> "12.34%".
func FormatPercent(rate float64) string {
	return strconv.FormatFloat(rate*100, 'f', fixedDigits, 64) + "%"
}
