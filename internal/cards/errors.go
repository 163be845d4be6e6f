package cards

import "fmt"

// UnknownSuitError indica que o primeiro caractere do token não é um naipe conhecido.
type UnknownSuitError struct {
	Token string
}

func (e *UnknownSuitError) Error() string {
	return fmt.Sprintf("unknown suit in card %q", e.Token)
}

// InvalidRankError indica que o restante do token não é um rank válido (1..13 ou A/T/J/Q/K).
type InvalidRankError struct {
	Token string
	Rank  string
}

func (e *InvalidRankError) Error() string {
	return fmt.Sprintf("invalid card number %q in card %q", e.Rank, e.Token)
}
