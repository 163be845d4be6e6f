package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/texas-odds/internal/cards"
	"github.com/radieske/texas-odds/internal/odds-service/calc"
	"github.com/radieske/texas-odds/internal/odds-service/dto"
	"github.com/radieske/texas-odds/internal/odds-service/repo"
)

// statusOf mapeia erros de domínio para status HTTP e um "kind" estável para a UI
func statusOf(err error) (int, string) {
	var (
		unknownSuit *cards.UnknownSuitError
		invalidRank *cards.InvalidRankError
		malformed   *calc.MalformedHoleCardsError
		players     *calc.InvalidPlayersError
		community   *calc.InvalidCommunityCardsError
		duplicate   *calc.DuplicateCardError
	)
	switch {
	case errors.As(err, &unknownSuit):
		return http.StatusBadRequest, "unknown_suit"
	case errors.As(err, &invalidRank):
		return http.StatusBadRequest, "invalid_rank"
	case errors.As(err, &malformed):
		return http.StatusBadRequest, "malformed_hole_cards"
	case errors.As(err, &players):
		return http.StatusBadRequest, "invalid_players"
	case errors.As(err, &community):
		return http.StatusBadRequest, "invalid_community_cards"
	case errors.As(err, &duplicate):
		return http.StatusBadRequest, "duplicate_card"
	case errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, calc.ErrEngine):
		return http.StatusBadGateway, "engine_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status, kind := statusOf(err)
	if status >= http.StatusInternalServerError {
		a.Log.Error("request failed", zap.String("kind", kind), zap.Error(err))
	}
	writeJSON(w, status, dto.ErrorResponse{Error: err.Error(), Kind: kind})
}
