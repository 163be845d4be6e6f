package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/texas-odds/internal/cards"
	"github.com/radieske/texas-odds/internal/odds"
	"github.com/radieske/texas-odds/internal/odds-service/calc"
	"github.com/radieske/texas-odds/internal/odds-service/dto"
	"github.com/radieske/texas-odds/internal/odds-service/repo"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type Calculator interface {
	Calc(ctx context.Context, req calc.Request) (calc.Result, error)
}

type History interface {
	ListRecent(ctx context.Context, limit int) ([]repo.Calculation, error)
	GetByID(ctx context.Context, id string) (repo.Calculation, error)
}

// API expõe os endpoints REST de parse de cartas, formatação e cálculo de odds
// e a consulta do histórico gravado pelo worker
type API struct {
	Log     *zap.Logger
	Calc    Calculator // orquestração (cache + motor)
	History History    // leitura no Postgres
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(withCORS)
	r.Post("/v1/cards/parse", a.parseCards)          // Interpreta uma string de cartas
	r.Post("/v1/odds/format", a.formatOdds)          // Formata o resultado bruto do motor
	r.Post("/v1/odds", a.calcOdds)                   // Calcula odds de um estágio
	r.Get("/v1/calculations", a.listCalculations)    // Histórico recente
	r.Get("/v1/calculations/{id}", a.getCalculation) // Um cálculo do histórico
	return r
}

// withCORS libera a UI do navegador (inclui preflight)
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid json: " + err.Error(), Kind: "invalid_json"})
		return false
	}
	return true
}

// parseCards devolve as cartas interpretadas e a notação canônica
func (a *API) parseCards(w http.ResponseWriter, r *http.Request) {
	var req dto.ParseCardsRequest
	if !decode(w, r, &req) {
		return
	}
	cs, err := cards.ParseCards(req.Cards)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ParseCardsResponse{Cards: cs, Notation: cards.Notation(cs)})
}

// formatOdds aplica a formatação de exibição sobre um RawOdds recebido
func (a *API) formatOdds(w http.ResponseWriter, r *http.Request) {
	var raw odds.RawOdds
	if !decode(w, r, &raw) {
		return
	}
	bad := odds.OutOfRange(raw)
	if len(bad) > 0 {
		a.Log.Warn("format request with rates outside [0,1]", zap.Strings("fields", bad))
	}
	writeJSON(w, http.StatusOK, dto.FormatResponse{DisplayOdds: odds.Format(raw), OutOfRange: bad})
}

func (a *API) calcOdds(w http.ResponseWriter, r *http.Request) {
	var req dto.CalcRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := a.Calc.Calc(r.Context(), calc.Request{
		Players:        req.Players,
		HoleCards:      req.HoleCards,
		CommunityCards: req.CommunityCards,
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CalcResponse{
		ID:             res.ID,
		Players:        res.Players,
		HoleCards:      res.HoleCards,
		CommunityCards: res.CommunityCards,
		Odds:           res.Odds,
		Win:            odds.FormatPercent(res.Odds.Win),
		Tie:            odds.FormatPercent(res.Odds.Tie),
		MadeHand:       res.MadeHand,
		OutOfRange:     res.OutOfRange,
		Cached:         res.Cached,
		CalculatedAt:   res.CalculatedAt,
	})
}

func (a *API) listCalculations(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "limit must be a positive integer", Kind: "invalid_limit"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	list, err := a.History.ListRecent(r.Context(), limit)
	if err != nil {
		a.writeError(w, err)
		return
	}
	out := make([]dto.Calculation, 0, len(list))
	for _, c := range list {
		out = append(out, toCalculation(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getCalculation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := a.History.GetByID(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCalculation(c))
}

func toCalculation(c repo.Calculation) dto.Calculation {
	disp := odds.Format(odds.RawOdds{Win: c.Win, Tie: c.Tie, HandTypeRates: c.HandTypeRates})
	return dto.Calculation{
		ID:             c.ID,
		Players:        c.Players,
		HoleCards:      c.HoleCards,
		CommunityCards: c.CommunityCards,
		Odds:           disp,
		Win:            odds.FormatPercent(c.Win),
		Tie:            odds.FormatPercent(c.Tie),
		MadeHand:       c.MadeHand,
		Source:         c.Source,
		CalculatedAt:   c.CalculatedAt,
	}
}
