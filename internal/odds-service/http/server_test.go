package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/texas-odds/internal/cards"
	"github.com/radieske/texas-odds/internal/odds"
	"github.com/radieske/texas-odds/internal/odds-service/calc"
	"github.com/radieske/texas-odds/internal/odds-service/dto"
	"github.com/radieske/texas-odds/internal/odds-service/repo"
)

type fakeCalc struct {
	req calc.Request
	res calc.Result
	err error
}

func (f *fakeCalc) Calc(_ context.Context, req calc.Request) (calc.Result, error) {
	f.req = req
	return f.res, f.err
}

type fakeHistory struct {
	list  []repo.Calculation
	limit int
	err   error
}

func (f *fakeHistory) ListRecent(_ context.Context, limit int) ([]repo.Calculation, error) {
	f.limit = limit
	return f.list, f.err
}

func (f *fakeHistory) GetByID(_ context.Context, id string) (repo.Calculation, error) {
	for _, c := range f.list {
		if c.ID == id {
			return c, nil
		}
	}
	return repo.Calculation{}, repo.ErrNotFound
}

func newAPI(c Calculator, h History) http.Handler {
	return (&API{Log: zap.NewNop(), Calc: c, History: h}).Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestParseCards(t *testing.T) {
	h := newAPI(&fakeCalc{}, &fakeHistory{})

	rec := do(t, h, http.MethodPost, "/v1/cards/parse", `{"cards":"sA  hK 2T"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	got := decodeBody[dto.ParseCardsResponse](t, rec)
	assert.Equal(t, "sA hK dT", got.Notation)
	require.Len(t, got.Cards, 3)
	assert.Equal(t, cards.Spade, got.Cards[0].Suit())
	assert.Equal(t, cards.Ace, got.Cards[0].Rank())
}

func TestParseCardsEmpty(t *testing.T) {
	rec := do(t, newAPI(&fakeCalc{}, &fakeHistory{}), http.MethodPost, "/v1/cards/parse", `{"cards":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cards":[],"notation":""}`, rec.Body.String())
}

func TestParseCardsErrors(t *testing.T) {
	tests := []struct {
		body string
		code int
		kind string
	}{
		{`{"cards":"sA xK"}`, http.StatusBadRequest, "unknown_suit"},
		{`{"cards":"s14"}`, http.StatusBadRequest, "invalid_rank"},
		{`{"cards":`, http.StatusBadRequest, "invalid_json"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			rec := do(t, newAPI(&fakeCalc{}, &fakeHistory{}), http.MethodPost, "/v1/cards/parse", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			got := decodeBody[dto.ErrorResponse](t, rec)
			assert.Equal(t, tt.kind, got.Kind)
			assert.NotEmpty(t, got.Error)
		})
	}
}

func TestFormatOdds(t *testing.T) {
	rec := do(t, newAPI(&fakeCalc{}, &fakeHistory{}), http.MethodPost, "/v1/odds/format",
		`{"win":0.5,"tie":0.02,"handTypeRates":{"Pair":0.1235,"Flush":0.0000034521,"RoyalFlush":0}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"win": 0.5,
		"tie": 0.02,
		"handTypeRates": {"Pair":"12.35%","Flush":"3.4521e-4%","RoyalFlush":"0"}
	}`, rec.Body.String())
}

func TestFormatOddsOutOfRange(t *testing.T) {
	rec := do(t, newAPI(&fakeCalc{}, &fakeHistory{}), http.MethodPost, "/v1/odds/format",
		`{"win":1.5,"tie":0,"handTypeRates":{}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[dto.FormatResponse](t, rec)
	assert.Equal(t, []string{"win"}, got.OutOfRange)
}

func TestCalcOdds(t *testing.T) {
	hole, err := cards.ParseCards("hA hK")
	require.NoError(t, err)
	at := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	fc := &fakeCalc{res: calc.Result{
		ID:        "id-1",
		Players:   2,
		HoleCards: hole,
		Odds: odds.DisplayOdds{
			Win:           0.1234,
			Tie:           0.0056,
			HandTypeRates: map[string]string{"Pair": "42.00%"},
		},
		CalculatedAt: at,
	}}

	rec := do(t, newAPI(fc, &fakeHistory{}), http.MethodPost, "/v1/odds",
		`{"holeCards":"hA hK","communityCards":""}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, calc.Request{HoleCards: "hA hK"}, fc.req)
	got := decodeBody[dto.CalcResponse](t, rec)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, "12.34%", got.Win)
	assert.Equal(t, "0.56%", got.Tie)
	assert.Equal(t, "42.00%", got.Odds.HandTypeRates["Pair"])
	assert.Equal(t, at, got.CalculatedAt)
	assert.Len(t, got.HoleCards, 2)
}

func TestCalcOddsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{"malformed", &calc.MalformedHoleCardsError{Input: "hA", Count: 1}, http.StatusBadRequest, "malformed_hole_cards"},
		{"players", &calc.InvalidPlayersError{Players: 1}, http.StatusBadRequest, "invalid_players"},
		{"community", &calc.InvalidCommunityCardsError{Count: 2}, http.StatusBadRequest, "invalid_community_cards"},
		{"duplicate", &calc.DuplicateCardError{}, http.StatusBadRequest, "duplicate_card"},
		{"wrapped suit", fmt.Errorf("parse hole cards: %w", &cards.UnknownSuitError{Token: "xA"}), http.StatusBadRequest, "unknown_suit"},
		{"engine", fmt.Errorf("%w: %w", calc.ErrEngine, errors.New("dial tcp")), http.StatusBadGateway, "engine_unavailable"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newAPI(&fakeCalc{err: tt.err}, &fakeHistory{}), http.MethodPost, "/v1/odds", `{"holeCards":"hA hK"}`)
			assert.Equal(t, tt.code, rec.Code)
			got := decodeBody[dto.ErrorResponse](t, rec)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.err.Error(), got.Error)
		})
	}
}

func TestListCalculations(t *testing.T) {
	hist := &fakeHistory{list: []repo.Calculation{{
		ID:            "c1",
		Players:       3,
		HoleCards:     "hA hK",
		Win:           0.25,
		Tie:           0.01,
		HandTypeRates: map[string]float64{"Pair": 0.3},
		Source:        "odds-service",
	}}}
	h := newAPI(&fakeCalc{}, hist)

	rec := do(t, h, http.MethodGet, "/v1/calculations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultHistoryLimit, hist.limit)
	got := decodeBody[[]dto.Calculation](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "25.00%", got[0].Win)
	assert.Equal(t, "30.00%", got[0].Odds.HandTypeRates["Pair"])

	do(t, h, http.MethodGet, "/v1/calculations?limit=500", "")
	assert.Equal(t, maxHistoryLimit, hist.limit)

	do(t, h, http.MethodGet, "/v1/calculations?limit=5", "")
	assert.Equal(t, 5, hist.limit)

	rec = do(t, h, http.MethodGet, "/v1/calculations?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCalculationsEmpty(t *testing.T) {
	rec := do(t, newAPI(&fakeCalc{}, &fakeHistory{}), http.MethodGet, "/v1/calculations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetCalculation(t *testing.T) {
	hist := &fakeHistory{list: []repo.Calculation{{ID: "c1", HandTypeRates: map[string]float64{}}}}
	h := newAPI(&fakeCalc{}, hist)

	rec := do(t, h, http.MethodGet, "/v1/calculations/c1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c1", decodeBody[dto.Calculation](t, rec).ID)

	rec = do(t, h, http.MethodGet, "/v1/calculations/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody[dto.ErrorResponse](t, rec).Kind)
}

func TestCORSPreflight(t *testing.T) {
	rec := do(t, newAPI(&fakeCalc{}, &fakeHistory{}), http.MethodOptions, "/v1/odds", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
