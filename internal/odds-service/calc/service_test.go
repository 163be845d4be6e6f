package calc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/texas-odds/internal/cards"
	"github.com/radieske/texas-odds/internal/odds"
	"github.com/radieske/texas-odds/pkg/contracts/events"
)

type engineCall struct {
	players             int
	hole1, hole2, board string
}

type fakeEngine struct {
	raw   odds.RawOdds
	err   error
	calls []engineCall
}

func (f *fakeEngine) Odds(_ context.Context, players int, hole1, hole2, community string) (odds.RawOdds, error) {
	f.calls = append(f.calls, engineCall{players, hole1, hole2, community})
	return f.raw, f.err
}

type fakeCache struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	if f.getErr != nil {
		return false, f.getErr
	}
	b, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (f *fakeCache) Set(_ context.Context, key string, v any) error {
	if f.setErr != nil {
		return f.setErr
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.data[key] = b
	return nil
}

type fakePublisher struct {
	events []events.OddsCalculated
	err    error
}

func (f *fakePublisher) PublishOddsCalculated(_ context.Context, e events.OddsCalculated) error {
	f.events = append(f.events, e)
	return f.err
}

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newService(e Engine, c Cache, p Publisher) *Service {
	s := New(zap.NewNop(), e, c, p)
	s.Now = func() time.Time { return fixedNow }
	s.NewID = func() string { return "calc-1" }
	return s
}

func sampleRaw() odds.RawOdds {
	return odds.RawOdds{
		Win: 0.6512,
		Tie: 0.0213,
		HandTypeRates: map[string]float64{
			"Pair":     0.42,
			"TwoPair":  0.23,
			"Straight": 0.0000031,
		},
	}
}

func TestCalc(t *testing.T) {
	eng := &fakeEngine{raw: sampleRaw()}
	pub := &fakePublisher{}
	s := newService(eng, newFakeCache(), pub)

	res, err := s.Calc(context.Background(), Request{Players: 4, HoleCards: " hA  hK ", CommunityCards: "sA sK sQ"})
	require.NoError(t, err)

	require.Len(t, eng.calls, 1)
	assert.Equal(t, engineCall{4, "hA", "hK", "sA sK sQ"}, eng.calls[0])

	assert.Equal(t, "calc-1", res.ID)
	assert.Equal(t, 4, res.Players)
	assert.Equal(t, "hA hK", cards.Notation(res.HoleCards))
	assert.Equal(t, "sA sK sQ", cards.Notation(res.CommunityCards))
	assert.Equal(t, 0.6512, res.Odds.Win)
	assert.Equal(t, 0.0213, res.Odds.Tie)
	assert.Equal(t, "42.00%", res.Odds.HandTypeRates["Pair"])
	assert.Equal(t, "3.1000e-4%", res.Odds.HandTypeRates["Straight"])
	assert.NotEmpty(t, res.MadeHand)
	assert.False(t, res.Cached)
	assert.Equal(t, fixedNow, res.CalculatedAt)
	assert.Empty(t, res.OutOfRange)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, "calc-1", ev.CalculationID)
	assert.Equal(t, "hA hK", ev.HoleCards)
	assert.Equal(t, "sA sK sQ", ev.CommunityCards)
	assert.Equal(t, 0.6512, ev.Win)
	assert.Equal(t, "odds-service", ev.Source)
	assert.Equal(t, res.MadeHand, ev.MadeHand)
}

func TestCalcDefaultsPlayers(t *testing.T) {
	eng := &fakeEngine{raw: sampleRaw()}
	s := newService(eng, nil, nil)

	res, err := s.Calc(context.Background(), Request{HoleCards: "sA hA"})
	require.NoError(t, err)
	assert.Equal(t, DefaultPlayers, res.Players)
	assert.Equal(t, DefaultPlayers, eng.calls[0].players)
	assert.Empty(t, eng.calls[0].board)
	assert.Empty(t, res.MadeHand, "preflop has no made hand")
}

func TestCalcUsesCache(t *testing.T) {
	eng := &fakeEngine{raw: sampleRaw()}
	hits := 0
	s := newService(eng, newFakeCache(), nil)
	s.OnCacheHit = func() { hits++ }

	req := Request{Players: 3, HoleCards: "hA hK", CommunityCards: "sA sK sQ sJ"}
	first, err := s.Calc(context.Background(), req)
	require.NoError(t, err)
	second, err := s.Calc(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, eng.calls, 1)
	assert.Equal(t, 1, hits)
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Odds, second.Odds)
}

func TestCalcCacheFailuresAreNotFatal(t *testing.T) {
	eng := &fakeEngine{raw: sampleRaw()}
	c := newFakeCache()
	c.getErr = errors.New("redis down")
	c.setErr = errors.New("redis down")
	var stages []string
	s := newService(eng, c, nil)
	s.OnError = func(stage string) { stages = append(stages, stage) }

	_, err := s.Calc(context.Background(), Request{HoleCards: "hA hK"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cache_get", "cache_set"}, stages)
}

func TestCalcPublishFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("kafka down")}
	s := newService(&fakeEngine{raw: sampleRaw()}, nil, pub)

	_, err := s.Calc(context.Background(), Request{HoleCards: "hA hK"})
	require.NoError(t, err)
	assert.Len(t, pub.events, 1)
}

func TestCalcEngineError(t *testing.T) {
	boom := errors.New("connection refused")
	pub := &fakePublisher{}
	s := newService(&fakeEngine{err: boom}, newFakeCache(), pub)

	_, err := s.Calc(context.Background(), Request{HoleCards: "hA hK"})
	require.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "engine odds: ")
	assert.Empty(t, pub.events)
}

func TestCalcOutOfRange(t *testing.T) {
	raw := odds.RawOdds{Win: 1.3, Tie: 0, HandTypeRates: map[string]float64{"Pair": -0.2}}
	flagged := 0
	s := newService(&fakeEngine{raw: raw}, nil, nil)
	s.OnOutOfRange = func() { flagged++ }

	res, err := s.Calc(context.Background(), Request{HoleCards: "hA hK"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pair", "win"}, res.OutOfRange)
	assert.Equal(t, 1, flagged)
	assert.Equal(t, "-2.0000e+1%", res.Odds.HandTypeRates["Pair"])
}

func TestCalcValidation(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		check func(t *testing.T, err error)
	}{
		{"one hole card", Request{HoleCards: "hA"}, func(t *testing.T, err error) {
			var e *MalformedHoleCardsError
			require.ErrorAs(t, err, &e)
			assert.Equal(t, 1, e.Count)
			assert.Equal(t, "hA", e.Input)
		}},
		{"three hole cards", Request{HoleCards: "hA hK hQ"}, func(t *testing.T, err error) {
			var e *MalformedHoleCardsError
			require.ErrorAs(t, err, &e)
			assert.Equal(t, 3, e.Count)
		}},
		{"empty hole cards", Request{}, func(t *testing.T, err error) {
			var e *MalformedHoleCardsError
			require.ErrorAs(t, err, &e)
			assert.Equal(t, 0, e.Count)
		}},
		{"unknown suit", Request{HoleCards: "xA hK"}, func(t *testing.T, err error) {
			var e *cards.UnknownSuitError
			require.ErrorAs(t, err, &e)
			assert.ErrorContains(t, err, "parse hole cards: ")
		}},
		{"invalid rank on board", Request{HoleCards: "hA hK", CommunityCards: "s14 s2 s3"}, func(t *testing.T, err error) {
			var e *cards.InvalidRankError
			require.ErrorAs(t, err, &e)
			assert.ErrorContains(t, err, "parse community cards: ")
		}},
		{"one player", Request{Players: 1, HoleCards: "hA hK"}, func(t *testing.T, err error) {
			var e *InvalidPlayersError
			require.ErrorAs(t, err, &e)
			assert.Equal(t, 1, e.Players)
		}},
		{"too many players", Request{Players: 24, HoleCards: "hA hK"}, func(t *testing.T, err error) {
			var e *InvalidPlayersError
			require.ErrorAs(t, err, &e)
		}},
		{"two community cards", Request{HoleCards: "hA hK", CommunityCards: "sA sK"}, func(t *testing.T, err error) {
			var e *InvalidCommunityCardsError
			require.ErrorAs(t, err, &e)
			assert.Equal(t, 2, e.Count)
		}},
		{"six community cards", Request{HoleCards: "hA hK", CommunityCards: "s2 s3 s4 s5 s6 s7"}, func(t *testing.T, err error) {
			var e *InvalidCommunityCardsError
			require.ErrorAs(t, err, &e)
			assert.Equal(t, 6, e.Count)
		}},
		{"duplicate across hole and board", Request{HoleCards: "hA hK", CommunityCards: "sA h1 sQ"}, func(t *testing.T, err error) {
			var e *DuplicateCardError
			require.ErrorAs(t, err, &e)
			assert.Equal(t, "hA", e.Card.Notation())
		}},
		{"duplicate hole", Request{HoleCards: "sT s10"}, func(t *testing.T, err error) {
			var e *DuplicateCardError
			require.ErrorAs(t, err, &e)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &fakeEngine{raw: sampleRaw()}
			s := newService(eng, nil, nil)
			_, err := s.Calc(context.Background(), tt.req)
			require.Error(t, err)
			tt.check(t, err)
			assert.Empty(t, eng.calls, "engine must not be called on invalid input")
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `hole cards must be exactly two cards, got 1 in "hA"`, (&MalformedHoleCardsError{Input: "hA", Count: 1}).Error())
	assert.Equal(t, "players must be between 2 and 23, got 1", (&InvalidPlayersError{Players: 1}).Error())
	assert.Equal(t, "community cards must be 0, 3, 4 or 5 cards, got 2", (&InvalidCommunityCardsError{Count: 2}).Error())
}

func TestCalcCacheIgnoresHoleOrder(t *testing.T) {
	eng := &fakeEngine{raw: sampleRaw()}
	s := newService(eng, newFakeCache(), nil)

	_, err := s.Calc(context.Background(), Request{HoleCards: "hA hK", CommunityCards: "sA sK sQ"})
	require.NoError(t, err)
	res, err := s.Calc(context.Background(), Request{HoleCards: "hK hA", CommunityCards: "sA sK sQ"})
	require.NoError(t, err)

	assert.Len(t, eng.calls, 1)
	assert.True(t, res.Cached)
	assert.Equal(t, "hK hA", cards.Notation(res.HoleCards), "result keeps the requested order")
}

func TestCalcEventUsesCanonicalHoleOrder(t *testing.T) {
	pub := &fakePublisher{}
	s := newService(&fakeEngine{raw: sampleRaw()}, nil, pub)

	_, err := s.Calc(context.Background(), Request{HoleCards: "hK hA"})
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "hA hK", pub.events[0].HoleCards)
}
