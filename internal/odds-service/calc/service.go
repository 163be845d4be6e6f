package calc

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/texas-odds/internal/cards"
	"github.com/radieske/texas-odds/internal/odds"
	"github.com/radieske/texas-odds/pkg/contracts/events"
)

const (
	DefaultPlayers = 2
	MinPlayers     = 2
	// 2 cartas por jogador + 5 no board precisam caber no baralho
	MaxPlayers = 23
)

// Engine é o motor externo que faz a simulação das mãos
type Engine interface {
	Odds(ctx context.Context, players int, hole1, hole2, community string) (odds.RawOdds, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

type Publisher interface {
	PublishOddsCalculated(ctx context.Context, e events.OddsCalculated) error
}

// Request chega da borda (HTTP/CLI) com as cartas ainda em texto
type Request struct {
	Players        int
	HoleCards      string
	CommunityCards string
}

type Result struct {
	ID             string
	Players        int
	HoleCards      []cards.Card
	CommunityCards []cards.Card
	Raw            odds.RawOdds
	Odds           odds.DisplayOdds
	OutOfRange     []string
	MadeHand       string
	Cached         bool
	CalculatedAt   time.Time
}

// Service orquestra parse -> cache -> motor -> formatação -> publicação.
// Cache e Publisher são opcionais (nil desliga).
type Service struct {
	Log       *zap.Logger
	Engine    Engine
	Cache     Cache
	Publisher Publisher
	Source    string

	Now   func() time.Time
	NewID func() string

	OnCalculated func()              // métricas
	OnCacheHit   func()              // métricas
	OnEngineCall func(time.Duration) // métricas (latência)
	OnOutOfRange func()              // métricas
	OnError      func(string)        // métricas por fase
}

func New(log *zap.Logger, engine Engine, cache Cache, pub Publisher) *Service {
	return &Service{
		Log:       log,
		Engine:    engine,
		Cache:     cache,
		Publisher: pub,
		Source:    "odds-service",
		Now:       time.Now,
		NewID:     uuid.NewString,
	}
}

// stage é a entrada já validada do motor
type stage struct {
	players   int
	hole      []cards.Card
	community []cards.Card
}

// key ignora a ordem das hole cards: "hK hA" e "hA hK" são a mesma mão
func (s stage) key() string {
	return strconv.Itoa(s.players) + "|" + cards.Notation(cards.Canonical(s.hole)) + "|" + cards.Notation(s.community)
}

func parseStage(req Request) (stage, error) {
	players := req.Players
	if players == 0 {
		players = DefaultPlayers
	}
	if players < MinPlayers || players > MaxPlayers {
		return stage{}, &InvalidPlayersError{Players: players}
	}

	tokens := strings.Fields(req.HoleCards)
	if len(tokens) != 2 {
		return stage{}, &MalformedHoleCardsError{Input: req.HoleCards, Count: len(tokens)}
	}
	hole := make([]cards.Card, 0, 2)
	for _, t := range tokens {
		c, err := cards.ParseCard(t)
		if err != nil {
			return stage{}, fmt.Errorf("parse hole cards: %w", err)
		}
		hole = append(hole, c)
	}

	community, err := cards.ParseCards(req.CommunityCards)
	if err != nil {
		return stage{}, fmt.Errorf("parse community cards: %w", err)
	}
	switch len(community) {
	case 0, 3, 4, 5:
	default:
		return stage{}, &InvalidCommunityCardsError{Count: len(community)}
	}

	seen := make(map[cards.Card]struct{}, len(hole)+len(community))
	for _, c := range append(append([]cards.Card{}, hole...), community...) {
		if _, dup := seen[c]; dup {
			return stage{}, &DuplicateCardError{Card: c}
		}
		seen[c] = struct{}{}
	}

	return stage{players: players, hole: hole, community: community}, nil
}

// Calc valida a requisição, consulta o cache e, se preciso, o motor.
// Erros de cache e de publicação só geram log.
func (s *Service) Calc(ctx context.Context, req Request) (Result, error) {
	st, err := parseStage(req)
	if err != nil {
		s.onError("validate")
		return Result{}, err
	}

	key := st.key()
	var raw odds.RawOdds
	cached := false

	if s.Cache != nil {
		ok, err := s.Cache.Get(ctx, key, &raw)
		if err != nil {
			s.Log.Warn("odds cache get failed", zap.String("key", key), zap.Error(err))
			s.onError("cache_get")
		} else if ok {
			cached = true
			if s.OnCacheHit != nil {
				s.OnCacheHit()
			}
		}
	}

	if !cached {
		start := time.Now()
		raw, err = s.Engine.Odds(ctx, st.players, st.hole[0].Notation(), st.hole[1].Notation(), cards.Notation(st.community))
		if s.OnEngineCall != nil {
			s.OnEngineCall(time.Since(start))
		}
		if err != nil {
			s.onError("engine")
			return Result{}, fmt.Errorf("%w: %w", ErrEngine, err)
		}
		if raw.HandTypeRates == nil {
			raw.HandTypeRates = map[string]float64{}
		}
	}

	res := Result{
		ID:             s.NewID(),
		Players:        st.players,
		HoleCards:      st.hole,
		CommunityCards: st.community,
		Raw:            raw,
		Odds:           odds.Format(raw),
		OutOfRange:     odds.OutOfRange(raw),
		Cached:         cached,
		CalculatedAt:   s.Now().UTC(),
	}

	if len(res.OutOfRange) > 0 {
		s.Log.Warn("engine returned rates outside [0,1]", zap.Strings("fields", res.OutOfRange), zap.String("key", key))
		if s.OnOutOfRange != nil {
			s.OnOutOfRange()
		}
	}

	// com 6 cartas não há mão de 5/7 pra descrever
	all := append(append([]cards.Card{}, st.hole...), st.community...)
	if hand, err := cards.Describe(all); err == nil {
		res.MadeHand = hand
	}

	if s.Cache != nil && !cached {
		if err := s.Cache.Set(ctx, key, raw); err != nil {
			s.Log.Warn("odds cache set failed", zap.String("key", key), zap.Error(err))
			s.onError("cache_set")
		}
	}

	if s.Publisher != nil {
		if err := s.Publisher.PublishOddsCalculated(ctx, s.event(res)); err != nil {
			s.Log.Warn("publish odds_calculated failed", zap.String("calculationId", res.ID), zap.Error(err))
			s.onError("publish")
		}
	}

	if s.OnCalculated != nil {
		s.OnCalculated()
	}
	return res, nil
}

func (s *Service) event(res Result) events.OddsCalculated {
	return events.OddsCalculated{
		CalculationID:  res.ID,
		Players:        res.Players,
		HoleCards:      cards.Notation(cards.Canonical(res.HoleCards)),
		CommunityCards: cards.Notation(res.CommunityCards),
		Win:            res.Raw.Win,
		Tie:            res.Raw.Tie,
		HandTypeRates:  res.Raw.HandTypeRates,
		MadeHand:       res.MadeHand,
		CalculatedAt:   res.CalculatedAt,
		Source:         s.Source,
	}
}

func (s *Service) onError(stage string) {
	if s.OnError != nil {
		s.OnError(stage)
	}
}
