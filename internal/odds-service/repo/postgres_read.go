package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

var ErrNotFound = errors.New("calculation not found")

type ReadRepo struct {
	DB *sql.DB
}

const selectCalculation = `
	SELECT calculation_id, players, hole_cards, community_cards, win, tie,
	       hand_type_rates, made_hand, source, calculated_at
	FROM odds_calculations
`

type scanner interface {
	Scan(dest ...any) error
}

func scanCalculation(s scanner) (Calculation, error) {
	var (
		c     Calculation
		rates []byte
	)
	if err := s.Scan(&c.ID, &c.Players, &c.HoleCards, &c.CommunityCards, &c.Win, &c.Tie,
		&rates, &c.MadeHand, &c.Source, &c.CalculatedAt); err != nil {
		return Calculation{}, err
	}
	c.HandTypeRates = map[string]float64{}
	if len(rates) > 0 {
		if err := json.Unmarshal(rates, &c.HandTypeRates); err != nil {
			return Calculation{}, err
		}
	}
	return c, nil
}

// ListRecent retorna os cálculos mais recentes primeiro.
func (r *ReadRepo) ListRecent(ctx context.Context, limit int) ([]Calculation, error) {
	rows, err := r.DB.QueryContext(ctx, selectCalculation+`
		ORDER BY calculated_at DESC, calculation_id
		LIMIT $1;
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Calculation{}
	for rows.Next() {
		c, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ReadRepo) GetByID(ctx context.Context, id string) (Calculation, error) {
	row := r.DB.QueryRowContext(ctx, selectCalculation+`
		WHERE calculation_id = $1;
	`, id)
	c, err := scanCalculation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Calculation{}, ErrNotFound
	}
	return c, err
}
