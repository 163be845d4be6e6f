package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/radieske/texas-odds/pkg/contracts/events"
)

// PostgresRepo grava os cálculos consumidos do Kafka na tabela odds_calculations
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo retorna uma instância de repositório Postgres
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// InsertCalculation é idempotente por calculation_id: reentregas do Kafka
// não duplicam linhas. Retorna false quando o cálculo já existia.
func (r *PostgresRepo) InsertCalculation(ctx context.Context, e events.OddsCalculated) (bool, error) {
	rates, err := json.Marshal(e.HandTypeRates)
	if err != nil {
		return false, err
	}
	const q = `
		INSERT INTO odds_calculations
		  (calculation_id, players, hole_cards, community_cards, win, tie, hand_type_rates, made_hand, source, calculated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (calculation_id) DO NOTHING
	`
	res, err := r.DB.ExecContext(ctx, q,
		e.CalculationID, e.Players, e.HoleCards, e.CommunityCards,
		e.Win, e.Tie, string(rates), e.MadeHand, e.Source, e.CalculatedAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
