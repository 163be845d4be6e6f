package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/radieske/texas-odds/internal/odds"
)

// StageRequest é o corpo enviado ao motor de odds
type StageRequest struct {
	Players        int    `json:"players"`
	HoleCard1      string `json:"holeCard1"`
	HoleCard2      string `json:"holeCard2"`
	CommunityCards string `json:"communityCards"`
}

// StatusError indica resposta não-2xx do motor
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("engine http %d", e.StatusCode)
	}
	return fmt.Sprintf("engine http %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(base, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Odds pede ao motor a simulação de um estágio. As cartas seguem a notação
// curta (ex: "hA", "sA sK sQ").
func (c *Client) Odds(ctx context.Context, players int, hole1, hole2, community string) (odds.RawOdds, error) {
	body, err := json.Marshal(StageRequest{
		Players:        players,
		HoleCard1:      hole1,
		HoleCard2:      hole2,
		CommunityCards: community,
	})
	if err != nil {
		return odds.RawOdds{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/stage/odds", bytes.NewReader(body))
	if err != nil {
		return odds.RawOdds{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return odds.RawOdds{}, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return odds.RawOdds{}, &StatusError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var out odds.RawOdds
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return odds.RawOdds{}, fmt.Errorf("decode engine response: %w", err)
	}
	if out.HandTypeRates == nil {
		out.HandTypeRates = map[string]float64{}
	}
	return out, nil
}
