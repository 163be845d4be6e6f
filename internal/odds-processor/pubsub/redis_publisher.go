package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/texas-odds/pkg/contracts/events"
	"github.com/radieske/texas-odds/pkg/contracts/topics"
)

type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: topics.ChannelCalculationsBroadcast}
}

// Publish envia o cálculo persistido para o WS do odds-service
func (b *RedisBroadcaster) Publish(ctx context.Context, e events.OddsCalculated) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, payload).Err()
}
