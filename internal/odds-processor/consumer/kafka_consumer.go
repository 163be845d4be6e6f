package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/texas-odds/pkg/contracts/events"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Store interface {
	InsertCalculation(ctx context.Context, e events.OddsCalculated) (bool, error)
}

var errMissingID = errors.New("missing calculation_id")

// Processor consome eventos odds_calculated do Kafka e persiste no banco.
// Mensagens inválidas ou que esgotam as tentativas vão para a DLQ, se houver.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log    *zap.Logger
	Reader MessageReader
	Repo   Store
	DLQ    MessageWriter // opcional

	Retries    int           // tentativas extras de escrita no banco
	RetryDelay time.Duration // cresce linearmente por tentativa

	OnConsumed  func()       // métricas (counter++)
	OnPersist   func()       // métricas
	OnDuplicate func()       // métricas: reentrega já gravada
	OnDLQ       func()       // métricas
	OnError     func(string) // métricas por fase

	// Chamado após cada inserção nova (broadcast para o WS)
	OnAfterPersist func(events.OddsCalculated)
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			if errors.Is(err, io.EOF) {
				return err // reader fechado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.onError("read")
			if !sleep(ctx, 500*time.Millisecond) {
				return ctx.Err()
			}
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed() // callback de métrica: mensagem consumida
		}

		p.Handle(ctx, m)
	}
}

// Handle processa uma única mensagem: decode, validação e persistência.
func (p *Processor) Handle(ctx context.Context, m kafka.Message) {
	var ev events.OddsCalculated
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		p.Log.Warn("invalid message", zap.Error(err), zap.Int64("offset", m.Offset))
		p.onError("decode")
		p.toDLQ(ctx, m, err)
		return
	}
	if ev.CalculationID == "" {
		p.Log.Warn("invalid message", zap.Error(errMissingID), zap.Int64("offset", m.Offset))
		p.onError("validate")
		p.toDLQ(ctx, m, errMissingID)
		return
	}

	inserted, err := p.insert(ctx, ev)
	if err != nil {
		p.Log.Error("db insert failed",
			zap.String("calculationId", ev.CalculationID),
			zap.Error(err),
		)
		p.onError("db_insert")
		p.toDLQ(ctx, m, err)
		return
	}

	if !inserted {
		p.Log.Debug("calculation already stored", zap.String("calculationId", ev.CalculationID))
		if p.OnDuplicate != nil {
			p.OnDuplicate()
		}
		return
	}
	if p.OnPersist != nil {
		p.OnPersist() // callback de métrica: persistência concluída
	}
	if p.OnAfterPersist != nil {
		p.OnAfterPersist(ev)
	}
}

// insert tenta gravar com retry linear simples
func (p *Processor) insert(ctx context.Context, ev events.OddsCalculated) (bool, error) {
	inserted, err := p.Repo.InsertCalculation(ctx, ev)
	for i := 0; err != nil && i < p.Retries; i++ {
		if !sleep(ctx, time.Duration(i+1)*p.RetryDelay) {
			return false, ctx.Err()
		}
		inserted, err = p.Repo.InsertCalculation(ctx, ev)
	}
	return inserted, err
}

func (p *Processor) toDLQ(ctx context.Context, m kafka.Message, cause error) {
	if p.DLQ == nil {
		return
	}
	msg := kafka.Message{
		Key:   m.Key,
		Value: m.Value,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(cause.Error())},
		},
		Time: time.Now(),
	}
	if err := p.DLQ.WriteMessages(ctx, msg); err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
		p.onError("dlq")
		return
	}
	if p.OnDLQ != nil {
		p.OnDLQ()
	}
}

func (p *Processor) onError(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
