package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/texas-odds/internal/odds-processor/consumer"
	"github.com/radieske/texas-odds/internal/odds-processor/pubsub"
	"github.com/radieske/texas-odds/internal/odds-processor/repository"
	sharedcache "github.com/radieske/texas-odds/internal/shared/cache"
	"github.com/radieske/texas-odds/internal/shared/config"
	"github.com/radieske/texas-odds/internal/shared/db"
	"github.com/radieske/texas-odds/internal/shared/kafka"
	"github.com/radieske/texas-odds/internal/shared/logger"
	"github.com/radieske/texas-odds/internal/shared/metrics"
	"github.com/radieske/texas-odds/pkg/contracts/events"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "odds-processor-worker"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pg); err != nil {
			log.Fatal("postgres migrate", zap.Error(err))
		}
		log.Info("schema migrated")
	}

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Configura o consumer Kafka (consumer group odds-processor)
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicOddsCalculated, cfg.GroupProcessor)
	defer reader.Close()

	var dlq *kafka.Writer
	if cfg.TopicOddsCalculatedDLQ != "" {
		dlq = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicOddsCalculatedDLQ)
		defer dlq.Close()
	}

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_proc_messages_consumed_total", Help: "mensagens consumidas"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_proc_db_writes_total", Help: "cálculos gravados no banco"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_proc_duplicates_total", Help: "reentregas já gravadas"})
	dlqSent := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_proc_dlq_total", Help: "mensagens enviadas para a DLQ"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "odds_proc_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persist, duplicates, dlqSent, errorsBy)

	// Broadcaster para publicar cálculos no Redis Pub/Sub (usado pelo odds-service/ws)
	broadcaster := pubsub.NewRedisBroadcaster(redisClient)

	// Instancia o processor, conectando callbacks de métricas e broadcast
	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Repo:        repository.NewPostgresRepo(pg),
		Retries:     3,
		RetryDelay:  300 * time.Millisecond,
		OnConsumed:  func() { consumed.Inc() },
		OnPersist:   func() { persist.Inc() },
		OnDuplicate: func() { duplicates.Inc() },
		OnDLQ:       func() { dlqSent.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		// Após sucesso de persistência, envia o cálculo para o WebSocket via Redis Pub/Sub
		OnAfterPersist: func(ev events.OddsCalculated) {
			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := broadcaster.Publish(ctx, ev); err != nil {
				log.Warn("ws broadcast publish failed", zap.Error(err))
			}
		},
	}
	if dlq != nil {
		proc.DLQ = dlq
	}

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.Checks(
		func(ctx context.Context) error { return pg.PingContext(ctx) },
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	), log)
	defer metricsSrv.Close()

	log.Info("odds-processor started",
		zap.String("consume", cfg.TopicOddsCalculated),
		zap.String("dlq", cfg.TopicOddsCalculatedDLQ),
	)
	if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("processor stopped with error", zap.Error(err))
	}
	log.Info("odds-processor stopped")
}
