package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/texas-odds/internal/odds-service/cache"
	"github.com/radieske/texas-odds/internal/odds-service/calc"
	"github.com/radieske/texas-odds/internal/odds-service/engine"
	httpapi "github.com/radieske/texas-odds/internal/odds-service/http"
	"github.com/radieske/texas-odds/internal/odds-service/producer"
	"github.com/radieske/texas-odds/internal/odds-service/repo"
	"github.com/radieske/texas-odds/internal/odds-service/ws"
	sharedcache "github.com/radieske/texas-odds/internal/shared/cache"
	"github.com/radieske/texas-odds/internal/shared/config"
	"github.com/radieske/texas-odds/internal/shared/db"
	"github.com/radieske/texas-odds/internal/shared/kafka"
	"github.com/radieske/texas-odds/internal/shared/logger"
	"github.com/radieske/texas-odds/internal/shared/metrics"
)

func main() {
	_ = godotenv.Load()

	// carrega config
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "odds-service"
	}

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("engine", cfg.EngineURL))

	// conecta com db Postgres (leitura do histórico)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// conecta com cache Redis
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// writer Kafka para o evento odds_calculated
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicOddsCalculated)
	defer writer.Close()
	log.Info("kafka writer ready", zap.String("topic", cfg.TopicOddsCalculated))

	// Métricas Prometheus do cálculo
	requests := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_calc_requests_total", Help: "cálculos atendidos"})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_calc_cache_hits_total", Help: "cálculos servidos pelo cache"})
	outOfRange := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_calc_out_of_range_total", Help: "respostas do motor com taxas fora de [0,1]"})
	engineLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "odds_engine_request_seconds",
		Help:    "latência das chamadas ao motor",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "odds_calc_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(requests, cacheHits, outOfRange, engineLatency, errorsBy)

	svc := calc.New(log,
		engine.New(cfg.EngineURL, cfg.EngineTimeout),
		cache.New(redisClient, cfg.CacheTTL),
		producer.NewKafkaPublisher(writer),
	)
	svc.OnCalculated = func() { requests.Inc() }
	svc.OnCacheHit = func() { cacheHits.Inc() }
	svc.OnEngineCall = func(d time.Duration) { engineLatency.Observe(d.Seconds()) }
	svc.OnOutOfRange = func() { outOfRange.Inc() }
	svc.OnError = func(stage string) { errorsBy.WithLabelValues(stage).Inc() }

	api := &httpapi.API{
		Log:     log,
		Calc:    svc,
		History: &repo.ReadRepo{DB: pg},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// feed em tempo real dos cálculos persistidos pelo worker
	hub := ws.NewHub(log, func(*http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, redisClient, hub, log)

	r := chi.NewRouter()
	r.Mount("/", api.Router())
	r.Get("/ws/calculations", hub.HandleWS)

	// sobe servidor de métricas e health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.Checks(
		func(ctx context.Context) error { return pg.PingContext(ctx) },
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	), log)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("http listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
