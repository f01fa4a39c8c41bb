package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"tradingbot/config"
	"tradingbot/internal/candlestore"
	"tradingbot/internal/execution"
	"tradingbot/internal/indicator"
	"tradingbot/internal/logger"
	"tradingbot/internal/marketdata/ws"
	"tradingbot/internal/metrics"
	"tradingbot/internal/model"
	"tradingbot/internal/notification"
	"tradingbot/internal/position"
	redisstore "tradingbot/internal/store/redis"
	"tradingbot/internal/strategy"
	"tradingbot/internal/trader"
	"tradingbot/pkg/mexc"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Init("tradebot", slog.LevelInfo)

	// ---- Load config from env (missing credentials are terminal) ----
	cfg := config.Load()
	log.Printf("[tradebot] starting: symbol=%s interval=%s risk=%.4f dry_run=%v",
		cfg.Symbol, cfg.Interval, cfg.RiskPct, cfg.DryRun)

	// ---- Metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ---- Graceful shutdown ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		log.Printf("[tradebot] received %v, shutting down", s)
		cancel()
	}()

	// ---- Exchange client ----
	client, err := mexc.NewClient(cfg.MEXCAPIKey, cfg.MEXCAPISecret, cfg.Symbol)
	if err != nil {
		log.Fatalf("[tradebot] exchange client: %v", err)
	}

	var orders model.OrderGateway = client
	var balance model.BalanceProvider = client
	if cfg.DryRun {
		paper := execution.NewPaperGateway(cfg.PaperBalance)
		orders, balance = paper, paper
		log.Printf("[tradebot] *** DRY RUN — orders are simulated, balance=%.2f ***", cfg.PaperBalance)
	}

	// ---- Trade journal (SQLite) ----
	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		log.Fatalf("[tradebot] journal dir %s: %v", filepath.Dir(cfg.SQLitePath), err)
	}
	journal, err := execution.NewJournal(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("[tradebot] journal init failed: %v", err)
	}
	defer journal.Close()

	// ---- Optional Redis live-state writer ----
	var redisWriter *redisstore.Writer
	if cfg.RedisAddr != "" {
		redisWriter, err = redisstore.New(redisstore.WriterConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Printf("[tradebot] WARNING: redis init failed: %v (continuing without redis)", err)
		} else {
			defer redisWriter.Close()
		}
	}

	// ---- Decision pipeline ----
	store := candlestore.New(candlestore.DefaultCapacity)
	engine := indicator.NewEngine(cfg.MAWindow, cfg.ATRWindow)
	gen := strategy.NewGenerator(cfg.HysteresisK, cfg.MinVolPct)

	mgr := position.NewManager(position.Config{
		RiskPct:           cfg.RiskPct,
		StopATRMult:       position.DefaultStopATRMult,
		MinBarsInPosition: cfg.MinBarsInPosition,
		Asset:             cfg.QuoteAsset,
	}, orders, balance)
	var notifier notification.Notifier = notification.NewLogNotifier()
	if cfg.WebhookURL != "" {
		notifier = notification.NewWebhookNotifier(cfg.WebhookURL)
	}

	mgr.OnOrder = func(side model.Signal, qty, price float64, reason string, orderErr error) {
		prom.OrdersTotal.WithLabelValues(side.String()).Inc()
		if orderErr != nil {
			prom.OrderErrors.Inc()
		}
		if err := journal.RecordOrder(cfg.Symbol, side, qty, price, reason, orderErr); err != nil {
			log.Printf("[tradebot] journal write failed: %v", err)
		}
		alert := notification.OrderAlert(cfg.Symbol, side, qty, price, reason, orderErr)
		if err := notifier.Send(ctx, alert); err != nil {
			log.Printf("[tradebot] alert delivery failed: %v", err)
		}
	}

	tr := trader.New(cfg.Symbol, store, engine, gen, mgr)
	tr.Redis = redisWriter
	tr.Metrics = prom

	// ---- Streaming ingestion loop (blocks until shutdown) ----
	ing := ws.NewIngestor(client, cfg.Symbol, cfg.Interval)
	ing.OnConnect = func() { health.SetWSConnected(true) }
	ing.OnReconnect = func() {
		health.SetWSConnected(false)
		prom.WSReconnects.Inc()
	}

	err = ing.Run(ctx, func(ctx context.Context, c model.Candle) {
		health.SetLastBarTime(c.TS)
		tr.OnClosedBar(ctx, c)
	})
	if err != nil && err != context.Canceled {
		log.Printf("[tradebot] ingest loop ended: %v", err)
	}

	metricsSrv.Stop(context.Background())
	log.Println("[tradebot] shutdown complete")
}
