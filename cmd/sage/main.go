package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SignalSage/internal/cache"
	"SignalSage/internal/collector"
	"SignalSage/internal/config"
	"SignalSage/internal/knowledge"
	"SignalSage/internal/logger"
	"SignalSage/internal/model"
	"SignalSage/internal/notifier"
	"SignalSage/internal/recorder"
	"SignalSage/internal/sage"
	"SignalSage/internal/scheduler"
	"SignalSage/internal/server"
	"SignalSage/internal/tools"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const (
	appName    = "signal-sage"
	appVersion = "1.0.0"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("signal sage exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("signal sage starting", zap.String("version", appVersion))

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Init market data
	col, closeCache := newCollector(ctx, cfg, log)
	defer closeCache()

	// Init recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	// Init knowledge retrieval
	keyword := knowledge.NewKeywordRetriever(knowledge.Seed())
	var retriever knowledge.Retriever = keyword
	if cfg.Embeddings.APIKey != "" {
		embedder := knowledge.NewOpenAIEmbedder(cfg.Embeddings.APIKey, cfg.Embeddings.BaseURL, cfg.Embeddings.Model)
		retriever = knowledge.NewEmbeddingRetriever(embedder, keyword, cfg.Embeddings.SimilarityFloor, log)
		log.Info("semantic knowledge search enabled")
	}

	sg := sage.New(col, retriever,
		sage.WithRecorder(rec),
		sage.WithLogger(log),
		sage.WithTopK(cfg.Knowledge.TopK),
	)

	// Tool-call surface
	var mcpHandler http.Handler
	if cfg.MCPEnabled() {
		dispatcher := tools.NewDispatcher(sg, log)
		mcpHandler = mcpserver.NewStreamableHTTPServer(tools.NewMCPServer(dispatcher, appName, appVersion))
	}

	srv := server.New(cfg.Server.Addr, server.Deps{
		Market:      col,
		Sage:        sg,
		Recorder:    rec,
		MCP:         mcpHandler,
		ProbeSymbol: cfg.Server.ProbeSymbol,
		Log:         log,
	})
	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	// Init notifier and scheduler
	var sender scheduler.Sender
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		sender = tn
	}
	sched := scheduler.NewScheduler(ctx, sg, sender, cfg.Schedule.Watchlist, log)
	if len(sched.Watchlist) > 0 {
		if err := sched.Register(cfg.Schedule.WatchCron); err != nil {
			return fmt.Errorf("register cron tasks: %w", err)
		}
		sched.Start()
		defer sched.Stop()

		if os.Getenv("RUN_ON_START") == "true" {
			log.Info("RUN_ON_START enabled, refreshing watchlist now")
			go sched.RunNow()
		}
	}
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	log.Info("signal sage is running", zap.String("addr", cfg.Server.Addr), zap.Bool("mcp", mcpHandler != nil))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping")
	case err := <-srvErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	log.Info("signal sage stopped")
	return nil
}

// newCollector builds the provider chain and its caches. Redis backs the
// caches when configured and reachable, otherwise they live in memory.
func newCollector(ctx context.Context, cfg *config.Config, log *zap.Logger) (*collector.Collector, func()) {
	var chain []collector.Provider
	for _, name := range cfg.Providers.Order {
		switch name {
		case config.ProviderYahoo:
			chain = append(chain, collector.NewYahooProvider(cfg.Proxy, cfg.Providers.Timeout))
		case config.ProviderAlphaVantage:
			chain = append(chain, collector.NewAlphaVantageProvider(cfg.Providers.AlphaVantageKey, cfg.Proxy, cfg.Providers.Timeout))
		}
	}
	crypto := collector.NewCoinGeckoProvider(cfg.Providers.CoinGeckoKey, cfg.Proxy, cfg.Providers.Timeout)

	var quotes cache.Store[model.Quote] = cache.NewMemory[model.Quote](cfg.Cache.QuoteTTL)
	var history cache.Store[model.History] = cache.NewMemory[model.History](cfg.Cache.HistoryTTL)
	closer := func() {}

	if cfg.Cache.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		client, err := cache.NewRedisClient(pingCtx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		} else {
			quotes = cache.NewRedis[model.Quote](client, cfg.Cache.RedisPrefix+":quote", cfg.Cache.QuoteTTL, log)
			history = cache.NewRedis[model.History](client, cfg.Cache.RedisPrefix+":history", cfg.Cache.HistoryTTL, log)
			closer = func() { client.Close() }
			log.Info("redis cache enabled", zap.String("addr", cfg.Cache.RedisAddr))
		}
	}

	names := make([]string, 0, len(chain))
	for _, p := range chain {
		names = append(names, string(p.Name()))
	}
	log.Info("market data providers", zap.Strings("chain", names), zap.String("crypto", string(crypto.Name())))

	return collector.NewCollector(chain, crypto,
		collector.WithQuoteStore(quotes),
		collector.WithHistoryStore(history),
		collector.WithLogger(log),
	), closer
}
