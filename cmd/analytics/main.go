package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"github.com/wyfcoding/pkg/logging"
	"golang.org/x/sync/errgroup"
	gorm_mysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/wyfcoding/investmentplatform/internal/derivatives/application"
	"github.com/wyfcoding/investmentplatform/internal/derivatives/domain"
	"github.com/wyfcoding/investmentplatform/internal/derivatives/infrastructure/cache"
	"github.com/wyfcoding/investmentplatform/internal/derivatives/infrastructure/client"
	"github.com/wyfcoding/investmentplatform/internal/derivatives/infrastructure/messaging"
	"github.com/wyfcoding/investmentplatform/internal/derivatives/infrastructure/persistence/mysql"
	analytics_http "github.com/wyfcoding/investmentplatform/internal/derivatives/interfaces/http"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/analytics/config.toml", "path to config file")
	flag.Parse()

	// 1. Config
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Sprintf("read config failed: %v", err))
	}

	// 2. Logger
	logger := logging.NewLogger("analytics", "main", viper.GetString("log.level"))
	slog.SetDefault(logger.Logger)

	// 3. Database
	dsn := viper.GetString("database.source")
	db, err := gorm.Open(gorm_mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("connect db failed: %v", err))
	}

	// Auto Migrate
	models := append(mysql.AllModels(), &messaging.OutboxMessage{})
	if err := db.AutoMigrate(models...); err != nil {
		panic(fmt.Sprintf("migrate db failed: %v", err))
	}

	// 4. Infrastructure & Domain
	greeksRepo := mysql.NewGreeksRepository(db)
	if addr := viper.GetString("redis.addr"); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		})
		greeksRepo = cache.NewCachedGreeksRepository(greeksRepo, rdb)
	}
	ivRepo := mysql.NewImpliedVolRepository(db)
	strategyRepo := mysql.NewStrategyRepository(db)
	marginRepo := mysql.NewMarginRepository(db)
	valuationRepo := mysql.NewValuationRepository(db)
	portfolioRepo := mysql.NewPortfolioAnalyticsRepository(db)

	kafkaPublisher := messaging.NewKafkaEventPublisher(viper.GetStringSlice("kafka.brokers"))
	defer kafkaPublisher.Close()
	outbox := messaging.NewOutboxEventPublisher(db, kafkaPublisher)

	// TODO: 接入行情网关后替换为真实 MarketDataProvider 实现
	marketData := client.NewInMemoryMarketData()

	kernel := domain.NewPricingKernel()

	// 5. Application
	svc := application.NewAnalyticsService(
		greeksRepo, ivRepo, strategyRepo, marginRepo, valuationRepo, portfolioRepo,
		marketData, kernel, outbox, logger.Logger,
	)

	// 6. Interfaces
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler := analytics_http.NewAnalyticsHandler(svc)
	handler.RegisterRoutes(r.Group(""))

	sys := r.Group("/sys")
	{
		sys.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
		sys.GET("/ready", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "READY"}) })
	}
	pp := r.Group("/debug/pprof")
	{
		pp.GET("/", gin.WrapF(pprof.Index))
		pp.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pp.GET("/profile", gin.WrapF(pprof.Profile))
		pp.GET("/symbol", gin.WrapF(pprof.Symbol))
		pp.GET("/trace", gin.WrapF(pprof.Trace))
	}

	// 7. Start
	g, ctx := errgroup.WithContext(context.Background())

	httpPort := viper.GetString("server.http_port")
	if httpPort == "" {
		httpPort = "8093"
	}
	server := &http.Server{Addr: fmt.Sprintf(":%s", httpPort), Handler: r}
	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// Outbox relay
	relayCtx, relayCancel := context.WithCancel(ctx)
	defer relayCancel()
	g.Go(func() error {
		outbox.StartRelayLoop(relayCtx, 2*time.Second, 100)
		return nil
	})

	// 8. Graceful Shutdown
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("shutting down servers...")
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down...")
		}
		relayCancel()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
