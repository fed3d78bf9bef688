package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/inmobiliaria-premium/cmd/mainconfig"
	"github.com/wolfman30/inmobiliaria-premium/internal/api/router"
	"github.com/wolfman30/inmobiliaria-premium/internal/app/bootstrap"
	appconfig "github.com/wolfman30/inmobiliaria-premium/internal/config"
	"github.com/wolfman30/inmobiliaria-premium/internal/conversation"
	"github.com/wolfman30/inmobiliaria-premium/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/inmobiliaria-premium/internal/http/middleware"
	"github.com/wolfman30/inmobiliaria-premium/internal/leads"
	"github.com/wolfman30/inmobiliaria-premium/internal/notify"
	"github.com/wolfman30/inmobiliaria-premium/internal/observability/metrics"
	"github.com/wolfman30/inmobiliaria-premium/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting inmobiliaria-premium API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	handler, cleanup, err := buildServer(ctx, cfg, logger, awsLoader(cfg))
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Chat turns wait on the model, so writes get a longer budget than reads.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// awsLoader memoizes the AWS config so Bedrock and SES share one load.
func awsLoader(cfg *appconfig.Config) bootstrap.AWSConfigLoader {
	var (
		loaded bool
		awsCfg aws.Config
		err    error
	)
	return func(ctx context.Context) (aws.Config, error) {
		if !loaded {
			awsCfg, err = mainconfig.LoadAWSConfig(ctx, cfg)
			loaded = true
		}
		return awsCfg, err
	}
}

func setupMetrics() (http.Handler, *metrics.LeadMetrics, *metrics.ConversationMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewLeadMetrics(reg), metrics.NewConversationMetrics(reg)
}

// buildServer wires stores, the chat service and the router. The returned
// cleanup releases database and cache connections.
func buildServer(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, loadAWS bootstrap.AWSConfigLoader) (http.Handler, func(), error) {
	metricsHandler, leadMetrics, chatMetrics := setupMetrics()

	leadStore, err := bootstrap.BuildLeadStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	cleanup := func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		leadStore.Close()
	}

	llm, err := bootstrap.BuildLLMClient(ctx, cfg, loadAWS, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if closer, ok := llm.(*conversation.GeminiLLMClient); ok {
		inner := cleanup
		cleanup = func() {
			_ = closer.Close()
			inner()
		}
	}

	notifier := notify.NewService(bootstrap.BuildEmailSender(ctx, cfg, loadAWS, logger), cfg.LeadAlertEmail, logger)
	chat, err := bootstrap.BuildConversationService(cfg, bootstrap.ConversationDeps{
		LLM:         llm,
		Sessions:    bootstrap.BuildSessionStore(redisClient, cfg, logger),
		TurnLocker:  bootstrap.BuildTurnLocker(redisClient),
		Leads:       leadStore.Repo,
		Notifier:    notifier,
		Metrics:     chatMetrics,
		LeadMetrics: leadMetrics,
	}, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	login, err := handlers.NewAdminLoginHandler(handlers.AdminLoginConfig{
		PasswordHash: cfg.AdminPasswordHash,
		Password:     cfg.AdminPassword,
		JWTSecret:    cfg.AdminJWTSecret,
		TokenTTL:     cfg.AdminTokenTTL,
		SecureCookie: cfg.Env == "production",
	}, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if !login.Enabled() {
		logger.Warn("admin login disabled; set ADMIN_PASSWORD (or ADMIN_PASSWORD_HASH) and ADMIN_JWT_SECRET")
	}

	var limiter *httpmiddleware.RateLimiter
	if cfg.ChatRateLimit > 0 {
		limiter = httpmiddleware.NewRateLimiter(ctx, cfg.ChatRateLimit, cfg.ChatRateBurst)
	}

	handler := router.New(&router.Config{
		Logger:              logger,
		LeadsHandler:        leads.NewHandler(leadStore.Repo, logger, leadMetrics),
		ConversationHandler: conversation.NewHandler(chat, logger),
		AdminLogin:          login,
		AdminAuthSecret:     cfg.AdminJWTSecret,
		MetricsHandler:      metricsHandler,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		ChatLimiter:         limiter,
	})
	logger.Info("server wired", "lead_store", leadStore.Backend, "llm_provider", cfg.LLMProvider, "redis", redisClient != nil)
	return handler, cleanup, nil
}
