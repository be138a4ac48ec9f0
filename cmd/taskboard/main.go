package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/taskboard/adapters/events"
	"github.com/layer-3/taskboard/adapters/memory"
	"github.com/layer-3/taskboard/adapters/mongo"
	"github.com/layer-3/taskboard/adapters/store"
	"github.com/layer-3/taskboard/adapters/tokenizer"
	"github.com/layer-3/taskboard/internal/config"
	"github.com/layer-3/taskboard/internal/logctx"
	"github.com/layer-3/taskboard/ports"
	"github.com/layer-3/taskboard/service"
	transport "github.com/layer-3/taskboard/transport/http"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := logctx.New(cfg.Env, os.Stdout)
	slog.SetDefault(log)
	log.Info("starting taskboard", "env", cfg.Env)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("taskboard_failed", slog.String("err", err.Error()))
		cancel()
		os.Exit(1)
	}
	log.Info("stopped")
}

// run wires the dependencies and serves until ctx is cancelled. Every client
// it opens is closed before it returns.
func run(rootCtx context.Context, cfg *config.Config, log *slog.Logger) error {
	redisClient, err := store.Connect(rootCtx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.Timeout)
	if err != nil {
		return fmt.Errorf("redis connect: %w", err)
	}
	defer redisClient.Close()
	log.Info("redis_connected")

	var (
		users ports.UserRepository
		tasks ports.TaskRepository
	)
	switch cfg.Mongo.Driver {
	case config.DriverMemory:
		users, tasks = memory.NewUserRepository(), memory.NewTaskRepository()
		log.Warn("using_memory_repositories")
	default:
		dbCtx, dbCancel := context.WithTimeout(rootCtx, cfg.Mongo.ConnectTimeout)
		db, err := mongo.New(dbCtx, cfg.Mongo.URI)
		dbCancel()
		if err != nil {
			return fmt.Errorf("mongo connect: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Close(ctx)
		}()
		users, tasks = db.Users(), db.Tasks()
		log.Info("mongo_connected")
	}

	var eventPub ports.EventPublisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		pub, err := events.NewRedisStreamPublisher(redisClient, watermill.NewSlogLogger(log))
		if err != nil {
			return err
		}
		wp := events.NewWatermillPublisher(pub)
		defer wp.Close()
		eventPub = wp
	}

	tokens, err := tokenizer.NewJWTTokenizer(cfg.Auth.JWTSecret, tokenizer.WithTTL(cfg.Auth.TokenTTL))
	if err != nil {
		return err
	}
	revocations := store.NewRedisStore(redisClient)

	if cfg.Env == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := transport.Options{
		Logger:         log,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}
	if cfg.RateLimit.MaxRequests > 0 {
		opts.RateLimiter = transport.NewRateLimiter(cfg.RateLimit.Window, cfg.RateLimit.MaxRequests)
	}

	router := transport.SetupRouter(transport.Services{
		Gate:  service.NewGate(tokens, revocations, users),
		Auth:  service.NewAuthService(users, tokens, revocations, eventPub),
		Tasks: service.NewTaskService(tasks, users),
		Admin: service.NewAdminService(users, eventPub),
	}, opts)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
