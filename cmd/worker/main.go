package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/awaresim/internal/config"
	"github.com/ignite/awaresim/internal/mailing"
	"github.com/ignite/awaresim/internal/pkg/logger"
	"github.com/ignite/awaresim/internal/repository/postgres"
	"github.com/ignite/awaresim/internal/service/dispatch"
	"github.com/ignite/awaresim/internal/worker"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	once := flag.Bool("once", false, "run a single dispatch tick and exit")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	flag.Parse()

	log.Println("Starting dispatch worker...")

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.Redact())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		log.Println("Connected to Redis; tick locks use Redis")
	} else {
		log.Println("No Redis configured; tick locks use PostgreSQL advisory locks")
	}

	sender, err := mailing.NewSender(ctx, cfg.Mail)
	if err != nil {
		log.Fatalf("mail transport: %v", err)
	}
	log.Printf("Mail transport: %s", cfg.Mail.Transport)

	composer := mailing.NewComposer(mailing.NewRenderer(), mailing.ComposerConfig{
		TrackingBaseURL: cfg.Tracking.BaseURL,
		FromEmail:       cfg.Dispatch.FromEmail,
		FromName:        cfg.Dispatch.FromName,
	})
	svc := dispatch.NewService(postgres.NewDispatchRepo(db), composer, sender)

	sched := worker.NewScheduler(svc, db)
	if redisClient != nil {
		sched.SetRedisClient(redisClient)
	}
	sched.SetInterval(cfg.Dispatch.Interval())
	sched.SetLockTTL(cfg.Dispatch.LockTTL())

	if *once {
		res, ran, err := sched.RunNow(ctx)
		if err != nil {
			log.Fatalf("dispatch tick: %v", err)
		}
		if !ran {
			log.Println("Another worker holds the dispatch lock; nothing done")
			return
		}
		out, _ := json.Marshal(res)
		log.Printf("Dispatch tick complete: %s", out)
		return
	}

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("metrics listening on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				log.Printf("metrics listener: %v", err)
			}
		}()
	}

	if err := sched.Start(); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	log.Printf("Worker running (interval %s)", cfg.Dispatch.Interval())

	<-ctx.Done()
	log.Println("Shutting down worker...")
	sched.Stop()
	log.Println("Worker stopped")
}
