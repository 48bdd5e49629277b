package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/ignite/awaresim/internal/config"
	"github.com/ignite/awaresim/internal/pkg/logger"
	"github.com/ignite/awaresim/internal/repository/postgres"
	"github.com/ignite/awaresim/internal/service/engagement"
	"github.com/ignite/awaresim/internal/tracking"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.Redact())

	if cfg.Tracking.IPHashSalt == "" {
		log.Println("WARNING: IP_HASH_SALT is empty; client address hashes are unsalted")
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	var opts []engagement.Option
	var pub *tracking.Publisher
	if cfg.Tracking.SQSQueueURL != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Tracking.SQSRegion))
		if err != nil {
			log.Fatalf("aws config: %v", err)
		}
		pub = tracking.NewPublisher(sqs.NewFromConfig(awsCfg), cfg.Tracking.SQSQueueURL)
		opts = append(opts, engagement.WithPublisher(pub))
		log.Printf("Publishing engagement events to %s", cfg.Tracking.SQSQueueURL)
	}

	svc := engagement.NewService(postgres.NewEngagementRepo(db), opts...)
	handler := tracking.NewHandler(svc, tracking.Options{
		IPHashSalt:     cfg.Tracking.IPHashSalt,
		AllowedOrigins: cfg.Tracking.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("tracking service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down tracking service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if pub != nil {
		if err := pub.Wait(shutdownCtx); err != nil {
			log.Printf("pending event publishes dropped: %v", err)
		}
	}
}
