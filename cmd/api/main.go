package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-puzzle-api/internal/application/puzzle"
	"github.com/go-puzzle-api/internal/config"
	"github.com/go-puzzle-api/internal/infrastructure/awsconf"
	"github.com/go-puzzle-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-puzzle-api/internal/infrastructure/jwt"
	s3infra "github.com/go-puzzle-api/internal/infrastructure/s3"
	"github.com/go-puzzle-api/internal/infrastructure/sns"
	"github.com/go-puzzle-api/internal/pkg/imagenorm"
	"github.com/go-puzzle-api/internal/pkg/notecipher"
	transporthttp "github.com/go-puzzle-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(newLogger(cfg, os.Stdout))
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}
	if err := cfg.Validate(); err != nil {
		fatal("invalid configuration", err)
	}
	slog.Info("configuration loaded", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconf.Load(ctx, cfg)
	if err != nil {
		fatal("aws config", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	s3Client := s3infra.NewClient(awsCfg, cfg.AWSEndpointURL)
	if cfg.AWSEndpointURL != "" {
		s3infra.EnsureBucket(ctx, s3Client, cfg.S3BucketName, cfg.AWSRegion)
	}

	var events puzzle.EventPublisher = sns.NoopPublisher{}
	if cfg.SNSTopicARN != "" {
		events = sns.NewPublisher(sns.NewClient(awsCfg, cfg.AWSEndpointURL), cfg.SNSTopicARN)
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg.TokenSecret, cfg.TokenExpiry)
	if err != nil {
		fatal("jwt provider", err)
	}
	cipher, err := notecipher.NewFromConfig(cfg.CipherKey, cfg.CipherIV)
	if err != nil {
		fatal("note cipher", err)
	}

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		PuzzleRepo:  dynamo.NewPuzzleRepo(dynamoClient, cfg.DynamoTables.Puzzles),
		ImageStore:  s3infra.NewImageStore(s3Client, cfg.S3BucketName),
		Events:      events,
		Cipher:      cipher,
		Normalizer:  imagenorm.New(cfg.ImageMaxWidth, cfg.ImageMaxBytes),
		JWTProvider: jwtProvider,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
		return
	}
	slog.Info("server stopped")
}

// newLogger writes JSON in production and human-readable text elsewhere.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
