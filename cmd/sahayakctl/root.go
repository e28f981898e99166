package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sahayak-backend/internal/config"
	"sahayak-backend/internal/database"
	"sahayak-backend/internal/llm"
	"sahayak-backend/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "sahayakctl",
	Short:         "Operator tooling for the Sahayak backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(tokenCmd)
}

// env holds the connections a command opened; close releases them.
type env struct {
	cfg    *config.Config
	log    *zap.Logger
	pool   *pgxpool.Pool
	redis  *redis.Client
	gemini *llm.GeminiClient
}

func openEnv(ctx context.Context, withLLM bool) (*env, error) {
	cfg := config.Load()
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	e := &env{cfg: cfg, log: log}

	e.pool, err = database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if withLLM {
		e.redis, err = database.NewRedisClient(ctx, cfg.RedisURL, database.ClientCLI)
		if err != nil {
			e.close()
			return nil, err
		}

		e.gemini, err = llm.NewGeminiClient(ctx, llm.GeminiOptions{
			APIKey:         cfg.GeminiAPIKey,
			Model:          cfg.GeminiModel,
			ConcurrentReqs: cfg.GeminiConcurrentReqs,
			Timeout:        cfg.GeminiTimeout,
			Logger:         log,
		})
		if err != nil {
			e.close()
			return nil, err
		}
	}
	return e, nil
}

func (e *env) close() {
	if e.gemini != nil {
		e.gemini.Close()
	}
	if e.redis != nil {
		e.redis.Close()
	}
	if e.pool != nil {
		e.pool.Close()
	}
	e.log.Sync()
}
