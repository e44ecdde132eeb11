package main

import (
	"context"
	"log"
	"os"
	"time"

	"scribechat/internal/api"
	"scribechat/internal/auth"
	"scribechat/internal/config"
	"scribechat/internal/logger"
	"scribechat/internal/redis"
	"scribechat/internal/service/account"
	"scribechat/internal/service/chat"
	"scribechat/internal/service/ingest"
	"scribechat/internal/service/llm"
	"scribechat/internal/service/speech"
	"scribechat/internal/service/transcript"
	"scribechat/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("SCRIBECHAT_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	appLog := logger.New(cfg.BasicConfig.LogLevel)
	ctx := context.Background()

	dbType := os.Getenv("SCRIBECHAT_DB")
	if dbType == "" {
		dbType = "sqlite3"
	}
	db, err := storage.Open(dbType, cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := storage.Migrate(db, dbType); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// The cache is an optimization; the service runs without it.
	rdb, err := redis.NewRedisClient(cfg)
	if err != nil {
		appLog.Warn(ctx, "redis unavailable, transcript cache disabled: %v", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = config.DefaultSigningSecret
		appLog.Warn(ctx, "SECRET_KEY not set, using insecure development signing secret")
	}
	tokens := auth.NewTokenService(secret, time.Duration(cfg.Auth.TokenTTL)*time.Minute)
	authService := auth.NewService(db, tokens)
	accounts := account.NewService(db)

	store := transcript.NewStore(db, rdb)
	speechClient := speech.NewClient(cfg.Providers[config.ProviderDeepgram])
	llmClient := llm.NewClient(cfg.Providers[config.ProviderHuggingFace])

	staging := ingest.NewStaging(cfg.BasicConfig.StagingDir)
	ingestService := ingest.NewService(staging, speechClient, store, appLog)
	sweepCtx, sweepCancel := context.WithCancel(ctx)
	defer sweepCancel()
	ingestService.StartStaleSweeper(sweepCtx,
		time.Duration(cfg.BasicConfig.StagingSweepMinutes)*time.Minute,
		time.Duration(cfg.BasicConfig.StagingTTL)*time.Minute,
	)

	chatService := chat.NewService(store, llmClient)

	handler := api.NewHandler(accounts, authService, ingestService, chatService, store)
	router := gin.Default()
	handler.RegisterRoutes(router)

	addr := cfg.BasicConfig.ServerAddress
	if addr == "" {
		addr = ":8000"
	}
	if err := router.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
