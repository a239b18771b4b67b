package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Omarelnoamy/health-connect-api/internal/config"
	"github.com/Omarelnoamy/health-connect-api/internal/database"
	httpapi "github.com/Omarelnoamy/health-connect-api/internal/http"
	"github.com/Omarelnoamy/health-connect-api/internal/logger"
	"github.com/Omarelnoamy/health-connect-api/internal/repository"
	"github.com/Omarelnoamy/health-connect-api/internal/service"
	"github.com/Omarelnoamy/health-connect-api/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "health-connect-api")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Redis 仅用于全量档案缓存；未启用或连不上时服务降级为无缓存
	var kv store.KV
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unavailable, profile cache disabled", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		} else {
			kv = store.NewRedisKV(redisClient)
		}
	}

	uploads, err := service.NewUploadService(cfg.Upload.Dir, log)
	if err != nil {
		log.Fatal("Failed to prepare upload directories", zap.Error(err))
	}

	patientsRepo := repository.NewPostgresPatientsRepository(db)
	contactsRepo := repository.NewPostgresContactInfoRepository(db)
	historyRepo := repository.NewPostgresMedicalHistoryRepository(db)
	visitsRepo := repository.NewPostgresVisitsRepository(db)
	vitalsRepo := repository.NewPostgresVitalsRepository(db)
	documentsRepo := repository.NewPostgresDocumentsRepository(db)

	profiles := service.NewProfileService(
		patientsRepo, contactsRepo, historyRepo, visitsRepo, vitalsRepo, documentsRepo,
		kv, time.Duration(cfg.Redis.ProfileTTLSeconds)*time.Second, log,
	)

	patients := httpapi.NewPatientHandler(
		patientsRepo, contactsRepo, historyRepo, visitsRepo, vitalsRepo, documentsRepo,
		uploads, profiles, log,
	)
	info := httpapi.NewInfoHandler(cfg.HTTP.Addr, cfg.AppPort, log)

	router := httpapi.NewRouter(log)
	router.RegisterPatientRoutes(patients)
	router.RegisterInfoRoutes(info)
	router.RegisterUploadRoutes(uploads.PhotoDir(), uploads.DocumentDir())

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error("Server stopped", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
