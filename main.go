package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"boardbot/api"
	"boardbot/board"
	"boardbot/chat"
	"boardbot/storage"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	redisOpts, err := redis.ParseURL(cfg.Redis)
	if err != nil {
		parts := strings.Split(cfg.Redis, ",")
		redisOpts = &redis.Options{Addr: parts[0]}
		for _, p := range parts[1:] {
			kv := strings.SplitN(p, "=", 2)
			if len(kv) != 2 {
				continue
			}
			switch strings.ToLower(kv[0]) {
			case "password":
				redisOpts.Password = kv[1]
			case "ssl":
				if strings.ToLower(kv[1]) == "true" {
					redisOpts.TLSConfig = &tls.Config{}
				}
			}
		}
	}
	rc := redis.NewClient(redisOpts)

	logger := log.New()
	blobs := storage.New(rc, cfg.BoardKey, logger)

	loadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	initial := blobs.Load(loadCtx)
	cancel()

	store := board.New(initial, board.Config{
		Saver:      blobs,
		SaveDelay:  time.Duration(cfg.SaveDelay),
		HistoryCap: cfg.HistoryCap,
		Logger:     logger,
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	api.Register(e, store, chat.NewEngine(), logger)

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithField("err", err).Error("server shutdown")
	}
	if err := store.Flush(shutdownCtx); err != nil {
		logger.WithField("err", err).Error("final board save failed")
	}
}
