package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/benbeisheim/chess-backend/internal/config"
	"github.com/benbeisheim/chess-backend/internal/controller"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	// Initialize services
	gameManager := service.NewGameManager()
	gameService := service.NewGameService(gameManager, store, service.Settings{
		AIDelay:        cfg.AIDelay,
		StrictCastling: cfg.StrictCastling,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go gameManager.RunSweeper(ctx, time.Minute, cfg.GameTTL)

	app := fiber.New(fiber.Config{AppName: "chess-backend"})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Origins, ", "),
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize controllers
	controller.RegisterRoutes(app,
		controller.NewGameController(gameService),
		controller.NewWebSocketController(gameService),
		controller.NewStatsController(store),
		cfg.Origins,
	)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Warnf("shutdown: %v", err)
		}
	}()

	log.Infof("listening on %s (store %s, ai delay %s, strict castling %v)", cfg.Addr, cfg.Store, cfg.AIDelay, cfg.StrictCastling)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Errorf("listen: %v", err)
	}
}

func openStore(cfg config.Config) (*storage.Storage, error) {
	if cfg.InMemory() {
		return storage.OpenInMemory()
	}
	return storage.Open(cfg.Store)
}
