package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/metascan/metascan-api/internal/application/audit"
	"github.com/metascan/metascan-api/internal/application/auth"
	"github.com/metascan/metascan-api/internal/application/usecase"
	"github.com/metascan/metascan-api/internal/infrastructure/postgres"
	"github.com/metascan/metascan-api/internal/infrastructure/sankhya"
	"github.com/metascan/metascan-api/internal/infrastructure/tokencache"
	httpRouter "github.com/metascan/metascan-api/internal/interfaces/http"
	"github.com/metascan/metascan-api/pkg/config"
	"github.com/metascan/metascan-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	cavRepo := postgres.NewCavaleteRepository(pool)
	slotRepo := postgres.NewSlotRepository(pool)
	histRepo := postgres.NewHistoryRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Cache do bearerToken Sankhya: Redis quando configurado, memória caso contrário.
	var cache tokencache.Cache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexão ao Redis")
		}
		defer rdb.Close()
		cache = tokencache.NewRedisCache(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR não configurado, usando cache de tokens em memória")
		cache = tokencache.NewMemoryCache()
	}
	sankhyaClient := sankhya.NewClient(cfg.Sankhya, cache, userRepo, log)

	authUC := auth.NewUseCase(userRepo, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	userUC := usecase.NewUserUseCase(userRepo)
	cavUC := audit.NewCavaleteUseCase(txRunner, cavRepo, slotRepo, userRepo)
	slotUC := audit.NewSlotUseCase(txRunner, slotRepo, cavRepo, sankhyaClient)
	historyUC := audit.NewHistoryUseCase(histRepo)
	exportUC := audit.NewExportUseCase(cavRepo, slotRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Metascan API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		UserUC:    userUC,
		CavUC:     cavUC,
		SlotUC:    slotUC,
		HistoryUC: historyUC,
		ExportUC:  exportUC,
		Lookup:    sankhyaClient,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("encerramento do servidor")
	}

	log.Info().Msg("aplicação parada")
}
