package app

import (
	"context"
	"time"

	"github.com/gorilla/mux"

	"reviewboard/internal/config"
	"reviewboard/internal/db"
	"reviewboard/internal/handlers"
	"reviewboard/internal/repository"
	"reviewboard/internal/routes"
	"reviewboard/internal/services"
	"reviewboard/internal/utils"
)

func InitApp(cfg *config.Config) (*mux.Router, error) {
	if err := db.RunMigrations(context.Background(), cfg); err != nil {
		return nil, err
	}

	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	// Репозитории
	userRepo := repository.NewUserRepository(conn)
	recoveryRepo := repository.NewRecoveryTokenRepository(conn)
	companyRepo := repository.NewCompanyRepository(conn)

	// Токены: TTL из конфига, по умолчанию 24h
	ttl, err := time.ParseDuration(cfg.TokenTTL)
	if err != nil {
		ttl = 24 * time.Hour
	}
	tokenManager := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, ttl)

	// Сервисы
	emailService := services.NewEmailService(cfg)
	userService := services.NewUserService(userRepo, recoveryRepo, tokenManager, emailService)
	recoveryService := services.NewRecoveryTokenService(recoveryRepo, userRepo, cfg)
	companyService := services.NewCompanyService(companyRepo)

	// Хендлеры
	authHandler := handlers.NewAuthHandler(userService)
	passwordHandler := handlers.NewPasswordHandler(userService, recoveryService)
	companyHandler := handlers.NewCompanyHandler(companyService)

	// Запуск воркеров email
	for i := 0; i < 3; i++ {
		go services.StartEmailWorker(emailService)
	}

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, authHandler, passwordHandler, companyHandler, tokenManager, userRepo)

	return router, nil
}
