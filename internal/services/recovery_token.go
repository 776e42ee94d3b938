package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reviewboard/internal/config"
	"reviewboard/internal/logger"
	"reviewboard/internal/repository"
)

// RecoveryTokenService владеет созданием токенов восстановления.
// Рассылкой занимается UserService.SendRecoveryToken.
type RecoveryTokenService struct {
	repo     repository.RecoveryTokenRepo
	userRepo UserRepo
	tokenTTL time.Duration
}

func NewRecoveryTokenService(repo repository.RecoveryTokenRepo, userRepo UserRepo, cfg *config.Config) *RecoveryTokenService {
	ttlMin, err := strconv.Atoi(cfg.RecoveryTokenTTLMin)
	if err != nil || ttlMin <= 0 {
		ttlMin = 30
	}
	return &RecoveryTokenService{
		repo:     repo,
		userRepo: userRepo,
		tokenTTL: time.Duration(ttlMin) * time.Minute,
	}
}

// GenerateToken создаёт одноразовый токен для известного email.
// Неизвестный email — тихий no-op: нельзя перебором выяснять, кто
// зарегистрирован.
func (s *RecoveryTokenService) GenerateToken(ctx context.Context, email string) error {
	if _, err := s.userRepo.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logger.Log.Info("Запрос восстановления для неизвестного email (service)")
			return nil
		}
		return err
	}

	token := uuid.New().String()
	expires := time.Now().Add(s.tokenTTL)

	if err := s.repo.Create(ctx, email, token, expires); err != nil {
		logger.Log.Error("Ошибка создания токена восстановления (service)", zap.Error(err))
		return err
	}

	logger.Log.Info("Токен восстановления создан (service)", zap.Time("expires_at", expires))
	return nil
}
