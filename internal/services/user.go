package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"reviewboard/internal/logger"
	"reviewboard/internal/models"
	"reviewboard/internal/repository"
	"reviewboard/internal/utils"
)

var (
	ErrUserNotFound   = errors.New("пользователь не найден")
	ErrBadCredentials = errors.New("неверный логин или пароль")
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
	DeleteUserByID(ctx context.Context, userID int) error
	GetAllUsersPaginated(ctx context.Context, limit, offset int) ([]*models.User, int, error)
}

type EmailSender interface {
	SendPasswordRecovery(ctx context.Context, to, token string) error
}

type UserService struct {
	repo        UserRepo
	recovery    repository.RecoveryTokenRepo
	tokens      *utils.TokenManager
	emailSender EmailSender
}

func NewUserService(
	repo UserRepo,
	recovery repository.RecoveryTokenRepo,
	tokens *utils.TokenManager,
	emailSender EmailSender,
) *UserService {
	return &UserService{
		repo:        repo,
		recovery:    recovery,
		tokens:      tokens,
		emailSender: emailSender,
	}
}

func (s *UserService) RegisterUser(ctx context.Context, email, password string) (*models.User, error) {
	logger.Log.Info("Регистрация пользователя (service)", zap.String("email", email))

	// Предварительная проверка занятости; гонку двух регистраций всё равно
	// ловит уникальный индекс (CreateUser вернёт ErrEmailTaken).
	taken, err := s.repo.IsEmailTaken(ctx, email)
	if err != nil {
		logger.Log.Error("Ошибка проверки занятости email (service)", zap.Error(err))
		return nil, err
	}
	if taken {
		logger.Log.Warn("Email уже занят (service)", zap.String("email", email))
		return nil, repository.ErrEmailTaken
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Ошибка хеширования пароля", zap.Error(err))
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         "user",
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		logger.Log.Error("Ошибка создания пользователя (service)", zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Пользователь зарегистрирован (service)", zap.Int("user_id", user.ID))
	return user, nil
}

// verifyUser — общий шаг всех операций с паролем: найти по email и сверить
// пароль. Наружу обе ветки отказа выглядят одинаково (ErrBadCredentials не
// различает "нет такого email" и "не тот пароль" на уровне ответа клиенту).
func (s *UserService) verifyUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logger.Log.Warn("Пользователь не найден (service)", zap.String("email", email))
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	ok, err := utils.CheckPasswordHash(password, user.PasswordHash)
	if err != nil {
		// Повреждённая запись хеша — фатальная проблема данных, не ретраим.
		logger.Log.Error("Повреждённый хеш пароля (service)", zap.Int("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	if !ok {
		logger.Log.Warn("Неверный пароль (service)", zap.Int("user_id", user.ID))
		return nil, ErrBadCredentials
	}
	return user, nil
}

// VerifyPassword сообщает, верна ли пара email/пароль, не уточняя,
// какая половина не подошла.
func (s *UserService) VerifyPassword(ctx context.Context, email, password string) bool {
	_, err := s.verifyUser(ctx, email, password)
	return err == nil
}

func (s *UserService) GenerateToken(ctx context.Context, email, password string) (*models.UserToken, error) {
	user, err := s.verifyUser(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		logger.Log.Error("Ошибка выпуска токена (service)", zap.Int("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Токен выпущен (service)", zap.Int("user_id", user.ID))
	return token, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, email, oldPassword, newPassword string) (*models.User, error) {
	logger.Log.Info("Смена пароля (service)", zap.String("email", email))

	user, err := s.verifyUser(ctx, email, oldPassword)
	if err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.Log.Error("Ошибка хеширования нового пароля", zap.Error(err))
		return nil, err
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, hashed); err != nil {
		logger.Log.Error("Ошибка обновления пароля (service)", zap.Int("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	user.PasswordHash = hashed
	logger.Log.Info("Пароль изменён (service)", zap.Int("user_id", user.ID))
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, email, password string) (*models.User, error) {
	logger.Log.Info("Удаление аккаунта (service)", zap.String("email", email))

	user, err := s.verifyUser(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteUserByID(ctx, user.ID); err != nil {
		logger.Log.Error("Ошибка удаления пользователя (service)", zap.Int("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Аккаунт удалён (service)", zap.Int("user_id", user.ID))
	return user, nil
}

// SendRecoveryToken отправляет письмом уже ожидающий токен восстановления.
// Если токена нет — тихий no-op: наружу не видно, существует ли email.
// Создание токена — зона ответственности RecoveryTokenService.
func (s *UserService) SendRecoveryToken(ctx context.Context, email string) error {
	rec, err := s.recovery.GetPendingByEmail(ctx, email)
	if err != nil {
		// Глотаем только отсутствие токена; отказ хранилища — это не no-op.
		if errors.Is(err, repository.ErrNoPendingToken) {
			logger.Log.Info("Нет ожидающего токена восстановления (service)")
			return nil
		}
		logger.Log.Error("Ошибка чтения токена восстановления (service)", zap.Error(err))
		return err
	}

	if err := s.emailSender.SendPasswordRecovery(ctx, email, rec.Token); err != nil {
		logger.Log.Error("Ошибка отправки письма восстановления (service)", zap.Error(err))
		return err
	}

	logger.Log.Info("Письмо восстановления поставлено на отправку (service)",
		zap.Time("expires_at", rec.ExpiresAt))
	return nil
}

// RecoverFromToken устанавливает новый пароль по токену восстановления.
// Возвращает, произошла ли замена; невалидный токен не трогает хеш.
func (s *UserService) RecoverFromToken(ctx context.Context, email, token, newPassword string) (bool, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	ok, err := s.recovery.CheckToken(ctx, email, token)
	if err != nil {
		logger.Log.Error("Ошибка проверки токена восстановления (service)", zap.Error(err))
		return false, err
	}
	if !ok {
		logger.Log.Warn("Невалидный токен восстановления (service)", zap.Int("user_id", user.ID))
		return false, nil
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return false, err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hashed); err != nil {
		logger.Log.Error("Ошибка обновления пароля при восстановлении (service)",
			zap.Int("user_id", user.ID), zap.Error(err))
		return false, err
	}

	logger.Log.Info("Пароль восстановлен по токену (service)", zap.Int("user_id", user.ID))
	return true, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		logger.Log.Warn("Пользователь не найден по ID (service)", zap.Int("user_id", id), zap.Error(err))
	}
	return user, err
}

func (s *UserService) GetUsersPaginated(ctx context.Context, limit, offset int) ([]*models.User, int, error) {
	return s.repo.GetAllUsersPaginated(ctx, limit, offset)
}
