package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"reviewboard/internal/logger"
	"reviewboard/internal/models"
)

// ErrNoPendingToken — действующего токена восстановления для email нет.
var ErrNoPendingToken = errors.New("нет ожидающего токена восстановления")

type RecoveryTokenRepository struct {
	db *pgxpool.Pool
}

func NewRecoveryTokenRepository(db *pgxpool.Pool) *RecoveryTokenRepository {
	return &RecoveryTokenRepository{db: db}
}

type RecoveryTokenRepo interface {
	Create(ctx context.Context, email, token string, expiresAt time.Time) error
	GetPendingByEmail(ctx context.Context, email string) (*models.RecoveryToken, error)
	CheckToken(ctx context.Context, email, token string) (bool, error)
}

// Create сохраняет новый токен, вытесняя прежний ожидающий токен для email.
func (r *RecoveryTokenRepository) Create(ctx context.Context, email, token string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM recovery_tokens WHERE lower(email) = lower($1) AND used_at IS NULL`, email)
	if err != nil {
		logger.Log.Error("Ошибка вытеснения старого токена восстановления (repo)", zap.Error(err))
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO recovery_tokens (email, token, expires_at) VALUES ($1, $2, $3)`,
		email, token, expiresAt,
	)
	if err != nil {
		logger.Log.Error("Ошибка сохранения токена восстановления (repo)", zap.Error(err))
	}
	return err
}

// GetPendingByEmail возвращает действующий (неиспользованный и непросроченный)
// токен для email; ErrNoPendingToken — если такого нет.
func (r *RecoveryTokenRepository) GetPendingByEmail(ctx context.Context, email string) (*models.RecoveryToken, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, token, expires_at, used_at, created_at
		FROM recovery_tokens
		WHERE lower(email) = lower($1)
		  AND used_at IS NULL
		  AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT 1
	`, email)

	var t models.RecoveryToken
	if err := row.Scan(&t.ID, &t.Email, &t.Token, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoPendingToken
		}
		return nil, err
	}
	return &t, nil
}

// CheckToken проверяет предъявленный токен и сразу гасит его (одноразовость).
func (r *RecoveryTokenRepository) CheckToken(ctx context.Context, email, token string) (bool, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id FROM recovery_tokens
		WHERE lower(email) = lower($1)
		  AND token = $2
		  AND used_at IS NULL
		  AND expires_at > now()
	`, email, token)

	var id int64
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	if _, err := r.db.Exec(ctx,
		`UPDATE recovery_tokens SET used_at = now() WHERE id = $1`, id); err != nil {
		logger.Log.Warn("Не удалось пометить токен восстановления использованным (repo)",
			zap.Int64("token_id", id), zap.Error(err))
	}
	return true, nil
}
