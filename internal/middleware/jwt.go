package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"reviewboard/internal/logger"
	"reviewboard/internal/models"
	"reviewboard/internal/reqctx"
	"reviewboard/internal/utils"
)

// UserReader — доступ к пользователю для подгрузки роли после проверки токена.
type UserReader interface {
	GetUserByID(ctx context.Context, id int) (*models.User, error)
}

// JWTAuth проверяет bearer-токен, кладёт в контекст user_id, email и роль.
// Роль в токене не хранится — берём её из хранилища, чтобы отзыв роли
// действовал сразу, а не по истечении токена.
func JWTAuth(tm *utils.TokenManager, users UserReader, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			logger.WithCtx(r.Context()).Warn("JWTAuth: отсутствует access token")
			http.Error(w, "Отсутствует access token", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		identity, err := tm.Verify(tokenString)
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				logger.WithCtx(r.Context()).Warn("JWTAuth: токен истёк")
				http.Error(w, "Токен истёк", http.StatusUnauthorized)
				return
			}
			logger.WithCtx(r.Context()).Warn("JWTAuth: неверный токен", zap.Error(err))
			http.Error(w, "Неверный или просроченный токен", http.StatusUnauthorized)
			return
		}

		user, err := users.GetUserByID(r.Context(), identity.ID)
		if err != nil {
			logger.WithCtx(r.Context()).Warn("JWTAuth: пользователь из токена не найден",
				zap.Int("user_id", identity.ID), zap.Error(err))
			http.Error(w, "Неверный или просроченный токен", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserID, identity.ID)
		ctx = context.WithValue(ctx, ContextEmail, identity.Email)
		ctx = context.WithValue(ctx, ContextRole, user.Role)
		ctx = reqctx.WithUserID(ctx, identity.ID)
		ctx = reqctx.WithUserEmail(ctx, identity.Email)

		logger.WithCtx(ctx).Debug("JWTAuth: токен валиден",
			zap.Int("user_id", identity.ID), zap.String("role", user.Role))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
