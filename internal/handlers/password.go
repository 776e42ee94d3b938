package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"reviewboard/internal/logger"
	"reviewboard/internal/middleware"
	"reviewboard/internal/services"
	helpers "reviewboard/internal/utils/helpers"
)

type PasswordHandler struct {
	userService     *services.UserService
	recoveryService *services.RecoveryTokenService
}

func NewPasswordHandler(userService *services.UserService, recoveryService *services.RecoveryTokenService) *PasswordHandler {
	return &PasswordHandler{
		userService:     userService,
		recoveryService: recoveryService,
	}
}

type forgotReq struct {
	Email string `json:"email"`
}

// Forgot godoc
// @Summary Запрос восстановления пароля
// @Description Создаёт токен восстановления и отправляет письмо. Ответ всегда одинаковый, даже если e-mail не найден.
// @Tags password
// @Accept json
// @Produce json
// @Param input body forgotReq true "Email пользователя"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/password/forgot [post]
func (h *PasswordHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req forgotReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		log.Warn("Невалидный payload в Forgot")
		helpers.Error(w, http.StatusBadRequest, "invalid payload")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))

	// Не раскрываем, существует ли email — всегда возвращаем 200
	if err := h.recoveryService.GenerateToken(r.Context(), email); err != nil {
		log.Error("Сбой при создании токена восстановления", zap.String("email_masked", maskEmail(email)), zap.Error(err))
	} else if err := h.userService.SendRecoveryToken(r.Context(), email); err != nil {
		log.Error("Сбой при отправке токена восстановления", zap.String("email_masked", maskEmail(email)), zap.Error(err))
	} else {
		log.Info("Запрошено восстановление пароля", zap.String("email_masked", maskEmail(email)))
	}

	helpers.JSON(w, http.StatusOK, map[string]any{"message": "If the email exists, a reset link has been sent."})
}

type recoverReq struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Recover godoc
// @Summary Сброс пароля по токену из письма
// @Tags password
// @Accept json
// @Produce json
// @Param input body recoverReq true "Email, токен и новый пароль"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/password/recover [post]
func (h *PasswordHandler) Recover(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req recoverReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		strings.TrimSpace(req.Email) == "" ||
		strings.TrimSpace(req.Token) == "" ||
		strings.TrimSpace(req.NewPassword) == "" {
		log.Warn("Невалидный payload в Recover")
		helpers.Error(w, http.StatusBadRequest, "invalid payload")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))

	updated, err := h.userService.RecoverFromToken(r.Context(), email, req.Token, req.NewPassword)
	if err != nil || !updated {
		// Чужой email и невалидный токен снаружи неразличимы
		log.Warn("Не удалось восстановить пароль по токену",
			zap.String("email_masked", maskEmail(email)), zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "invalid or expired token")
		return
	}

	log.Info("Пароль успешно сброшен", zap.String("email_masked", maskEmail(email)))
	helpers.JSON(w, http.StatusOK, map[string]string{"message": "Password has been reset."})
}

type changeReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Change godoc
// @Summary Смена пароля (авторизованный пользователь)
// @Description Смена пароля по старому паролю. Требуется JWT-токен.
// @Tags password
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body changeReq true "Старый и новый пароль"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/password [patch]
func (h *PasswordHandler) Change(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	email, ok := r.Context().Value(middleware.ContextEmail).(string)
	if !ok || email == "" {
		log.Warn("Нет доступа для Change: отсутствует email")
		helpers.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req changeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.OldPassword) == "" || strings.TrimSpace(req.NewPassword) == "" {
		log.Warn("Невалидный payload в Change")
		helpers.Error(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if _, err := h.userService.UpdatePassword(r.Context(), email, req.OldPassword, req.NewPassword); err != nil {
		// Несовпадение старого пароля — 400
		log.Warn("Не удалось сменить пароль", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Неверный логин или пароль")
		return
	}

	log.Info("Пароль изменён")
	helpers.JSON(w, http.StatusOK, map[string]string{"message": "Password changed."})
}

// maskEmail прячет локальную часть адреса в логах: a***@example.com.
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
