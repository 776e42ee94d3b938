package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"reviewboard/internal/logger"
	"reviewboard/internal/middleware"
	"reviewboard/internal/repository"
	"reviewboard/internal/services"
	helpers "reviewboard/internal/utils/helpers"
)

type AuthHandler struct {
	userService *services.UserService
}

func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register godoc
// @Summary Регистрация нового пользователя
// @Tags auth
// @Accept json
// @Produce json
// @Param input body registerRequest true "Email и пароль"
// @Success 201 {object} models.User
// @Failure 400 {string} string "Ошибка валидации"
// @Router /api/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в Register", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		helpers.Error(w, http.StatusBadRequest, "Email и пароль обязательны")
		return
	}

	user, err := h.userService.RegisterUser(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			helpers.Error(w, http.StatusConflict, err.Error())
			return
		}
		logger.WithCtx(r.Context()).Error("Ошибка регистрации пользователя", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Не удалось зарегистрировать пользователя")
		return
	}

	// Приветственное письмо — асинхронно через очередь, запрос не ждёт SMTP
	services.EmailQueue <- services.EmailJob{
		To:      []string{user.Email},
		Subject: "Добро пожаловать на Reviewboard",
		Body:    "Аккаунт создан. Теперь вы можете оставлять отзывы о компаниях.",
	}

	helpers.JSON(w, http.StatusCreated, user)
}

// Login godoc
// @Summary Авторизация: выдаёт bearer-токен
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginRequest true "Данные для входа"
// @Success 200 {object} models.UserToken
// @Failure 401 {string} string "Неверный логин или пароль"
// @Router /api/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в Login", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	token, err := h.userService.GenerateToken(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)), req.Password)
	if err != nil {
		// Не различаем "нет такого email" и "не тот пароль"
		logger.WithCtx(r.Context()).Warn("Ошибка входа", zap.String("email_masked", maskEmail(req.Email)), zap.Error(err))
		helpers.Error(w, http.StatusUnauthorized, "Неверный логин или пароль")
		return
	}

	helpers.JSON(w, http.StatusOK, token)
}

// Profile godoc
// @Summary Получить данные профиля
// @Tags profile
// @Security ApiKeyAuth
// @Success 200 {object} models.User
// @Failure 401 {string} string "Нет доступа"
// @Router /api/profile [get]
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextUserID).(int)
	if !ok {
		helpers.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		helpers.Error(w, http.StatusNotFound, "Пользователь не найден")
		return
	}

	helpers.JSON(w, http.StatusOK, user)
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

// DeleteAccount godoc
// @Summary Удалить свой аккаунт (подтверждение паролем)
// @Tags auth
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body deleteAccountRequest true "Текущий пароль"
// @Success 200 {object} map[string]string
// @Failure 401 {string} string "Неверный пароль"
// @Router /api/account [delete]
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	email, ok := r.Context().Value(middleware.ContextEmail).(string)
	if !ok || email == "" {
		helpers.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req deleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	if _, err := h.userService.DeleteUser(r.Context(), email, req.Password); err != nil {
		logger.WithCtx(r.Context()).Warn("Не удалось удалить аккаунт", zap.Error(err))
		helpers.Error(w, http.StatusUnauthorized, "Неверный логин или пароль")
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]string{"message": "Аккаунт удалён."})
}

// GetUsers godoc
// @Summary Список пользователей (только admin)
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]interface{}
// @Router /api/admin/users [get]
func (h *AuthHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)

	users, total, err := h.userService.GetUsersPaginated(r.Context(), limit, offset)
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка получения пользователей", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Не удалось получить пользователей")
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]interface{}{
		"items": users,
		"total": total,
	})
}

func parsePagination(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
