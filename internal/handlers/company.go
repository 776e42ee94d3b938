package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"reviewboard/internal/logger"
	"reviewboard/internal/models"
	"reviewboard/internal/repository"
	"reviewboard/internal/services"
	helpers "reviewboard/internal/utils/helpers"
)

type CompanyHandler struct {
	companyService *services.CompanyService
}

func NewCompanyHandler(companyService *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

type createCompanyRequest struct {
	Name        string `json:"name"`
	Website     string `json:"website"`
	Industry    string `json:"industry"`
	Rating      int    `json:"rating"`
	Description string `json:"description"`
}

// ListCompanies godoc
// @Summary Список компаний
// @Tags companies
// @Produce json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]interface{}
// @Router /api/companies [get]
func (h *CompanyHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)

	items, total, err := h.companyService.ListPaginated(r.Context(), limit, offset)
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка получения списка компаний", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Не удалось получить список компаний")
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
	})
}

// GetCompany godoc
// @Summary Получить компанию по ID
// @Tags companies
// @Produce json
// @Param id path int true "ID компании"
// @Success 200 {object} models.Company
// @Failure 404 {string} string "Компания не найдена"
// @Router /api/companies/{id} [get]
func (h *CompanyHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный ID")
		return
	}

	c, err := h.companyService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			helpers.Error(w, http.StatusNotFound, "Компания не найдена")
			return
		}
		helpers.Error(w, http.StatusInternalServerError, "Ошибка выборки компании")
		return
	}

	helpers.JSON(w, http.StatusOK, c)
}

// CreateCompany godoc
// @Summary Добавить компанию
// @Tags companies
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body createCompanyRequest true "Данные компании"
// @Success 201 {object} models.Company
// @Failure 400 {string} string "Ошибка запроса"
// @Router /api/companies [post]
func (h *CompanyHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("Невалидный JSON при создании компании", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		helpers.Error(w, http.StatusBadRequest, "Название компании обязательно")
		return
	}

	company := &models.Company{
		Name:        req.Name,
		Website:     req.Website,
		Industry:    req.Industry,
		Rating:      req.Rating,
		Description: req.Description,
	}

	created, err := h.companyService.Create(r.Context(), company)
	if err != nil {
		helpers.Error(w, http.StatusInternalServerError, "Не удалось создать компанию")
		return
	}

	helpers.JSON(w, http.StatusCreated, created)
}

// UpdateCompany godoc
// @Summary Обновить компанию (частично)
// @Tags companies
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID компании"
// @Param input body models.UpdateCompanyRequest true "Изменяемые поля"
// @Success 200 {object} map[string]string
// @Failure 404 {string} string "Компания не найдена"
// @Router /api/companies/{id} [patch]
func (h *CompanyHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный ID")
		return
	}

	var req models.UpdateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	if err := h.companyService.Update(r.Context(), id, &req); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			helpers.Error(w, http.StatusNotFound, "Компания не найдена")
			return
		}
		helpers.Error(w, http.StatusInternalServerError, "Не удалось обновить компанию")
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]string{"message": "Компания обновлена."})
}

// DeleteCompany godoc
// @Summary Удалить компанию (только admin)
// @Tags companies
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID компании"
// @Success 200 {object} map[string]string
// @Failure 404 {string} string "Компания не найдена"
// @Router /api/companies/{id} [delete]
func (h *CompanyHandler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный ID")
		return
	}

	if err := h.companyService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			helpers.Error(w, http.StatusNotFound, "Компания не найдена")
			return
		}
		helpers.Error(w, http.StatusInternalServerError, "Не удалось удалить компанию")
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]string{"message": "Компания удалена."})
}
