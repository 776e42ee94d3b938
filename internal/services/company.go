package services

import (
	"context"

	"go.uber.org/zap"

	"reviewboard/internal/logger"
	"reviewboard/internal/models"
)

type CompanyRepo interface {
	Create(ctx context.Context, c *models.Company) error
	GetByID(ctx context.Context, id int) (*models.Company, error)
	ListPaginated(ctx context.Context, limit, offset int) ([]*models.Company, int, error)
	Update(ctx context.Context, id int, input *models.UpdateCompanyRequest) error
	Delete(ctx context.Context, id int) error
}

type CompanyService struct {
	repo CompanyRepo
}

func NewCompanyService(repo CompanyRepo) *CompanyService {
	return &CompanyService{repo: repo}
}

func (s *CompanyService) Create(ctx context.Context, c *models.Company) (*models.Company, error) {
	logger.Log.Info("Сервис: создание компании", zap.String("name", c.Name))

	if err := s.repo.Create(ctx, c); err != nil {
		logger.Log.Error("Сервис: ошибка создания компании", zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Сервис: компания создана", zap.Int("company_id", c.ID))
	return c, nil
}

func (s *CompanyService) ListPaginated(ctx context.Context, limit, offset int) ([]*models.Company, int, error) {
	logger.Log.Debug("Сервис: список компаний (пагинация)",
		zap.Int("limit", limit),
		zap.Int("offset", offset),
	)

	items, total, err := s.repo.ListPaginated(ctx, limit, offset)
	if err != nil {
		logger.Log.Error("Сервис: ошибка получения списка компаний", zap.Error(err))
		return nil, 0, err
	}
	return items, total, nil
}

func (s *CompanyService) GetByID(ctx context.Context, id int) (*models.Company, error) {
	logger.Log.Info("Сервис: получение компании по ID", zap.Int("company_id", id))

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.Log.Warn("Сервис: компания не найдена или ошибка выборки",
			zap.Int("company_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	return c, nil
}

func (s *CompanyService) Update(ctx context.Context, id int, input *models.UpdateCompanyRequest) error {
	logger.Log.Info("Сервис: обновление компании", zap.Int("company_id", id))

	if err := s.repo.Update(ctx, id, input); err != nil {
		logger.Log.Error("Сервис: ошибка обновления компании",
			zap.Int("company_id", id),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *CompanyService) Delete(ctx context.Context, id int) error {
	logger.Log.Info("Сервис: удаление компании", zap.Int("company_id", id))

	if err := s.repo.Delete(ctx, id); err != nil {
		logger.Log.Error("Сервис: ошибка удаления компании",
			zap.Int("company_id", id),
			zap.Error(err),
		)
		return err
	}
	return nil
}
