package services

import (
	"context"
	"testing"

	"reviewboard/internal/models"
	"reviewboard/internal/repository"
)

// Мок-репозиторий компаний
type mockCompanyRepo struct {
	companies map[int]*models.Company
	nextID    int
}

func newMockCompanyRepo() *mockCompanyRepo {
	return &mockCompanyRepo{companies: make(map[int]*models.Company), nextID: 1}
}

func (m *mockCompanyRepo) Create(_ context.Context, c *models.Company) error {
	c.ID = m.nextID
	m.nextID++
	m.companies[c.ID] = c
	return nil
}

func (m *mockCompanyRepo) GetByID(_ context.Context, id int) (*models.Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return nil, repository.ErrCompanyNotFound
	}
	return c, nil
}

func (m *mockCompanyRepo) ListPaginated(_ context.Context, limit, offset int) ([]*models.Company, int, error) {
	var out []*models.Company
	for _, c := range m.companies {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *mockCompanyRepo) Update(_ context.Context, id int, input *models.UpdateCompanyRequest) error {
	c, ok := m.companies[id]
	if !ok {
		return repository.ErrCompanyNotFound
	}
	if input.Name != nil {
		c.Name = *input.Name
	}
	if input.Rating != nil {
		c.Rating = *input.Rating
	}
	return nil
}

func (m *mockCompanyRepo) Delete(_ context.Context, id int) error {
	if _, ok := m.companies[id]; !ok {
		return repository.ErrCompanyNotFound
	}
	delete(m.companies, id)
	return nil
}

func TestCompanyService_CRUD(t *testing.T) {
	repo := newMockCompanyRepo()
	svc := NewCompanyService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.Company{Name: "Acme", Industry: "robotics", Rating: 4})
	if err != nil {
		t.Fatalf("ошибка создания компании: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("компании не присвоен id")
	}

	got, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("ошибка выборки: %v", err)
	}
	if got.Name != "Acme" {
		t.Errorf("имя компании: получено %q", got.Name)
	}

	newName := "Acme Corp"
	newRating := 5
	if err := svc.Update(ctx, created.ID, &models.UpdateCompanyRequest{Name: &newName, Rating: &newRating}); err != nil {
		t.Fatalf("ошибка обновления: %v", err)
	}
	got, _ = svc.GetByID(ctx, created.ID)
	if got.Name != "Acme Corp" || got.Rating != 5 {
		t.Errorf("обновление не применилось: %+v", got)
	}

	items, total, err := svc.ListPaginated(ctx, 20, 0)
	if err != nil {
		t.Fatalf("ошибка списка: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("ожидалась одна компания, получено total=%d len=%d", total, len(items))
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("ошибка удаления: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); err == nil {
		t.Fatal("компания должна быть удалена")
	}
}

func TestCompanyService_NotFound(t *testing.T) {
	svc := NewCompanyService(newMockCompanyRepo())
	ctx := context.Background()

	if _, err := svc.GetByID(ctx, 42); err == nil {
		t.Fatal("ожидалась ошибка для несуществующей компании")
	}
	if err := svc.Delete(ctx, 42); err == nil {
		t.Fatal("ожидалась ошибка удаления несуществующей компании")
	}
}
