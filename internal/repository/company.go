package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reviewboard/internal/models"
)

var ErrCompanyNotFound = errors.New("компания не найдена")

type CompanyRepository struct {
	db *pgxpool.Pool
}

func NewCompanyRepository(db *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, c *models.Company) error {
	query := `
	INSERT INTO companies (name, website, industry, rating, description)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		c.Name, c.Website, c.Industry, c.Rating, c.Description,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int) (*models.Company, error) {
	query := `SELECT id, name, website, industry, rating, description, created_at, updated_at
	FROM companies WHERE id = $1`

	var c models.Company
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Website, &c.Industry, &c.Rating, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) ListPaginated(ctx context.Context, limit, offset int) ([]*models.Company, int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, website, industry, rating, description, created_at, updated_at
		FROM companies
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Website, &c.Industry, &c.Rating, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		companies = append(companies, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM companies`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}

// Update применяет только переданные поля (частичное обновление, как PATCH).
func (r *CompanyRepository) Update(ctx context.Context, id int, input *models.UpdateCompanyRequest) error {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if input.Name != nil {
		c.Name = *input.Name
	}
	if input.Website != nil {
		c.Website = *input.Website
	}
	if input.Industry != nil {
		c.Industry = *input.Industry
	}
	if input.Rating != nil {
		c.Rating = *input.Rating
	}
	if input.Description != nil {
		c.Description = *input.Description
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE companies
		SET name = $1, website = $2, industry = $3, rating = $4, description = $5, updated_at = now()
		WHERE id = $6`,
		c.Name, c.Website, c.Industry, c.Rating, c.Description, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *CompanyRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}
