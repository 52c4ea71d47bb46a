package category

import (
	"context"
)

type Service interface {
	CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*Category, error)
	GetCategoryByID(ctx context.Context, id uint) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, id uint, req *UpdateCategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*Category, error) {
	category := &Category{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) GetCategoryByID(ctx context.Context, id uint) (*Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

func (s *service) UpdateCategory(ctx context.Context, id uint, req *UpdateCategoryRequest) (*Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = req.Name
	category.Description = req.Description
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
