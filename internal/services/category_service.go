package services

import (
	"fmt"

	"finance-service/internal/models"
	"finance-service/internal/repositories"
)

type CategoryService struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

type CategoryInput struct {
	Name string
	Type string
}

func (s *CategoryService) CreateCategory(scope Scope, input CategoryInput) (*models.Category, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if input.Type != models.CategoryTypeIncome && input.Type != models.CategoryTypeExpense {
		return nil, fmt.Errorf("%w: type must be income or expense", ErrValidation)
	}

	category := &models.Category{
		OwnerID:    scope.OwnerID,
		Name:       input.Name,
		Type:       input.Type,
		SourceType: models.CategorySourceGeneral,
	}
	if err := s.categoryRepo.InsertCategory(category); err != nil {
		return nil, fmt.Errorf("failed to create category: %v", err)
	}
	return category, nil
}

func (s *CategoryService) GetCategory(scope Scope, id int64) (*models.Category, error) {
	return s.categoryRepo.GetCategoryByID(scope.OwnerID, id)
}

func (s *CategoryService) ListCategories(scope Scope) ([]*models.Category, error) {
	return s.categoryRepo.ListCategories(scope.OwnerID)
}

func (s *CategoryService) UpdateCategory(scope Scope, id int64, input CategoryInput) (*models.Category, error) {
	category, err := s.categoryRepo.GetCategoryByID(scope.OwnerID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		category.Name = input.Name
	}
	if input.Type != "" {
		if input.Type != models.CategoryTypeIncome && input.Type != models.CategoryTypeExpense {
			return nil, fmt.Errorf("%w: type must be income or expense", ErrValidation)
		}
		category.Type = input.Type
	}

	if err := s.categoryRepo.UpdateCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category; auto-created categories (source_type
// other than general) are protected at the repository level.
func (s *CategoryService) DeleteCategory(scope Scope, id int64) error {
	return s.categoryRepo.DeleteCategory(scope.OwnerID, id)
}
