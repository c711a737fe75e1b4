package services

import (
	"database/sql"
	"fmt"
	"time"

	"finance-service/internal/models"
	"finance-service/internal/repositories"
)

type AssetService struct {
	assetRepo repositories.AssetRepository
}

func NewAssetService(assetRepo repositories.AssetRepository) *AssetService {
	return &AssetService{assetRepo: assetRepo}
}

type AssetInput struct {
	Name              string
	Type              string
	CurrentValueCents int64
	AcquiredAt        string
}

func (s *AssetService) CreateAsset(scope Scope, input AssetInput) (*models.Asset, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if input.CurrentValueCents < 0 {
		return nil, fmt.Errorf("%w: current_value_cents must not be negative", ErrValidation)
	}

	asset := &models.Asset{
		OwnerID:      scope.OwnerID,
		Name:         input.Name,
		Type:         input.Type,
		CurrentValue: models.CentsToDecimal(input.CurrentValueCents),
	}
	if input.AcquiredAt != "" {
		if _, err := time.Parse("2006-01-02", input.AcquiredAt); err != nil {
			return nil, fmt.Errorf("%w: invalid acquired_at, use YYYY-MM-DD", ErrValidation)
		}
		asset.AcquiredAt = sql.NullString{String: input.AcquiredAt, Valid: true}
	}

	if err := s.assetRepo.InsertAsset(asset); err != nil {
		return nil, fmt.Errorf("failed to create asset: %v", err)
	}
	return asset, nil
}

func (s *AssetService) GetAsset(scope Scope, id int64) (*models.Asset, error) {
	return s.assetRepo.GetAssetByID(scope.OwnerID, id)
}

func (s *AssetService) ListAssets(scope Scope) ([]*models.Asset, error) {
	return s.assetRepo.ListAssets(scope.OwnerID)
}

func (s *AssetService) UpdateAsset(scope Scope, id int64, input AssetInput) (*models.Asset, error) {
	asset, err := s.assetRepo.GetAssetByID(scope.OwnerID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		asset.Name = input.Name
	}
	if input.Type != "" {
		asset.Type = input.Type
	}
	if input.CurrentValueCents > 0 {
		asset.CurrentValue = models.CentsToDecimal(input.CurrentValueCents)
	}
	if input.AcquiredAt != "" {
		if _, err := time.Parse("2006-01-02", input.AcquiredAt); err != nil {
			return nil, fmt.Errorf("%w: invalid acquired_at, use YYYY-MM-DD", ErrValidation)
		}
		asset.AcquiredAt = sql.NullString{String: input.AcquiredAt, Valid: true}
	}

	if err := s.assetRepo.UpdateAsset(asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *AssetService) DeleteAsset(scope Scope, id int64) error {
	return s.assetRepo.DeleteAsset(scope.OwnerID, id)
}
