package repositories

import (
	"database/sql"
	"time"

	"finance-service/internal/models"
)

type AssetRepository interface {
	InsertAsset(a *models.Asset) error
	GetAssetByID(ownerID string, id int64) (*models.Asset, error)
	ListAssets(ownerID string) ([]*models.Asset, error)
	UpdateAsset(a *models.Asset) error
	DeleteAsset(ownerID string, id int64) error
}

type assetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) InsertAsset(a *models.Asset) error {
	query := `
		INSERT INTO assets (owner_id, name, type, current_value, acquired_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		a.OwnerID,
		a.Name,
		a.Type,
		a.CurrentValue,
		a.AcquiredAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (r *assetRepository) GetAssetByID(ownerID string, id int64) (*models.Asset, error) {
	a := &models.Asset{}
	query := `
		SELECT id, owner_id, name, type, current_value, acquired_at, created_at, updated_at
		FROM assets
		WHERE id = ? AND owner_id = ?
	`
	err := r.db.QueryRow(query, id, ownerID).Scan(
		&a.ID,
		&a.OwnerID,
		&a.Name,
		&a.Type,
		&a.CurrentValue,
		asNullDate(&a.AcquiredAt),
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *assetRepository) ListAssets(ownerID string) ([]*models.Asset, error) {
	query := `
		SELECT id, owner_id, name, type, current_value, acquired_at, created_at, updated_at
		FROM assets
		WHERE owner_id = ?
		ORDER BY name
	`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*models.Asset
	for rows.Next() {
		a := &models.Asset{}
		err := rows.Scan(
			&a.ID,
			&a.OwnerID,
			&a.Name,
			&a.Type,
			&a.CurrentValue,
			asNullDate(&a.AcquiredAt),
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *assetRepository) UpdateAsset(a *models.Asset) error {
	query := `
		UPDATE assets
		SET name = ?, type = ?, current_value = ?, acquired_at = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`
	result, err := r.db.Exec(query,
		a.Name,
		a.Type,
		a.CurrentValue,
		a.AcquiredAt,
		time.Now(),
		a.ID,
		a.OwnerID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *assetRepository) DeleteAsset(ownerID string, id int64) error {
	result, err := r.db.Exec(`DELETE FROM assets WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
