package repositories

import (
	"database/sql"
	"time"

	"finance-service/internal/models"
)

type CategoryRepository interface {
	InsertCategory(c *models.Category) error
	GetCategoryByID(ownerID string, id int64) (*models.Category, error)
	ListCategories(ownerID string) ([]*models.Category, error)
	UpdateCategory(c *models.Category) error
	DeleteCategory(ownerID string, id int64) error
}

type categoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) InsertCategory(c *models.Category) error {
	query := `
		INSERT INTO categories (owner_id, name, type, source_type)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.Exec(query, c.OwnerID, c.Name, c.Type, c.SourceType)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *categoryRepository) GetCategoryByID(ownerID string, id int64) (*models.Category, error) {
	c := &models.Category{}
	query := `
		SELECT id, owner_id, name, type, source_type, created_at, updated_at
		FROM categories
		WHERE id = ? AND owner_id = ?
	`
	err := r.db.QueryRow(query, id, ownerID).Scan(
		&c.ID,
		&c.OwnerID,
		&c.Name,
		&c.Type,
		&c.SourceType,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *categoryRepository) ListCategories(ownerID string) ([]*models.Category, error) {
	query := `
		SELECT id, owner_id, name, type, source_type, created_at, updated_at
		FROM categories
		WHERE owner_id = ?
		ORDER BY name
	`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		err := rows.Scan(
			&c.ID,
			&c.OwnerID,
			&c.Name,
			&c.Type,
			&c.SourceType,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) UpdateCategory(c *models.Category) error {
	query := `
		UPDATE categories
		SET name = ?, type = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`
	result, err := r.db.Exec(query, c.Name, c.Type, time.Now(), c.ID, c.OwnerID)
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

func (r *categoryRepository) DeleteCategory(ownerID string, id int64) error {
	result, err := r.db.Exec(
		`DELETE FROM categories WHERE id = ? AND owner_id = ? AND source_type = ?`,
		id, ownerID, models.CategorySourceGeneral,
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
