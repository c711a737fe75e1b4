package repositories

import (
	"database/sql"

	"finance-service/internal/models"
)

type ShareRepository interface {
	InsertShare(s *models.AccountShare) error
	UpdateShareStatus(ownerID string, id int64, status string) error
	ListSharesForOwner(ownerID string) ([]*models.AccountShare, error)
	IsAcceptedShare(ownerID, memberID string) (bool, error)
}

type shareRepository struct {
	db *sql.DB
}

func NewShareRepository(db *sql.DB) ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) InsertShare(s *models.AccountShare) error {
	query := `INSERT INTO account_shares (owner_id, member_id, status) VALUES (?, ?, ?)`
	result, err := r.db.Exec(query, s.OwnerID, s.MemberID, s.Status)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (r *shareRepository) UpdateShareStatus(ownerID string, id int64, status string) error {
	result, err := r.db.Exec(
		`UPDATE account_shares SET status = ? WHERE id = ? AND (owner_id = ? OR member_id = ?)`,
		status, id, ownerID, ownerID,
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

func (r *shareRepository) ListSharesForOwner(ownerID string) ([]*models.AccountShare, error) {
	query := `
		SELECT id, owner_id, member_id, status
		FROM account_shares
		WHERE owner_id = ? OR member_id = ?
	`
	rows, err := r.db.Query(query, ownerID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []*models.AccountShare
	for rows.Next() {
		s := &models.AccountShare{}
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.MemberID, &s.Status); err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *shareRepository) IsAcceptedShare(ownerID, memberID string) (bool, error) {
	var count int64
	query := `
		SELECT COUNT(*) FROM account_shares
		WHERE owner_id = ? AND member_id = ? AND status = ?
	`
	err := r.db.QueryRow(query, ownerID, memberID, models.ShareStatusAccepted).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
