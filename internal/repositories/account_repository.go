package repositories

import (
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"finance-service/internal/models"
)

// ErrNotFound is returned when a row does not exist or is not owned by the caller.
var ErrNotFound = errors.New("record not found")

type AccountRepository interface {
	InsertAccount(a *models.Account) error
	GetAccountByID(ownerID string, id int64) (*models.Account, error)
	ListAccounts(ownerID string) ([]*models.Account, error)
	UpdateAccount(a *models.Account) error
	UpdateCurrentBalance(id int64, balance decimal.Decimal) error
	UpdateAvailableBalance(id int64, available decimal.Decimal) error
	DeleteAccount(ownerID string, id int64) error
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) InsertAccount(a *models.Account) error {
	query := `
		INSERT INTO accounts (
			owner_id, name, type, current_balance,
			credit_limit, available_balance, closing_day, due_day
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		a.OwnerID,
		a.Name,
		a.Type,
		a.CurrentBalance,
		a.CreditLimit,
		a.AvailableBalance,
		a.ClosingDay,
		a.DueDay,
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

func (r *accountRepository) GetAccountByID(ownerID string, id int64) (*models.Account, error) {
	a := &models.Account{}
	query := `
		SELECT id, owner_id, name, type, current_balance,
		       credit_limit, available_balance, closing_day, due_day,
		       created_at, updated_at
		FROM accounts
		WHERE id = ? AND owner_id = ?
	`
	err := r.db.QueryRow(query, id, ownerID).Scan(
		&a.ID,
		&a.OwnerID,
		&a.Name,
		&a.Type,
		&a.CurrentBalance,
		&a.CreditLimit,
		&a.AvailableBalance,
		&a.ClosingDay,
		&a.DueDay,
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

func (r *accountRepository) ListAccounts(ownerID string) ([]*models.Account, error) {
	query := `
		SELECT id, owner_id, name, type, current_balance,
		       credit_limit, available_balance, closing_day, due_day,
		       created_at, updated_at
		FROM accounts
		WHERE owner_id = ?
		ORDER BY name
	`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a := &models.Account{}
		err := rows.Scan(
			&a.ID,
			&a.OwnerID,
			&a.Name,
			&a.Type,
			&a.CurrentBalance,
			&a.CreditLimit,
			&a.AvailableBalance,
			&a.ClosingDay,
			&a.DueDay,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) UpdateAccount(a *models.Account) error {
	query := `
		UPDATE accounts
		SET name = ?,
			type = ?,
			credit_limit = ?,
			closing_day = ?,
			due_day = ?,
			updated_at = ?
		WHERE id = ? AND owner_id = ?
	`
	result, err := r.db.Exec(query,
		a.Name,
		a.Type,
		a.CreditLimit,
		a.ClosingDay,
		a.DueDay,
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

func (r *accountRepository) UpdateCurrentBalance(id int64, balance decimal.Decimal) error {
	query := `UPDATE accounts SET current_balance = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.Exec(query, balance, time.Now(), id)
	return err
}

func (r *accountRepository) UpdateAvailableBalance(id int64, available decimal.Decimal) error {
	query := `UPDATE accounts SET available_balance = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.Exec(query, available, time.Now(), id)
	return err
}

func (r *accountRepository) DeleteAccount(ownerID string, id int64) error {
	result, err := r.db.Exec(`DELETE FROM accounts WHERE id = ? AND owner_id = ?`, id, ownerID)
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
