package repositories

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"finance-service/internal/models"
)

type ReceivableRepository interface {
	InsertReceivable(rc *models.Receivable) error
	GetReceivableByID(ownerID string, id int64) (*models.Receivable, error)
	ListReceivables(ownerID string) ([]*models.Receivable, error)
	UpdateReceivable(rc *models.Receivable) error
	DeleteReceivable(ownerID string, id int64) error
	UpdateReceivablePaidAmount(id int64, paid decimal.Decimal, status string) error
	InsertReceivablePayment(p *models.ReceivablePayment) error
	ListReceivablePayments(receivableID int64) ([]*models.ReceivablePayment, error)
}

type receivableRepository struct {
	db *sql.DB
}

func NewReceivableRepository(db *sql.DB) ReceivableRepository {
	return &receivableRepository{db: db}
}

func (r *receivableRepository) InsertReceivable(rc *models.Receivable) error {
	query := `
		INSERT INTO receivables (owner_id, name, total_amount, paid_amount, status, category_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		rc.OwnerID,
		rc.Name,
		rc.TotalAmount,
		rc.PaidAmount,
		rc.Status,
		rc.CategoryID,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rc.ID = id
	return nil
}

func (r *receivableRepository) GetReceivableByID(ownerID string, id int64) (*models.Receivable, error) {
	rc := &models.Receivable{}
	query := `
		SELECT id, owner_id, name, total_amount, paid_amount, status, category_id,
		       created_at, updated_at
		FROM receivables
		WHERE id = ? AND owner_id = ?
	`
	err := r.db.QueryRow(query, id, ownerID).Scan(
		&rc.ID,
		&rc.OwnerID,
		&rc.Name,
		&rc.TotalAmount,
		&rc.PaidAmount,
		&rc.Status,
		&rc.CategoryID,
		&rc.CreatedAt,
		&rc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rc, nil
}

func (r *receivableRepository) ListReceivables(ownerID string) ([]*models.Receivable, error) {
	query := `
		SELECT id, owner_id, name, total_amount, paid_amount, status, category_id,
		       created_at, updated_at
		FROM receivables
		WHERE owner_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receivables []*models.Receivable
	for rows.Next() {
		rc := &models.Receivable{}
		err := rows.Scan(
			&rc.ID,
			&rc.OwnerID,
			&rc.Name,
			&rc.TotalAmount,
			&rc.PaidAmount,
			&rc.Status,
			&rc.CategoryID,
			&rc.CreatedAt,
			&rc.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		receivables = append(receivables, rc)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return receivables, nil
}

func (r *receivableRepository) UpdateReceivable(rc *models.Receivable) error {
	query := `
		UPDATE receivables
		SET name = ?, total_amount = ?, status = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`
	result, err := r.db.Exec(query,
		rc.Name,
		rc.TotalAmount,
		rc.Status,
		time.Now(),
		rc.ID,
		rc.OwnerID,
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

func (r *receivableRepository) DeleteReceivable(ownerID string, id int64) error {
	result, err := r.db.Exec(`DELETE FROM receivables WHERE id = ? AND owner_id = ?`, id, ownerID)
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

func (r *receivableRepository) UpdateReceivablePaidAmount(id int64, paid decimal.Decimal, status string) error {
	query := `UPDATE receivables SET paid_amount = ?, status = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.Exec(query, paid, status, time.Now(), id)
	return err
}

func (r *receivableRepository) InsertReceivablePayment(p *models.ReceivablePayment) error {
	query := `
		INSERT INTO receivable_payments (receivable_id, amount, payment_date, notes, transaction_id)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		p.ReceivableID,
		p.Amount,
		p.PaymentDate,
		p.Notes,
		p.TransactionID,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *receivableRepository) ListReceivablePayments(receivableID int64) ([]*models.ReceivablePayment, error) {
	query := `
		SELECT id, receivable_id, amount, payment_date, notes, transaction_id, created_at
		FROM receivable_payments
		WHERE receivable_id = ?
		ORDER BY payment_date DESC, id DESC
	`
	rows, err := r.db.Query(query, receivableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.ReceivablePayment
	for rows.Next() {
		p := &models.ReceivablePayment{}
		err := rows.Scan(
			&p.ID,
			&p.ReceivableID,
			&p.Amount,
			asDate(&p.PaymentDate),
			&p.Notes,
			&p.TransactionID,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}
