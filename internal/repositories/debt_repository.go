package repositories

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"finance-service/internal/models"
)

type DebtRepository interface {
	InsertDebt(d *models.Debt) error
	GetDebtByID(ownerID string, id int64) (*models.Debt, error)
	ListDebts(ownerID string) ([]*models.Debt, error)
	UpdateDebt(d *models.Debt) error
	DeleteDebt(ownerID string, id int64) error
	UpdateDebtPaidAmount(id int64, paid decimal.Decimal, status string) error
	InsertDebtPayment(p *models.DebtPayment) error
	ListDebtPayments(debtID int64) ([]*models.DebtPayment, error)
}

type debtRepository struct {
	db *sql.DB
}

func NewDebtRepository(db *sql.DB) DebtRepository {
	return &debtRepository{db: db}
}

func (r *debtRepository) InsertDebt(d *models.Debt) error {
	query := `
		INSERT INTO debts (
			owner_id, name, total_amount, paid_amount, status, category_id,
			contribution_frequency, installment_count, installment_amount, start_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		d.OwnerID,
		d.Name,
		d.TotalAmount,
		d.PaidAmount,
		d.Status,
		d.CategoryID,
		d.ContributionFrequency,
		d.InstallmentCount,
		d.InstallmentAmount,
		d.StartDate,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

func (r *debtRepository) GetDebtByID(ownerID string, id int64) (*models.Debt, error) {
	d := &models.Debt{}
	query := `
		SELECT id, owner_id, name, total_amount, paid_amount, status, category_id,
		       contribution_frequency, installment_count, installment_amount, start_date,
		       created_at, updated_at
		FROM debts
		WHERE id = ? AND owner_id = ?
	`
	err := r.db.QueryRow(query, id, ownerID).Scan(
		&d.ID,
		&d.OwnerID,
		&d.Name,
		&d.TotalAmount,
		&d.PaidAmount,
		&d.Status,
		&d.CategoryID,
		&d.ContributionFrequency,
		&d.InstallmentCount,
		&d.InstallmentAmount,
		asNullDate(&d.StartDate),
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *debtRepository) ListDebts(ownerID string) ([]*models.Debt, error) {
	query := `
		SELECT id, owner_id, name, total_amount, paid_amount, status, category_id,
		       contribution_frequency, installment_count, installment_amount, start_date,
		       created_at, updated_at
		FROM debts
		WHERE owner_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debts []*models.Debt
	for rows.Next() {
		d := &models.Debt{}
		err := rows.Scan(
			&d.ID,
			&d.OwnerID,
			&d.Name,
			&d.TotalAmount,
			&d.PaidAmount,
			&d.Status,
			&d.CategoryID,
			&d.ContributionFrequency,
			&d.InstallmentCount,
			&d.InstallmentAmount,
			asNullDate(&d.StartDate),
			&d.CreatedAt,
			&d.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		debts = append(debts, d)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return debts, nil
}

func (r *debtRepository) UpdateDebt(d *models.Debt) error {
	query := `
		UPDATE debts
		SET name = ?,
			total_amount = ?,
			status = ?,
			contribution_frequency = ?,
			installment_count = ?,
			installment_amount = ?,
			start_date = ?,
			updated_at = ?
		WHERE id = ? AND owner_id = ?
	`
	result, err := r.db.Exec(query,
		d.Name,
		d.TotalAmount,
		d.Status,
		d.ContributionFrequency,
		d.InstallmentCount,
		d.InstallmentAmount,
		d.StartDate,
		time.Now(),
		d.ID,
		d.OwnerID,
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

func (r *debtRepository) DeleteDebt(ownerID string, id int64) error {
	result, err := r.db.Exec(`DELETE FROM debts WHERE id = ? AND owner_id = ?`, id, ownerID)
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

func (r *debtRepository) UpdateDebtPaidAmount(id int64, paid decimal.Decimal, status string) error {
	query := `UPDATE debts SET paid_amount = ?, status = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.Exec(query, paid, status, time.Now(), id)
	return err
}

func (r *debtRepository) InsertDebtPayment(p *models.DebtPayment) error {
	query := `
		INSERT INTO debt_payments (debt_id, amount, payment_date, notes, transaction_id)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		p.DebtID,
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

func (r *debtRepository) ListDebtPayments(debtID int64) ([]*models.DebtPayment, error) {
	query := `
		SELECT id, debt_id, amount, payment_date, notes, transaction_id, created_at
		FROM debt_payments
		WHERE debt_id = ?
		ORDER BY payment_date DESC, id DESC
	`
	rows, err := r.db.Query(query, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.DebtPayment
	for rows.Next() {
		p := &models.DebtPayment{}
		err := rows.Scan(
			&p.ID,
			&p.DebtID,
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
