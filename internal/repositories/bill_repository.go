package repositories

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"finance-service/internal/models"
)

type BillRepository interface {
	InsertBill(b *models.CreditCardBill) error
	GetBillByID(ownerID string, id int64) (*models.CreditCardBill, error)
	GetBillByAccountAndMonth(accountID int64, referenceMonth string) (*models.CreditCardBill, error)
	ListBillsByAccount(ownerID string, accountID int64) ([]*models.CreditCardBill, error)
	UpdateBillPayment(id int64, paid decimal.Decimal, status string, paymentDate string) error
	UpdateBillInterest(id int64, status string, interest decimal.Decimal, rateApplied decimal.Decimal) error
	UpdateBillPreviousBalance(id int64, previousBalance decimal.Decimal) error
	AddToBillTotal(id int64, delta decimal.Decimal) error
	ListBillsDueBetween(ownerID string, fromDate, toDate string) ([]*models.CreditCardBill, error)
}

type billRepository struct {
	db *sql.DB
}

func NewBillRepository(db *sql.DB) BillRepository {
	return &billRepository{db: db}
}

const billColumns = `
	id, account_id, reference_month, closing_date, due_date,
	total, paid, interest, previous_balance, interest_rate_applied,
	status, payment_date, created_at, updated_at
`

func scanBill(row interface{ Scan(...interface{}) error }) (*models.CreditCardBill, error) {
	b := &models.CreditCardBill{}
	err := row.Scan(
		&b.ID,
		&b.AccountID,
		asDate(&b.ReferenceMonth),
		asDate(&b.ClosingDate),
		asDate(&b.DueDate),
		&b.Total,
		&b.Paid,
		&b.Interest,
		&b.PreviousBalance,
		&b.InterestRateApplied,
		&b.Status,
		asNullDate(&b.PaymentDate),
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *billRepository) InsertBill(b *models.CreditCardBill) error {
	query := `
		INSERT INTO credit_card_bills (
			account_id, reference_month, closing_date, due_date,
			total, paid, interest, previous_balance, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		b.AccountID,
		b.ReferenceMonth,
		b.ClosingDate,
		b.DueDate,
		b.Total,
		b.Paid,
		b.Interest,
		b.PreviousBalance,
		b.Status,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (r *billRepository) GetBillByID(ownerID string, id int64) (*models.CreditCardBill, error) {
	query := `
		SELECT b.id, b.account_id, b.reference_month, b.closing_date, b.due_date,
		       b.total, b.paid, b.interest, b.previous_balance, b.interest_rate_applied,
		       b.status, b.payment_date, b.created_at, b.updated_at
		FROM credit_card_bills b
		JOIN accounts a ON a.id = b.account_id
		WHERE b.id = ? AND a.owner_id = ?
	`
	b, err := scanBill(r.db.QueryRow(query, id, ownerID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *billRepository) GetBillByAccountAndMonth(accountID int64, referenceMonth string) (*models.CreditCardBill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM credit_card_bills
		WHERE account_id = ? AND reference_month = ?
	`
	b, err := scanBill(r.db.QueryRow(query, accountID, referenceMonth))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *billRepository) ListBillsByAccount(ownerID string, accountID int64) ([]*models.CreditCardBill, error) {
	query := `
		SELECT b.id, b.account_id, b.reference_month, b.closing_date, b.due_date,
		       b.total, b.paid, b.interest, b.previous_balance, b.interest_rate_applied,
		       b.status, b.payment_date, b.created_at, b.updated_at
		FROM credit_card_bills b
		JOIN accounts a ON a.id = b.account_id
		WHERE b.account_id = ? AND a.owner_id = ?
		ORDER BY b.reference_month DESC
	`
	rows, err := r.db.Query(query, accountID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []*models.CreditCardBill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *billRepository) UpdateBillPayment(id int64, paid decimal.Decimal, status string, paymentDate string) error {
	query := `
		UPDATE credit_card_bills
		SET paid = ?, status = ?, payment_date = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query, paid, status, paymentDate, time.Now(), id)
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

func (r *billRepository) UpdateBillInterest(id int64, status string, interest decimal.Decimal, rateApplied decimal.Decimal) error {
	query := `
		UPDATE credit_card_bills
		SET status = ?, interest = ?, interest_rate_applied = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query, status, interest, rateApplied, time.Now(), id)
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

func (r *billRepository) UpdateBillPreviousBalance(id int64, previousBalance decimal.Decimal) error {
	query := `
		UPDATE credit_card_bills
		SET previous_balance = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, previousBalance, time.Now(), id)
	return err
}

func (r *billRepository) AddToBillTotal(id int64, delta decimal.Decimal) error {
	query := `
		UPDATE credit_card_bills
		SET total = total + ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, delta, time.Now(), id)
	return err
}

func (r *billRepository) ListBillsDueBetween(ownerID string, fromDate, toDate string) ([]*models.CreditCardBill, error) {
	query := `
		SELECT b.id, b.account_id, b.reference_month, b.closing_date, b.due_date,
		       b.total, b.paid, b.interest, b.previous_balance, b.interest_rate_applied,
		       b.status, b.payment_date, b.created_at, b.updated_at
		FROM credit_card_bills b
		JOIN accounts a ON a.id = b.account_id
		WHERE a.owner_id = ?
		AND b.due_date BETWEEN ? AND ?
		AND b.status IN (?, ?)
	`
	rows, err := r.db.Query(query, ownerID, fromDate, toDate, models.BillStatusOpen, models.BillStatusPartial)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []*models.CreditCardBill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bills, nil
}
