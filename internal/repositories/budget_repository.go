package repositories

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"finance-service/internal/models"
)

type BudgetRepository interface {
	UpsertBudget(b *models.Budget) error
	InsertBudgetsBatch(budgets []*models.Budget) error
	ListBudgetsByMonth(ownerID string, referenceMonth string) ([]*models.Budget, error)
	DeleteBudget(ownerID string, id int64) error
	SumExpensesForCategoryMonth(ownerID string, categoryID int64, monthStart, monthEnd string) (decimal.Decimal, error)
}

type budgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) UpsertBudget(b *models.Budget) error {
	query := `
		INSERT INTO budgets (owner_id, category_id, reference_month, amount, source)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE amount = VALUES(amount), source = VALUES(source)
	`
	result, err := r.db.Exec(query,
		b.OwnerID,
		b.CategoryID,
		b.ReferenceMonth,
		b.Amount,
		b.Source,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	if id != 0 {
		b.ID = id
	}
	return nil
}

func (r *budgetRepository) InsertBudgetsBatch(budgets []*models.Budget) error {
	stmt, err := r.db.Prepare(`
		INSERT INTO budgets (owner_id, category_id, reference_month, amount, source)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE amount = VALUES(amount), source = VALUES(source)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range budgets {
		if _, err := stmt.Exec(b.OwnerID, b.CategoryID, b.ReferenceMonth, b.Amount, b.Source); err != nil {
			return err
		}
	}
	return nil
}

func (r *budgetRepository) ListBudgetsByMonth(ownerID string, referenceMonth string) ([]*models.Budget, error) {
	query := `
		SELECT id, owner_id, category_id, reference_month, amount, source, created_at
		FROM budgets
		WHERE owner_id = ? AND reference_month = ?
		ORDER BY category_id
	`
	rows, err := r.db.Query(query, ownerID, referenceMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		b := &models.Budget{}
		err := rows.Scan(
			&b.ID,
			&b.OwnerID,
			&b.CategoryID,
			asDate(&b.ReferenceMonth),
			&b.Amount,
			&b.Source,
			&b.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return budgets, nil
}

func (r *budgetRepository) DeleteBudget(ownerID string, id int64) error {
	result, err := r.db.Exec(`DELETE FROM budgets WHERE id = ? AND owner_id = ?`, id, ownerID)
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

func (r *budgetRepository) SumExpensesForCategoryMonth(ownerID string, categoryID int64, monthStart, monthEnd string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	query := `
		SELECT SUM(amount)
		FROM transactions
		WHERE owner_id = ? AND category_id = ?
		AND posted_at BETWEEN ? AND ?
		AND amount < 0
	`
	err := r.db.QueryRow(query, ownerID, categoryID, monthStart, monthEnd).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
