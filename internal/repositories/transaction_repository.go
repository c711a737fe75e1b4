package repositories

import (
	"database/sql"
	"strings"
	"time"

	"finance-service/internal/models"
)

// dedupChunkSize bounds the number of placeholders per lookup query to stay
// under backend query-parameter limits.
const dedupChunkSize = 200

// TransactionFilter narrows ListTransactions.
type TransactionFilter struct {
	AccountID  int64
	CategoryID int64
	FromDate   string
	ToDate     string
}

// ContentKey identifies a transaction by its content for de-duplication.
type ContentKey struct {
	PostedAt    string
	Description string
	Amount      string
}

type TransactionRepository interface {
	InsertTransaction(t *models.Transaction) error
	InsertTransactionsBatch(tx *sql.Tx, transactions []*models.Transaction) error
	GetTransactionByID(ownerID string, id int64) (*models.Transaction, error)
	ListTransactions(ownerID string, filter TransactionFilter) ([]*models.Transaction, error)
	UpdateTransaction(t *models.Transaction) error
	DeleteTransaction(ownerID string, id int64) error
	ExistingProviderTxIDs(ownerID string, providerIDs []string) (map[string]bool, error)
	ExistingContentKeys(ownerID string, keys []ContentKey) (map[ContentKey]bool, error)
}

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) InsertTransaction(t *models.Transaction) error {
	query := `
		INSERT INTO transactions (
			owner_id, account_id, category_id, credit_card_bill_id,
			description, amount, posted_at, source, provider_tx_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		t.OwnerID,
		t.AccountID,
		t.CategoryID,
		t.CreditCardBillID,
		t.Description,
		t.Amount,
		t.PostedAt,
		t.Source,
		t.ProviderTxID,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func (r *transactionRepository) InsertTransactionsBatch(tx *sql.Tx, transactions []*models.Transaction) error {
	query := `
		INSERT INTO transactions (
			owner_id, account_id, category_id, credit_card_bill_id,
			description, amount, posted_at, source, provider_tx_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range transactions {
		result, err := stmt.Exec(
			t.OwnerID,
			t.AccountID,
			t.CategoryID,
			t.CreditCardBillID,
			t.Description,
			t.Amount,
			t.PostedAt,
			t.Source,
			t.ProviderTxID,
		)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		t.ID = id
	}
	return nil
}

func (r *transactionRepository) GetTransactionByID(ownerID string, id int64) (*models.Transaction, error) {
	t := &models.Transaction{}
	query := `
		SELECT id, owner_id, account_id, category_id, credit_card_bill_id,
		       description, amount, posted_at, source, provider_tx_id,
		       created_at, updated_at
		FROM transactions
		WHERE id = ? AND owner_id = ?
	`
	err := r.db.QueryRow(query, id, ownerID).Scan(
		&t.ID,
		&t.OwnerID,
		&t.AccountID,
		&t.CategoryID,
		&t.CreditCardBillID,
		&t.Description,
		&t.Amount,
		asDate(&t.PostedAt),
		&t.Source,
		&t.ProviderTxID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *transactionRepository) ListTransactions(ownerID string, filter TransactionFilter) ([]*models.Transaction, error) {
	query := `
		SELECT id, owner_id, account_id, category_id, credit_card_bill_id,
		       description, amount, posted_at, source, provider_tx_id,
		       created_at, updated_at
		FROM transactions
		WHERE owner_id = ?
	`
	args := []interface{}{ownerID}

	if filter.AccountID != 0 {
		query += " AND account_id = ?"
		args = append(args, filter.AccountID)
	}
	if filter.CategoryID != 0 {
		query += " AND category_id = ?"
		args = append(args, filter.CategoryID)
	}
	if filter.FromDate != "" {
		query += " AND posted_at >= ?"
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		query += " AND posted_at <= ?"
		args = append(args, filter.ToDate)
	}
	query += " ORDER BY posted_at DESC, id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		t := &models.Transaction{}
		err := rows.Scan(
			&t.ID,
			&t.OwnerID,
			&t.AccountID,
			&t.CategoryID,
			&t.CreditCardBillID,
			&t.Description,
			&t.Amount,
			asDate(&t.PostedAt),
			&t.Source,
			&t.ProviderTxID,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *transactionRepository) UpdateTransaction(t *models.Transaction) error {
	query := `
		UPDATE transactions
		SET account_id = ?,
			category_id = ?,
			description = ?,
			amount = ?,
			posted_at = ?,
			updated_at = ?
		WHERE id = ? AND owner_id = ?
	`
	result, err := r.db.Exec(query,
		t.AccountID,
		t.CategoryID,
		t.Description,
		t.Amount,
		t.PostedAt,
		time.Now(),
		t.ID,
		t.OwnerID,
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

func (r *transactionRepository) DeleteTransaction(ownerID string, id int64) error {
	result, err := r.db.Exec(`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
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

func (r *transactionRepository) ExistingProviderTxIDs(ownerID string, providerIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool)

	for start := 0; start < len(providerIDs); start += dedupChunkSize {
		end := start + dedupChunkSize
		if end > len(providerIDs) {
			end = len(providerIDs)
		}
		chunk := providerIDs[start:end]

		placeholders := strings.Repeat("?,", len(chunk)-1) + "?"
		query := `SELECT provider_tx_id FROM transactions WHERE owner_id = ? AND provider_tx_id IN (` + placeholders + `)`

		args := make([]interface{}, 0, len(chunk)+1)
		args = append(args, ownerID)
		for _, id := range chunk {
			args = append(args, id)
		}

		rows, err := r.db.Query(query, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			existing[id] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return existing, nil
}

func (r *transactionRepository) ExistingContentKeys(ownerID string, keys []ContentKey) (map[ContentKey]bool, error) {
	existing := make(map[ContentKey]bool)

	for start := 0; start < len(keys); start += dedupChunkSize {
		end := start + dedupChunkSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("(?,?,?),", len(chunk)), ",")
		query := `
			SELECT posted_at, description, amount
			FROM transactions
			WHERE owner_id = ?
			AND (posted_at, description, amount) IN (` + placeholders + `)`

		args := make([]interface{}, 0, len(chunk)*3+1)
		args = append(args, ownerID)
		for _, k := range chunk {
			args = append(args, k.PostedAt, k.Description, k.Amount)
		}

		rows, err := r.db.Query(query, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var k ContentKey
			if err := rows.Scan(asDate(&k.PostedAt), &k.Description, &k.Amount); err != nil {
				rows.Close()
				return nil, err
			}
			existing[k] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return existing, nil
}
