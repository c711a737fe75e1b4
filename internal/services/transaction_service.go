package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"finance-service/internal/models"
	"finance-service/internal/repositories"
)

type TransactionService struct {
	txRepo       repositories.TransactionRepository
	accountRepo  repositories.AccountRepository
	categoryRepo repositories.CategoryRepository
	billRepo     repositories.BillRepository
	logger       *zap.Logger
}

func NewTransactionService(
	txRepo repositories.TransactionRepository,
	accountRepo repositories.AccountRepository,
	categoryRepo repositories.CategoryRepository,
	billRepo repositories.BillRepository,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		txRepo:       txRepo,
		accountRepo:  accountRepo,
		categoryRepo: categoryRepo,
		billRepo:     billRepo,
		logger:       logger,
	}
}

type TransactionInput struct {
	AccountID    int64
	CategoryID   int64
	Description  string
	AmountCents  int64
	PostedAt     string
	ProviderTxID string
}

// CreateTransaction records a movement and adjusts the account balance.
// Expenses on a credit-card account additionally attach to the open bill for
// the posting date (created on demand) and consume available limit.
func (s *TransactionService) CreateTransaction(scope Scope, input TransactionInput) (*models.Transaction, error) {
	if input.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if input.AmountCents == 0 {
		return nil, fmt.Errorf("%w: amount_cents must be non-zero", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", input.PostedAt); err != nil {
		return nil, fmt.Errorf("%w: invalid posted_at, use YYYY-MM-DD", ErrValidation)
	}

	account, err := s.accountRepo.GetAccountByID(scope.OwnerID, input.AccountID)
	if err != nil {
		return nil, err
	}

	t := &models.Transaction{
		OwnerID:     scope.OwnerID,
		AccountID:   account.ID,
		Description: input.Description,
		Amount:      models.CentsToDecimal(input.AmountCents),
		PostedAt:    input.PostedAt,
		Source:      models.TxSourceManual,
	}
	if input.CategoryID != 0 {
		if _, err := s.categoryRepo.GetCategoryByID(scope.OwnerID, input.CategoryID); err != nil {
			return nil, err
		}
		t.CategoryID = sql.NullInt64{Int64: input.CategoryID, Valid: true}
	}
	if input.ProviderTxID != "" {
		t.ProviderTxID = sql.NullString{String: input.ProviderTxID, Valid: true}
	}

	isCardCharge := account.Type == models.AccountTypeCreditCard && t.Amount.IsNegative()
	var bill *models.CreditCardBill
	if isCardCharge {
		bill, err = s.billForPostingDate(account, input.PostedAt)
		if err != nil {
			return nil, err
		}
		t.CreditCardBillID = sql.NullInt64{Int64: bill.ID, Valid: true}
	}

	if err := s.txRepo.InsertTransaction(t); err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %v", err)
	}

	if err := s.accountRepo.UpdateCurrentBalance(account.ID, account.CurrentBalance.Add(t.Amount)); err != nil {
		s.logger.Warn("transaction inserted but balance update failed",
			zap.Int64("transaction_id", t.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to update account balance: %v", err)
	}

	if isCardCharge {
		charge := t.Amount.Neg()
		if err := s.billRepo.AddToBillTotal(bill.ID, charge); err != nil {
			return nil, fmt.Errorf("failed to add charge to bill: %v", err)
		}
		if account.AvailableBalance.Valid {
			if err := s.accountRepo.UpdateAvailableBalance(account.ID, account.AvailableBalance.Decimal.Sub(charge)); err != nil {
				return nil, fmt.Errorf("failed to update available balance: %v", err)
			}
		}
	}

	return t, nil
}

// billForPostingDate picks the bill a card charge belongs to: charges after
// the closing day roll into the next reference month.
func (s *TransactionService) billForPostingDate(account *models.Account, postedAt string) (*models.CreditCardBill, error) {
	posted, err := time.Parse("2006-01-02", postedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid posted_at", ErrValidation)
	}

	month := time.Date(posted.Year(), posted.Month(), 1, 0, 0, 0, 0, time.UTC)
	if account.ClosingDay.Valid && int64(posted.Day()) > account.ClosingDay.Int64 {
		month = month.AddDate(0, 1, 0)
	}
	refMonth := month.Format("2006-01-02")

	bill, err := s.billRepo.GetBillByAccountAndMonth(account.ID, refMonth)
	if err == nil {
		return bill, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	bill = buildBillForMonth(account, refMonth)
	if err := s.billRepo.InsertBill(bill); err != nil {
		return nil, fmt.Errorf("failed to create bill for charge: %v", err)
	}
	return bill, nil
}

func (s *TransactionService) GetTransaction(scope Scope, id int64) (*models.Transaction, error) {
	return s.txRepo.GetTransactionByID(scope.OwnerID, id)
}

func (s *TransactionService) ListTransactions(scope Scope, filter repositories.TransactionFilter) ([]*models.Transaction, error) {
	return s.txRepo.ListTransactions(scope.OwnerID, filter)
}

type TransactionPatch struct {
	CategoryID  *int64
	Description *string
	AmountCents *int64
	PostedAt    *string
}

// UpdateTransaction applies a partial update. Amount changes adjust the
// account balance by the delta; bill totals are not retroactively
// re-aggregated.
func (s *TransactionService) UpdateTransaction(scope Scope, id int64, patch TransactionPatch) (*models.Transaction, error) {
	t, err := s.txRepo.GetTransactionByID(scope.OwnerID, id)
	if err != nil {
		return nil, err
	}

	oldAmount := t.Amount
	if patch.Description != nil {
		if *patch.Description == "" {
			return nil, fmt.Errorf("%w: description must not be empty", ErrValidation)
		}
		t.Description = *patch.Description
	}
	if patch.CategoryID != nil {
		if *patch.CategoryID == 0 {
			t.CategoryID = sql.NullInt64{}
		} else {
			if _, err := s.categoryRepo.GetCategoryByID(scope.OwnerID, *patch.CategoryID); err != nil {
				return nil, err
			}
			t.CategoryID = sql.NullInt64{Int64: *patch.CategoryID, Valid: true}
		}
	}
	if patch.AmountCents != nil {
		if *patch.AmountCents == 0 {
			return nil, fmt.Errorf("%w: amount_cents must be non-zero", ErrValidation)
		}
		t.Amount = models.CentsToDecimal(*patch.AmountCents)
	}
	if patch.PostedAt != nil {
		if _, err := time.Parse("2006-01-02", *patch.PostedAt); err != nil {
			return nil, fmt.Errorf("%w: invalid posted_at, use YYYY-MM-DD", ErrValidation)
		}
		t.PostedAt = *patch.PostedAt
	}

	if err := s.txRepo.UpdateTransaction(t); err != nil {
		return nil, err
	}

	if !t.Amount.Equal(oldAmount) {
		account, err := s.accountRepo.GetAccountByID(scope.OwnerID, t.AccountID)
		if err != nil {
			return nil, err
		}
		delta := t.Amount.Sub(oldAmount)
		if err := s.accountRepo.UpdateCurrentBalance(account.ID, account.CurrentBalance.Add(delta)); err != nil {
			return nil, fmt.Errorf("failed to adjust account balance: %v", err)
		}
	}

	return t, nil
}

// DeleteTransaction removes the row and reverses its balance effect; charges
// attached to a bill are subtracted from the bill total.
func (s *TransactionService) DeleteTransaction(scope Scope, id int64) error {
	t, err := s.txRepo.GetTransactionByID(scope.OwnerID, id)
	if err != nil {
		return err
	}

	if err := s.txRepo.DeleteTransaction(scope.OwnerID, id); err != nil {
		return err
	}

	account, err := s.accountRepo.GetAccountByID(scope.OwnerID, t.AccountID)
	if err == nil {
		if err := s.accountRepo.UpdateCurrentBalance(account.ID, account.CurrentBalance.Sub(t.Amount)); err != nil {
			s.logger.Warn("transaction deleted but balance reversal failed",
				zap.Int64("transaction_id", id),
				zap.Error(err),
			)
		}
	}

	if t.CreditCardBillID.Valid && t.Amount.IsNegative() {
		if err := s.billRepo.AddToBillTotal(t.CreditCardBillID.Int64, t.Amount); err != nil {
			s.logger.Warn("transaction deleted but bill total reversal failed",
				zap.Int64("bill_id", t.CreditCardBillID.Int64),
				zap.Error(err),
			)
		}
	}

	return nil
}
