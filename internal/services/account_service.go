package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"finance-service/internal/models"
	"finance-service/internal/repositories"
)

type AccountService struct {
	accountRepo repositories.AccountRepository
	billRepo    repositories.BillRepository
	logger      *zap.Logger
}

func NewAccountService(
	accountRepo repositories.AccountRepository,
	billRepo repositories.BillRepository,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		billRepo:    billRepo,
		logger:      logger,
	}
}

type AccountInput struct {
	Name             string
	Type             string
	InitialCents     int64
	CreditLimitCents int64
	ClosingDay       int64
	DueDay           int64
}

func validAccountType(t string) bool {
	switch t {
	case models.AccountTypeChecking, models.AccountTypeSavings, models.AccountTypeCreditCard,
		models.AccountTypeInvestment, models.AccountTypeCash:
		return true
	}
	return false
}

// CreateAccount creates the account; credit-card accounts also get their
// current month's bill opened immediately.
func (s *AccountService) CreateAccount(scope Scope, input AccountInput) (*models.Account, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !validAccountType(input.Type) {
		return nil, fmt.Errorf("%w: invalid account type", ErrValidation)
	}

	account := &models.Account{
		OwnerID:        scope.OwnerID,
		Name:           input.Name,
		Type:           input.Type,
		CurrentBalance: models.CentsToDecimal(input.InitialCents),
	}

	if input.Type == models.AccountTypeCreditCard {
		if input.CreditLimitCents <= 0 {
			return nil, fmt.Errorf("%w: credit card accounts require credit_limit_cents", ErrValidation)
		}
		if input.ClosingDay < 1 || input.ClosingDay > 31 || input.DueDay < 1 || input.DueDay > 31 {
			return nil, fmt.Errorf("%w: closing_day and due_day must be between 1 and 31", ErrValidation)
		}
		limit := models.CentsToDecimal(input.CreditLimitCents)
		account.CreditLimit = decimal.NullDecimal{Decimal: limit, Valid: true}
		account.AvailableBalance = decimal.NullDecimal{Decimal: limit, Valid: true}
		account.ClosingDay = sql.NullInt64{Int64: input.ClosingDay, Valid: true}
		account.DueDay = sql.NullInt64{Int64: input.DueDay, Valid: true}
	}

	if err := s.accountRepo.InsertAccount(account); err != nil {
		return nil, fmt.Errorf("failed to create account: %v", err)
	}

	if account.Type == models.AccountTypeCreditCard {
		now := time.Now().UTC()
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		bill := buildBillForMonth(account, month)
		if err := s.billRepo.InsertBill(bill); err != nil {
			s.logger.Warn("account created but initial bill creation failed",
				zap.Int64("account_id", account.ID),
				zap.Error(err),
			)
		}
	}

	return account, nil
}

func (s *AccountService) GetAccount(scope Scope, id int64) (*models.Account, error) {
	return s.accountRepo.GetAccountByID(scope.OwnerID, id)
}

func (s *AccountService) ListAccounts(scope Scope) ([]*models.Account, error) {
	return s.accountRepo.ListAccounts(scope.OwnerID)
}

// UpdateAccount updates mutable fields, keeping available_balance within the
// (possibly lowered) credit limit.
func (s *AccountService) UpdateAccount(scope Scope, id int64, input AccountInput) (*models.Account, error) {
	account, err := s.accountRepo.GetAccountByID(scope.OwnerID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		account.Name = input.Name
	}
	if input.Type != "" {
		if !validAccountType(input.Type) {
			return nil, fmt.Errorf("%w: invalid account type", ErrValidation)
		}
		account.Type = input.Type
	}
	if input.ClosingDay != 0 {
		if input.ClosingDay < 1 || input.ClosingDay > 31 {
			return nil, fmt.Errorf("%w: closing_day must be between 1 and 31", ErrValidation)
		}
		account.ClosingDay = sql.NullInt64{Int64: input.ClosingDay, Valid: true}
	}
	if input.DueDay != 0 {
		if input.DueDay < 1 || input.DueDay > 31 {
			return nil, fmt.Errorf("%w: due_day must be between 1 and 31", ErrValidation)
		}
		account.DueDay = sql.NullInt64{Int64: input.DueDay, Valid: true}
	}
	if input.CreditLimitCents > 0 {
		account.CreditLimit = decimal.NullDecimal{Decimal: models.CentsToDecimal(input.CreditLimitCents), Valid: true}
	}

	if err := s.accountRepo.UpdateAccount(account); err != nil {
		return nil, err
	}

	// lowering the limit must pull available down with it
	if account.CreditLimit.Valid && account.AvailableBalance.Valid &&
		account.AvailableBalance.Decimal.GreaterThan(account.CreditLimit.Decimal) {
		if err := s.accountRepo.UpdateAvailableBalance(account.ID, account.CreditLimit.Decimal); err != nil {
			return nil, fmt.Errorf("failed to clamp available balance: %v", err)
		}
		account.AvailableBalance = decimal.NullDecimal{Decimal: account.CreditLimit.Decimal, Valid: true}
	}

	return account, nil
}

func (s *AccountService) DeleteAccount(scope Scope, id int64) error {
	return s.accountRepo.DeleteAccount(scope.OwnerID, id)
}
