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

type DebtService struct {
	debtRepo     repositories.DebtRepository
	categoryRepo repositories.CategoryRepository
	txRepo       repositories.TransactionRepository
	accountRepo  repositories.AccountRepository
	budgetRepo   repositories.BudgetRepository
	logger       *zap.Logger
}

func NewDebtService(
	debtRepo repositories.DebtRepository,
	categoryRepo repositories.CategoryRepository,
	txRepo repositories.TransactionRepository,
	accountRepo repositories.AccountRepository,
	budgetRepo repositories.BudgetRepository,
	logger *zap.Logger,
) *DebtService {
	return &DebtService{
		debtRepo:     debtRepo,
		categoryRepo: categoryRepo,
		txRepo:       txRepo,
		accountRepo:  accountRepo,
		budgetRepo:   budgetRepo,
		logger:       logger,
	}
}

type CreateDebtInput struct {
	Name                  string
	TotalAmountCents      int64
	ContributionFrequency string
	InstallmentCount      int64
	InstallmentCents      int64
	StartDate             string
}

// CreateDebt creates the debt together with its dedicated expense category
// and, when a negotiated schedule is present, auto-generates the monthly
// budgets covering the installments.
func (s *DebtService) CreateDebt(scope Scope, input CreateDebtInput) (*models.Debt, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if input.TotalAmountCents <= 0 {
		return nil, fmt.Errorf("%w: total_amount_cents must be positive", ErrValidation)
	}

	category := &models.Category{
		OwnerID:    scope.OwnerID,
		Name:       input.Name,
		Type:       models.CategoryTypeExpense,
		SourceType: models.CategorySourceDebt,
	}
	if err := s.categoryRepo.InsertCategory(category); err != nil {
		return nil, fmt.Errorf("failed to create debt category: %v", err)
	}

	debt := &models.Debt{
		OwnerID:     scope.OwnerID,
		Name:        input.Name,
		TotalAmount: models.CentsToDecimal(input.TotalAmountCents),
		PaidAmount:  decimal.Zero,
		Status:      models.DebtStatusActive,
		CategoryID:  category.ID,
	}
	if input.ContributionFrequency != "" {
		if input.ContributionFrequency != "monthly" && input.ContributionFrequency != "weekly" {
			return nil, fmt.Errorf("%w: contribution_frequency must be monthly or weekly", ErrValidation)
		}
		if input.InstallmentCount <= 0 || input.InstallmentCents <= 0 || input.StartDate == "" {
			return nil, fmt.Errorf("%w: a schedule requires installment_count, installment_amount_cents and start_date", ErrValidation)
		}
		if _, err := time.Parse("2006-01-02", input.StartDate); err != nil {
			return nil, fmt.Errorf("%w: invalid start_date, use YYYY-MM-DD", ErrValidation)
		}
		debt.Status = models.DebtStatusNegotiating
		debt.ContributionFrequency = sql.NullString{String: input.ContributionFrequency, Valid: true}
		debt.InstallmentCount = sql.NullInt64{Int64: input.InstallmentCount, Valid: true}
		debt.InstallmentAmount = decimal.NullDecimal{Decimal: models.CentsToDecimal(input.InstallmentCents), Valid: true}
		debt.StartDate = sql.NullString{String: input.StartDate, Valid: true}
	}

	if err := s.debtRepo.InsertDebt(debt); err != nil {
		return nil, fmt.Errorf("failed to create debt: %v", err)
	}

	if debt.ContributionFrequency.Valid {
		budgets := ScheduleBudgets(debt)
		if err := s.budgetRepo.InsertBudgetsBatch(budgets); err != nil {
			s.logger.Warn("debt created but schedule budgets failed",
				zap.Int64("debt_id", debt.ID),
				zap.Error(err),
			)
		}
	}

	return debt, nil
}

// ScheduleBudgets expands a debt's negotiated payment schedule into monthly
// budget rows against the debt's category. Weekly schedules step seven days
// per installment and are summed per reference month.
func ScheduleBudgets(debt *models.Debt) []*models.Budget {
	if !debt.ContributionFrequency.Valid || !debt.StartDate.Valid ||
		!debt.InstallmentCount.Valid || !debt.InstallmentAmount.Valid {
		return nil
	}
	start, err := time.Parse("2006-01-02", debt.StartDate.String)
	if err != nil {
		return nil
	}

	perMonth := make(map[string]decimal.Decimal)
	var monthOrder []string

	current := start
	for i := int64(0); i < debt.InstallmentCount.Int64; i++ {
		month := time.Date(current.Year(), current.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		if _, seen := perMonth[month]; !seen {
			monthOrder = append(monthOrder, month)
		}
		perMonth[month] = perMonth[month].Add(debt.InstallmentAmount.Decimal)

		if debt.ContributionFrequency.String == "weekly" {
			current = current.AddDate(0, 0, 7)
		} else {
			current = current.AddDate(0, 1, 0)
		}
	}

	budgets := make([]*models.Budget, 0, len(monthOrder))
	for _, month := range monthOrder {
		budgets = append(budgets, &models.Budget{
			OwnerID:        debt.OwnerID,
			CategoryID:     debt.CategoryID,
			ReferenceMonth: month,
			Amount:         perMonth[month],
			Source:         models.BudgetSourceDebtSchedule,
		})
	}
	return budgets
}

type DebtPaymentInput struct {
	AmountCents   int64
	PaymentDate   string
	Notes         string
	FromAccountID int64
}

// AddPayment records a payment against a debt and then updates the debt's
// running paid total. The insert and the total update are two independent
// writes; two concurrent payments can race (last writer wins).
func (s *DebtService) AddPayment(scope Scope, debtID int64, input DebtPaymentInput) (*models.DebtPayment, *models.Debt, error) {
	if input.AmountCents <= 0 {
		return nil, nil, fmt.Errorf("%w: amount_cents must be positive", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", input.PaymentDate); err != nil {
		return nil, nil, fmt.Errorf("%w: invalid payment_date, use YYYY-MM-DD", ErrValidation)
	}

	debt, err := s.debtRepo.GetDebtByID(scope.OwnerID, debtID)
	if err != nil {
		return nil, nil, err
	}

	amount := models.CentsToDecimal(input.AmountCents)
	payment := &models.DebtPayment{
		DebtID:      debt.ID,
		Amount:      amount,
		PaymentDate: input.PaymentDate,
		Notes:       input.Notes,
	}

	if input.FromAccountID != 0 {
		txID, err := s.recordDebtTransaction(scope, debt, amount, input)
		if err != nil {
			return nil, nil, err
		}
		payment.TransactionID = sql.NullInt64{Int64: txID, Valid: true}
	}

	if err := s.debtRepo.InsertDebtPayment(payment); err != nil {
		return nil, nil, fmt.Errorf("failed to insert debt payment: %v", err)
	}

	// separate read-modify-write of the running total; not atomic with the
	// insert above
	current, err := s.debtRepo.GetDebtByID(scope.OwnerID, debtID)
	if err != nil {
		s.logger.Warn("debt payment recorded but total re-read failed",
			zap.Int64("debt_id", debtID),
			zap.Error(err),
		)
		return nil, nil, err
	}
	newPaid := current.PaidAmount.Add(amount)
	status := current.Status
	if newPaid.GreaterThanOrEqual(current.TotalAmount) {
		status = models.DebtStatusPaid
	}
	if err := s.debtRepo.UpdateDebtPaidAmount(debt.ID, newPaid, status); err != nil {
		s.logger.Warn("debt payment recorded but total update failed; state requires manual reconciliation",
			zap.Int64("debt_id", debtID),
			zap.Error(err),
		)
		return nil, nil, fmt.Errorf("failed to update debt paid amount: %v", err)
	}

	updated, err := s.debtRepo.GetDebtByID(scope.OwnerID, debtID)
	if err != nil {
		return nil, nil, err
	}
	return payment, updated, nil
}

func (s *DebtService) recordDebtTransaction(scope Scope, debt *models.Debt, amount decimal.Decimal, input DebtPaymentInput) (int64, error) {
	if _, err := s.accountRepo.GetAccountByID(scope.OwnerID, input.FromAccountID); err != nil {
		return 0, err
	}

	tx := &models.Transaction{
		OwnerID:     scope.OwnerID,
		AccountID:   input.FromAccountID,
		CategoryID:  sql.NullInt64{Int64: debt.CategoryID, Valid: true},
		Description: fmt.Sprintf("Debt payment - %s", debt.Name),
		Amount:      amount.Neg(),
		PostedAt:    input.PaymentDate,
		Source:      models.TxSourceSystem,
	}
	if err := s.txRepo.InsertTransaction(tx); err != nil {
		return 0, fmt.Errorf("failed to insert debt payment transaction: %v", err)
	}

	account, err := s.accountRepo.GetAccountByID(scope.OwnerID, input.FromAccountID)
	if err != nil {
		return 0, fmt.Errorf("failed to reload source account: %v", err)
	}
	if err := s.accountRepo.UpdateCurrentBalance(account.ID, account.CurrentBalance.Sub(amount)); err != nil {
		return 0, fmt.Errorf("failed to update source account balance: %v", err)
	}
	return tx.ID, nil
}

func (s *DebtService) GetDebt(scope Scope, id int64) (*models.Debt, error) {
	return s.debtRepo.GetDebtByID(scope.OwnerID, id)
}

func (s *DebtService) ListDebts(scope Scope) ([]*models.Debt, error) {
	return s.debtRepo.ListDebts(scope.OwnerID)
}

func (s *DebtService) ListPayments(scope Scope, debtID int64) ([]*models.DebtPayment, error) {
	if _, err := s.debtRepo.GetDebtByID(scope.OwnerID, debtID); err != nil {
		return nil, err
	}
	return s.debtRepo.ListDebtPayments(debtID)
}

type UpdateDebtInput struct {
	Name             string
	TotalAmountCents int64
	Status           string
}

func (s *DebtService) UpdateDebt(scope Scope, id int64, input UpdateDebtInput) (*models.Debt, error) {
	debt, err := s.debtRepo.GetDebtByID(scope.OwnerID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		debt.Name = input.Name
	}
	if input.TotalAmountCents > 0 {
		debt.TotalAmount = models.CentsToDecimal(input.TotalAmountCents)
	}
	if input.Status != "" {
		switch input.Status {
		case models.DebtStatusActive, models.DebtStatusNegotiating, models.DebtStatusPaid, models.DebtStatusDefaulted:
			debt.Status = input.Status
		default:
			return nil, fmt.Errorf("%w: invalid status", ErrValidation)
		}
	}

	if err := s.debtRepo.UpdateDebt(debt); err != nil {
		return nil, err
	}
	return debt, nil
}

func (s *DebtService) DeleteDebt(scope Scope, id int64) error {
	return s.debtRepo.DeleteDebt(scope.OwnerID, id)
}
