package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"finance-service/internal/matching"
	"finance-service/internal/models"
	"finance-service/internal/repositories"
)

// ErrValidation marks errors the handler layer maps to 400.
var ErrValidation = errors.New("validation error")

// Scope identifies the authenticated caller and the effective owner the
// request operates on, which may differ under account sharing.
type Scope struct {
	UserID  string
	OwnerID string
}

type BillService struct {
	billRepo     repositories.BillRepository
	accountRepo  repositories.AccountRepository
	txRepo       repositories.TransactionRepository
	categoryRepo repositories.CategoryRepository
	logger       *zap.Logger
}

func NewBillService(
	billRepo repositories.BillRepository,
	accountRepo repositories.AccountRepository,
	txRepo repositories.TransactionRepository,
	categoryRepo repositories.CategoryRepository,
	logger *zap.Logger,
) *BillService {
	return &BillService{
		billRepo:     billRepo,
		accountRepo:  accountRepo,
		txRepo:       txRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

type PayBillInput struct {
	AmountCents   int64
	PaymentDate   string
	FromAccountID int64
}

// PayBill applies a payment to a bill, updates its status, optionally records
// a linked outgoing transaction on the paying account, and restores the
// card's available limit.
//
// Each step is an independent write: a failure part-way leaves earlier writes
// in place (no compensating rollback). Overpayment is accepted; status clamps
// at paid.
func (s *BillService) PayBill(scope Scope, billID int64, input PayBillInput) (*models.CreditCardBill, error) {
	if input.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: amount_cents must be positive", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", input.PaymentDate); err != nil {
		return nil, fmt.Errorf("%w: invalid payment_date, use YYYY-MM-DD", ErrValidation)
	}

	bill, err := s.billRepo.GetBillByID(scope.OwnerID, billID)
	if err != nil {
		return nil, err
	}
	if bill.Status == models.BillStatusPaid {
		return nil, fmt.Errorf("%w: bill is already paid", ErrValidation)
	}

	amount := models.CentsToDecimal(input.AmountCents)
	newPaid := bill.Paid.Add(amount)
	status := models.BillStatusPartial
	if newPaid.GreaterThanOrEqual(bill.Total) {
		status = models.BillStatusPaid
	}

	if err := s.billRepo.UpdateBillPayment(bill.ID, newPaid, status, input.PaymentDate); err != nil {
		return nil, fmt.Errorf("failed to update bill payment: %v", err)
	}

	if input.FromAccountID != 0 {
		if err := s.recordPaymentTransaction(scope, bill, amount, input); err != nil {
			s.logger.Warn("bill updated but payment transaction failed; state requires manual reconciliation",
				zap.Int64("bill_id", bill.ID),
				zap.Int64("from_account_id", input.FromAccountID),
				zap.Error(err),
			)
			return nil, err
		}
	}

	if err := s.restoreAvailableLimit(scope, bill.AccountID, amount); err != nil {
		s.logger.Warn("bill updated but card limit restore failed; state requires manual reconciliation",
			zap.Int64("bill_id", bill.ID),
			zap.Int64("card_account_id", bill.AccountID),
			zap.Error(err),
		)
		return nil, err
	}

	return s.billRepo.GetBillByID(scope.OwnerID, billID)
}

func (s *BillService) recordPaymentTransaction(scope Scope, bill *models.CreditCardBill, amount decimal.Decimal, input PayBillInput) error {
	categories, err := s.categoryRepo.ListCategories(scope.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to list categories: %v", err)
	}

	var categoryID sql.NullInt64
	if match := matching.NewCategoryMatcher(categories).MatchInvoiceCategory(); match != nil {
		categoryID = sql.NullInt64{Int64: match.Category.ID, Valid: true}
	}

	tx := &models.Transaction{
		OwnerID:     scope.OwnerID,
		AccountID:   input.FromAccountID,
		CategoryID:  categoryID,
		Description: "Credit card invoice payment",
		Amount:      amount.Neg(),
		PostedAt:    input.PaymentDate,
		Source:      models.TxSourceSystem,
	}
	if err := s.txRepo.InsertTransaction(tx); err != nil {
		return fmt.Errorf("failed to insert payment transaction: %v", err)
	}

	fromAccount, err := s.accountRepo.GetAccountByID(scope.OwnerID, input.FromAccountID)
	if err != nil {
		return fmt.Errorf("failed to load source account: %v", err)
	}
	newBalance := fromAccount.CurrentBalance.Sub(amount)
	if err := s.accountRepo.UpdateCurrentBalance(fromAccount.ID, newBalance); err != nil {
		return fmt.Errorf("failed to update source account balance: %v", err)
	}
	return nil
}

func (s *BillService) restoreAvailableLimit(scope Scope, cardAccountID int64, amount decimal.Decimal) error {
	card, err := s.accountRepo.GetAccountByID(scope.OwnerID, cardAccountID)
	if err != nil {
		return fmt.Errorf("failed to load card account: %v", err)
	}
	if !card.CreditLimit.Valid || !card.AvailableBalance.Valid {
		return nil
	}

	// available never exceeds the credit limit
	newAvailable := card.AvailableBalance.Decimal.Add(amount)
	if newAvailable.GreaterThan(card.CreditLimit.Decimal) {
		newAvailable = card.CreditLimit.Decimal
	}
	if err := s.accountRepo.UpdateAvailableBalance(card.ID, newAvailable); err != nil {
		return fmt.Errorf("failed to update card available balance: %v", err)
	}
	return nil
}

// CloseWithInterest closes an unpaid or partially-paid bill, applies interest
// to the unpaid balance, and carries the result into the following month's
// bill, creating it when absent. Fully-paid bills are a no-op.
func (s *BillService) CloseWithInterest(scope Scope, billID int64, interestRate decimal.Decimal) (*models.CreditCardBill, error) {
	if interestRate.IsNegative() {
		return nil, fmt.Errorf("%w: interest_rate must not be negative", ErrValidation)
	}

	bill, err := s.billRepo.GetBillByID(scope.OwnerID, billID)
	if err != nil {
		return nil, err
	}

	unpaid := bill.Total.Sub(bill.Paid)
	if unpaid.LessThanOrEqual(decimal.Zero) {
		return bill, nil
	}

	interest := unpaid.Mul(interestRate).Div(decimal.NewFromInt(100)).Round(2)

	status := models.BillStatusOverdue
	if bill.Paid.GreaterThan(decimal.Zero) {
		status = models.BillStatusPartial
	}
	if err := s.billRepo.UpdateBillInterest(bill.ID, status, interest, interestRate); err != nil {
		return nil, fmt.Errorf("failed to update bill interest: %v", err)
	}

	carryOver := unpaid.Add(interest)
	if err := s.carryIntoNextBill(scope, bill, carryOver); err != nil {
		s.logger.Warn("bill closed but carry-over failed; state requires manual reconciliation",
			zap.Int64("bill_id", bill.ID),
			zap.Error(err),
		)
		return nil, err
	}

	return s.billRepo.GetBillByID(scope.OwnerID, billID)
}

func (s *BillService) carryIntoNextBill(scope Scope, bill *models.CreditCardBill, carryOver decimal.Decimal) error {
	refMonth, err := time.Parse("2006-01-02", bill.ReferenceMonth)
	if err != nil {
		return fmt.Errorf("invalid reference month on bill %d: %v", bill.ID, err)
	}
	nextMonth := refMonth.AddDate(0, 1, 0).Format("2006-01-02")

	next, err := s.billRepo.GetBillByAccountAndMonth(bill.AccountID, nextMonth)
	if err == nil {
		return s.billRepo.UpdateBillPreviousBalance(next.ID, carryOver)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to look up next month's bill: %v", err)
	}

	card, err := s.accountRepo.GetAccountByID(scope.OwnerID, bill.AccountID)
	if err != nil {
		return fmt.Errorf("failed to load card account: %v", err)
	}

	newBill := buildBillForMonth(card, nextMonth)
	newBill.PreviousBalance = carryOver
	newBill.Total = carryOver
	if err := s.billRepo.InsertBill(newBill); err != nil {
		return fmt.Errorf("failed to create next month's bill: %v", err)
	}
	return nil
}

// OpenBill explicitly opens a bill for a future reference month.
func (s *BillService) OpenBill(scope Scope, accountID int64, referenceMonth string) (*models.CreditCardBill, error) {
	month, err := time.Parse("2006-01-02", referenceMonth)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid reference_month, use YYYY-MM-01", ErrValidation)
	}
	if month.Day() != 1 {
		return nil, fmt.Errorf("%w: reference_month must be the first of the month", ErrValidation)
	}

	card, err := s.accountRepo.GetAccountByID(scope.OwnerID, accountID)
	if err != nil {
		return nil, err
	}
	if card.Type != models.AccountTypeCreditCard {
		return nil, fmt.Errorf("%w: account is not a credit card", ErrValidation)
	}

	if existing, err := s.billRepo.GetBillByAccountAndMonth(accountID, referenceMonth); err == nil {
		return existing, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	bill := buildBillForMonth(card, referenceMonth)
	if err := s.billRepo.InsertBill(bill); err != nil {
		return nil, fmt.Errorf("failed to create bill: %v", err)
	}
	return bill, nil
}

// ListBills returns an account's bills, newest reference month first.
func (s *BillService) ListBills(scope Scope, accountID int64) ([]*models.CreditCardBill, error) {
	if _, err := s.accountRepo.GetAccountByID(scope.OwnerID, accountID); err != nil {
		return nil, err
	}
	return s.billRepo.ListBillsByAccount(scope.OwnerID, accountID)
}

func (s *BillService) GetBill(scope Scope, billID int64) (*models.CreditCardBill, error) {
	return s.billRepo.GetBillByID(scope.OwnerID, billID)
}

// buildBillForMonth derives closing/due dates from the card's configured
// days, clamped to the last valid day of short months.
func buildBillForMonth(card *models.Account, referenceMonth string) *models.CreditCardBill {
	month, _ := time.Parse("2006-01-02", referenceMonth)

	closingDay := 1
	if card.ClosingDay.Valid {
		closingDay = int(card.ClosingDay.Int64)
	}
	dueDay := 10
	if card.DueDay.Valid {
		dueDay = int(card.DueDay.Int64)
	}

	closingDate := dateWithClampedDay(month.Year(), month.Month(), closingDay)
	// due date falls in the following month when the due day precedes closing
	dueMonth := month
	if dueDay <= closingDay {
		dueMonth = month.AddDate(0, 1, 0)
	}
	dueDate := dateWithClampedDay(dueMonth.Year(), dueMonth.Month(), dueDay)

	return &models.CreditCardBill{
		AccountID:       card.ID,
		ReferenceMonth:  referenceMonth,
		ClosingDate:     closingDate,
		DueDate:         dueDate,
		Total:           decimal.Zero,
		Paid:            decimal.Zero,
		Interest:        decimal.Zero,
		PreviousBalance: decimal.Zero,
		Status:          models.BillStatusOpen,
	}
}

// dateWithClampedDay clamps the configured day to the last valid day of the
// month (day 31 in February resolves to February's last day).
func dateWithClampedDay(year int, month time.Month, day int) string {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
