package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"finance-service/internal/models"
)

func testScope() Scope {
	return Scope{UserID: "user-1", OwnerID: "user-1"}
}

func newTestBillService() (*BillService, *fakeBillRepo, *fakeAccountRepo, *fakeTransactionRepo) {
	billRepo := newFakeBillRepo()
	accountRepo := newFakeAccountRepo()
	txRepo := newFakeTransactionRepo()
	categoryRepo := newFakeCategoryRepo()
	svc := NewBillService(billRepo, accountRepo, txRepo, categoryRepo, zap.NewNop())
	return svc, billRepo, accountRepo, txRepo
}

func addCard(accountRepo *fakeAccountRepo, ownerID string, closingDay, dueDay int64) *models.Account {
	card := &models.Account{
		OwnerID:        ownerID,
		Name:           "Card",
		Type:           models.AccountTypeCreditCard,
		CurrentBalance: decimal.Zero,
	}
	card.CreditLimit = decimal.NullDecimal{Decimal: cents(500000), Valid: true}
	card.AvailableBalance = decimal.NullDecimal{Decimal: cents(500000), Valid: true}
	if closingDay > 0 {
		card.ClosingDay.Int64 = closingDay
		card.ClosingDay.Valid = true
	}
	if dueDay > 0 {
		card.DueDay.Int64 = dueDay
		card.DueDay.Valid = true
	}
	accountRepo.InsertAccount(card)
	return card
}

func TestPayBill_SequentialPaymentsReachPaid(t *testing.T) {
	svc, billRepo, accountRepo, _ := newTestBillService()
	scope := testScope()
	card := addCard(accountRepo, scope.OwnerID, 5, 15)

	bill := buildBillForMonth(card, "2025-03-01")
	bill.Total = cents(100000)
	billRepo.add(scope.OwnerID, bill)

	updated, err := svc.PayBill(scope, bill.ID, PayBillInput{AmountCents: 40000, PaymentDate: "2025-03-16"})
	if err != nil {
		t.Fatalf("first payment failed: %v", err)
	}
	if updated.Status != models.BillStatusPartial {
		t.Errorf("after partial payment status = %s, want partial", updated.Status)
	}
	if !updated.Paid.Equal(cents(40000)) {
		t.Errorf("paid = %s, want 400.00", updated.Paid)
	}

	updated, err = svc.PayBill(scope, bill.ID, PayBillInput{AmountCents: 60000, PaymentDate: "2025-03-17"})
	if err != nil {
		t.Fatalf("second payment failed: %v", err)
	}
	if updated.Status != models.BillStatusPaid {
		t.Errorf("after full payment status = %s, want paid", updated.Status)
	}
	if !updated.Paid.Equal(cents(100000)) {
		t.Errorf("paid = %s, want 1000.00", updated.Paid)
	}
}

func TestPayBill_OverpaymentAcceptedAndStatusClampsAtPaid(t *testing.T) {
	svc, billRepo, accountRepo, _ := newTestBillService()
	scope := testScope()
	card := addCard(accountRepo, scope.OwnerID, 5, 15)

	bill := buildBillForMonth(card, "2025-03-01")
	bill.Total = cents(50000)
	billRepo.add(scope.OwnerID, bill)

	updated, err := svc.PayBill(scope, bill.ID, PayBillInput{AmountCents: 75000, PaymentDate: "2025-03-16"})
	if err != nil {
		t.Fatalf("overpayment rejected: %v", err)
	}
	if updated.Status != models.BillStatusPaid {
		t.Errorf("status = %s, want paid", updated.Status)
	}
	if !updated.Paid.Equal(cents(75000)) {
		t.Errorf("paid = %s, overpayment should be recorded as-is", updated.Paid)
	}
}

func TestPayBill_RecordsTransactionAndAdjustsBalances(t *testing.T) {
	svc, billRepo, accountRepo, txRepo := newTestBillService()
	scope := testScope()
	card := addCard(accountRepo, scope.OwnerID, 5, 15)

	checking := &models.Account{
		OwnerID:        scope.OwnerID,
		Name:           "Checking",
		Type:           models.AccountTypeChecking,
		CurrentBalance: cents(200000),
	}
	accountRepo.InsertAccount(checking)

	// simulate consumed limit
	accountRepo.UpdateAvailableBalance(card.ID, cents(400000))

	bill := buildBillForMonth(card, "2025-03-01")
	bill.Total = cents(100000)
	billRepo.add(scope.OwnerID, bill)

	if _, err := svc.PayBill(scope, bill.ID, PayBillInput{
		AmountCents:   100000,
		PaymentDate:   "2025-03-16",
		FromAccountID: checking.ID,
	}); err != nil {
		t.Fatalf("payment failed: %v", err)
	}

	if len(txRepo.transactions) != 1 {
		t.Fatalf("expected 1 payment transaction, got %d", len(txRepo.transactions))
	}
	tx := txRepo.transactions[0]
	if !tx.Amount.Equal(cents(-100000)) {
		t.Errorf("payment transaction amount = %s, want -1000.00", tx.Amount)
	}
	if tx.Source != models.TxSourceSystem {
		t.Errorf("payment transaction source = %s, want system", tx.Source)
	}

	from, _ := accountRepo.GetAccountByID(scope.OwnerID, checking.ID)
	if !from.CurrentBalance.Equal(cents(100000)) {
		t.Errorf("source balance = %s, want 1000.00", from.CurrentBalance)
	}

	updatedCard, _ := accountRepo.GetAccountByID(scope.OwnerID, card.ID)
	if !updatedCard.AvailableBalance.Decimal.Equal(cents(500000)) {
		t.Errorf("available = %s, want limit restored to 5000.00", updatedCard.AvailableBalance.Decimal)
	}
}

func TestPayBill_AvailableNeverExceedsLimit(t *testing.T) {
	svc, billRepo, accountRepo, _ := newTestBillService()
	scope := testScope()
	card := addCard(accountRepo, scope.OwnerID, 5, 15)

	// available already at the limit; payment must not push it over
	bill := buildBillForMonth(card, "2025-03-01")
	bill.Total = cents(30000)
	billRepo.add(scope.OwnerID, bill)

	if _, err := svc.PayBill(scope, bill.ID, PayBillInput{AmountCents: 30000, PaymentDate: "2025-03-16"}); err != nil {
		t.Fatalf("payment failed: %v", err)
	}

	updatedCard, _ := accountRepo.GetAccountByID(scope.OwnerID, card.ID)
	if !updatedCard.AvailableBalance.Decimal.Equal(cents(500000)) {
		t.Errorf("available = %s, must stay clamped at the 5000.00 limit", updatedCard.AvailableBalance.Decimal)
	}
}

func TestCloseWithInterest_AppliesInterestAndCarriesOver(t *testing.T) {
	svc, billRepo, accountRepo, _ := newTestBillService()
	scope := testScope()
	card := addCard(accountRepo, scope.OwnerID, 5, 15)

	bill := buildBillForMonth(card, "2025-03-01")
	bill.Total = cents(10000) // 100.00 unpaid
	billRepo.add(scope.OwnerID, bill)

	updated, err := svc.CloseWithInterest(scope, bill.ID, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if updated.Status != models.BillStatusOverdue {
		t.Errorf("status = %s, want overdue for a bill with no payments", updated.Status)
	}
	if !updated.Interest.Equal(cents(1000)) {
		t.Errorf("interest = %s, want 10.00 (10%% of 100.00)", updated.Interest)
	}

	next, err := billRepo.GetBillByAccountAndMonth(card.ID, "2025-04-01")
	if err != nil {
		t.Fatalf("next month's bill was not created: %v", err)
	}
	if !next.PreviousBalance.Equal(cents(11000)) {
		t.Errorf("carry-over = %s, want 110.00", next.PreviousBalance)
	}
	if !next.Total.Equal(cents(11000)) {
		t.Errorf("next bill total = %s, want 110.00", next.Total)
	}
}

func TestCloseWithInterest_PartiallyPaidBillStaysPartial(t *testing.T) {
	svc, billRepo, accountRepo, _ := newTestBillService()
	scope := testScope()
	card := addCard(accountRepo, scope.OwnerID, 5, 15)

	bill := buildBillForMonth(card, "2025-03-01")
	bill.Total = cents(10000)
	bill.Paid = cents(4000)
	billRepo.add(scope.OwnerID, bill)

	updated, err := svc.CloseWithInterest(scope, bill.ID, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if updated.Status != models.BillStatusPartial {
		t.Errorf("status = %s, want partial", updated.Status)
	}
	// interest only on the 60.00 unpaid
	if !updated.Interest.Equal(cents(600)) {
		t.Errorf("interest = %s, want 6.00", updated.Interest)
	}
}

func TestCloseWithInterest_FullyPaidBillIsNoOp(t *testing.T) {
	svc, billRepo, accountRepo, _ := newTestBillService()
	scope := testScope()
	card := addCard(accountRepo, scope.OwnerID, 5, 15)

	bill := buildBillForMonth(card, "2025-03-01")
	bill.Total = cents(10000)
	bill.Paid = cents(10000)
	bill.Status = models.BillStatusPaid
	billRepo.add(scope.OwnerID, bill)

	updated, err := svc.CloseWithInterest(scope, bill.ID, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !updated.Interest.IsZero() {
		t.Errorf("interest = %s, want zero for a fully paid bill", updated.Interest)
	}
	if _, err := billRepo.GetBillByAccountAndMonth(card.ID, "2025-04-01"); err == nil {
		t.Error("no carry-over bill should be created for a fully paid bill")
	}
}

func TestBuildBillForMonth_ClampsDaysToShortMonths(t *testing.T) {
	card := &models.Account{ID: 1, Type: models.AccountTypeCreditCard}
	card.ClosingDay.Int64, card.ClosingDay.Valid = 31, true
	card.DueDay.Int64, card.DueDay.Valid = 31, true

	bill := buildBillForMonth(card, "2025-02-01")
	if bill.ClosingDate != "2025-02-28" {
		t.Errorf("closing date = %s, want 2025-02-28", bill.ClosingDate)
	}
	// due day equals closing day so the due date rolls to the next month
	if bill.DueDate != "2025-03-31" {
		t.Errorf("due date = %s, want 2025-03-31", bill.DueDate)
	}
}

func TestBuildBillForMonth_DueDateRollsForwardWhenBeforeClosing(t *testing.T) {
	card := &models.Account{ID: 1, Type: models.AccountTypeCreditCard}
	card.ClosingDay.Int64, card.ClosingDay.Valid = 25, true
	card.DueDay.Int64, card.DueDay.Valid = 5, true

	bill := buildBillForMonth(card, "2025-03-01")
	if bill.ClosingDate != "2025-03-25" {
		t.Errorf("closing date = %s, want 2025-03-25", bill.ClosingDate)
	}
	if bill.DueDate != "2025-04-05" {
		t.Errorf("due date = %s, want 2025-04-05", bill.DueDate)
	}
}

func TestOpenBill_IdempotentForExistingMonth(t *testing.T) {
	svc, billRepo, accountRepo, _ := newTestBillService()
	scope := testScope()
	card := addCard(accountRepo, scope.OwnerID, 5, 15)

	first, err := svc.OpenBill(scope, card.ID, "2025-06-01")
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	second, err := svc.OpenBill(scope, card.ID, "2025-06-01")
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("reopening the same month created a new bill: %d vs %d", first.ID, second.ID)
	}
	if len(billRepo.bills) != 1 {
		t.Errorf("bill count = %d, want 1", len(billRepo.bills))
	}
}

func TestOpenBill_RejectsMidMonthReference(t *testing.T) {
	svc, _, accountRepo, _ := newTestBillService()
	scope := testScope()
	card := addCard(accountRepo, scope.OwnerID, 5, 15)

	if _, err := svc.OpenBill(scope, card.ID, "2025-06-15"); err == nil {
		t.Error("expected validation error for a mid-month reference date")
	}
}
