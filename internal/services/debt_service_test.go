package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"finance-service/internal/models"
)

func newTestDebtService() (*DebtService, *fakeDebtRepo, *fakeCategoryRepo, *fakeTransactionRepo, *fakeAccountRepo, *fakeBudgetRepo) {
	debtRepo := newFakeDebtRepo()
	categoryRepo := newFakeCategoryRepo()
	txRepo := newFakeTransactionRepo()
	accountRepo := newFakeAccountRepo()
	budgetRepo := newFakeBudgetRepo()
	svc := NewDebtService(debtRepo, categoryRepo, txRepo, accountRepo, budgetRepo, zap.NewNop())
	return svc, debtRepo, categoryRepo, txRepo, accountRepo, budgetRepo
}

func TestCreateDebt_CreatesDedicatedExpenseCategory(t *testing.T) {
	svc, _, categoryRepo, _, _, _ := newTestDebtService()
	scope := testScope()

	debt, err := svc.CreateDebt(scope, CreateDebtInput{Name: "Car loan", TotalAmountCents: 1200000})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if debt.Status != models.DebtStatusActive {
		t.Errorf("status = %s, want active", debt.Status)
	}

	category, err := categoryRepo.GetCategoryByID(scope.OwnerID, debt.CategoryID)
	if err != nil {
		t.Fatalf("debt category missing: %v", err)
	}
	if category.Type != models.CategoryTypeExpense {
		t.Errorf("category type = %s, want expense", category.Type)
	}
	if category.SourceType != models.CategorySourceDebt {
		t.Errorf("category source_type = %s, want debt", category.SourceType)
	}
}

func TestCreateDebt_WithScheduleGeneratesBudgets(t *testing.T) {
	svc, _, _, _, _, budgetRepo := newTestDebtService()
	scope := testScope()

	debt, err := svc.CreateDebt(scope, CreateDebtInput{
		Name:                  "Negotiated card debt",
		TotalAmountCents:      60000,
		ContributionFrequency: "monthly",
		InstallmentCount:      3,
		InstallmentCents:      20000,
		StartDate:             "2025-01-15",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if debt.Status != models.DebtStatusNegotiating {
		t.Errorf("status = %s, want negotiating", debt.Status)
	}

	months := []string{"2025-01-01", "2025-02-01", "2025-03-01"}
	for _, month := range months {
		budgets, _ := budgetRepo.ListBudgetsByMonth(scope.OwnerID, month)
		if len(budgets) != 1 {
			t.Fatalf("month %s: budget count = %d, want 1", month, len(budgets))
		}
		if !budgets[0].Amount.Equal(cents(20000)) {
			t.Errorf("month %s: amount = %s, want 200.00", month, budgets[0].Amount)
		}
		if budgets[0].Source != models.BudgetSourceDebtSchedule {
			t.Errorf("month %s: source = %s, want debt_schedule", month, budgets[0].Source)
		}
	}
}

func TestScheduleBudgets_WeeklySumsPerMonth(t *testing.T) {
	svc, _, _, _, _, _ := newTestDebtService()
	scope := testScope()

	// 5 weekly installments from Jan 20: Jan 20, Jan 27, Feb 3, Feb 10, Feb 17
	debt, err := svc.CreateDebt(scope, CreateDebtInput{
		Name:                  "Weekly plan",
		TotalAmountCents:      50000,
		ContributionFrequency: "weekly",
		InstallmentCount:      5,
		InstallmentCents:      10000,
		StartDate:             "2025-01-20",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	budgets := ScheduleBudgets(debt)
	if len(budgets) != 2 {
		t.Fatalf("budget rows = %d, want 2 (Jan and Feb)", len(budgets))
	}
	if budgets[0].ReferenceMonth != "2025-01-01" || !budgets[0].Amount.Equal(cents(20000)) {
		t.Errorf("january = %s %s, want 2025-01-01 200.00", budgets[0].ReferenceMonth, budgets[0].Amount)
	}
	if budgets[1].ReferenceMonth != "2025-02-01" || !budgets[1].Amount.Equal(cents(30000)) {
		t.Errorf("february = %s %s, want 2025-02-01 300.00", budgets[1].ReferenceMonth, budgets[1].Amount)
	}
}

func TestAddDebtPayment_UpdatesRunningTotalAndStatus(t *testing.T) {
	svc, _, _, _, _, _ := newTestDebtService()
	scope := testScope()

	debt, err := svc.CreateDebt(scope, CreateDebtInput{Name: "Loan", TotalAmountCents: 100000})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, updated, err := svc.AddPayment(scope, debt.ID, DebtPaymentInput{AmountCents: 40000, PaymentDate: "2025-02-01"})
	if err != nil {
		t.Fatalf("first payment failed: %v", err)
	}
	if !updated.PaidAmount.Equal(cents(40000)) {
		t.Errorf("paid = %s, want 400.00", updated.PaidAmount)
	}
	if updated.Status != models.DebtStatusActive {
		t.Errorf("status = %s, want active", updated.Status)
	}

	_, updated, err = svc.AddPayment(scope, debt.ID, DebtPaymentInput{AmountCents: 60000, PaymentDate: "2025-03-01"})
	if err != nil {
		t.Fatalf("second payment failed: %v", err)
	}
	if !updated.PaidAmount.Equal(cents(100000)) {
		t.Errorf("paid = %s, want 1000.00", updated.PaidAmount)
	}
	if updated.Status != models.DebtStatusPaid {
		t.Errorf("status = %s, want paid", updated.Status)
	}
}

func TestAddDebtPayment_WithSourceAccountRecordsTransaction(t *testing.T) {
	svc, _, _, txRepo, accountRepo, _ := newTestDebtService()
	scope := testScope()

	checking := &models.Account{
		OwnerID:        scope.OwnerID,
		Name:           "Checking",
		Type:           models.AccountTypeChecking,
		CurrentBalance: cents(100000),
	}
	accountRepo.InsertAccount(checking)

	debt, err := svc.CreateDebt(scope, CreateDebtInput{Name: "Loan", TotalAmountCents: 100000})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	payment, _, err := svc.AddPayment(scope, debt.ID, DebtPaymentInput{
		AmountCents:   25000,
		PaymentDate:   "2025-02-01",
		FromAccountID: checking.ID,
	})
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}

	if !payment.TransactionID.Valid {
		t.Fatal("payment should be linked to the recorded transaction")
	}
	if len(txRepo.transactions) != 1 {
		t.Fatalf("transaction count = %d, want 1", len(txRepo.transactions))
	}
	tx := txRepo.transactions[0]
	if !tx.Amount.Equal(cents(-25000)) {
		t.Errorf("transaction amount = %s, want -250.00", tx.Amount)
	}
	if !tx.CategoryID.Valid || tx.CategoryID.Int64 != debt.CategoryID {
		t.Errorf("transaction category = %v, want the debt's category %d", tx.CategoryID, debt.CategoryID)
	}

	account, _ := accountRepo.GetAccountByID(scope.OwnerID, checking.ID)
	if !account.CurrentBalance.Equal(cents(75000)) {
		t.Errorf("source balance = %s, want 750.00", account.CurrentBalance)
	}
}

// paidTotalHookRepo lets a test run code between the paid-total read and its
// write, reproducing two payments whose read-modify-write cycles overlap.
type paidTotalHookRepo struct {
	*fakeDebtRepo
	beforePaidUpdate func()
}

func (r *paidTotalHookRepo) UpdateDebtPaidAmount(id int64, paid decimal.Decimal, status string) error {
	if r.beforePaidUpdate != nil {
		r.beforePaidUpdate()
	}
	return r.fakeDebtRepo.UpdateDebtPaidAmount(id, paid, status)
}

// The paid total is maintained with a read-modify-write outside any
// transaction, so overlapping payments keep both payment rows but the later
// write overwrites the earlier increment. This pins the known last-writer-wins
// limitation rather than fixing it.
func TestAddDebtPayment_OverlappingPaymentsLoseIncrement(t *testing.T) {
	debtRepo := &paidTotalHookRepo{fakeDebtRepo: newFakeDebtRepo()}
	categoryRepo := newFakeCategoryRepo()
	txRepo := newFakeTransactionRepo()
	accountRepo := newFakeAccountRepo()
	budgetRepo := newFakeBudgetRepo()
	svc := NewDebtService(debtRepo, categoryRepo, txRepo, accountRepo, budgetRepo, zap.NewNop())
	scope := testScope()

	debt, err := svc.CreateDebt(scope, CreateDebtInput{Name: "Loan", TotalAmountCents: 100000})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// a second payment completes fully inside the first payment's window
	// between reading the paid total and writing it back
	debtRepo.beforePaidUpdate = func() {
		debtRepo.beforePaidUpdate = nil
		if _, _, err := svc.AddPayment(scope, debt.ID, DebtPaymentInput{
			AmountCents: 30000,
			PaymentDate: "2025-05-10",
		}); err != nil {
			t.Fatalf("overlapping payment failed: %v", err)
		}
	}

	if _, _, err := svc.AddPayment(scope, debt.ID, DebtPaymentInput{
		AmountCents: 20000,
		PaymentDate: "2025-05-10",
	}); err != nil {
		t.Fatalf("payment failed: %v", err)
	}

	payments, err := svc.ListPayments(scope, debt.ID)
	if err != nil {
		t.Fatalf("list payments failed: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("payments = %d, want both rows recorded", len(payments))
	}

	updated, err := svc.GetDebt(scope, debt.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	// 500.00 was paid in total, but the first writer's stale total wins
	if !updated.PaidAmount.Equal(cents(20000)) {
		t.Errorf("paid = %s; the overlapping increment is expected to be lost (200.00)", updated.PaidAmount)
	}
}

func TestAddDebtPayment_RejectsNonPositiveAmount(t *testing.T) {
	svc, _, _, _, _, _ := newTestDebtService()
	scope := testScope()

	debt, _ := svc.CreateDebt(scope, CreateDebtInput{Name: "Loan", TotalAmountCents: 100000})

	if _, _, err := svc.AddPayment(scope, debt.ID, DebtPaymentInput{AmountCents: 0, PaymentDate: "2025-02-01"}); err == nil {
		t.Error("expected validation error for zero amount")
	}
	if _, _, err := svc.AddPayment(scope, debt.ID, DebtPaymentInput{AmountCents: -100, PaymentDate: "2025-02-01"}); err == nil {
		t.Error("expected validation error for negative amount")
	}
}
