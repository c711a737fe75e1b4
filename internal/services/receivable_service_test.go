package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"finance-service/internal/models"
	"finance-service/internal/repositories"
)

type fakeReceivableRepo struct {
	receivables map[int64]*models.Receivable
	payments    []*models.ReceivablePayment
	nextID      int64
}

func newFakeReceivableRepo() *fakeReceivableRepo {
	return &fakeReceivableRepo{receivables: make(map[int64]*models.Receivable), nextID: 1}
}

func (f *fakeReceivableRepo) InsertReceivable(rc *models.Receivable) error {
	rc.ID = f.nextID
	f.nextID++
	copied := *rc
	f.receivables[rc.ID] = &copied
	return nil
}

func (f *fakeReceivableRepo) GetReceivableByID(ownerID string, id int64) (*models.Receivable, error) {
	rc, ok := f.receivables[id]
	if !ok || rc.OwnerID != ownerID {
		return nil, repositories.ErrNotFound
	}
	copied := *rc
	return &copied, nil
}

func (f *fakeReceivableRepo) ListReceivables(ownerID string) ([]*models.Receivable, error) {
	var out []*models.Receivable
	for _, rc := range f.receivables {
		if rc.OwnerID == ownerID {
			copied := *rc
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeReceivableRepo) UpdateReceivable(rc *models.Receivable) error {
	existing, ok := f.receivables[rc.ID]
	if !ok || existing.OwnerID != rc.OwnerID {
		return repositories.ErrNotFound
	}
	copied := *rc
	f.receivables[rc.ID] = &copied
	return nil
}

func (f *fakeReceivableRepo) DeleteReceivable(ownerID string, id int64) error {
	rc, ok := f.receivables[id]
	if !ok || rc.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	delete(f.receivables, id)
	return nil
}

func (f *fakeReceivableRepo) UpdateReceivablePaidAmount(id int64, paid decimal.Decimal, status string) error {
	rc, ok := f.receivables[id]
	if !ok {
		return repositories.ErrNotFound
	}
	rc.PaidAmount = paid
	rc.Status = status
	return nil
}

func (f *fakeReceivableRepo) InsertReceivablePayment(p *models.ReceivablePayment) error {
	p.ID = f.nextID
	f.nextID++
	copied := *p
	f.payments = append(f.payments, &copied)
	return nil
}

func (f *fakeReceivableRepo) ListReceivablePayments(receivableID int64) ([]*models.ReceivablePayment, error) {
	var out []*models.ReceivablePayment
	for _, p := range f.payments {
		if p.ReceivableID == receivableID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func newTestReceivableService() (*ReceivableService, *fakeReceivableRepo, *fakeCategoryRepo, *fakeTransactionRepo, *fakeAccountRepo) {
	receivableRepo := newFakeReceivableRepo()
	categoryRepo := newFakeCategoryRepo()
	txRepo := newFakeTransactionRepo()
	accountRepo := newFakeAccountRepo()
	svc := NewReceivableService(receivableRepo, categoryRepo, txRepo, accountRepo, zap.NewNop())
	return svc, receivableRepo, categoryRepo, txRepo, accountRepo
}

func TestCreateReceivable_CreatesIncomeCategory(t *testing.T) {
	svc, _, categoryRepo, _, _ := newTestReceivableService()
	scope := testScope()

	receivable, err := svc.CreateReceivable(scope, CreateReceivableInput{
		Name:             "Freelance project",
		TotalAmountCents: 300000,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	category, err := categoryRepo.GetCategoryByID(scope.OwnerID, receivable.CategoryID)
	if err != nil {
		t.Fatalf("dedicated category missing: %v", err)
	}
	if category.Type != models.CategoryTypeIncome {
		t.Errorf("category type = %s, want income", category.Type)
	}
	if receivable.Status != models.DebtStatusActive {
		t.Errorf("status = %s, want active", receivable.Status)
	}
}

func TestCreateReceivable_Validation(t *testing.T) {
	svc, _, _, _, _ := newTestReceivableService()
	scope := testScope()

	if _, err := svc.CreateReceivable(scope, CreateReceivableInput{TotalAmountCents: 100}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for missing name, got %v", err)
	}
	if _, err := svc.CreateReceivable(scope, CreateReceivableInput{Name: "X", TotalAmountCents: 0}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for non-positive amount, got %v", err)
	}
}

func TestReceivableAddPayment_TracksTotalAndStatus(t *testing.T) {
	svc, _, _, _, _ := newTestReceivableService()
	scope := testScope()

	receivable, err := svc.CreateReceivable(scope, CreateReceivableInput{
		Name:             "Loan to friend",
		TotalAmountCents: 100000,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, updated, err := svc.AddPayment(scope, receivable.ID, ReceivablePaymentInput{
		AmountCents: 40000,
		PaymentDate: "2025-05-10",
	})
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if !updated.PaidAmount.Equal(cents(40000)) || updated.Status != models.DebtStatusActive {
		t.Errorf("after partial payment: paid = %s, status = %s", updated.PaidAmount, updated.Status)
	}

	_, updated, err = svc.AddPayment(scope, receivable.ID, ReceivablePaymentInput{
		AmountCents: 60000,
		PaymentDate: "2025-06-10",
	})
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if updated.Status != models.DebtStatusPaid {
		t.Errorf("status = %s, want paid once the total is covered", updated.Status)
	}
}

func TestReceivableAddPayment_DepositsIntoAccount(t *testing.T) {
	svc, _, _, txRepo, accountRepo := newTestReceivableService()
	scope := testScope()

	account := &models.Account{OwnerID: scope.OwnerID, Name: "Checking", Type: models.AccountTypeChecking, CurrentBalance: cents(50000)}
	accountRepo.InsertAccount(account)

	receivable, err := svc.CreateReceivable(scope, CreateReceivableInput{
		Name:             "Invoice 42",
		TotalAmountCents: 80000,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	payment, _, err := svc.AddPayment(scope, receivable.ID, ReceivablePaymentInput{
		AmountCents: 30000,
		PaymentDate: "2025-05-10",
		ToAccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if !payment.TransactionID.Valid {
		t.Fatal("deposit payment must be linked to a transaction")
	}

	tx, err := txRepo.GetTransactionByID(scope.OwnerID, payment.TransactionID.Int64)
	if err != nil {
		t.Fatalf("linked transaction missing: %v", err)
	}
	if !tx.Amount.Equal(cents(30000)) || tx.Source != models.TxSourceSystem {
		t.Errorf("transaction amount = %s, source = %s", tx.Amount, tx.Source)
	}
	if tx.CategoryID.Int64 != receivable.CategoryID {
		t.Errorf("transaction category = %d, want the receivable's %d", tx.CategoryID.Int64, receivable.CategoryID)
	}

	updatedAccount, _ := accountRepo.GetAccountByID(scope.OwnerID, account.ID)
	if !updatedAccount.CurrentBalance.Equal(cents(80000)) {
		t.Errorf("balance = %s, want 800.00 after the 300.00 deposit", updatedAccount.CurrentBalance)
	}
}

func TestReceivableAddPayment_Validation(t *testing.T) {
	svc, _, _, _, _ := newTestReceivableService()
	scope := testScope()

	receivable, err := svc.CreateReceivable(scope, CreateReceivableInput{Name: "X", TotalAmountCents: 1000})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, _, err := svc.AddPayment(scope, receivable.ID, ReceivablePaymentInput{AmountCents: 0, PaymentDate: "2025-05-10"}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for zero amount, got %v", err)
	}
	if _, _, err := svc.AddPayment(scope, receivable.ID, ReceivablePaymentInput{AmountCents: 100, PaymentDate: "05/10/2025"}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for bad date, got %v", err)
	}
}
