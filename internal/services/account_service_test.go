package services

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"finance-service/internal/models"
)

func newTestAccountService() (*AccountService, *fakeAccountRepo, *fakeBillRepo) {
	accountRepo := newFakeAccountRepo()
	billRepo := newFakeBillRepo()
	svc := NewAccountService(accountRepo, billRepo, zap.NewNop())
	return svc, accountRepo, billRepo
}

func TestCreateAccount_Validation(t *testing.T) {
	svc, _, _ := newTestAccountService()
	scope := testScope()

	tests := []struct {
		name  string
		input AccountInput
	}{
		{"missing name", AccountInput{Type: models.AccountTypeChecking}},
		{"bad type", AccountInput{Name: "X", Type: "wallet"}},
		{"card without limit", AccountInput{Name: "Card", Type: models.AccountTypeCreditCard, ClosingDay: 5, DueDay: 15}},
		{"card with bad closing day", AccountInput{Name: "Card", Type: models.AccountTypeCreditCard, CreditLimitCents: 100000, ClosingDay: 0, DueDay: 15}},
		{"card with bad due day", AccountInput{Name: "Card", Type: models.AccountTypeCreditCard, CreditLimitCents: 100000, ClosingDay: 5, DueDay: 32}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateAccount(scope, tt.input); !errors.Is(err, ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateAccount_CreditCardOpensCurrentMonthBill(t *testing.T) {
	svc, _, billRepo := newTestAccountService()
	scope := testScope()

	account, err := svc.CreateAccount(scope, AccountInput{
		Name:             "Card",
		Type:             models.AccountTypeCreditCard,
		CreditLimitCents: 500000,
		ClosingDay:       5,
		DueDay:           15,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if !account.AvailableBalance.Valid || !account.AvailableBalance.Decimal.Equal(cents(500000)) {
		t.Errorf("available = %v, want the full limit", account.AvailableBalance)
	}

	now := time.Now().UTC()
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	if _, err := billRepo.GetBillByAccountAndMonth(account.ID, month); err != nil {
		t.Errorf("current month's bill was not opened: %v", err)
	}
}

func TestCreateAccount_CheckingHasNoBill(t *testing.T) {
	svc, _, billRepo := newTestAccountService()
	scope := testScope()

	if _, err := svc.CreateAccount(scope, AccountInput{
		Name:         "Checking",
		Type:         models.AccountTypeChecking,
		InitialCents: 150000,
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(billRepo.bills) != 0 {
		t.Errorf("bill count = %d, want 0 for a checking account", len(billRepo.bills))
	}
}

func TestUpdateAccount_LoweringLimitClampsAvailable(t *testing.T) {
	svc, accountRepo, _ := newTestAccountService()
	scope := testScope()

	account, err := svc.CreateAccount(scope, AccountInput{
		Name:             "Card",
		Type:             models.AccountTypeCreditCard,
		CreditLimitCents: 500000,
		ClosingDay:       5,
		DueDay:           15,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.UpdateAccount(scope, account.ID, AccountInput{CreditLimitCents: 300000})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.AvailableBalance.Decimal.Equal(cents(300000)) {
		t.Errorf("available = %s, want clamped to the new 3000.00 limit", updated.AvailableBalance.Decimal)
	}

	stored, _ := accountRepo.GetAccountByID(scope.OwnerID, account.ID)
	if !stored.AvailableBalance.Decimal.Equal(cents(300000)) {
		t.Errorf("stored available = %s, want 3000.00", stored.AvailableBalance.Decimal)
	}
}
