package services

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"finance-service/internal/models"
	"finance-service/internal/repositories"
)

// In-memory repository fakes shared by the service tests. Each fake keeps the
// minimal state its interface implies; ids are assigned sequentially.

type fakeAccountRepo struct {
	accounts map[int64]*models.Account
	nextID   int64
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[int64]*models.Account), nextID: 1}
}

func (f *fakeAccountRepo) InsertAccount(a *models.Account) error {
	a.ID = f.nextID
	f.nextID++
	copied := *a
	f.accounts[a.ID] = &copied
	return nil
}

func (f *fakeAccountRepo) GetAccountByID(ownerID string, id int64) (*models.Account, error) {
	a, ok := f.accounts[id]
	if !ok || a.OwnerID != ownerID {
		return nil, repositories.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAccountRepo) ListAccounts(ownerID string) ([]*models.Account, error) {
	var out []*models.Account
	for _, a := range f.accounts {
		if a.OwnerID == ownerID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) UpdateAccount(a *models.Account) error {
	existing, ok := f.accounts[a.ID]
	if !ok || existing.OwnerID != a.OwnerID {
		return repositories.ErrNotFound
	}
	copied := *a
	f.accounts[a.ID] = &copied
	return nil
}

func (f *fakeAccountRepo) UpdateCurrentBalance(id int64, balance decimal.Decimal) error {
	a, ok := f.accounts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	a.CurrentBalance = balance
	return nil
}

func (f *fakeAccountRepo) UpdateAvailableBalance(id int64, available decimal.Decimal) error {
	a, ok := f.accounts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	a.AvailableBalance = decimal.NullDecimal{Decimal: available, Valid: true}
	return nil
}

func (f *fakeAccountRepo) DeleteAccount(ownerID string, id int64) error {
	a, ok := f.accounts[id]
	if !ok || a.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	delete(f.accounts, id)
	return nil
}

type fakeBillRepo struct {
	bills  map[int64]*models.CreditCardBill
	owners map[int64]string // bill id -> owner of its account
	nextID int64
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{
		bills:  make(map[int64]*models.CreditCardBill),
		owners: make(map[int64]string),
		nextID: 1,
	}
}

func (f *fakeBillRepo) add(ownerID string, b *models.CreditCardBill) *models.CreditCardBill {
	b.ID = f.nextID
	f.nextID++
	f.bills[b.ID] = b
	f.owners[b.ID] = ownerID
	return b
}

func (f *fakeBillRepo) InsertBill(b *models.CreditCardBill) error {
	f.add("", b)
	return nil
}

func (f *fakeBillRepo) GetBillByID(ownerID string, id int64) (*models.CreditCardBill, error) {
	b, ok := f.bills[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if owner := f.owners[id]; owner != "" && owner != ownerID {
		return nil, repositories.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBillRepo) GetBillByAccountAndMonth(accountID int64, referenceMonth string) (*models.CreditCardBill, error) {
	for _, b := range f.bills {
		if b.AccountID == accountID && b.ReferenceMonth == referenceMonth {
			copied := *b
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeBillRepo) ListBillsByAccount(ownerID string, accountID int64) ([]*models.CreditCardBill, error) {
	var out []*models.CreditCardBill
	for _, b := range f.bills {
		if b.AccountID == accountID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBillRepo) UpdateBillPayment(id int64, paid decimal.Decimal, status string, paymentDate string) error {
	b, ok := f.bills[id]
	if !ok {
		return repositories.ErrNotFound
	}
	b.Paid = paid
	b.Status = status
	b.PaymentDate = sql.NullString{String: paymentDate, Valid: true}
	return nil
}

func (f *fakeBillRepo) UpdateBillInterest(id int64, status string, interest decimal.Decimal, rateApplied decimal.Decimal) error {
	b, ok := f.bills[id]
	if !ok {
		return repositories.ErrNotFound
	}
	b.Status = status
	b.Interest = interest
	b.InterestRateApplied = decimal.NullDecimal{Decimal: rateApplied, Valid: true}
	return nil
}

func (f *fakeBillRepo) UpdateBillPreviousBalance(id int64, previousBalance decimal.Decimal) error {
	b, ok := f.bills[id]
	if !ok {
		return repositories.ErrNotFound
	}
	b.PreviousBalance = previousBalance
	return nil
}

func (f *fakeBillRepo) AddToBillTotal(id int64, delta decimal.Decimal) error {
	b, ok := f.bills[id]
	if !ok {
		return repositories.ErrNotFound
	}
	b.Total = b.Total.Add(delta)
	return nil
}

func (f *fakeBillRepo) ListBillsDueBetween(ownerID string, fromDate, toDate string) ([]*models.CreditCardBill, error) {
	var out []*models.CreditCardBill
	for id, b := range f.bills {
		if owner := f.owners[id]; owner != "" && owner != ownerID {
			continue
		}
		if b.Status != models.BillStatusOpen && b.Status != models.BillStatusPartial {
			continue
		}
		if b.DueDate >= fromDate && b.DueDate <= toDate {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeTransactionRepo struct {
	transactions []*models.Transaction
	providerIDs  map[string]bool
	contentKeys  map[repositories.ContentKey]bool
	nextID       int64
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{
		providerIDs: make(map[string]bool),
		contentKeys: make(map[repositories.ContentKey]bool),
		nextID:      1,
	}
}

func (f *fakeTransactionRepo) InsertTransaction(t *models.Transaction) error {
	t.ID = f.nextID
	f.nextID++
	copied := *t
	f.transactions = append(f.transactions, &copied)
	return nil
}

func (f *fakeTransactionRepo) InsertTransactionsBatch(tx *sql.Tx, transactions []*models.Transaction) error {
	for _, t := range transactions {
		if err := f.InsertTransaction(t); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeTransactionRepo) GetTransactionByID(ownerID string, id int64) (*models.Transaction, error) {
	for _, t := range f.transactions {
		if t.ID == id && t.OwnerID == ownerID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeTransactionRepo) ListTransactions(ownerID string, filter repositories.TransactionFilter) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, t := range f.transactions {
		if t.OwnerID == ownerID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTransactionRepo) UpdateTransaction(t *models.Transaction) error {
	for i, existing := range f.transactions {
		if existing.ID == t.ID {
			copied := *t
			f.transactions[i] = &copied
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeTransactionRepo) DeleteTransaction(ownerID string, id int64) error {
	for i, t := range f.transactions {
		if t.ID == id && t.OwnerID == ownerID {
			f.transactions = append(f.transactions[:i], f.transactions[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeTransactionRepo) ExistingProviderTxIDs(ownerID string, providerIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, id := range providerIDs {
		if f.providerIDs[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeTransactionRepo) ExistingContentKeys(ownerID string, keys []repositories.ContentKey) (map[repositories.ContentKey]bool, error) {
	out := make(map[repositories.ContentKey]bool)
	for _, key := range keys {
		if f.contentKeys[key] {
			out[key] = true
		}
	}
	return out, nil
}

type fakeCategoryRepo struct {
	categories map[int64]*models.Category
	nextID     int64
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[int64]*models.Category), nextID: 1}
}

func (f *fakeCategoryRepo) InsertCategory(c *models.Category) error {
	c.ID = f.nextID
	f.nextID++
	copied := *c
	f.categories[c.ID] = &copied
	return nil
}

func (f *fakeCategoryRepo) GetCategoryByID(ownerID string, id int64) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok || c.OwnerID != ownerID {
		return nil, repositories.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCategoryRepo) ListCategories(ownerID string) ([]*models.Category, error) {
	var out []*models.Category
	for _, c := range f.categories {
		if c.OwnerID == ownerID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) UpdateCategory(c *models.Category) error {
	existing, ok := f.categories[c.ID]
	if !ok || existing.OwnerID != c.OwnerID {
		return repositories.ErrNotFound
	}
	copied := *c
	f.categories[c.ID] = &copied
	return nil
}

func (f *fakeCategoryRepo) DeleteCategory(ownerID string, id int64) error {
	c, ok := f.categories[id]
	if !ok || c.OwnerID != ownerID || c.SourceType != models.CategorySourceGeneral {
		return repositories.ErrNotFound
	}
	delete(f.categories, id)
	return nil
}

type fakeDebtRepo struct {
	debts    map[int64]*models.Debt
	payments []*models.DebtPayment
	nextID   int64
}

func newFakeDebtRepo() *fakeDebtRepo {
	return &fakeDebtRepo{debts: make(map[int64]*models.Debt), nextID: 1}
}

func (f *fakeDebtRepo) InsertDebt(d *models.Debt) error {
	d.ID = f.nextID
	f.nextID++
	copied := *d
	f.debts[d.ID] = &copied
	return nil
}

func (f *fakeDebtRepo) GetDebtByID(ownerID string, id int64) (*models.Debt, error) {
	d, ok := f.debts[id]
	if !ok || d.OwnerID != ownerID {
		return nil, repositories.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDebtRepo) ListDebts(ownerID string) ([]*models.Debt, error) {
	var out []*models.Debt
	for _, d := range f.debts {
		if d.OwnerID == ownerID {
			copied := *d
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeDebtRepo) UpdateDebt(d *models.Debt) error {
	existing, ok := f.debts[d.ID]
	if !ok || existing.OwnerID != d.OwnerID {
		return repositories.ErrNotFound
	}
	copied := *d
	f.debts[d.ID] = &copied
	return nil
}

func (f *fakeDebtRepo) DeleteDebt(ownerID string, id int64) error {
	d, ok := f.debts[id]
	if !ok || d.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	delete(f.debts, id)
	return nil
}

func (f *fakeDebtRepo) UpdateDebtPaidAmount(id int64, paid decimal.Decimal, status string) error {
	d, ok := f.debts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	d.PaidAmount = paid
	d.Status = status
	return nil
}

func (f *fakeDebtRepo) InsertDebtPayment(p *models.DebtPayment) error {
	p.ID = int64(len(f.payments) + 1)
	copied := *p
	f.payments = append(f.payments, &copied)
	return nil
}

func (f *fakeDebtRepo) ListDebtPayments(debtID int64) ([]*models.DebtPayment, error) {
	var out []*models.DebtPayment
	for _, p := range f.payments {
		if p.DebtID == debtID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeBudgetRepo struct {
	budgets  []*models.Budget
	expenses map[int64]decimal.Decimal // category id -> signed expense sum
}

func newFakeBudgetRepo() *fakeBudgetRepo {
	return &fakeBudgetRepo{expenses: make(map[int64]decimal.Decimal)}
}

func (f *fakeBudgetRepo) UpsertBudget(b *models.Budget) error {
	for i, existing := range f.budgets {
		if existing.OwnerID == b.OwnerID && existing.CategoryID == b.CategoryID &&
			existing.ReferenceMonth == b.ReferenceMonth {
			copied := *b
			copied.ID = existing.ID
			f.budgets[i] = &copied
			b.ID = existing.ID
			return nil
		}
	}
	b.ID = int64(len(f.budgets) + 1)
	copied := *b
	f.budgets = append(f.budgets, &copied)
	return nil
}

func (f *fakeBudgetRepo) InsertBudgetsBatch(budgets []*models.Budget) error {
	for _, b := range budgets {
		if err := f.UpsertBudget(b); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeBudgetRepo) ListBudgetsByMonth(ownerID string, referenceMonth string) ([]*models.Budget, error) {
	var out []*models.Budget
	for _, b := range f.budgets {
		if b.OwnerID == ownerID && b.ReferenceMonth == referenceMonth {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBudgetRepo) DeleteBudget(ownerID string, id int64) error {
	for i, b := range f.budgets {
		if b.ID == id && b.OwnerID == ownerID {
			f.budgets = append(f.budgets[:i], f.budgets[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeBudgetRepo) SumExpensesForCategoryMonth(ownerID string, categoryID int64, monthStart, monthEnd string) (decimal.Decimal, error) {
	return f.expenses[categoryID], nil
}

func cents(v int64) decimal.Decimal {
	return models.CentsToDecimal(v)
}
