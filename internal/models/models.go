package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a financial account owned by a user
type Account struct {
	ID               int64               `db:"id" json:"id"`
	OwnerID          string              `db:"owner_id" json:"owner_id"`
	Name             string              `db:"name" json:"name"`
	Type             string              `db:"type" json:"type"`
	CurrentBalance   decimal.Decimal     `db:"current_balance" json:"current_balance_cents"`
	CreditLimit      decimal.NullDecimal `db:"credit_limit" json:"credit_limit_cents,omitempty"`
	AvailableBalance decimal.NullDecimal `db:"available_balance" json:"available_balance_cents,omitempty"`
	ClosingDay       sql.NullInt64       `db:"closing_day" json:"closing_day,omitempty"`
	DueDay           sql.NullInt64       `db:"due_day" json:"due_day,omitempty"`
	CreatedAt        time.Time           `db:"created_at" json:"-"`
	UpdatedAt        time.Time           `db:"updated_at" json:"-"`
}

// AccountShare grants a member access to an owner's data
type AccountShare struct {
	ID       int64  `db:"id" json:"id"`
	OwnerID  string `db:"owner_id" json:"owner_id"`
	MemberID string `db:"member_id" json:"member_id"`
	Status   string `db:"status" json:"status"`
}

// Category classifies transactions as income or expense
type Category struct {
	ID         int64     `db:"id" json:"id"`
	OwnerID    string    `db:"owner_id" json:"owner_id"`
	Name       string    `db:"name" json:"name"`
	Type       string    `db:"type" json:"type"`
	SourceType string    `db:"source_type" json:"source_type"`
	CreatedAt  time.Time `db:"created_at" json:"-"`
	UpdatedAt  time.Time `db:"updated_at" json:"-"`
}

// Transaction is a single ledger movement; negative amount = expense
type Transaction struct {
	ID               int64           `db:"id" json:"id"`
	OwnerID          string          `db:"owner_id" json:"owner_id"`
	AccountID        int64           `db:"account_id" json:"account_id"`
	CategoryID       sql.NullInt64   `db:"category_id" json:"category_id,omitempty"`
	CreditCardBillID sql.NullInt64   `db:"credit_card_bill_id" json:"credit_card_bill_id,omitempty"`
	Description      string          `db:"description" json:"description"`
	Amount           decimal.Decimal `db:"amount" json:"amount_cents"`
	PostedAt         string          `db:"posted_at" json:"posted_at"`
	Source           string          `db:"source" json:"source"`
	ProviderTxID     sql.NullString  `db:"provider_tx_id" json:"provider_tx_id,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"-"`
	UpdatedAt        time.Time       `db:"updated_at" json:"-"`
}

// CreditCardBill is one monthly statement cycle of a credit-card account
type CreditCardBill struct {
	ID                  int64               `db:"id" json:"id"`
	AccountID           int64               `db:"account_id" json:"account_id"`
	ReferenceMonth      string              `db:"reference_month" json:"reference_month"`
	ClosingDate         string              `db:"closing_date" json:"closing_date"`
	DueDate             string              `db:"due_date" json:"due_date"`
	Total               decimal.Decimal     `db:"total" json:"total_cents"`
	Paid                decimal.Decimal     `db:"paid" json:"paid_cents"`
	Interest            decimal.Decimal     `db:"interest" json:"interest_cents"`
	PreviousBalance     decimal.Decimal     `db:"previous_balance" json:"previous_balance_cents"`
	InterestRateApplied decimal.NullDecimal `db:"interest_rate_applied" json:"interest_rate_applied,omitempty"`
	Status              string              `db:"status" json:"status"`
	PaymentDate         sql.NullString      `db:"payment_date" json:"payment_date,omitempty"`
	CreatedAt           time.Time           `db:"created_at" json:"-"`
	UpdatedAt           time.Time           `db:"updated_at" json:"-"`
}

// Debt is money the user owes, tracked against an auto-created expense category
type Debt struct {
	ID                    int64               `db:"id" json:"id"`
	OwnerID               string              `db:"owner_id" json:"owner_id"`
	Name                  string              `db:"name" json:"name"`
	TotalAmount           decimal.Decimal     `db:"total_amount" json:"total_amount_cents"`
	PaidAmount            decimal.Decimal     `db:"paid_amount" json:"paid_amount_cents"`
	Status                string              `db:"status" json:"status"`
	CategoryID            int64               `db:"category_id" json:"category_id"`
	ContributionFrequency sql.NullString      `db:"contribution_frequency" json:"contribution_frequency,omitempty"`
	InstallmentCount      sql.NullInt64       `db:"installment_count" json:"installment_count,omitempty"`
	InstallmentAmount     decimal.NullDecimal `db:"installment_amount" json:"installment_amount_cents,omitempty"`
	StartDate             sql.NullString      `db:"start_date" json:"start_date,omitempty"`
	CreatedAt             time.Time           `db:"created_at" json:"-"`
	UpdatedAt             time.Time           `db:"updated_at" json:"-"`
}

// DebtPayment is an immutable payment record against a debt
type DebtPayment struct {
	ID            int64           `db:"id" json:"id"`
	DebtID        int64           `db:"debt_id" json:"debt_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount_cents"`
	PaymentDate   string          `db:"payment_date" json:"payment_date"`
	Notes         string          `db:"notes" json:"notes,omitempty"`
	TransactionID sql.NullInt64   `db:"transaction_id" json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"-"`
}

// Receivable is money owed to the user; mirror of Debt on the income side
type Receivable struct {
	ID          int64           `db:"id" json:"id"`
	OwnerID     string          `db:"owner_id" json:"owner_id"`
	Name        string          `db:"name" json:"name"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount_cents"`
	PaidAmount  decimal.Decimal `db:"paid_amount" json:"paid_amount_cents"`
	Status      string          `db:"status" json:"status"`
	CategoryID  int64           `db:"category_id" json:"category_id"`
	CreatedAt   time.Time       `db:"created_at" json:"-"`
	UpdatedAt   time.Time       `db:"updated_at" json:"-"`
}

// ReceivablePayment is an immutable payment record against a receivable
type ReceivablePayment struct {
	ID            int64           `db:"id" json:"id"`
	ReceivableID  int64           `db:"receivable_id" json:"receivable_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount_cents"`
	PaymentDate   string          `db:"payment_date" json:"payment_date"`
	Notes         string          `db:"notes" json:"notes,omitempty"`
	TransactionID sql.NullInt64   `db:"transaction_id" json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"-"`
}

// Asset is anything of value the user tracks outside accounts
type Asset struct {
	ID           int64           `db:"id" json:"id"`
	OwnerID      string          `db:"owner_id" json:"owner_id"`
	Name         string          `db:"name" json:"name"`
	Type         string          `db:"type" json:"type"`
	CurrentValue decimal.Decimal `db:"current_value" json:"current_value_cents"`
	AcquiredAt   sql.NullString  `db:"acquired_at" json:"acquired_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"-"`
	UpdatedAt    time.Time       `db:"updated_at" json:"-"`
}

// Budget is a monthly spending target for a category
type Budget struct {
	ID             int64           `db:"id" json:"id"`
	OwnerID        string          `db:"owner_id" json:"owner_id"`
	CategoryID     int64           `db:"category_id" json:"category_id"`
	ReferenceMonth string          `db:"reference_month" json:"reference_month"`
	Amount         decimal.Decimal `db:"amount" json:"amount_cents"`
	Source         string          `db:"source" json:"source"`
	CreatedAt      time.Time       `db:"created_at" json:"-"`
}

// NotificationRule drives the cron-triggered notification sweep
type NotificationRule struct {
	ID         int64          `db:"id" json:"id"`
	OwnerID    string         `db:"owner_id" json:"owner_id"`
	Kind       string         `db:"kind" json:"kind"`
	DaysBefore int            `db:"days_before" json:"days_before"`
	Channel    string         `db:"channel" json:"channel"`
	Target     string         `db:"target" json:"target"`
	Active     bool           `db:"active" json:"active"`
	LastRun    sql.NullString `db:"last_run" json:"last_run,omitempty"`
}

// Account type constants
const (
	AccountTypeChecking   = "checking"
	AccountTypeSavings    = "savings"
	AccountTypeCreditCard = "credit_card"
	AccountTypeInvestment = "investment"
	AccountTypeCash       = "cash"
)

// Bill status constants
const (
	BillStatusOpen    = "open"
	BillStatusClosed  = "closed"
	BillStatusPartial = "partial"
	BillStatusPaid    = "paid"
	BillStatusOverdue = "overdue"
)

// Debt/receivable status constants
const (
	DebtStatusActive      = "active"
	DebtStatusNegotiating = "negotiating"
	DebtStatusPaid        = "paid"
	DebtStatusDefaulted   = "defaulted"
)

// Category type constants
const (
	CategoryTypeIncome  = "income"
	CategoryTypeExpense = "expense"
)

// Category source_type constants
const (
	CategorySourceGeneral    = "general"
	CategorySourceCreditCard = "credit_card"
	CategorySourceDebt       = "debt"
	CategorySourceGoal       = "goal"
	CategorySourceInvestment = "investment"
)

// Transaction source constants
const (
	TxSourceManual = "manual"
	TxSourceImport = "import"
	TxSourceSystem = "system"
)

// Share status constants
const (
	ShareStatusPending  = "pending"
	ShareStatusAccepted = "accepted"
	ShareStatusRevoked  = "revoked"
)

// Budget source constants
const (
	BudgetSourceManual       = "manual"
	BudgetSourceDebtSchedule = "debt_schedule"
)

// Notification rule kinds
const (
	NotifyBillDue        = "bill_due"
	NotifyDebtDue        = "debt_due"
	NotifyBudgetExceeded = "budget_exceeded"
)

// CentsToDecimal converts integer cents from the API boundary into the
// fixed-point representation used by the store.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}

// DecimalToCents converts a stored fixed-point amount to integer cents.
func DecimalToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}
