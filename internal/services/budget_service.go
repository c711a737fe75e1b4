package services

import (
	"fmt"
	"time"

	"finance-service/internal/models"
	"finance-service/internal/repositories"
)

type BudgetService struct {
	budgetRepo   repositories.BudgetRepository
	categoryRepo repositories.CategoryRepository
}

func NewBudgetService(
	budgetRepo repositories.BudgetRepository,
	categoryRepo repositories.CategoryRepository,
) *BudgetService {
	return &BudgetService{
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
	}
}

type BudgetInput struct {
	CategoryID     int64
	ReferenceMonth string
	AmountCents    int64
}

// SetBudget creates or replaces the budget for (category, month). Setting a
// budget on a month that already has one overwrites the amount.
func (s *BudgetService) SetBudget(scope Scope, input BudgetInput) (*models.Budget, error) {
	if input.CategoryID == 0 {
		return nil, fmt.Errorf("%w: category_id is required", ErrValidation)
	}
	if input.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: amount_cents must be positive", ErrValidation)
	}
	month, err := normalizeReferenceMonth(input.ReferenceMonth)
	if err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetCategoryByID(scope.OwnerID, input.CategoryID); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		OwnerID:        scope.OwnerID,
		CategoryID:     input.CategoryID,
		ReferenceMonth: month,
		Amount:         models.CentsToDecimal(input.AmountCents),
		Source:         models.BudgetSourceManual,
	}
	if err := s.budgetRepo.UpsertBudget(budget); err != nil {
		return nil, fmt.Errorf("failed to set budget: %v", err)
	}
	return budget, nil
}

// BudgetStatus reports a month's budget alongside what was actually spent.
type BudgetStatus struct {
	Budget     *models.Budget `json:"budget"`
	SpentCents int64          `json:"spent_cents"`
	Exceeded   bool           `json:"exceeded"`
}

// ListBudgets returns each budget of the month with its accumulated expense
// total (expenses are stored negative; spent is reported positive).
func (s *BudgetService) ListBudgets(scope Scope, referenceMonth string) ([]*BudgetStatus, error) {
	month, err := normalizeReferenceMonth(referenceMonth)
	if err != nil {
		return nil, err
	}

	budgets, err := s.budgetRepo.ListBudgetsByMonth(scope.OwnerID, month)
	if err != nil {
		return nil, err
	}

	monthStart, monthEnd := monthBounds(month)
	statuses := make([]*BudgetStatus, 0, len(budgets))
	for _, budget := range budgets {
		sum, err := s.budgetRepo.SumExpensesForCategoryMonth(scope.OwnerID, budget.CategoryID, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}
		spent := sum.Neg()
		statuses = append(statuses, &BudgetStatus{
			Budget:     budget,
			SpentCents: models.DecimalToCents(spent),
			Exceeded:   spent.GreaterThan(budget.Amount),
		})
	}
	return statuses, nil
}

func (s *BudgetService) DeleteBudget(scope Scope, id int64) error {
	return s.budgetRepo.DeleteBudget(scope.OwnerID, id)
}

// normalizeReferenceMonth accepts "YYYY-MM" or "YYYY-MM-DD" and returns the
// first day of that month.
func normalizeReferenceMonth(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: reference_month is required", ErrValidation)
	}
	if t, err := time.Parse("2006-01", raw); err == nil {
		return t.Format("2006-01-02"), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return "", fmt.Errorf("%w: invalid reference_month, use YYYY-MM", ErrValidation)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), nil
}

// monthBounds returns the first and last day of the month as dates.
func monthBounds(referenceMonth string) (string, string) {
	t, _ := time.Parse("2006-01-02", referenceMonth)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start.Format("2006-01-02"), end.Format("2006-01-02")
}
