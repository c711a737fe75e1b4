package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"finance-service/internal/clients"
	"finance-service/internal/models"
	"finance-service/internal/repositories"
)

const (
	notificationChunkSize  = 50
	notificationChunkPause = 200 * time.Millisecond
)

type NotificationService struct {
	notificationRepo repositories.NotificationRepository
	billRepo         repositories.BillRepository
	debtRepo         repositories.DebtRepository
	budgetRepo       repositories.BudgetRepository
	categoryRepo     repositories.CategoryRepository
	messaging        clients.MessagingClient
	logger           *zap.Logger
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	billRepo repositories.BillRepository,
	debtRepo repositories.DebtRepository,
	budgetRepo repositories.BudgetRepository,
	categoryRepo repositories.CategoryRepository,
	messaging clients.MessagingClient,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		billRepo:         billRepo,
		debtRepo:         debtRepo,
		budgetRepo:       budgetRepo,
		categoryRepo:     categoryRepo,
		messaging:        messaging,
		logger:           logger,
	}
}

type RuleInput struct {
	Kind       string
	DaysBefore *int
	Channel    string
	Target     string
	Active     *bool
}

func validRuleKind(kind string) bool {
	switch kind {
	case models.NotifyBillDue, models.NotifyDebtDue, models.NotifyBudgetExceeded:
		return true
	}
	return false
}

func (s *NotificationService) CreateRule(scope Scope, input RuleInput) (*models.NotificationRule, error) {
	if !validRuleKind(input.Kind) {
		return nil, fmt.Errorf("%w: invalid rule kind", ErrValidation)
	}
	if input.Channel == "" || input.Target == "" {
		return nil, fmt.Errorf("%w: channel and target are required", ErrValidation)
	}
	daysBefore := 0
	if input.DaysBefore != nil {
		if *input.DaysBefore < 0 {
			return nil, fmt.Errorf("%w: days_before must not be negative", ErrValidation)
		}
		daysBefore = *input.DaysBefore
	}

	rule := &models.NotificationRule{
		OwnerID:    scope.OwnerID,
		Kind:       input.Kind,
		DaysBefore: daysBefore,
		Channel:    input.Channel,
		Target:     input.Target,
		Active:     true,
	}
	if input.Active != nil {
		rule.Active = *input.Active
	}
	if err := s.notificationRepo.InsertRule(rule); err != nil {
		return nil, fmt.Errorf("failed to create notification rule: %v", err)
	}
	return rule, nil
}

func (s *NotificationService) ListRules(scope Scope) ([]*models.NotificationRule, error) {
	return s.notificationRepo.ListRulesForOwner(scope.OwnerID)
}

func (s *NotificationService) UpdateRule(scope Scope, id int64, input RuleInput) (*models.NotificationRule, error) {
	rules, err := s.notificationRepo.ListRulesForOwner(scope.OwnerID)
	if err != nil {
		return nil, err
	}
	var rule *models.NotificationRule
	for _, candidate := range rules {
		if candidate.ID == id {
			rule = candidate
			break
		}
	}
	if rule == nil {
		return nil, repositories.ErrNotFound
	}

	if input.Kind != "" {
		if !validRuleKind(input.Kind) {
			return nil, fmt.Errorf("%w: invalid rule kind", ErrValidation)
		}
		rule.Kind = input.Kind
	}
	if input.DaysBefore != nil {
		if *input.DaysBefore < 0 {
			return nil, fmt.Errorf("%w: days_before must not be negative", ErrValidation)
		}
		rule.DaysBefore = *input.DaysBefore
	}
	if input.Channel != "" {
		rule.Channel = input.Channel
	}
	if input.Target != "" {
		rule.Target = input.Target
	}
	if input.Active != nil {
		rule.Active = *input.Active
	}

	if err := s.notificationRepo.UpdateRule(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *NotificationService) DeleteRule(scope Scope, id int64) error {
	return s.notificationRepo.DeleteRule(scope.OwnerID, id)
}

// RunResult summarizes one cron sweep.
type RunResult struct {
	RulesEvaluated int `json:"rules_evaluated"`
	MessagesSent   int `json:"messages_sent"`
	Failures       int `json:"failures"`
}

type outboundMessage struct {
	ruleID  int64
	channel string
	target  string
	subject string
	body    string
}

// RunNotifications evaluates every active rule and delivers the resulting
// messages through the messaging service in chunks, pausing between chunks to
// stay under the provider's rate limit. Individual delivery failures are
// logged and counted but never abort the sweep.
func (s *NotificationService) RunNotifications(ctx context.Context) (*RunResult, error) {
	rules, err := s.notificationRepo.ListActiveRules()
	if err != nil {
		return nil, fmt.Errorf("failed to list active rules: %v", err)
	}

	result := &RunResult{RulesEvaluated: len(rules)}
	today := time.Now().UTC()

	var messages []outboundMessage
	for _, rule := range rules {
		msgs, err := s.evaluateRule(rule, today)
		if err != nil {
			s.logger.Warn("rule evaluation failed",
				zap.Int64("rule_id", rule.ID),
				zap.String("kind", rule.Kind),
				zap.Error(err),
			)
			result.Failures++
			continue
		}
		messages = append(messages, msgs...)
	}

	for start := 0; start < len(messages); start += notificationChunkSize {
		if start > 0 {
			time.Sleep(notificationChunkPause)
		}
		end := start + notificationChunkSize
		if end > len(messages) {
			end = len(messages)
		}
		for _, msg := range messages[start:end] {
			if err := s.messaging.Send(ctx, msg.channel, msg.target, msg.subject, msg.body); err != nil {
				s.logger.Warn("notification delivery failed",
					zap.Int64("rule_id", msg.ruleID),
					zap.String("channel", msg.channel),
					zap.Error(err),
				)
				result.Failures++
				continue
			}
			result.MessagesSent++
		}
	}

	for _, rule := range rules {
		if err := s.notificationRepo.TouchLastRun(rule.ID); err != nil {
			s.logger.Warn("failed to record rule run", zap.Int64("rule_id", rule.ID), zap.Error(err))
		}
	}

	return result, nil
}

func (s *NotificationService) evaluateRule(rule *models.NotificationRule, today time.Time) ([]outboundMessage, error) {
	switch rule.Kind {
	case models.NotifyBillDue:
		return s.evaluateBillDue(rule, today)
	case models.NotifyDebtDue:
		return s.evaluateDebtDue(rule)
	case models.NotifyBudgetExceeded:
		return s.evaluateBudgetExceeded(rule, today)
	}
	return nil, fmt.Errorf("unknown rule kind %q", rule.Kind)
}

func (s *NotificationService) evaluateBillDue(rule *models.NotificationRule, today time.Time) ([]outboundMessage, error) {
	from := today.Format("2006-01-02")
	to := today.AddDate(0, 0, rule.DaysBefore).Format("2006-01-02")

	bills, err := s.billRepo.ListBillsDueBetween(rule.OwnerID, from, to)
	if err != nil {
		return nil, err
	}

	var messages []outboundMessage
	for _, bill := range bills {
		outstanding := bill.Total.Add(bill.PreviousBalance).Add(bill.Interest).Sub(bill.Paid)
		if !outstanding.IsPositive() {
			continue
		}
		messages = append(messages, outboundMessage{
			ruleID:  rule.ID,
			channel: rule.Channel,
			target:  rule.Target,
			subject: "Credit card bill due soon",
			body: fmt.Sprintf("Your credit card bill of %s is due on %s.",
				outstanding.StringFixed(2), bill.DueDate),
		})
	}
	return messages, nil
}

func (s *NotificationService) evaluateDebtDue(rule *models.NotificationRule) ([]outboundMessage, error) {
	debts, err := s.debtRepo.ListDebts(rule.OwnerID)
	if err != nil {
		return nil, err
	}

	var messages []outboundMessage
	for _, debt := range debts {
		if debt.Status == models.DebtStatusPaid {
			continue
		}
		unpaid := debt.TotalAmount.Sub(debt.PaidAmount)
		if !unpaid.IsPositive() {
			continue
		}
		messages = append(messages, outboundMessage{
			ruleID:  rule.ID,
			channel: rule.Channel,
			target:  rule.Target,
			subject: "Open debt reminder",
			body: fmt.Sprintf("Debt %q still has %s outstanding.",
				debt.Name, unpaid.StringFixed(2)),
		})
	}
	return messages, nil
}

func (s *NotificationService) evaluateBudgetExceeded(rule *models.NotificationRule, today time.Time) ([]outboundMessage, error) {
	month := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	budgets, err := s.budgetRepo.ListBudgetsByMonth(rule.OwnerID, month)
	if err != nil {
		return nil, err
	}

	monthStart, monthEnd := monthBounds(month)
	var messages []outboundMessage
	for _, budget := range budgets {
		sum, err := s.budgetRepo.SumExpensesForCategoryMonth(rule.OwnerID, budget.CategoryID, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}
		spent := sum.Neg()
		if !spent.GreaterThan(budget.Amount) {
			continue
		}

		categoryName := fmt.Sprintf("category %d", budget.CategoryID)
		if category, err := s.categoryRepo.GetCategoryByID(rule.OwnerID, budget.CategoryID); err == nil {
			categoryName = category.Name
		}
		messages = append(messages, outboundMessage{
			ruleID:  rule.ID,
			channel: rule.Channel,
			target:  rule.Target,
			subject: "Budget exceeded",
			body: fmt.Sprintf("Spending on %s reached %s, over the %s budget for this month.",
				categoryName, spent.StringFixed(2), budget.Amount.StringFixed(2)),
		})
	}
	return messages, nil
}
