package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"finance-service/internal/clients"
	"finance-service/internal/importer"
	"finance-service/internal/matching"
	"finance-service/internal/models"
	"finance-service/internal/repositories"
)

type ImportService struct {
	db           *sql.DB
	txRepo       repositories.TransactionRepository
	categoryRepo repositories.CategoryRepository
	accountRepo  repositories.AccountRepository
	categorizer  clients.CategorizerClient // optional; nil disables AI suggestions
	logger       *zap.Logger
}

func NewImportService(
	db *sql.DB,
	txRepo repositories.TransactionRepository,
	categoryRepo repositories.CategoryRepository,
	accountRepo repositories.AccountRepository,
	categorizer clients.CategorizerClient,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		db:           db,
		txRepo:       txRepo,
		categoryRepo: categoryRepo,
		accountRepo:  accountRepo,
		categorizer:  categorizer,
		logger:       logger,
	}
}

type ImportInput struct {
	CSVContent         string
	AccountID          int64
	CategoriesToCreate []string
	SelectedIDs        []string
}

type ImportResult struct {
	Success   bool     `json:"success"`
	BatchID   string   `json:"batch_id"`
	TotalRows int      `json:"totalRows"`
	Imported  int      `json:"imported"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

// ImportCSV parses a semicolon-delimited ledger export, skips rows that
// duplicate existing transactions (by provider id, then by content tuple),
// resolves categories, and batch-inserts the remainder in one transaction.
func (s *ImportService) ImportCSV(ctx context.Context, scope Scope, input ImportInput) (*ImportResult, error) {
	if input.AccountID == 0 {
		return nil, fmt.Errorf("%w: account_id is required", ErrValidation)
	}
	account, err := s.accountRepo.GetAccountByID(scope.OwnerID, input.AccountID)
	if err != nil {
		return nil, err
	}

	parsed, err := importer.ParseCSV(input.CSVContent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	result := &ImportResult{
		BatchID:   uuid.NewString(),
		TotalRows: len(parsed.Rows) + len(parsed.Errors),
		Errors:    parsed.Errors,
	}

	rows := parsed.Rows
	if len(input.SelectedIDs) > 0 {
		selected := make(map[string]bool, len(input.SelectedIDs))
		for _, id := range input.SelectedIDs {
			selected[id] = true
		}
		var kept []importer.Row
		for _, row := range rows {
			if selected[row.ExternalID] {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	rows, skipped, err := s.dropDuplicates(scope, rows)
	if err != nil {
		return nil, err
	}
	result.Skipped = skipped

	transactions, err := s.buildTransactions(ctx, scope, account, rows, input.CategoriesToCreate, result)
	if err != nil {
		return nil, err
	}

	if len(transactions) > 0 {
		tx, err := s.db.Begin()
		if err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %v", err)
		}
		defer tx.Rollback()

		if err := s.txRepo.InsertTransactionsBatch(tx, transactions); err != nil {
			return nil, fmt.Errorf("failed to insert imported transactions: %v", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %v", err)
		}

		total := account.CurrentBalance
		for _, t := range transactions {
			total = total.Add(t.Amount)
		}
		if err := s.accountRepo.UpdateCurrentBalance(account.ID, total); err != nil {
			s.logger.Warn("imported transactions committed but balance update failed",
				zap.Int64("account_id", account.ID),
				zap.Error(err),
			)
		}
	}

	result.Imported = len(transactions)
	result.Success = len(result.Errors) == 0
	return result, nil
}

// dropDuplicates removes rows that already exist, first by provider id, then
// by (date, description, signed amount) content tuple. Duplicates inside the
// file itself are also skipped.
func (s *ImportService) dropDuplicates(scope Scope, rows []importer.Row) ([]importer.Row, int, error) {
	var providerIDs []string
	keys := make([]repositories.ContentKey, 0, len(rows))
	for _, row := range rows {
		if row.ExternalID != "" {
			providerIDs = append(providerIDs, row.ExternalID)
		}
		keys = append(keys, contentKeyFor(row))
	}

	existingIDs := make(map[string]bool)
	if len(providerIDs) > 0 {
		var err error
		existingIDs, err = s.txRepo.ExistingProviderTxIDs(scope.OwnerID, providerIDs)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to check provider ids: %v", err)
		}
	}

	existingKeys := make(map[repositories.ContentKey]bool)
	if len(keys) > 0 {
		var err error
		existingKeys, err = s.txRepo.ExistingContentKeys(scope.OwnerID, keys)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to check content keys: %v", err)
		}
	}

	seenInFile := make(map[repositories.ContentKey]bool)
	var kept []importer.Row
	skipped := 0
	for _, row := range rows {
		key := contentKeyFor(row)
		if (row.ExternalID != "" && existingIDs[row.ExternalID]) || existingKeys[key] || seenInFile[key] {
			skipped++
			continue
		}
		seenInFile[key] = true
		kept = append(kept, row)
	}
	return kept, skipped, nil
}

func contentKeyFor(row importer.Row) repositories.ContentKey {
	return repositories.ContentKey{
		PostedAt:    row.Date,
		Description: row.Description,
		Amount:      row.Amount.StringFixed(2),
	}
}

func (s *ImportService) buildTransactions(
	ctx context.Context,
	scope Scope,
	account *models.Account,
	rows []importer.Row,
	categoriesToCreate []string,
	result *ImportResult,
) ([]*models.Transaction, error) {
	categories, err := s.categoryRepo.ListCategories(scope.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %v", err)
	}
	matcher := matching.NewCategoryMatcher(categories)

	allowCreate := make(map[string]bool, len(categoriesToCreate))
	for _, name := range categoriesToCreate {
		allowCreate[name] = true
	}

	transactions := make([]*models.Transaction, 0, len(rows))
	var uncategorized []int // indexes into transactions pending AI suggestions

	for _, row := range rows {
		categoryType := models.CategoryTypeExpense
		if row.Amount.IsPositive() {
			categoryType = models.CategoryTypeIncome
		}

		var categoryID sql.NullInt64
		switch {
		case row.CategoryName != "":
			category := matcher.FindByName(row.CategoryName)
			if category == nil && allowCreate[row.CategoryName] {
				category, err = s.createImportCategory(scope, row.CategoryName, categoryType)
				if err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", row.LineNumber, err))
					continue
				}
				categories = append(categories, category)
				matcher = matching.NewCategoryMatcher(categories)
			}
			if category != nil {
				categoryID = sql.NullInt64{Int64: category.ID, Valid: true}
			}
		default:
			if match := matcher.Match(row.Description, categoryType); match != nil {
				categoryID = sql.NullInt64{Int64: match.Category.ID, Valid: true}
			}
		}

		t := &models.Transaction{
			OwnerID:     scope.OwnerID,
			AccountID:   account.ID,
			CategoryID:  categoryID,
			Description: row.Description,
			Amount:      row.Amount,
			PostedAt:    row.Date,
			Source:      models.TxSourceImport,
		}
		if row.ExternalID != "" {
			t.ProviderTxID = sql.NullString{String: row.ExternalID, Valid: true}
		}
		if !categoryID.Valid {
			uncategorized = append(uncategorized, len(transactions))
		}
		transactions = append(transactions, t)
	}

	if s.categorizer != nil && len(uncategorized) > 0 {
		s.applySuggestions(ctx, matcher, transactions, uncategorized)
	}

	return transactions, nil
}

func (s *ImportService) createImportCategory(scope Scope, name, categoryType string) (*models.Category, error) {
	category := &models.Category{
		OwnerID:    scope.OwnerID,
		Name:       name,
		Type:       categoryType,
		SourceType: models.CategorySourceGeneral,
	}
	if err := s.categoryRepo.InsertCategory(category); err != nil {
		return nil, fmt.Errorf("failed to create category %q: %v", name, err)
	}
	return category, nil
}

// applySuggestions asks the AI categorizer about still-uncategorized rows and
// maps the suggested names back onto existing categories. Failures are logged
// and ignored; the import proceeds without suggestions.
func (s *ImportService) applySuggestions(ctx context.Context, matcher *matching.CategoryMatcher, transactions []*models.Transaction, indexes []int) {
	items := make([]clients.CategorizeItem, 0, len(indexes))
	for _, i := range indexes {
		t := transactions[i]
		items = append(items, clients.CategorizeItem{
			ID:          fmt.Sprintf("%d", i),
			Description: t.Description,
			AmountCents: models.DecimalToCents(t.Amount),
			Date:        t.PostedAt,
		})
	}

	suggestions, err := s.categorizer.Categorize(ctx, items)
	if err != nil {
		s.logger.Warn("AI categorization failed; importing without suggestions", zap.Error(err))
		return
	}

	for _, suggestion := range suggestions {
		var i int
		if _, err := fmt.Sscanf(suggestion.ID, "%d", &i); err != nil || i < 0 || i >= len(transactions) {
			continue
		}
		if category := matcher.FindByName(suggestion.Category); category != nil {
			transactions[i].CategoryID = sql.NullInt64{Int64: category.ID, Valid: true}
		}
	}
}
