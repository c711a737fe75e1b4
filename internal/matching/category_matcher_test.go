package matching

import (
	"testing"

	"finance-service/internal/models"
)

func testCategories() []*models.Category {
	return []*models.Category{
		{ID: 1, Name: "Mercado", Type: models.CategoryTypeExpense, SourceType: models.CategorySourceGeneral},
		{ID: 2, Name: "Transporte", Type: models.CategoryTypeExpense, SourceType: models.CategorySourceGeneral},
		{ID: 3, Name: "Salario", Type: models.CategoryTypeIncome, SourceType: models.CategorySourceGeneral},
		{ID: 4, Name: "Fatura Cartão", Type: models.CategoryTypeExpense, SourceType: models.CategorySourceGeneral},
	}
}

func TestMatch_Tiers(t *testing.T) {
	matcher := NewCategoryMatcher(testCategories())

	tests := []struct {
		name         string
		description  string
		categoryType string
		wantID       int64
		wantRule     string
	}{
		{"exact name", "mercado", models.CategoryTypeExpense, 1, RuleExactName},
		{"exact with spaces and case", "  MERCADO  ", models.CategoryTypeExpense, 1, RuleExactName},
		{"prefix", "MERCADO PAO DE ACUCAR", models.CategoryTypeExpense, 1, RulePrefixName},
		{"keyword", "PAGAMENTO TRANSPORTE URBANO", models.CategoryTypeExpense, 2, RuleKeyword},
		{"income type", "SALARIO MENSAL", models.CategoryTypeIncome, 3, RulePrefixName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := matcher.Match(tt.description, tt.categoryType)
			if match == nil {
				t.Fatalf("Match(%q, %s) = nil", tt.description, tt.categoryType)
			}
			if match.Category.ID != tt.wantID {
				t.Errorf("category id = %d, want %d", match.Category.ID, tt.wantID)
			}
			if match.Rule != tt.wantRule {
				t.Errorf("rule = %s, want %s", match.Rule, tt.wantRule)
			}
		})
	}
}

func TestMatch_NoMatch(t *testing.T) {
	matcher := NewCategoryMatcher(testCategories())

	if match := matcher.Match("UNKNOWN MERCHANT XYZ", models.CategoryTypeExpense); match != nil {
		t.Errorf("expected nil, got %s", match.Category.Name)
	}
	// type mismatch must not cross over
	if match := matcher.Match("SALARIO", models.CategoryTypeExpense); match != nil {
		t.Errorf("income category matched for expense type: %s", match.Category.Name)
	}
	if match := matcher.Match("", models.CategoryTypeExpense); match != nil {
		t.Error("empty description should not match")
	}
}

func TestMatchInvoiceCategory(t *testing.T) {
	matcher := NewCategoryMatcher(testCategories())
	match := matcher.MatchInvoiceCategory()
	if match == nil {
		t.Fatal("expected the FATURA CARTÃO category to match")
	}
	if match.Category.ID != 4 {
		t.Errorf("category id = %d, want 4", match.Category.ID)
	}
	if match.Rule != RuleInvoiceLike {
		t.Errorf("rule = %s, want %s", match.Rule, RuleInvoiceLike)
	}
}

func TestMatchInvoiceCategory_EnglishNaming(t *testing.T) {
	matcher := NewCategoryMatcher([]*models.Category{
		{ID: 1, Name: "Groceries", Type: models.CategoryTypeExpense},
		{ID: 2, Name: "Credit Card Invoice", Type: models.CategoryTypeExpense},
	})
	match := matcher.MatchInvoiceCategory()
	if match == nil || match.Category.ID != 2 {
		t.Fatalf("expected the english invoice category, got %+v", match)
	}
}

func TestMatchInvoiceCategory_FallsBackToSourceType(t *testing.T) {
	matcher := NewCategoryMatcher([]*models.Category{
		{ID: 1, Name: "Groceries", Type: models.CategoryTypeExpense},
		{ID: 2, Name: "Nubank", Type: models.CategoryTypeExpense, SourceType: models.CategorySourceCreditCard},
	})
	match := matcher.MatchInvoiceCategory()
	if match == nil || match.Category.ID != 2 {
		t.Fatalf("expected the credit_card source category, got %+v", match)
	}
	if match != nil && match.Rule != RuleSourceType {
		t.Errorf("rule = %s, want %s", match.Rule, RuleSourceType)
	}
}

func TestMatchInvoiceCategory_NoCandidate(t *testing.T) {
	matcher := NewCategoryMatcher([]*models.Category{
		{ID: 1, Name: "Groceries", Type: models.CategoryTypeExpense},
	})
	if match := matcher.MatchInvoiceCategory(); match != nil {
		t.Errorf("expected nil, got %s", match.Category.Name)
	}
}

func TestFindByName(t *testing.T) {
	matcher := NewCategoryMatcher(testCategories())

	if c := matcher.FindByName("mercado"); c == nil || c.ID != 1 {
		t.Errorf("FindByName(mercado) = %+v, want id 1", c)
	}
	if c := matcher.FindByName("  Transporte "); c == nil || c.ID != 2 {
		t.Errorf("FindByName with spaces = %+v, want id 2", c)
	}
	if c := matcher.FindByName("nope"); c != nil {
		t.Errorf("FindByName(nope) = %+v, want nil", c)
	}
}
