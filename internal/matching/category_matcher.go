package matching

import (
	"strings"

	"finance-service/internal/models"
)

const (
	// Match confidence levels per rule tier
	ExactMatchConfidence   = 1.00
	PrefixMatchConfidence  = 0.85
	KeywordMatchConfidence = 0.60
)

// Rule names reported in match results
const (
	RuleExactName   = "exact_name"
	RulePrefixName  = "prefix_name"
	RuleKeyword     = "keyword"
	RuleInvoiceLike = "invoice_pattern"
	RuleSourceType  = "source_type"
)

type CategoryMatch struct {
	Category   *models.Category
	Rule       string
	Confidence float64
}

// CategoryMatcher resolves free-text descriptions to one of the owner's
// categories using an ordered rule list. Rules are applied in tiers; the
// first tier that produces a match wins.
type CategoryMatcher struct {
	categories []*models.Category
}

func NewCategoryMatcher(categories []*models.Category) *CategoryMatcher {
	return &CategoryMatcher{categories: categories}
}

// Match resolves a transaction description against categories of the given
// type (income/expense). Tiers, in order:
//  1. exact case-insensitive name match
//  2. description starts with the category name
//  3. category name appears anywhere in the description
//
// Returns nil when no rule matches.
func (m *CategoryMatcher) Match(description string, categoryType string) *CategoryMatch {
	desc := normalize(description)
	if desc == "" {
		return nil
	}

	for _, c := range m.categories {
		if c.Type != categoryType {
			continue
		}
		if normalize(c.Name) == desc {
			return &CategoryMatch{Category: c, Rule: RuleExactName, Confidence: ExactMatchConfidence}
		}
	}

	for _, c := range m.categories {
		if c.Type != categoryType {
			continue
		}
		name := normalize(c.Name)
		if name != "" && strings.HasPrefix(desc, name) {
			return &CategoryMatch{Category: c, Rule: RulePrefixName, Confidence: PrefixMatchConfidence}
		}
	}

	for _, c := range m.categories {
		if c.Type != categoryType {
			continue
		}
		name := normalize(c.Name)
		if name != "" && strings.Contains(desc, name) {
			return &CategoryMatch{Category: c, Rule: RuleKeyword, Confidence: KeywordMatchConfidence}
		}
	}

	return nil
}

// MatchInvoiceCategory finds the category used to tag outgoing credit-card
// invoice payments. Tiers, in order:
//  1. expense category whose name contains both "FATURA" and "CART"
//  2. expense category whose name contains "INVOICE" and either "CREDIT" or "CARD"
//  3. expense category auto-created with source_type = credit_card
//
// Returns nil when none is found; callers then record the transaction with
// a null category.
func (m *CategoryMatcher) MatchInvoiceCategory() *CategoryMatch {
	for _, c := range m.categories {
		if c.Type != models.CategoryTypeExpense {
			continue
		}
		name := normalize(c.Name)
		if strings.Contains(name, "FATURA") && strings.Contains(name, "CART") {
			return &CategoryMatch{Category: c, Rule: RuleInvoiceLike, Confidence: ExactMatchConfidence}
		}
	}

	for _, c := range m.categories {
		if c.Type != models.CategoryTypeExpense {
			continue
		}
		name := normalize(c.Name)
		if strings.Contains(name, "INVOICE") && (strings.Contains(name, "CREDIT") || strings.Contains(name, "CARD")) {
			return &CategoryMatch{Category: c, Rule: RuleInvoiceLike, Confidence: PrefixMatchConfidence}
		}
	}

	for _, c := range m.categories {
		if c.Type == models.CategoryTypeExpense && c.SourceType == models.CategorySourceCreditCard {
			return &CategoryMatch{Category: c, Rule: RuleSourceType, Confidence: KeywordMatchConfidence}
		}
	}

	return nil
}

// FindByName returns the category with the given case-insensitive name, or nil.
func (m *CategoryMatcher) FindByName(name string) *models.Category {
	target := normalize(name)
	for _, c := range m.categories {
		if normalize(c.Name) == target {
			return c
		}
	}
	return nil
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
