package clients

import "context"

// SessionClient resolves a bearer token to a stable user id.
type SessionClient interface {
	Validate(ctx context.Context, token string) (string, error)
}

// Price is the subscription price as reported by the payment provider.
type Price struct {
	ID              string `json:"id"`
	Active          bool   `json:"active"`
	UnitAmountCents int64  `json:"unit_amount"`
}

// PricingClient looks up subscription pricing from the payment provider.
type PricingClient interface {
	GetPrice(ctx context.Context) (*Price, error)
}

// CategorizeItem is one transaction submitted for AI categorization.
type CategorizeItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount"`
	Date        string `json:"date"`
}

// CategorySuggestion is the model's answer for one item.
type CategorySuggestion struct {
	ID         string  `json:"id"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// CategorizerClient calls the external text-categorization endpoint.
type CategorizerClient interface {
	Categorize(ctx context.Context, items []CategorizeItem) ([]CategorySuggestion, error)
}

// MessagingClient delivers outbound notifications.
type MessagingClient interface {
	Send(ctx context.Context, channel, target, subject, body string) error
}
