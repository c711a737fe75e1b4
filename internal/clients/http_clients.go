package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const requestTimeout = 10 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// HTTPSessionClient validates tokens against the hosted auth provider.
type HTTPSessionClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSessionClient(baseURL string) *HTTPSessionClient {
	return &HTTPSessionClient{baseURL: baseURL, client: newHTTPClient()}
}

func (c *HTTPSessionClient) Validate(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/session", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("session validation failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("session validation returned status %d", resp.StatusCode)
	}

	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("invalid session response: %v", err)
	}
	if body.UserID == "" {
		return "", fmt.Errorf("session response missing user_id")
	}
	return body.UserID, nil
}

// HTTPPricingClient fetches the subscription price from the payment provider.
type HTTPPricingClient struct {
	baseURL string
	apiKey  string
	priceID string
	client  *http.Client
}

func NewHTTPPricingClient(baseURL, apiKey, priceID string) *HTTPPricingClient {
	return &HTTPPricingClient{baseURL: baseURL, apiKey: apiKey, priceID: priceID, client: newHTTPClient()}
}

func (c *HTTPPricingClient) GetPrice(ctx context.Context) (*Price, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/prices/"+c.priceID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price lookup failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price lookup returned status %d", resp.StatusCode)
	}

	price := &Price{}
	if err := json.NewDecoder(resp.Body).Decode(price); err != nil {
		return nil, fmt.Errorf("invalid price response: %v", err)
	}
	return price, nil
}

// HTTPCategorizerClient calls the external AI categorization endpoint.
type HTTPCategorizerClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPCategorizerClient(baseURL, apiKey string) *HTTPCategorizerClient {
	return &HTTPCategorizerClient{baseURL: baseURL, apiKey: apiKey, client: newHTTPClient()}
}

func (c *HTTPCategorizerClient) Categorize(ctx context.Context, items []CategorizeItem) ([]CategorySuggestion, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/categorize", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("categorization request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("categorization returned status %d", resp.StatusCode)
	}

	var suggestions []CategorySuggestion
	if err := json.NewDecoder(resp.Body).Decode(&suggestions); err != nil {
		return nil, fmt.Errorf("invalid categorization response: %v", err)
	}
	return suggestions, nil
}

// HTTPMessagingClient delivers notifications through the messaging provider.
type HTTPMessagingClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPMessagingClient(baseURL, apiKey string) *HTTPMessagingClient {
	return &HTTPMessagingClient{baseURL: baseURL, apiKey: apiKey, client: newHTTPClient()}
}

func (c *HTTPMessagingClient) Send(ctx context.Context, channel, target, subject, body string) error {
	payload, err := json.Marshal(map[string]string{
		"channel": channel,
		"target":  target,
		"subject": subject,
		"body":    body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("message send failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("message send returned status %d", resp.StatusCode)
	}
	return nil
}
