// Package ynab is a minimal client for the YNAB v1 REST API with a local
// response cache.
package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client calls the budgeting service. GET responses are cached by URL and
// token when a cache is attached; the cache is best-effort and failures to
// store never fail a request.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	cache   *Cache
	logger  *zap.Logger
}

// NewClient builds a client. The cache may be nil to disable caching.
func NewClient(baseURL, token string, cache *Cache, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		cache:   cache,
		logger:  logger,
	}
}

// apiError mirrors the service's error payload.
type apiError struct {
	Error struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Detail string `json:"detail"`
	} `json:"error"`
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	key := Key("GET", url, c.token)
	if body, ok := c.cache.Get(key); ok {
		c.logger.Debug("served from cache",
			zap.String("op", "ynab.get"),
			zap.String("endpoint", endpoint),
		)
		return json.Unmarshal(body, out)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s: %w", endpoint, err)
	}
	if err := c.cache.Put(key, body); err != nil {
		c.logger.Warn("can not store response in cache",
			zap.String("op", "ynab.get"),
			zap.Error(err),
		)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload, out any) error {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if out != nil {
		return json.Unmarshal(body, out)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload apiError
		if json.Unmarshal(body, &payload) == nil && payload.Error.Detail != "" {
			return nil, fmt.Errorf("%s %s: %s (%s)", req.Method, req.URL.Path, payload.Error.Detail, resp.Status)
		}
		return nil, fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, resp.Status)
	}
	return body, nil
}

// Budgets lists the account's budgets.
func (c *Client) Budgets(ctx context.Context) ([]Budget, error) {
	var out struct {
		Data struct {
			Budgets []Budget `json:"budgets"`
		} `json:"data"`
	}
	if err := c.get(ctx, "budgets", &out); err != nil {
		return nil, err
	}
	return out.Data.Budgets, nil
}

// BudgetID resolves a budget by name.
func (c *Client) BudgetID(ctx context.Context, name string) (string, error) {
	budgets, err := c.Budgets(ctx)
	if err != nil {
		return "", err
	}
	for _, b := range budgets {
		if b.Name == name {
			return b.ID, nil
		}
	}
	return "", fmt.Errorf("can not find budget id for %q", name)
}

// Accounts lists a budget's accounts.
func (c *Client) Accounts(ctx context.Context, budgetID string) ([]Account, error) {
	var out struct {
		Data struct {
			Accounts []Account `json:"accounts"`
		} `json:"data"`
	}
	if err := c.get(ctx, "budgets/"+budgetID+"/accounts", &out); err != nil {
		return nil, err
	}
	return out.Data.Accounts, nil
}

// AccountID resolves an account by name.
func (c *Client) AccountID(ctx context.Context, budgetID, name string) (string, error) {
	accounts, err := c.Accounts(ctx, budgetID)
	if err != nil {
		return "", err
	}
	for _, a := range accounts {
		if a.Name == name {
			return a.ID, nil
		}
	}
	return "", fmt.Errorf("can not find account id for %q", name)
}

// Payees lists a budget's payees.
func (c *Client) Payees(ctx context.Context, budgetID string) ([]Payee, error) {
	var out struct {
		Data struct {
			Payees []Payee `json:"payees"`
		} `json:"data"`
	}
	if err := c.get(ctx, "budgets/"+budgetID+"/payees", &out); err != nil {
		return nil, err
	}
	return out.Data.Payees, nil
}

// PayeeID resolves a payee by name.
func (c *Client) PayeeID(ctx context.Context, budgetID, name string) (string, error) {
	payees, err := c.Payees(ctx, budgetID)
	if err != nil {
		return "", err
	}
	for _, p := range payees {
		if p.Name == name {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("can not find payee id for %q", name)
}

// Categories lists a budget's category groups.
func (c *Client) Categories(ctx context.Context, budgetID string) ([]CategoryGroup, error) {
	var out struct {
		Data struct {
			CategoryGroups []CategoryGroup `json:"category_groups"`
		} `json:"data"`
	}
	if err := c.get(ctx, "budgets/"+budgetID+"/categories", &out); err != nil {
		return nil, err
	}
	return out.Data.CategoryGroups, nil
}

// CategoryID resolves a "Group: Category" name (a bare name searches every
// group).
func (c *Client) CategoryID(ctx context.Context, budgetID, name string) (string, error) {
	groups, err := c.Categories(ctx, budgetID)
	if err != nil {
		return "", err
	}
	groupName, categoryName, scoped := strings.Cut(name, ":")
	if scoped {
		groupName = strings.TrimSpace(groupName)
		categoryName = strings.TrimSpace(categoryName)
	} else {
		groupName, categoryName = "", strings.TrimSpace(name)
	}
	for _, group := range groups {
		if scoped && group.Name != groupName {
			continue
		}
		for _, category := range group.Categories {
			if category.Name == categoryName {
				return category.ID, nil
			}
		}
	}
	return "", fmt.Errorf("can not find category id for %q", name)
}

// Transact creates the given transactions in the budget.
func (c *Client) Transact(ctx context.Context, budgetID string, transactions ...Transaction) error {
	withIDs := make([]Transaction, len(transactions))
	for i, t := range transactions {
		t.ImportIndex = i
		withIDs[i] = t.withImportID()
	}
	payload := struct {
		Transactions []Transaction `json:"transactions"`
	}{Transactions: withIDs}
	return c.post(ctx, "budgets/"+budgetID+"/transactions", payload, nil)
}
