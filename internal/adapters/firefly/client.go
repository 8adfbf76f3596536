// Package firefly is the ledger adapter: it reads transactions from a
// Firefly III instance and writes back reconciliation results (notes and
// the idempotency tag). Pre-filtering primitives live in filters.go and
// are consumed as a pipeline by the reconciliation pass.
package firefly

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fireflyiii-tools/allegro-sync/internal/adapters/httpapi"
)

// maxPages bounds the transaction listing walk as a safety stop against
// a misbehaving pagination response.
const maxPages = 50

// Config holds the ledger connection settings.
type Config struct {
	BaseURL string
	Token   string
}

// Client talks to the Firefly III REST API.
type Client struct {
	config Config
	api    *httpapi.Client
	logger *slog.Logger
}

// NewClient creates a Firefly III client.
func NewClient(config Config, api *httpapi.Client, logger *slog.Logger) *Client {
	if api == nil {
		api = httpapi.NewClient(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{config: config, api: api, logger: logger}
}

// FetchTransactions retrieves all transaction groups, walking the
// pagination until the last page.
func (c *Client) FetchTransactions(ctx context.Context) ([]TransactionGroup, error) {
	var groups []TransactionGroup

	for page := 1; page <= maxPages; page++ {
		url := fmt.Sprintf("%s/api/v1/transactions?page=%d", c.config.BaseURL, page)

		var resp listResponse
		if err := c.api.GetJSON(ctx, url, c.headers(), &resp); err != nil {
			return nil, err
		}
		groups = append(groups, resp.Data...)

		if resp.Meta.Pagination.TotalPages <= page {
			break
		}
	}

	c.logger.Debug("Fetched ledger transactions", "count", len(groups))
	return groups, nil
}

// GetTransaction retrieves a single transaction group by id.
func (c *Client) GetTransaction(ctx context.Context, id string) (*TransactionGroup, error) {
	url := fmt.Sprintf("%s/api/v1/transactions/%s", c.config.BaseURL, id)

	var resp singleResponse
	if err := c.api.GetJSON(ctx, url, c.headers(), &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateTransactionNotes replaces the transaction's notes with the
// reconciled purchase details.
func (c *Client) UpdateTransactionNotes(ctx context.Context, id, notes string) error {
	url := fmt.Sprintf("%s/api/v1/transactions/%s", c.config.BaseURL, id)

	payload := updateRequest{
		Transactions: []updateSplit{{Notes: &notes}},
	}
	return c.api.PutJSON(ctx, url, c.headers(), payload)
}

// AddTagToTransaction adds the tag to the transaction's tag set. Adding
// a tag that is already present is a no-op: the current set is read
// first and the write is skipped when nothing would change.
func (c *Client) AddTagToTransaction(ctx context.Context, id, tag string) error {
	group, err := c.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if len(group.Attributes.Splits) == 0 {
		return fmt.Errorf("transaction %s has no splits", id)
	}

	current := group.Attributes.Splits[0].Tags
	for _, existing := range current {
		if existing == tag {
			return nil
		}
	}

	url := fmt.Sprintf("%s/api/v1/transactions/%s", c.config.BaseURL, id)
	payload := updateRequest{
		Transactions: []updateSplit{{Tags: append(append([]string{}, current...), tag)}},
	}
	return c.api.PutJSON(ctx, url, c.headers(), payload)
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.config.Token,
		"Accept":        "application/vnd.api+json",
	}
}
