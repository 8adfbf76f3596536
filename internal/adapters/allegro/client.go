// Package allegro is the marketplace adapter: it fetches the raw
// order-groups payload from the Allegro myorders API using a session
// cookie and hands it to the order ingester.
package allegro

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fireflyiii-tools/allegro-sync/internal/adapters/httpapi"
	"github.com/fireflyiii-tools/allegro-sync/internal/domain/order"
)

// DefaultBaseURL is the public Allegro endpoint.
const DefaultBaseURL = "https://allegro.pl"

// DefaultOrderLimit caps how many order groups one fetch requests.
const DefaultOrderLimit = 25

// Config holds the marketplace session settings.
type Config struct {
	BaseURL       string
	SessionCookie string // QXLSESSID value
	OrderLimit    int
}

// Client fetches marketplace orders. Transport failures are fatal for
// the pass; the client performs no retries.
type Client struct {
	config Config
	api    *httpapi.Client
	logger *slog.Logger
}

// NewClient creates an Allegro client. A nil logger falls back to the
// default slog logger.
func NewClient(config Config, api *httpapi.Client, logger *slog.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.OrderLimit <= 0 {
		config.OrderLimit = DefaultOrderLimit
	}
	if api == nil {
		api = httpapi.NewClient(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{config: config, api: api, logger: logger}
}

// FetchOrders retrieves the most recent order groups and ingests them
// into structured orders.
func (c *Client) FetchOrders(ctx context.Context) ([]order.Order, error) {
	url := fmt.Sprintf("%s/myorder-api/myorders?limit=%d", c.config.BaseURL, c.config.OrderLimit)

	body, err := c.api.Get(ctx, url, c.standardHeaders(3))
	if err != nil {
		return nil, err
	}

	orders, err := order.ParseOrdersBytes(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched marketplace orders", "count", len(orders))
	return orders, nil
}

// standardHeaders builds the request headers the myorders API expects,
// including the session cookie and versioned accept header.
func (c *Client) standardHeaders(apiVersion int) map[string]string {
	return map[string]string{
		"Cookie":  fmt.Sprintf("QXLSESSID=%s", c.config.SessionCookie),
		"Accept":  fmt.Sprintf("application/vnd.allegro.public.v%d+json", apiVersion),
		"Referer": DefaultBaseURL + "/",
	}
}
