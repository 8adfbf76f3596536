// Package clients wires the external service clients from config.
package clients

import (
	"fmt"
	"log/slog"

	"github.com/fireflyiii-tools/allegro-sync/internal/adapters/allegro"
	"github.com/fireflyiii-tools/allegro-sync/internal/adapters/firefly"
	"github.com/fireflyiii-tools/allegro-sync/internal/adapters/httpapi"
	"github.com/fireflyiii-tools/allegro-sync/internal/infrastructure/config"
)

// Clients bundles the marketplace and ledger clients. Both share one
// underlying HTTP client.
type Clients struct {
	Allegro *allegro.Client
	Firefly *firefly.Client
}

// NewClients builds the external clients from config.
func NewClients(cfg *config.Config, logger *slog.Logger) (*Clients, error) {
	if cfg.Allegro.SessionCookie == "" {
		return nil, fmt.Errorf("missing Allegro session cookie (set ALLEGRO_SESSION or allegro.session_cookie)")
	}
	if cfg.Firefly.BaseURL == "" {
		return nil, fmt.Errorf("missing Firefly III base URL (set FIREFLY_URL or firefly.base_url)")
	}
	if cfg.Firefly.Token == "" {
		return nil, fmt.Errorf("missing Firefly III token (set FIREFLY_TOKEN or firefly.token)")
	}

	api := httpapi.NewClient(0)

	return &Clients{
		Allegro: allegro.NewClient(allegro.Config{
			BaseURL:       cfg.Allegro.BaseURL,
			SessionCookie: cfg.Allegro.SessionCookie,
			OrderLimit:    cfg.Allegro.OrderLimit,
		}, api, logger),
		Firefly: firefly.NewClient(firefly.Config{
			BaseURL: cfg.Firefly.BaseURL,
			Token:   cfg.Firefly.Token,
		}, api, logger),
	}, nil
}
