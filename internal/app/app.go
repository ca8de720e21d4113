// Package app assembles the notification adapter from configuration. The cloud function
// and the local server share it.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Crocmagnon/ynab-card-notify/internal/config"
	"github.com/Crocmagnon/ynab-card-notify/internal/middleware"
	"github.com/Crocmagnon/ynab-card-notify/internal/notify"
	"github.com/Crocmagnon/ynab-card-notify/internal/ynab"
)

// LoadLedger resolves the ledger for env, opening a Secret Manager client only when env
// points there. The secret is read once.
func LoadLedger(ctx context.Context, env *config.Env) (*config.Ledger, error) {
	if !env.UsesSecretManager() {
		return config.LoadLedger(ctx, env, nil)
	}

	secrets, err := config.NewSecretManager(ctx)
	if err != nil {
		return nil, err
	}
	defer secrets.Close()

	return config.LoadLedger(ctx, env, secrets)
}

// Options extracts the adapter options from env.
func Options(env *config.Env) notify.Options {
	return notify.Options{
		Cleared:  env.Cleared,
		Approved: env.Approved,
		Timeout:  env.Timeout,
	}
}

// Build loads the ledger and returns a ready adapter. httpClient carries outbound calls to
// YNAB.
func Build(ctx context.Context, env *config.Env, log zerolog.Logger, httpClient *http.Client) (*notify.Adapter, error) {
	ledger, err := LoadLedger(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	client := ynab.NewClient(env.BaseURL, ledger.Credentials(), httpClient)

	log.Info().
		Str("budget_id", ledger.BudgetID).
		Int("accounts", len(ledger.Accounts)).
		Int("merchants", len(ledger.Merchants)).
		Bool("default_account", ledger.DefaultAccountID != "").
		Msg("Adapter configured")

	return notify.NewAdapter(ledger, client, Options(env), log), nil
}

// Routes wraps the adapter with the middleware chain and a health check.
func Routes(adapter http.Handler, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
			return
		}

		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/", adapter)

	return middleware.RequestID(
		middleware.Recovery(log)(
			middleware.Logger(log)(mux),
		),
	)
}
