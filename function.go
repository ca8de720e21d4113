// Package ynabnotify is the Cloud Functions entry point. Deploy with
// --entry-point=ProcessRequest.
package ynabnotify

import (
	"context"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Crocmagnon/ynab-card-notify/internal/app"
	"github.com/Crocmagnon/ynab-card-notify/internal/config"
	"github.com/Crocmagnon/ynab-card-notify/internal/logger"
	"github.com/Crocmagnon/ynab-card-notify/internal/middleware"
)

var (
	setupMu sync.Mutex
	handler http.Handler
)

func init() {
	logger.UseCloudLoggingFields()
	functions.HTTP("ProcessRequest", processRequest)
}

// processRequest builds the adapter on the first invocation of an instance, so that cold
// starts without a reachable secret fail per request instead of crashing the instance.
func processRequest(w http.ResponseWriter, r *http.Request) {
	h, err := currentHandler(r.Context())
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError, "function is not configured")
		return
	}

	h.ServeHTTP(w, r)
}

// currentHandler returns the configured handler, running setup again until it succeeds once.
func currentHandler(ctx context.Context) (http.Handler, error) {
	setupMu.Lock()
	defer setupMu.Unlock()

	if handler != nil {
		return handler, nil
	}

	h, err := setup(ctx)
	if err != nil {
		return nil, err
	}

	handler = h

	return h, nil
}

func setup(ctx context.Context) (http.Handler, error) {
	log := logger.NewJSON(os.Stdout)

	env, err := config.FromEnv()
	if err != nil {
		log.Error().Err(err).Msg("Reading configuration failed")
		return nil, err
	}

	adapter, err := app.Build(ctx, env, log, &http.Client{})
	if err != nil {
		log.Error().Err(err).Msg("Building adapter failed")
		return nil, err
	}

	return app.Routes(adapter, log), nil
}
