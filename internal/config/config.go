package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Crocmagnon/ynab-card-notify/internal/ynab"
)

var ErrMissing = errors.New("missing configuration")

// Env is the process configuration read from the environment.
type Env struct {
	// ProjectID is the GCP project holding the ledger secret.
	ProjectID string `envconfig:"GCP_PROJECT_ID"`

	// Secrets is the ledger document inline (JSON or YAML). When set, Secret Manager is
	// never contacted.
	Secrets string `envconfig:"YNAB_SECRETS"`

	// LedgerFile is a path to the ledger document, for local runs.
	LedgerFile string `envconfig:"YNAB_LEDGER_FILE"`

	SecretID      string `envconfig:"YNAB_SECRET_ID" default:"ynab"`
	SecretVersion string `envconfig:"YNAB_SECRET_VERSION" default:"latest"`

	BaseURL string        `envconfig:"YNAB_BASE_URL" default:"https://api.ynab.com/"`
	Timeout time.Duration `envconfig:"YNAB_TIMEOUT" default:"10s"`

	// Cleared is the status given to created transactions. Card notifications arrive
	// before the bank settles, hence uncleared.
	Cleared  ynab.ClearedStatus `envconfig:"YNAB_CLEARED" default:"uncleared"`
	Approved bool               `envconfig:"YNAB_APPROVED" default:"false"`

	Port      string `envconfig:"PORT" default:"8080"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// FromEnv reads Env from the process environment.
func FromEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	return &env, nil
}

// UsesSecretManager reports whether the ledger must be fetched from Secret Manager.
func (e *Env) UsesSecretManager() bool {
	return e.Secrets == "" && e.LedgerFile == ""
}

// SecretName is the fully qualified Secret Manager version name of the ledger secret.
func (e *Env) SecretName() string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/%s", e.ProjectID, e.SecretID, e.SecretVersion)
}
