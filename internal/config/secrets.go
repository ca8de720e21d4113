package config

import (
	"context"
	"errors"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

var errNoAccessor = errors.New("no secret accessor")

// SecretAccessor returns the payload of a secret version.
type SecretAccessor interface {
	AccessSecret(ctx context.Context, name string) ([]byte, error)
}

// SecretManager reads secrets from Google Cloud Secret Manager using Application Default
// Credentials.
type SecretManager struct {
	client *secretmanager.Client
}

func NewSecretManager(ctx context.Context) (*SecretManager, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create secret manager client: %w", err)
	}

	return &SecretManager{client: client}, nil
}

func (s *SecretManager) AccessSecret(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return nil, fmt.Errorf("access secret %s: %w", name, err)
	}

	return resp.GetPayload().GetData(), nil
}

func (s *SecretManager) Close() error {
	return s.client.Close()
}

// LoadLedger resolves the ledger document from, in order: the inline YNAB_SECRETS value,
// YNAB_LEDGER_FILE, then Secret Manager through accessor.
func LoadLedger(ctx context.Context, env *Env, accessor SecretAccessor) (*Ledger, error) {
	switch {
	case env.Secrets != "":
		return ParseLedger([]byte(env.Secrets))
	case env.LedgerFile != "":
		return ReadLedgerFile(env.LedgerFile)
	}

	if env.ProjectID == "" {
		return nil, fmt.Errorf("%w: GCP_PROJECT_ID or YNAB_SECRETS", ErrMissing)
	}

	if accessor == nil {
		return nil, errNoAccessor
	}

	data, err := accessor.AccessSecret(ctx, env.SecretName())
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	return ParseLedger(data)
}
