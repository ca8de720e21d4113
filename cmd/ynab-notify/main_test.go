package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/jarcoal/httpmock"
)

//nolint:funlen // mostly test cases in list
func Test_run(t *testing.T) {
	type args struct {
		ctx  context.Context //nolint:containedctx
		args []string
	}

	tests := []struct {
		name       string
		args       args
		wantStdout string
		wantErr    bool
		wantCalls  int
		clientFunc func() (*http.Client, *httpmock.MockTransport)
	}{
		{
			name: "push one notification",
			args: args{
				context.Background(),
				[]string{"push", "-l", "./testdata/ledger.yaml", "-f", "./testdata/key-food.json"},
			},
			clientFunc: func() (*http.Client, *httpmock.MockTransport) {
				transport := httpmock.NewMockTransport()
				transport.RegisterResponder(
					http.MethodPost,
					"https://api.ynab.com/v1/budgets/bud-id/transactions",
					httpmock.NewStringResponder(http.StatusCreated, `{"data": {"transaction": {"id": "txn-1"}}}`),
				)

				return &http.Client{Transport: transport}, transport
			},
			wantStdout: `Transaction Posted
transaction txn-1: Key Food -6220 milliunits on 2025-08-09
`,
			wantCalls: 1,
			wantErr:   false,
		},
		{
			name: "budget override",
			args: args{
				context.Background(),
				[]string{"push", "-l", "./testdata/ledger.yaml", "-b", "other-bud", "-f", "./testdata/key-food.json"},
			},
			clientFunc: func() (*http.Client, *httpmock.MockTransport) {
				transport := httpmock.NewMockTransport()
				transport.RegisterResponder(
					http.MethodPost,
					"https://api.ynab.com/v1/budgets/other-bud/transactions",
					httpmock.NewStringResponder(http.StatusCreated, `{"data": {"transaction": {"id": "txn-2"}}}`),
				)

				return &http.Client{Transport: transport}, transport
			},
			wantStdout: `Transaction Posted
transaction txn-2: Key Food -6220 milliunits on 2025-08-09
`,
			wantCalls: 1,
			wantErr:   false,
		},
		{
			name: "dry run",
			args: args{
				context.Background(),
				[]string{"push", "--dry-run", "--cleared", "cleared", "-l", "./testdata/ledger.yaml", "-f", "./testdata/key-food.json"},
			},
			clientFunc: func() (*http.Client, *httpmock.MockTransport) {
				transport := httpmock.NewMockTransport()
				return &http.Client{Transport: transport}, transport
			},
			wantStdout: `{
  "transaction": {
    "account_id": "acct_123",
    "date": "2025-08-09",
    "amount": -6220,
    "payee_name": "Key Food",
    "category_id": "cat_groceries",
    "cleared": "cleared",
    "approved": false
  }
}
`,
			wantCalls: 0,
			wantErr:   false,
		},
		{
			name: "unknown card",
			args: args{
				context.Background(),
				[]string{"push", "-l", "./testdata/ledger.yaml", "-f", "./testdata/unknown-card.json"},
			},
			clientFunc: func() (*http.Client, *httpmock.MockTransport) {
				transport := httpmock.NewMockTransport()
				return &http.Client{Transport: transport}, transport
			},
			wantCalls: 0,
			wantErr:   true,
		},
		{
			name: "ynab rejects",
			args: args{
				context.Background(),
				[]string{"push", "-l", "./testdata/ledger.yaml", "-f", "./testdata/key-food.json"},
			},
			clientFunc: func() (*http.Client, *httpmock.MockTransport) {
				transport := httpmock.NewMockTransport()
				transport.RegisterResponder(
					http.MethodPost,
					"https://api.ynab.com/v1/budgets/bud-id/transactions",
					httpmock.NewStringResponder(http.StatusUnauthorized, `{"error": {"id": "401", "name": "unauthorized", "detail": "Unauthorized"}}`),
				)

				return &http.Client{Transport: transport}, transport
			},
			wantCalls: 1,
			wantErr:   true,
		},
		{
			name: "missing file flag",
			args: args{
				context.Background(),
				[]string{"push", "-l", "./testdata/ledger.yaml"},
			},
			clientFunc: func() (*http.Client, *httpmock.MockTransport) {
				transport := httpmock.NewMockTransport()
				return &http.Client{Transport: transport}, transport
			},
			wantErr: true,
		},
	}

	unsetEnv(t, "YNAB_SECRETS", "YNAB_LEDGER_FILE", "YNAB_BASE_URL", "YNAB_CLEARED", "YNAB_TIMEOUT")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			client, transport := tt.clientFunc()

			err := run(tt.args.ctx, tt.args.args, stdout, client)
			if (err != nil) != tt.wantErr {
				t.Errorf("run() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if gotStdout := stdout.String(); !tt.wantErr && gotStdout != tt.wantStdout {
				t.Errorf("run() gotStdout = %v, want %v", gotStdout, tt.wantStdout)
			}

			if gotCalls := transport.GetTotalCallCount(); gotCalls != tt.wantCalls {
				t.Errorf("run() calls = %v, want %v", gotCalls, tt.wantCalls)
			}
		})
	}
}

// unsetEnv removes variables from the developer's shell for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()

	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
