package ynab

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const transactionsURL = "https://api.ynab.com/v1/budgets/bud-id/transactions"

func TestClient_CreateTransaction(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()

	var (
		gotPayload SaveTransactionPayload
		gotAuth    string
	)

	transport.RegisterResponder(http.MethodPost, transactionsURL,
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			if err := json.NewDecoder(req.Body).Decode(&gotPayload); err != nil {
				return httpmock.NewStringResponse(http.StatusBadRequest, ""), nil
			}

			return httpmock.NewStringResponse(http.StatusCreated,
				`{"data": {"transaction_ids": ["txn-1"], "transaction": {"id": "txn-1", "amount": -6220, "account_id": "acct_123"}}}`), nil
		},
	)

	client := NewClient("", StaticToken("tok"), &http.Client{Transport: transport})

	txn := SaveTransaction{
		AccountID: "acct_123",
		Date:      "2025-08-09",
		Amount:    -6220,
		PayeeName: "Key Food",
		Cleared:   Uncleared,
	}

	got, err := client.CreateTransaction(context.Background(), "bud-id", txn)
	require.NoError(t, err)

	assert.Equal(t, "txn-1", got.ID)
	assert.Equal(t, int64(-6220), got.Amount)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, txn, gotPayload.Transaction)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestClient_CreateTransaction_apiError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantName   string
	}{
		{
			name:       "ynab error body",
			status:     http.StatusBadRequest,
			body:       `{"error": {"id": "400", "name": "bad_request", "detail": "account_id is invalid"}}`,
			wantDetail: "account_id is invalid",
			wantName:   "bad_request",
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"error": {"id": "401", "name": "unauthorized", "detail": "Unauthorized"}}`,
			wantDetail: "Unauthorized",
			wantName:   "unauthorized",
		},
		{
			name:       "plain text body",
			status:     http.StatusServiceUnavailable,
			body:       "upstream unavailable\n",
			wantDetail: "upstream unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			transport := httpmock.NewMockTransport()
			transport.RegisterResponder(http.MethodPost, transactionsURL,
				httpmock.NewStringResponder(tt.status, tt.body))

			client := NewClient(DefaultBaseURL, StaticToken("tok"), &http.Client{Transport: transport})

			_, err := client.CreateTransaction(context.Background(), "bud-id", SaveTransaction{AccountID: "acct"})
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
			assert.Equal(t, tt.wantName, apiErr.Name)
			assert.Equal(t, 1, transport.GetTotalCallCount())
		})
	}
}

func TestClient_CreateTransaction_networkError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("connection reset")

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodPost, transactionsURL, httpmock.NewErrorResponder(errBoom))

	client := NewClient("", StaticToken("tok"), &http.Client{Transport: transport})

	_, err := client.CreateTransaction(context.Background(), "bud-id", SaveTransaction{AccountID: "acct"})
	require.Error(t, err)
	require.ErrorIs(t, err, errBoom)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_CreateTransaction_noToken(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	client := NewClient("", StaticToken(""), &http.Client{Transport: transport})

	_, err := client.CreateTransaction(context.Background(), "bud-id", SaveTransaction{})
	require.ErrorIs(t, err, ErrNoToken)
	assert.Zero(t, transport.GetTotalCallCount())
}

func TestClearedStatus_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		want    ClearedStatus
		wantErr bool
	}{
		{value: "cleared", want: Cleared},
		{value: "Uncleared", want: Uncleared},
		{value: " RECONCILED ", want: Reconciled},
		{value: "pending", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()

			var got ClearedStatus

			err := got.Decode(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
