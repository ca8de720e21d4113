package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/carlmjohnson/requests"
)

// DefaultBaseURL is the public YNAB API host.
const DefaultBaseURL = "https://api.ynab.com/"

var ErrNoToken = errors.New("no access token")

// Credentials supplies the bearer token sent with every request.
type Credentials interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a personal access token known at startup.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", ErrNoToken
	}

	return string(t), nil
}

// APIError is returned when YNAB answers with a non-2xx status.
type APIError struct {
	StatusCode int
	ID         string
	Name       string
	Detail     string
	Err        error
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("ynab: status %d (%s): %s", e.StatusCode, e.Name, e.Detail)
	}

	return fmt.Sprintf("ynab: status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
}

// NewClient returns a client for baseURL. An empty baseURL means DefaultBaseURL and a nil
// httpClient means http.DefaultClient.
func NewClient(baseURL string, creds Credentials, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{baseURL: baseURL, creds: creds, httpClient: httpClient}
}

// CreateTransaction creates a single transaction in budgetID. It makes exactly one request.
func (c *Client) CreateTransaction(ctx context.Context, budgetID string, txn SaveTransaction) (*TransactionDetail, error) {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting token: %w", err)
	}

	var (
		resp    SaveTransactionsResponse
		errResp bytes.Buffer
		status  int
	)

	err = requests.URL(c.baseURL).
		Pathf("/v1/budgets/%s/transactions", budgetID).
		Client(c.httpClient).
		Header("Authorization", fmt.Sprintf("Bearer %v", token)).
		Method(http.MethodPost).
		AddValidator(func(res *http.Response) error {
			status = res.StatusCode
			return nil
		}).
		AddValidator(requests.ValidatorHandler(requests.DefaultValidator, requests.ToBytesBuffer(&errResp))).
		BodyJSON(SaveTransactionPayload{Transaction: txn}).
		ToJSON(&resp).
		Fetch(ctx)
	if err != nil {
		if status != 0 && (status < http.StatusOK || status >= http.StatusMultipleChoices) {
			return nil, newAPIError(status, errResp.Bytes(), err)
		}

		return nil, fmt.Errorf("creating transaction: %w", err)
	}

	return &resp.Data.Transaction, nil
}

func newAPIError(status int, body []byte, err error) *APIError {
	apiErr := &APIError{StatusCode: status, Err: err}

	var parsed ErrorResponse
	if jsonErr := json.Unmarshal(body, &parsed); jsonErr == nil {
		apiErr.ID = parsed.Error.ID
		apiErr.Name = parsed.Error.Name
		apiErr.Detail = parsed.Error.Detail
	} else if len(body) > 0 {
		apiErr.Detail = string(bytes.TrimSpace(body))
	}

	return apiErr
}
