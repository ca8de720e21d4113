package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Crocmagnon/ynab-card-notify/internal/config"
	"github.com/Crocmagnon/ynab-card-notify/internal/logger"
	"github.com/Crocmagnon/ynab-card-notify/internal/middleware"
	"github.com/Crocmagnon/ynab-card-notify/internal/ynab"
)

const maxBodyBytes = 64 << 10

// Poster creates transactions in YNAB. *ynab.Client implements it.
type Poster interface {
	CreateTransaction(ctx context.Context, budgetID string, txn ynab.SaveTransaction) (*ynab.TransactionDetail, error)
}

// Confirmation is the body returned once the transaction exists.
type Confirmation struct {
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id,omitempty"`
	AccountID     string `json:"account_id"`
	Amount        int64  `json:"amount"`
	Date          string `json:"date"`
	PayeeName     string `json:"payee_name"`
	NeedsCategory bool   `json:"needs_category"`
}

// Adapter turns card notifications into YNAB transactions. It holds no per-request state
// and is safe for concurrent use. Every accepted notification creates a new transaction;
// nothing is deduplicated.
type Adapter struct {
	ledger *config.Ledger
	poster Poster
	opts   Options
	log    zerolog.Logger
}

func NewAdapter(ledger *config.Ledger, poster Poster, opts Options, log zerolog.Logger) *Adapter {
	return &Adapter{ledger: ledger, poster: poster, opts: opts, log: log}
}

func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), a.log)

	if r.Method != http.MethodPost {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	notification, err := Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		a.writeError(w, log, err)
		return
	}

	confirmation, err := a.Process(r.Context(), notification)
	if err != nil {
		a.writeError(w, log.With().Str("card", notification.Card).Str("payee", notification.Payee()).Logger(), err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, confirmation)
}

// Process converts n and creates the transaction with a single call to YNAB. Failures are
// *ValidationError or *RemoteError; nothing is retried.
func (a *Adapter) Process(ctx context.Context, n *Notification) (*Confirmation, error) {
	log := logger.FromContext(ctx, a.log)

	txn, err := Convert(n, a.ledger, a.opts)
	if err != nil {
		return nil, err
	}

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)

		defer cancel()
	}

	created, err := a.poster.CreateTransaction(ctx, a.ledger.BudgetID, txn)
	if err != nil {
		return nil, newRemoteError(err)
	}

	confirmation := &Confirmation{
		Message:       "Transaction Posted",
		TransactionID: created.ID,
		AccountID:     txn.AccountID,
		Amount:        txn.Amount,
		Date:          txn.Date,
		PayeeName:     txn.PayeeName,
		NeedsCategory: txn.CategoryID == "",
	}

	if confirmation.NeedsCategory {
		confirmation.Message = fmt.Sprintf("Transaction Posted. %s needs to be categorized", txn.PayeeName)
	}

	log.Info().
		Str("transaction_id", created.ID).
		Str("account_id", txn.AccountID).
		Str("payee", txn.PayeeName).
		Int64("amount", txn.Amount).
		Str("date", txn.Date).
		Bool("needs_category", confirmation.NeedsCategory).
		Msg("Transaction posted")

	return confirmation, nil
}

func (a *Adapter) writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := HTTPStatus(err)

	event := log.Error()
	if status == http.StatusBadRequest {
		event = log.Warn()
	}

	event.Err(err).Int("status", status).Msg("Notification rejected")

	middleware.WriteError(w, status, err.Error())
}
