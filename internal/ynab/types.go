package ynab

import (
	"fmt"
	"strings"
)

// types available at https://api.ynab.com/v1#/Transactions/createTransaction

// DateFormat is the date layout YNAB expects for transaction dates.
const DateFormat = "2006-01-02"

type SaveTransactionPayload struct {
	Transaction SaveTransaction `json:"transaction"`
}

type SaveTransaction struct {
	AccountID  string        `json:"account_id"`
	Date       string        `json:"date"`
	Amount     int64         `json:"amount"`
	PayeeName  string        `json:"payee_name,omitempty"`
	CategoryID string        `json:"category_id,omitempty"`
	Memo       string        `json:"memo,omitempty"`
	Cleared    ClearedStatus `json:"cleared,omitempty"`
	Approved   bool          `json:"approved"`
	FlagColor  string        `json:"flag_color,omitempty"`
}

type TransactionDetail struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Amount       int64  `json:"amount"`
	Memo         string `json:"memo"`
	Cleared      string `json:"cleared"`
	Approved     bool   `json:"approved"`
	AccountID    string `json:"account_id"`
	AccountName  string `json:"account_name"`
	PayeeID      string `json:"payee_id"`
	PayeeName    string `json:"payee_name"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
}

type SaveTransactionsResponse struct {
	Data struct {
		TransactionIDs     []string          `json:"transaction_ids"`
		Transaction        TransactionDetail `json:"transaction"`
		DuplicateImportIDs []string          `json:"duplicate_import_ids"`
		ServerKnowledge    int64             `json:"server_knowledge"`
	} `json:"data"`
}

type ErrorResponse struct {
	Error struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Detail string `json:"detail"`
	} `json:"error"`
}

type ClearedStatus string

const (
	Cleared    ClearedStatus = "cleared"
	Uncleared  ClearedStatus = "uncleared"
	Reconciled ClearedStatus = "reconciled"
)

// Decode implements envconfig.Decoder.
func (cs *ClearedStatus) Decode(value string) error {
	lowered := strings.ToLower(strings.TrimSpace(value))
	switch ClearedStatus(lowered) {
	case Cleared, Uncleared, Reconciled:
		*cs = ClearedStatus(lowered)
		return nil
	default:
		return fmt.Errorf("unknown cleared status %q", value)
	}
}

func (cs ClearedStatus) String() string {
	return string(cs)
}
