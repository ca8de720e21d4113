package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/Crocmagnon/ynab-card-notify/internal/ynab"
)

// Ledger describes the destination budget and how notification names map onto it.
//
// Sample document:
//
//	{
//	  "budget_id": "…",
//	  "access_token": "…",
//	  "accounts": [{"name": "Apple Card", "id": "…"}],
//	  "merchants": [{"name": "Key Food", "category_id": "…"}]
//	}
type Ledger struct {
	BudgetID    string `json:"budget_id" yaml:"budget_id"`
	AccessToken string `json:"access_token" yaml:"access_token"`

	// DefaultAccountID receives notifications for cards missing from Accounts. Empty means
	// such notifications are rejected.
	DefaultAccountID string `json:"default_account_id,omitempty" yaml:"default_account_id,omitempty"`

	Accounts  []Account  `json:"accounts" yaml:"accounts"`
	Merchants []Merchant `json:"merchants,omitempty" yaml:"merchants,omitempty"`
}

// Account maps a card name to a YNAB account.
type Account struct {
	Name string `json:"name" yaml:"name"`
	ID   string `json:"id" yaml:"id"`
}

// Merchant maps a merchant name to a YNAB category.
type Merchant struct {
	Name       string `json:"name" yaml:"name"`
	CategoryID string `json:"category_id" yaml:"category_id"`
}

// ParseLedger decodes a ledger document. JSON (the Secret Manager format) and YAML are
// both accepted.
func ParseLedger(data []byte) (*Ledger, error) {
	var ledger Ledger

	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		if err := json.Unmarshal(trimmed, &ledger); err != nil {
			return nil, fmt.Errorf("parsing ledger json: %w", err)
		}
	} else if err := yaml.Unmarshal(trimmed, &ledger); err != nil {
		return nil, fmt.Errorf("parsing ledger yaml: %w", err)
	}

	if err := ledger.Validate(); err != nil {
		return nil, err
	}

	return &ledger, nil
}

// ReadLedgerFile reads and parses a ledger document from disk.
func ReadLedgerFile(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	return ParseLedger(data)
}

func (l *Ledger) Validate() error {
	switch {
	case l.BudgetID == "":
		return fmt.Errorf("%w: budget_id", ErrMissing)
	case l.AccessToken == "":
		return fmt.Errorf("%w: access_token", ErrMissing)
	case len(l.Accounts) == 0 && l.DefaultAccountID == "":
		return fmt.Errorf("%w: accounts", ErrMissing)
	}

	for i, account := range l.Accounts {
		if account.Name == "" || account.ID == "" {
			return fmt.Errorf("%w: name and id of accounts[%d]", ErrMissing, i)
		}
	}

	return nil
}

// AccountID returns the account for card. It does not consider DefaultAccountID.
func (l *Ledger) AccountID(card string) (string, bool) {
	key := normalizeName(card)
	for _, account := range l.Accounts {
		if normalizeName(account.Name) == key {
			return account.ID, true
		}
	}

	return "", false
}

// CategoryID returns the category for merchant, if one is configured.
func (l *Ledger) CategoryID(merchant string) (string, bool) {
	key := normalizeName(merchant)
	for _, m := range l.Merchants {
		if normalizeName(m.Name) == key && m.CategoryID != "" {
			return m.CategoryID, true
		}
	}

	return "", false
}

// Credentials returns the access token as a YNAB credential provider.
func (l *Ledger) Credentials() ynab.Credentials {
	return ynab.StaticToken(l.AccessToken)
}

// SameName reports whether two free-text names refer to the same thing.
func SameName(a, b string) bool {
	return normalizeName(a) == normalizeName(b)
}

// normalizeName collapses whitespace, applies NFC and folds case. A Caser holds state, so
// one is built per call.
func normalizeName(s string) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(norm.NFC.String(collapsed))
}
