package notify

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Notification is the body posted for one card purchase.
//
//	{
//	    "amount": "$6.22",
//	    "name": "Key Food",
//	    "card": "Apple Card",
//	    "merchant": "Key Food",
//	    "date": "2025-08-09T21:26:45-04:00"
//	}
type Notification struct {
	Amount   string `json:"amount"`
	Name     string `json:"name"`
	Card     string `json:"card"`
	Merchant string `json:"merchant"`
	Date     string `json:"date"`
}

// Decode reads and validates a notification. Some senders prefix the body with a BOM, which
// is dropped.
func Decode(reader io.Reader) (*Notification, error) {
	transformer := unicode.BOMOverride(encoding.Nop.NewDecoder())

	decoder := json.NewDecoder(transform.NewReader(reader, transformer))

	var n Notification
	if err := decoder.Decode(&n); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalid("body", "empty")
		}

		return nil, invalid("body", "malformed JSON: %v", err)
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, invalid("body", "unexpected data after the JSON object")
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}

	return &n, nil
}

// Validate checks that every field needed to build a transaction is present.
func (n *Notification) Validate() error {
	switch {
	case strings.TrimSpace(n.Amount) == "":
		return invalid("amount", "required")
	case strings.TrimSpace(n.Card) == "":
		return invalid("card", "required")
	case strings.TrimSpace(n.Date) == "":
		return invalid("date", "required")
	case n.Payee() == "":
		return invalid("merchant", "name or merchant is required")
	}

	return nil
}

// Payee is the merchant, or the name when no merchant was sent.
func (n *Notification) Payee() string {
	if merchant := strings.TrimSpace(n.Merchant); merchant != "" {
		return merchant
	}

	return strings.TrimSpace(n.Name)
}
