package notify

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Crocmagnon/ynab-card-notify/internal/config"
	"github.com/Crocmagnon/ynab-card-notify/internal/ynab"
)

// YNAB rejects longer payee names and memos.
const (
	maxPayeeLen = 200
	maxMemoLen  = 500
)

var (
	milliunitsPerUnit = decimal.NewFromInt(1000)
	maxMilliunits     = decimal.NewFromInt(math.MaxInt64)
)

// amountPattern accepts plain digits, comma-grouped thousands, or a decimal comma with at
// most two digits.
var amountPattern = regexp.MustCompile(`^(?:(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?|\.\d+|\d+,\d{1,2})$`)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05Z07",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	ynab.DateFormat,
}

// Options carries the transaction settings that do not come from the notification.
type Options struct {
	Cleared  ynab.ClearedStatus
	Approved bool
	Timeout  time.Duration
}

// Convert maps a notification onto the transaction YNAB should create.
func Convert(n *Notification, ledger *config.Ledger, opts Options) (ynab.SaveTransaction, error) {
	if err := n.Validate(); err != nil {
		return ynab.SaveTransaction{}, err
	}

	amount, err := ParseAmount(n.Amount)
	if err != nil {
		return ynab.SaveTransaction{}, err
	}

	date, err := ParseDate(n.Date)
	if err != nil {
		return ynab.SaveTransaction{}, err
	}

	accountID, err := resolveAccount(ledger, n.Card)
	if err != nil {
		return ynab.SaveTransaction{}, err
	}

	payee := truncate(n.Payee(), maxPayeeLen)
	categoryID, _ := ledger.CategoryID(payee)

	txn := ynab.SaveTransaction{
		AccountID:  accountID,
		Date:       date,
		Amount:     amount,
		PayeeName:  payee,
		CategoryID: categoryID,
		Cleared:    opts.Cleared,
		Approved:   opts.Approved,
	}

	if name := strings.TrimSpace(n.Name); name != "" && strings.TrimSpace(n.Merchant) != "" &&
		!config.SameName(name, n.Merchant) {
		txn.Memo = truncate(name, maxMemoLen)
	}

	return txn, nil
}

func resolveAccount(ledger *config.Ledger, card string) (string, error) {
	if id, ok := ledger.AccountID(card); ok {
		return id, nil
	}

	if ledger.DefaultAccountID != "" {
		return ledger.DefaultAccountID, nil
	}

	return "", invalid("card", "unknown funding source %q", strings.TrimSpace(card))
}

// ParseAmount returns a purchase amount as YNAB milliunits. Purchases are outflows, so
// "$6.22" gives -6220; an amount that is already negative (a refund) gives an inflow.
func ParseAmount(raw string) (int64, error) {
	cleaned, negative, ok := normalizeAmount(raw)
	if !ok {
		return 0, invalid("amount", "cannot parse %q", raw)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, invalid("amount", "cannot parse %q", raw)
	}

	if negative {
		amount = amount.Neg()
	}

	milliunits := amount.Mul(milliunitsPerUnit).Round(0)
	if milliunits.Abs().GreaterThan(maxMilliunits) {
		return 0, invalid("amount", "%q is out of range", raw)
	}

	return milliunits.Neg().IntPart(), nil
}

// normalizeAmount strips one currency symbol or code and the sign, and rewrites a decimal
// comma ("6,22") to a point. A comma followed by three digits is a thousands separator.
// Anything else left around the number makes the amount unparseable.
func normalizeAmount(raw string) (string, bool, bool) {
	value := strings.TrimSpace(raw)
	negative := false

	// accounting notation: (6.22)
	if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
		negative = true
		value = strings.TrimSpace(value[1 : len(value)-1])
	}

	if rest, ok := strings.CutPrefix(value, "-"); ok {
		if negative {
			return "", false, false
		}

		negative = true
		value = rest
	}

	value = trimCurrency(value)

	// $-6.22
	if rest, ok := strings.CutPrefix(value, "-"); ok {
		if negative {
			return "", false, false
		}

		negative = true
		value = strings.TrimSpace(rest)
	}

	if !amountPattern.MatchString(value) {
		return "", false, false
	}

	if !strings.Contains(value, ".") {
		if idx := strings.LastIndex(value, ","); idx >= 0 && len(value)-idx-1 <= 2 {
			value = value[:idx] + "." + value[idx+1:]
		}
	}

	return strings.ReplaceAll(value, ",", ""), negative, true
}

// trimCurrency removes at most one currency symbol or ISO 4217 code from each end.
func trimCurrency(value string) string {
	value = strings.TrimSpace(value)

	if r, size := utf8.DecodeRuneInString(value); unicode.Is(unicode.Sc, r) {
		value = value[size:]
	} else if len(value) > 3 && isCurrencyCode(value[:3]) && !isUpper(value[3]) {
		value = value[3:]
	}

	value = strings.TrimSpace(value)

	if r, size := utf8.DecodeLastRuneInString(value); unicode.Is(unicode.Sc, r) {
		value = value[:len(value)-size]
	} else if n := len(value); n > 3 && isCurrencyCode(value[n-3:]) && !isUpper(value[n-4]) {
		value = value[:n-3]
	}

	return strings.TrimSpace(value)
}

func isCurrencyCode(s string) bool {
	for i := range len(s) {
		if !isUpper(s[i]) {
			return false
		}
	}

	return true
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// ParseDate returns the calendar date of an ISO-8601 timestamp, in the timestamp's own
// offset, formatted for YNAB.
func ParseDate(raw string) (string, error) {
	value := strings.TrimSpace(raw)

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format(ynab.DateFormat), nil
		}
	}

	return "", invalid("date", "%q is not an ISO-8601 date", raw)
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}

	return string([]rune(s)[:maxRunes])
}
