package services

import (
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/shopspring/decimal"
)

// NormalizeResult partitions a batch of raw records.
type NormalizeResult struct {
	Valid    []models.Transaction
	Rejected []models.Rejection
}

var dateLayouts = []string{common.DateLayout, time.RFC3339Nano, "2006-01-02T15:04:05"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// optionalDate returns s as YYYY-MM-DD, or "" when absent. ok is false for a
// present but unparseable value.
func optionalDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	t, ok := parseDate(s)
	if !ok {
		return "", false
	}
	return t.Format(common.DateLayout), true
}

// Normalize maps a raw record onto the stored schema. Blank strings count as
// missing; fields that failed to decode are invalid, not missing. Amounts
// must be whole cents. A nil rejection means the transaction is valid.
func Normalize(raw models.RawTransaction) (models.Transaction, *models.Rejection) {
	var (
		missing []string
		invalid = slices.Clone(raw.Malformed)
	)

	malformed := func(name string) bool {
		return slices.Contains(raw.Malformed, name)
	}
	required := func(name, v string) string {
		v = strings.TrimSpace(v)
		if v == "" && !malformed(name) {
			missing = append(missing, name)
		}
		return v
	}

	t := models.Transaction{
		AccountID:       required("accountId", raw.AccountID),
		Status:          required("status", raw.Status),
		Description:     required("description", raw.Description),
		TransactionType: strings.TrimSpace(raw.TransactionType),
		CardNumber:      strings.TrimSpace(raw.CardNumber),
	}

	if dir := strings.ToUpper(required("type", raw.Type)); dir != "" {
		switch models.Direction(dir) {
		case models.DirectionCredit, models.DirectionDebit:
			t.Type = models.Direction(dir)
		default:
			invalid = append(invalid, "type")
		}
	}

	if date := required("transactionDate", raw.TransactionDate); date != "" {
		if parsed, ok := parseDate(date); ok {
			t.TransactionDate = parsed
		} else {
			invalid = append(invalid, "transactionDate")
		}
	}

	switch {
	case raw.Amount == nil:
		if !malformed("amount") {
			missing = append(missing, "amount")
		}
	case raw.Amount.IsNegative() || !storable(*raw.Amount):
		invalid = append(invalid, "amount")
	default:
		t.Amount = *raw.Amount
	}

	for _, d := range []struct {
		name string
		raw  string
		dst  *string
	}{
		{"postingDate", raw.PostingDate, &t.PostingDate},
		{"valueDate", raw.ValueDate, &t.ValueDate},
		{"actionDate", raw.ActionDate, &t.ActionDate},
	} {
		v, ok := optionalDate(d.raw)
		if !ok {
			invalid = append(invalid, d.name)
		}
		*d.dst = v
	}

	if t.TransactionType == "" {
		t.TransactionType = models.DefaultTransactionType
	}
	if raw.PostedOrder != nil {
		t.PostedOrder = *raw.PostedOrder
	}
	if raw.RunningBalance != nil {
		if storable(*raw.RunningBalance) {
			t.RunningBalance = *raw.RunningBalance
		} else {
			invalid = append(invalid, "runningBalance")
		}
	}

	if len(missing) > 0 || len(invalid) > 0 {
		return models.Transaction{}, &models.Rejection{Missing: missing, Invalid: invalid}
	}
	return t, nil
}

func storable(d decimal.Decimal) bool {
	_, ok := models.MinorUnits(d)
	return ok
}

// NormalizeBatch normalizes every record, tagging rejections with the
// record's index in raws.
func NormalizeBatch(raws []models.RawTransaction) NormalizeResult {
	res := NormalizeResult{Valid: make([]models.Transaction, 0, len(raws))}
	for i, raw := range raws {
		t, rej := Normalize(raw)
		if rej != nil {
			rej.Index = i
			res.Rejected = append(res.Rejected, *rej)
			continue
		}
		res.Valid = append(res.Valid, t)
	}
	return res
}
