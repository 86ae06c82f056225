package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whether money came in (CREDIT) or went out (DEBIT).
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// DefaultTransactionType replaces a missing remote classification.
const DefaultTransactionType = "Other"

// Transaction is a normalized, persisted bank transaction.
//
// Amount is never negative; the sign is carried by Type. The tuple
// (AccountID, TransactionDate, Amount, Description) identifies a row.
type Transaction struct {
	ID              int64
	AccountID       string
	Type            Direction
	TransactionType string
	Status          string
	Description     string
	CardNumber      string
	PostedOrder     int64
	PostingDate     string
	ValueDate       string
	ActionDate      string
	TransactionDate time.Time
	Amount          decimal.Decimal
	RunningBalance  decimal.Decimal
	CategoryID      *int64
	CreatedAt       time.Time

	// Populated by reads that join the category.
	CategoryName  string
	CategoryColor string
}

// SignedAmount returns Amount negated for debits.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == DirectionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// MinorUnitExp is the number of fractional digits kept for money.
const MinorUnitExp = 2

// MinorUnits returns d as a whole number of cents. ok is false when d has
// more than MinorUnitExp fractional digits or does not fit in an int64.
func MinorUnits(d decimal.Decimal) (v int64, ok bool) {
	shifted := d.Shift(MinorUnitExp)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, false
	}
	n := shifted.BigInt()
	if !n.IsInt64() {
		return 0, false
	}
	return n.Int64(), true
}

// FromMinorUnits is the inverse of MinorUnits.
func FromMinorUnits(v int64) decimal.Decimal {
	return decimal.New(v, -MinorUnitExp)
}

// IsDebit reports whether the transaction is money out.
func (t Transaction) IsDebit() bool {
	return t.Type == DirectionDebit
}

// RawTransaction is a transaction record exactly as the banking API returns
// it. Nullable numbers are pointers so that absent and null differ from zero.
type RawTransaction struct {
	AccountID       string           `json:"accountId"`
	Type            string           `json:"type"`
	TransactionType string           `json:"transactionType"`
	Status          string           `json:"status"`
	Description     string           `json:"description"`
	CardNumber      string           `json:"cardNumber"`
	PostedOrder     *int64           `json:"postedOrder"`
	PostingDate     string           `json:"postingDate"`
	ValueDate       string           `json:"valueDate"`
	ActionDate      string           `json:"actionDate"`
	TransactionDate string           `json:"transactionDate"`
	Amount          *decimal.Decimal `json:"amount"`
	RunningBalance  *decimal.Decimal `json:"runningBalance"`

	// Malformed names the JSON fields that were present but could not be
	// decoded; they are left at their zero value.
	Malformed []string `json:"-"`
}
