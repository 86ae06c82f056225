package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a bank account visible to the authenticated client.
type Account struct {
	AccountID     string `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	ReferenceName string `json:"referenceName"`
	ProductName   string `json:"productName"`
}

// Balance is the current state of an account as reported remotely.
type Balance struct {
	AccountID        string          `json:"accountId"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	Currency         string          `json:"currency"`
}

// TransactionPage is one page of remote transactions. TotalPages is zero
// when the response carried no paging metadata.
type TransactionPage struct {
	Transactions []RawTransaction
	TotalPages   int
}

// Credentials are the long-lived secrets used to obtain bearer tokens.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	APIKey       string `json:"api_key"`
}

// Token is a bearer credential with an absolute expiry.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Scope       string    `json:"scope"`
	Expiry      time.Time `json:"expiry"`
}

// ValidAt reports whether the token is still usable at now, keeping buffer
// in reserve before the expiry.
func (t *Token) ValidAt(now time.Time, buffer time.Duration) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return now.Before(t.Expiry.Add(-buffer))
}
