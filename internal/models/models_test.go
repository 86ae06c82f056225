package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToken_ValidAt(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	buffer := 300 * time.Second

	tests := []struct {
		name  string
		token *Token
		want  bool
	}{
		{name: "inside buffer", token: &Token{AccessToken: "a", Expiry: now.Add(290 * time.Second)}, want: false},
		{name: "exactly at buffer", token: &Token{AccessToken: "a", Expiry: now.Add(300 * time.Second)}, want: false},
		{name: "outside buffer", token: &Token{AccessToken: "a", Expiry: now.Add(301 * time.Second)}, want: true},
		{name: "expired", token: &Token{AccessToken: "a", Expiry: now.Add(-time.Minute)}, want: false},
		{name: "empty token", token: &Token{Expiry: now.Add(time.Hour)}, want: false},
		{name: "nil", token: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.token.ValidAt(now, buffer))
		})
	}
}

func TestTransaction_SignedAmount(t *testing.T) {
	debit := Transaction{Type: DirectionDebit, Amount: decimal.RequireFromString("12.50")}
	credit := Transaction{Type: DirectionCredit, Amount: decimal.RequireFromString("100")}

	assert.True(t, debit.SignedAmount().Equal(decimal.RequireFromString("-12.50")))
	assert.True(t, credit.SignedAmount().Equal(decimal.RequireFromString("100")))
	assert.True(t, debit.IsDebit())
	assert.False(t, credit.IsDebit())
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12.3", 1230, true},
		{"12.340", 1234, true},
		{"0", 0, true},
		{"-0.05", -5, true},
		{"92233720368547758.07", 9223372036854775807, true},
		{"10.001", 0, false},
		{"92233720368547758.08", 0, false},
		{"100000000000000000000", 0, false},
	}
	for _, tt := range tests {
		got, ok := MinorUnits(decimal.RequireFromString(tt.in))
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	assert.True(t, FromMinorUnits(1234).Equal(decimal.RequireFromString("12.34")))
	assert.True(t, FromMinorUnits(-5).Equal(decimal.RequireFromString("-0.05")))
}

func TestSyncState_String(t *testing.T) {
	assert.Equal(t, "idle", SyncIdle.String())
	assert.Equal(t, "running", SyncRunning.String())
	assert.Equal(t, "succeeded", SyncSucceeded.String())
	assert.Equal(t, "failed", SyncFailed.String())
	assert.Equal(t, "unknown", SyncState(42).String())
}

func TestLastDays(t *testing.T) {
	now := time.Date(2024, 5, 31, 8, 0, 0, 0, time.UTC)
	r := LastDays(now, 90)

	assert.Equal(t, time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, now, r.To)
	assert.False(t, r.IsZero())
	assert.True(t, DateRange{}.IsZero())
}

func TestDefaultCategories_UniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range DefaultCategories {
		assert.False(t, seen[c.Name], "duplicate default category %q", c.Name)
		seen[c.Name] = true
	}
	assert.Len(t, DefaultCategories, 9)
}
