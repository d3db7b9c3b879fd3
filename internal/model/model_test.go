package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_Row(t *testing.T) {
	tx := Transaction{
		Date:        "2026-10-16",
		Value:       decimal.RequireFromString("150.50"),
		Description: "groceries",
		Label:       "food",
		PaymentType: "RUB",
		YearMonth:   "2026-10",
		User:        "alice",
	}

	assert.Equal(t, []string{"2026-10-16", "150.5", "groceries", "food", "RUB", "2026-10", "alice"}, tx.Row())
}

func TestTransactionFromRow(t *testing.T) {
	tx, err := TransactionFromRow([]string{"2026-10-16", "12.30", "taxi", "transport", "RSD", "2026-10"})
	require.NoError(t, err)
	assert.True(t, tx.Value.Equal(decimal.RequireFromString("12.3")))
	assert.Equal(t, "transport", tx.Label)
	assert.Empty(t, tx.User)

	_, err = TransactionFromRow([]string{"2026-10-16", "abc"})
	assert.Error(t, err)
}

func TestIsHeader(t *testing.T) {
	assert.True(t, IsHeader([]string{"Date", "value", "description", "type", "payment_type", "year_month", "user"}, IncomeHeader))
	assert.False(t, IsHeader([]string{"2026-10-16", "1"}, IncomeHeader))
	assert.False(t, IsHeader(nil, ExpenseHeader))
}

func TestSameRow(t *testing.T) {
	assert.True(t, SameRow([]string{"a", "b", ""}, []string{"a", "b"}))
	assert.False(t, SameRow([]string{"a", "b"}, []string{"a", "c"}))
}

func TestSession_TransactionUsesFlowLabel(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	s := NewSession(1, FlowIncome, StateIncomeConfirmation)
	s.Stamp(now)
	s.Category = "stale"
	s.IncomeType = "salary"
	s.Value = decimal.NewFromInt(100)

	tx := s.Transaction("bob")
	assert.Equal(t, "salary", tx.Label)
	assert.Equal(t, "2026-10-16", tx.Date)
	assert.Equal(t, "2026-10", tx.YearMonth)
}

func TestSession_CloneIsIndependent(t *testing.T) {
	s := NewSession(1, FlowExpense, StateDeleteConfirmation)
	s.PendingDelete = &PendingDelete{Position: 3, Row: []string{"x"}}

	c := s.Clone()
	c.PendingDelete.Row[0] = "y"
	c.State = StatePaymentType

	assert.Equal(t, "x", s.PendingDelete.Row[0])
	assert.Equal(t, StateDeleteConfirmation, s.State)
}

func TestSession_JSONKeepsValue(t *testing.T) {
	s := NewSession(7, FlowExpense, StateDescription)
	s.Value = decimal.RequireFromString("99.99")

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var got Session
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.Value.Equal(s.Value))
	assert.Equal(t, StateDescription, got.State)
}

func TestOptions(t *testing.T) {
	o := Options{
		Currencies:  []Currency{{Code: "RUB", Flag: "🇷🇺"}, {Code: "RSD"}},
		Categories:  []string{"food"},
		IncomeTypes: []string{"salary"},
	}

	assert.True(t, o.IsCategory("food"))
	assert.False(t, o.IsCategory("Food"))
	assert.True(t, o.IsIncomeType("salary"))
	assert.Equal(t, "RUB 🇷🇺", o.Currencies[0].Label())
	assert.Equal(t, "Income RSD", o.Currencies[1].IncomeLabel())
	assert.Equal(t, []string{"RUB", "RSD"}, o.CurrencyCodes())
}
