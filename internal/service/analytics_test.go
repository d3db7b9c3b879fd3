package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/budget_bot/internal/model"
	"github.com/ivanoskov/budget_bot/internal/repository"
)

func expense(date, value, label, currency string) model.Transaction {
	return model.Transaction{
		Date:        date,
		Value:       decimal.RequireFromString(value),
		Label:       label,
		PaymentType: currency,
		YearMonth:   date[:7],
	}
}

var march15 = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func TestTwoMonths(t *testing.T) {
	txs := []model.Transaction{
		expense("2024-01-10", "50", "Food", "RUB"),
		expense("2024-02-10", "100", "Food", "RUB"),
		expense("2024-03-01", "150", "Food", "RUB"),
		expense("2024-03-02", "50", "Transport", "RUB"),
		expense("2024-03-03", "999", "Food", "RSD"),
	}

	reports := TwoMonths(txs, "RUB", march15)
	require.Len(t, reports, 2)

	march := reports[0]
	assert.Equal(t, "2024-03", march.YearMonth)
	assert.True(t, decimal.NewFromInt(200).Equal(march.Total))
	require.Len(t, march.Categories, 2)
	assert.Equal(t, "Food", march.Categories[0].Category)
	assert.Equal(t, 75.0, march.Categories[0].Share)
	require.NotNil(t, march.Categories[0].Change)
	assert.Equal(t, 50.0, *march.Categories[0].Change)
	assert.Nil(t, march.Categories[1].Change)

	feb := reports[1]
	assert.Equal(t, "2024-02", feb.YearMonth)
	require.NotNil(t, feb.Categories[0].Change)
	assert.Equal(t, 100.0, *feb.Categories[0].Change)
}

func TestTwoMonths_NoData(t *testing.T) {
	assert.Empty(t, TwoMonths(nil, "RUB", march15))
}

func TestMonthlyTotals(t *testing.T) {
	txs := []model.Transaction{
		expense("2023-03-10", "1", "Food", "RUB"),
		expense("2023-04-10", "10", "Food", "RUB"),
		expense("2024-03-01", "20", "Food", "RUB"),
		expense("2024-03-02", "5", "Transport", "RUB"),
	}

	all := MonthlyTotals(txs, "RUB", "", march15)
	require.Len(t, all, 12)
	assert.Equal(t, "2023-04", all[0].YearMonth)
	assert.Equal(t, "2024-03", all[11].YearMonth)
	assert.True(t, decimal.NewFromInt(10).Equal(all[0].Value))
	assert.True(t, decimal.NewFromInt(25).Equal(all[11].Value))
	assert.True(t, HasValues(all))

	food := MonthlyTotals(txs, "RUB", "Food", march15)
	assert.True(t, decimal.NewFromInt(20).Equal(food[11].Value))

	assert.False(t, HasValues(MonthlyTotals(txs, "RSD", "", march15)))
}

func TestLedger_TransactionsSkipsMalformedRows(t *testing.T) {
	table := repository.NewMemoryTable(
		model.ExpenseHeader,
		[]string{"2024-03-01", "10", "a", "Food", "RUB", "2024-03", "ann"},
		[]string{"2024-03-01", "ten", "b", "Food", "RUB", "2024-03", "ann"},
	)
	l := NewLedger(table, repository.NewMemoryTable(), DeleteLatest)

	txs, skipped, err := l.Transactions(context.Background(), model.FlowExpense)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	assert.Equal(t, 1, skipped)
}
