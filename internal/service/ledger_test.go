package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/budget_bot/internal/model"
	"github.com/ivanoskov/budget_bot/internal/repository"
)

func expenseRow(desc string) []string {
	return []string{"2024-03-01", "10", desc, "Food", "RUB", "2024-03", "ann"}
}

func seeded(n int) *repository.MemoryTable {
	table := repository.NewMemoryTable(model.ExpenseHeader)
	for i := 0; i < n; i++ {
		_ = table.Append(context.Background(), expenseRow(string(rune('a'+i))))
	}
	return table
}

// failingTable отдаёт ошибку на любую операцию
type failingTable struct{ err error }

func (f failingTable) Rows(context.Context) ([][]string, error) { return nil, f.err }
func (f failingTable) Append(context.Context, []string) error   { return f.err }
func (f failingTable) DeleteRow(context.Context, int) error     { return f.err }

func TestLedger_AppendExpense(t *testing.T) {
	ctx := context.Background()
	expenses := repository.NewMemoryTable()
	l := NewLedger(expenses, repository.NewMemoryTable(), DeleteLatest)

	tx := model.Transaction{
		Date: "2024-03-05", Value: decimal.RequireFromString("150.50"), Description: "groceries",
		Label: "Food", PaymentType: "RUB", YearMonth: "2024-03", User: "ann",
	}
	require.NoError(t, l.Append(ctx, model.FlowExpense, tx))

	rows, _ := expenses.Rows(ctx)
	assert.Equal(t, [][]string{{"2024-03-05", "150.5", "groceries", "Food", "RUB", "2024-03", "ann"}}, rows)
}

func TestLedger_AppendIncomeCreatesHeaderOnce(t *testing.T) {
	ctx := context.Background()
	incomes := repository.NewMemoryTable()
	l := NewLedger(repository.NewMemoryTable(), incomes, DeleteLatest)

	tx := model.Transaction{Date: "2024-03-05", Value: decimal.NewFromInt(1000), Label: "Salary", PaymentType: "RSD"}
	require.NoError(t, l.Append(ctx, model.FlowIncome, tx))
	require.NoError(t, l.Append(ctx, model.FlowIncome, tx))

	rows, _ := incomes.Rows(ctx)
	require.Len(t, rows, 3)
	assert.Equal(t, model.IncomeHeader, rows[0])
}

func TestLedger_AppendWrapsStoreError(t *testing.T) {
	quota := errors.New("quota exceeded")
	l := NewLedger(failingTable{err: quota}, repository.NewMemoryTable(), DeleteLatest)

	err := l.Append(context.Background(), model.FlowExpense, model.Transaction{})
	assert.ErrorIs(t, err, quota)
}

func TestLedger_EntriesSkipHeaderAndBlankRows(t *testing.T) {
	ctx := context.Background()
	table := repository.NewMemoryTable(model.ExpenseHeader, expenseRow("a"), []string{"", ""}, expenseRow("b"))
	l := NewLedger(table, repository.NewMemoryTable(), DeleteLatest)

	entries, err := l.Entries(ctx, model.FlowExpense)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[0].Position)
	assert.Equal(t, 4, entries[1].Position)
}

func TestLedger_Last(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(seeded(5), repository.NewMemoryTable(), DeleteLatest)

	last, err := l.Last(ctx, model.FlowExpense, 3)
	require.NoError(t, err)
	require.Len(t, last, 3)
	assert.Equal(t, "c", last[0].Row[2])
	assert.Equal(t, "e", last[2].Row[2])

	few := NewLedger(seeded(1), repository.NewMemoryTable(), DeleteLatest)
	last, err = few.Last(ctx, model.FlowExpense, 3)
	require.NoError(t, err)
	assert.Len(t, last, 1)
}

func TestLedger_CaptureLastEmpty(t *testing.T) {
	l := NewLedger(repository.NewMemoryTable(model.ExpenseHeader), repository.NewMemoryTable(), DeleteLatest)

	_, err := l.CaptureLast(context.Background(), model.FlowExpense)
	assert.ErrorIs(t, err, ErrNothingToDelete)
}

func TestLedger_DeleteLastPolicies(t *testing.T) {
	tests := []struct {
		name        string
		policy      DeletePolicy
		wantErr     error
		wantDeleted string
		wantLeft    []string
	}{
		{name: "latest deletes the row appended after capture", policy: DeleteLatest, wantDeleted: "late", wantLeft: []string{"a", "b", "c"}},
		{name: "verified refuses when the last row changed", policy: DeleteVerified, wantErr: ErrRowChanged, wantLeft: []string{"a", "b", "c", "late"}},
		{name: "captured deletes the remembered position", policy: DeleteCaptured, wantDeleted: "c", wantLeft: []string{"a", "b", "late"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			table := seeded(3)
			l := NewLedger(table, repository.NewMemoryTable(), tt.policy)

			pending, err := l.CaptureLast(ctx, model.FlowExpense)
			require.NoError(t, err)
			assert.Equal(t, 4, pending.Position)
			assert.Equal(t, "c", pending.Row[2])

			require.NoError(t, table.Append(ctx, expenseRow("late")))

			deleted, err := l.DeleteLast(ctx, model.FlowExpense, pending)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantDeleted, deleted.Row[2])
			}

			entries, _ := l.Entries(ctx, model.FlowExpense)
			var left []string
			for _, e := range entries {
				left = append(left, e.Row[2])
			}
			assert.Equal(t, tt.wantLeft, left)
		})
	}
}

func TestLedger_DeleteVerifiedUnchanged(t *testing.T) {
	ctx := context.Background()
	table := seeded(2)
	l := NewLedger(table, repository.NewMemoryTable(), DeleteVerified)

	pending, err := l.CaptureLast(ctx, model.FlowExpense)
	require.NoError(t, err)

	deleted, err := l.DeleteLast(ctx, model.FlowExpense, pending)
	require.NoError(t, err)
	assert.Equal(t, "b", deleted.Row[2])
	assert.Equal(t, 2, table.Len())
}

func TestLedger_DeleteLatestEmptiedTable(t *testing.T) {
	ctx := context.Background()
	table := seeded(1)
	l := NewLedger(table, repository.NewMemoryTable(), DeleteLatest)

	pending, err := l.CaptureLast(ctx, model.FlowExpense)
	require.NoError(t, err)
	require.NoError(t, table.DeleteRow(ctx, 2))

	_, err = l.DeleteLast(ctx, model.FlowExpense, pending)
	assert.ErrorIs(t, err, ErrNothingToDelete)
}

func TestLedger_SupabaseSkipsHeader(t *testing.T) {
	l := NewLedger(repository.NewMemoryTable(), &repository.SupabaseTable{}, DeleteLatest)
	require.NoError(t, l.EnsureHeader(context.Background(), model.FlowIncome))
}
