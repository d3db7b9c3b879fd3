package session

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/budget_bot/internal/model"
)

func TestMemory_GetMissing(t *testing.T) {
	m := NewMemory()

	s, found, err := m.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, s)
}

func TestMemory_SetThenGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	s := model.NewSession(1, model.FlowExpense, model.StateValue)
	s.PaymentType = "RUB"
	s.PendingDelete = &model.PendingDelete{Position: 3, Row: []string{"a"}}
	require.NoError(t, m.Set(ctx, 1, s))

	s.State = model.StateConfirmation
	s.PendingDelete.Row[0] = "changed"

	got, found, err := m.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.StateValue, got.State)
	assert.Equal(t, []string{"a"}, got.PendingDelete.Row)

	got.State = model.StateIdle
	again, _, _ := m.Get(ctx, 1)
	assert.Equal(t, model.StateValue, again.State)
}

func TestMemory_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	first := model.NewSession(5, model.FlowExpense, model.StateValue)
	first.Value = decimal.RequireFromString("10")
	require.NoError(t, m.Set(ctx, 5, first))
	require.NoError(t, m.Set(ctx, 5, model.NewSession(5, model.FlowIncome, model.StateIncomeMenu)))

	got, found, err := m.Get(ctx, 5)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.FlowIncome, got.Flow)
	assert.True(t, got.Value.IsZero())
	assert.Equal(t, 1, m.Len())
}
