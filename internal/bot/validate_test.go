package bot

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/budget_bot/internal/model"
)

func TestValidator_ValidateValue(t *testing.T) {
	v := NewValidator(10_000_000, 200)

	tests := []struct {
		input  string
		want   string
		reason string
	}{
		{input: "150.50", want: "150.5"},
		{input: " 42 ", want: "42"},
		{input: "10000000", want: "10000000"},
		{input: "0.01", want: "0.01"},
		{input: "abc", reason: ReasonNotNumber},
		{input: "1,5", reason: ReasonNotNumber},
		{input: "", reason: ReasonNotNumber},
		{input: "0", reason: ReasonValueRange},
		{input: "-1", reason: ReasonValueRange},
		{input: "10000000.01", reason: ReasonValueRange},
		{input: "12.50", want: "12.5"},
		{input: "1.500", want: "1.5"},
		{input: "1.005", reason: ReasonValuePrecision},
		{input: "1e100000000", reason: ReasonNotNumber},
		{input: "1e-100000", reason: ReasonNotNumber},
		{input: "1E3", reason: ReasonNotNumber},
		{input: "0." + strings.Repeat("0", 40) + "1", reason: ReasonNotNumber},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := v.ValidateValue(tt.input)
			if tt.reason != "" {
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, tt.reason, ve.Reason)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestValidator_ValidateDescription(t *testing.T) {
	v := NewValidator(100, 5)

	got, err := v.ValidateDescription("  кофе ")
	require.NoError(t, err)
	assert.Equal(t, "кофе", got)

	_, err = v.ValidateDescription("\t\n")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, ReasonEmptyDescription, ve.Reason)

	_, err = v.ValidateDescription("кофе и")
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, ReasonDescriptionTooLong, ve.Reason)
	assert.Equal(t, "Description cannot be longer than 5 characters", err.Error())
}

func TestCheckChoices(t *testing.T) {
	currencies := []model.Currency{{Code: "RUB", Flag: "🇷🇺"}}

	tests := []struct {
		name        string
		categories  []string
		incomeTypes []string
		errMsg      string
	}{
		{name: "valid", categories: []string{"Food", "Taxi"}, incomeTypes: []string{"Salary"}},
		{name: "duplicate category", categories: []string{"Food", "Food"}, incomeTypes: []string{"Salary"}, errMsg: "duplicate category"},
		{name: "menu phrase", categories: []string{"Show analytics 📊"}, incomeTypes: []string{"Salary"}, errMsg: "menu button"},
		{name: "currency label", categories: []string{"Food"}, incomeTypes: []string{"Income RUB 🇷🇺"}, errMsg: "income type"},
		{name: "command", categories: []string{"/start"}, incomeTypes: []string{"Salary"}, errMsg: "command"},
		{name: "answer", categories: []string{"yes"}, incomeTypes: []string{"Salary"}, errMsg: "Yes/No"},
		{name: "surrounding spaces", categories: []string{" Food"}, incomeTypes: []string{"Salary"}, errMsg: "surrounding spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckChoices(model.Options{Currencies: currencies, Categories: tt.categories, IncomeTypes: tt.incomeTypes})
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
