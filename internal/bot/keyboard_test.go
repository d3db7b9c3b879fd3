package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridKeyboard(t *testing.T) {
	assert.Nil(t, gridKeyboard(nil))
	assert.Equal(t, Keyboard{{"a", "b", "c"}, {"d"}}, gridKeyboard([]string{"a", "b", "c", "d"}))
}

func TestMainKeyboard(t *testing.T) {
	b := &Bot{choices: testSettings().Choices}

	assert.Equal(t, Keyboard{
		{"RUB 🇷🇺", "RSD 🇷🇸"},
		{labelShowLast, labelAnalytics},
		{labelDeleteLast, labelIncomeMenu},
	}, b.getMainKeyboard())
	assert.Equal(t, Keyboard{{labelTwoMonths, labelLastYear}, {labelCategoryChart}, {labelAnalyticsBack}}, b.getAnalyticsKeyboard())
}

func TestFormatEntries(t *testing.T) {
	row := []string{"2026-10-16", "10", "taxi", "Taxi", "RSD", "2026-10"}

	assert.True(t, strings.HasSuffix(formatExpenseEntry(row), "👤 User: "))
	assert.Contains(t, formatExpenseEntry(row), "🏷️ Category: Taxi")
	assert.Contains(t, formatIncomeEntry(row), "💰 Amount: 10 RSD")
}
