package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Форматы даты в строке таблицы
const (
	DateLayout      = "2006-01-02"
	YearMonthLayout = "2006-01"
)

// Количество колонок в строке таблицы
const RowWidth = 7

// Заголовки таблиц расходов и доходов
var (
	ExpenseHeader = []string{"date", "value", "description", "category", "payment_type", "year_month", "user"}
	IncomeHeader  = []string{"date", "value", "description", "type", "payment_type", "year_month", "user"}
)

// Transaction - подтверждённая запись расхода или дохода.
// Label хранит категорию для расхода и тип для дохода.
type Transaction struct {
	Date        string          `json:"date"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description"`
	Label       string          `json:"label"`
	PaymentType string          `json:"payment_type"`
	YearMonth   string          `json:"year_month"`
	User        string          `json:"user"`
}

// Row возвращает строку таблицы в фиксированном порядке колонок
func (t Transaction) Row() []string {
	return []string{
		t.Date,
		t.Value.String(),
		t.Description,
		t.Label,
		t.PaymentType,
		t.YearMonth,
		t.User,
	}
}

// TransactionFromRow разбирает строку таблицы. Недостающие колонки остаются пустыми.
func TransactionFromRow(row []string) (Transaction, error) {
	cells := make([]string, RowWidth)
	copy(cells, row)

	value, err := decimal.NewFromString(strings.TrimSpace(cells[1]))
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid value %q: %w", cells[1], err)
	}

	return Transaction{
		Date:        cells[0],
		Value:       value,
		Description: cells[2],
		Label:       cells[3],
		PaymentType: cells[4],
		YearMonth:   cells[5],
		User:        cells[6],
	}, nil
}

// ParsedDate возвращает дату записи
func (t Transaction) ParsedDate() (time.Time, error) {
	return time.Parse(DateLayout, t.Date)
}

// IsHeader сообщает, совпадает ли строка с заголовком (без учёта регистра)
func IsHeader(row, header []string) bool {
	if len(row) < len(header) {
		return false
	}
	for i, name := range header {
		if !strings.EqualFold(strings.TrimSpace(row[i]), name) {
			return false
		}
	}
	return true
}

// SameRow сравнивает две строки таблицы, игнорируя пустые хвостовые ячейки
func SameRow(a, b []string) bool {
	a, b = trimRow(a), trimRow(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func trimRow(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}
	return row[:end]
}
