package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ivanoskov/budget_bot/internal/model"
)

var hundred = decimal.NewFromInt(100)

// CategoryStat - сумма по категории за месяц
type CategoryStat struct {
	Category string
	Value    decimal.Decimal
	Share    float64  // доля от суммы за месяц, %
	Change   *float64 // изменение к предыдущему месяцу, %; nil, если сравнивать не с чем
}

// MonthReport - расходы за месяц в одной валюте по категориям
type MonthReport struct {
	Currency   string
	YearMonth  string
	Categories []CategoryStat
	Total      decimal.Decimal
}

// MonthTotal - точка помесячного графика
type MonthTotal struct {
	YearMonth string
	Value     decimal.Decimal
}

// Transactions читает и разбирает все записи. Строки, которые не удалось разобрать, пропускаются.
func (l *Ledger) Transactions(ctx context.Context, flow model.Flow) ([]model.Transaction, int, error) {
	entries, err := l.Entries(ctx, flow)
	if err != nil {
		return nil, 0, err
	}

	txs := make([]model.Transaction, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		tx, err := model.TransactionFromRow(e.Row)
		if err != nil {
			skipped++
			continue
		}
		txs = append(txs, tx)
	}
	return txs, skipped, nil
}

func monthOf(tx model.Transaction) string {
	if ym := strings.TrimSpace(tx.YearMonth); ym != "" {
		return ym
	}
	if d, err := tx.ParsedDate(); err == nil {
		return d.Format(model.YearMonthLayout)
	}
	return ""
}

func monthKey(t time.Time, offset int) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, offset, 0).Format(model.YearMonthLayout)
}

// TwoMonths строит отчёты по категориям за текущий и предыдущий месяц в валюте.
// Месяцы без расходов не попадают в результат. Отчёты идут от нового к старому.
func TwoMonths(txs []model.Transaction, currency string, now time.Time) []MonthReport {
	byMonth := make(map[string]map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.PaymentType != currency {
			continue
		}
		m := monthOf(tx)
		if byMonth[m] == nil {
			byMonth[m] = make(map[string]decimal.Decimal)
		}
		byMonth[m][tx.Label] = byMonth[m][tx.Label].Add(tx.Value)
	}

	var reports []MonthReport
	for offset := 0; offset >= -1; offset-- {
		month := monthKey(now, offset)
		totals := byMonth[month]
		if len(totals) == 0 {
			continue
		}
		prev := byMonth[monthKey(now, offset-1)]
		reports = append(reports, buildMonthReport(currency, month, totals, prev))
	}
	return reports
}

func buildMonthReport(currency, month string, totals, prev map[string]decimal.Decimal) MonthReport {
	r := MonthReport{Currency: currency, YearMonth: month}
	for _, v := range totals {
		r.Total = r.Total.Add(v)
	}

	for category, v := range totals {
		stat := CategoryStat{Category: category, Value: v}
		if r.Total.IsPositive() {
			stat.Share = v.Div(r.Total).Mul(hundred).Round(1).InexactFloat64()
		}
		if p, ok := prev[category]; ok && p.IsPositive() {
			ch := v.Sub(p).Div(p).Mul(hundred).Round(1).InexactFloat64()
			stat.Change = &ch
		}
		r.Categories = append(r.Categories, stat)
	}

	sort.Slice(r.Categories, func(i, j int) bool {
		ci, cj := r.Categories[i], r.Categories[j]
		if !ci.Value.Equal(cj.Value) {
			return ci.Value.GreaterThan(cj.Value)
		}
		return ci.Category < cj.Category
	})
	return r
}

// MonthlyTotals возвращает суммы за последние 12 месяцев (включая текущий) в валюте.
// Пустая category означает все категории. Месяцы без записей равны нулю.
func MonthlyTotals(txs []model.Transaction, currency, category string, now time.Time) []MonthTotal {
	const months = 12

	points := make([]MonthTotal, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := monthKey(now, i-(months-1))
		points[i] = MonthTotal{YearMonth: key}
		index[key] = i
	}

	for _, tx := range txs {
		if tx.PaymentType != currency {
			continue
		}
		if category != "" && tx.Label != category {
			continue
		}
		if i, ok := index[monthOf(tx)]; ok {
			points[i].Value = points[i].Value.Add(tx.Value)
		}
	}
	return points
}

// HasValues сообщает, есть ли в ряду ненулевые значения
func HasValues(points []MonthTotal) bool {
	for _, p := range points {
		if !p.Value.IsZero() {
			return true
		}
	}
	return false
}
