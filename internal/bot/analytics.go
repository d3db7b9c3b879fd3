package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/ivanoskov/budget_bot/internal/model"
	"github.com/ivanoskov/budget_bot/internal/service"
)

func (b *Bot) handleAnalyticsMenu(t *turn) {
	t.replace(model.NewSession(t.ev.UserID, model.FlowExpense, model.StateAnalyticsMenu))
	t.say(Reply{Text: msgAvailableAnalytics, Keyboard: b.getAnalyticsKeyboard()})
}

func (b *Bot) handleCategoryChartRequest(t *turn) {
	t.replace(model.NewSession(t.ev.UserID, model.FlowExpense, model.StateCategoryChart))
	t.say(Reply{Text: msgChooseChartCat, Keyboard: b.getCategoriesKeyboard()})
}

// expenses читает все расходы для аналитики. При ошибке или пустой таблице ответ уже добавлен.
func (b *Bot) expenses(ctx context.Context, t *turn, failText string) ([]model.Transaction, bool) {
	txs, skipped, err := b.ledger.Transactions(ctx, model.FlowExpense)
	if err != nil {
		b.metrics.StoreError("read")
		t.log.Error("failed to read expenses for analytics", "error", err)
		t.say(Reply{Text: failText, Keyboard: b.getMainKeyboard()})
		return nil, false
	}
	if skipped > 0 {
		t.log.Warn("skipped unparsable rows", "count", skipped)
	}
	if len(txs) == 0 {
		t.say(Reply{Text: msgNoAnalyticsData, Keyboard: b.getMainKeyboard()})
		return nil, false
	}
	return txs, true
}

func (b *Bot) handleTwoMonths(ctx context.Context, t *turn) {
	txs, ok := b.expenses(ctx, t, msgAnalyticsFailed)
	if !ok {
		return
	}

	now := b.today()
	sent := 0
	for _, currency := range b.choices.CurrencyCodes() {
		for _, report := range service.TwoMonths(txs, currency, now) {
			table := formatMonthReport(report)
			if png := b.renderPie(t, report); png != nil {
				t.say(Reply{Image: png, Caption: fmt.Sprintf("📊 Analytics for %s - %s", currency, report.YearMonth)})
			}
			t.say(Reply{Text: table})
			sent++
		}
	}

	if sent == 0 {
		t.say(Reply{Text: msgNoTwoMonthsData, Keyboard: b.getMainKeyboard()})
		return
	}
	t.log.Info("two months analytics sent", "reports", sent)
	t.say(Reply{Text: msgChooseAnalytics, Keyboard: b.getAnalyticsKeyboard()})
}

func (b *Bot) handleLastYear(ctx context.Context, t *turn) {
	txs, ok := b.expenses(ctx, t, msgChartFailed)
	if !ok {
		return
	}

	now := b.today()
	sent := 0
	for _, currency := range b.choices.CurrencyCodes() {
		points := service.MonthlyTotals(txs, currency, "", now)
		if !service.HasValues(points) {
			continue
		}
		t.say(b.seriesReply(t, fmt.Sprintf("📊 Total Expenses - Last 12 Months (%s)", currency), points))
		sent++
	}

	if sent == 0 {
		t.say(Reply{Text: msgNoLastYearData, Keyboard: b.getMainKeyboard()})
		return
	}
	t.log.Info("last year chart sent", "currencies", sent)
	t.say(Reply{Text: msgChooseAnalytics, Keyboard: b.getAnalyticsKeyboard()})
}

// handleCategoryChart строит график по выбранной категории и возвращает к выбору оплаты
func (b *Bot) handleCategoryChart(ctx context.Context, t *turn) {
	category := t.ev.Text
	if !b.choices.IsCategory(category) {
		err := &ValidationError{Reason: ReasonUnknownCategory, Message: msgInvalidCategory}
		b.rejected(t, err, Reply{Text: msgInvalidCategory, Keyboard: b.getCategoriesKeyboard()})
		return
	}

	t.replace(model.NewSession(t.ev.UserID, model.FlowExpense, model.StatePaymentType))

	txs, ok := b.expenses(ctx, t, msgChartFailed)
	if !ok {
		return
	}

	now := b.today()
	sent := 0
	for _, currency := range b.choices.CurrencyCodes() {
		points := service.MonthlyTotals(txs, currency, category, now)
		if !service.HasValues(points) {
			continue
		}
		t.say(b.seriesReply(t, fmt.Sprintf("📊 %s Expenses - Last 12 Months (%s)", category, currency), points))
		sent++
	}

	if sent == 0 {
		t.say(Reply{Text: msgNoLastYearData, Keyboard: b.getMainKeyboard()})
		return
	}
	t.log.Info("category chart sent", "category", category, "currencies", sent)
	t.say(Reply{Text: msgChooseAnother, Keyboard: b.getAnalyticsKeyboard()})
}

// renderPie возвращает nil, если график недоступен
func (b *Bot) renderPie(t *turn, report service.MonthReport) []byte {
	if b.charts == nil {
		return nil
	}
	png, err := b.charts.CategoryPie(report)
	if err != nil {
		t.log.Warn("failed to render pie chart", "currency", report.Currency, "month", report.YearMonth, "error", err)
		return nil
	}
	return png
}

// seriesReply рисует линейный график, а без него отправляет значения текстом
func (b *Bot) seriesReply(t *turn, title string, points []service.MonthTotal) Reply {
	if b.charts != nil {
		png, err := b.charts.MonthlyLine(title, points)
		if err == nil {
			return Reply{Image: png, Caption: title}
		}
		t.log.Warn("failed to render line chart", "title", title, "error", err)
	}
	return Reply{Text: formatSeries(title, points)}
}

func formatMonthReport(r service.MonthReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s %s\n", r.YearMonth, r.Currency)
	for _, c := range r.Categories {
		fmt.Fprintf(&sb, "%s: %s (%.1f%%", c.Category, c.Value.StringFixed(2), c.Share)
		if c.Change != nil {
			fmt.Fprintf(&sb, ", Δ %+.1f%%", *c.Change)
		}
		sb.WriteString(")\n")
	}
	fmt.Fprintf(&sb, "Total: %s", r.Total.StringFixed(2))
	return sb.String()
}

func formatSeries(title string, points []service.MonthTotal) string {
	var sb strings.Builder
	sb.WriteString(title)
	for _, p := range points {
		fmt.Fprintf(&sb, "\n%s: %s", p.YearMonth, p.Value.StringFixed(2))
	}
	return sb.String()
}
