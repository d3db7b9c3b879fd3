package bot

import (
	"strings"

	"github.com/ivanoskov/budget_bot/internal/model"
)

// Тексты кнопок и команд
const (
	cmdStart = "/start"
	cmdHelp  = "/help"

	labelShowLast       = "Show Last 3 Entries 📜"
	labelDeleteLast     = "Delete last row 🗑️"
	labelAnalytics      = "Show analytics 📊"
	labelAnalyticsBack  = "Back 🔙"
	labelTwoMonths      = "Two months 📅"
	labelLastYear       = "Last year 🗓️"
	labelCategoryChart  = "Single category chart 📊"
	labelIncomeMenu     = "Income menu 💰"
	labelIncomeShowLast = "Show Last 3 Income Entries 📜"
	labelIncomeDelete   = "Delete last income row 🗑️"
	labelBackToMain     = "Back to Main 🔙"

	answerYes = "Yes"
	answerNo  = "No"
)

// Trigger - вид входящего сообщения
type Trigger int

const (
	// TriggerText - свободный текст, смысл зависит от состояния
	TriggerText Trigger = iota
	TriggerStart
	TriggerHelp
	TriggerCurrency
	TriggerShowLast
	TriggerDeleteLast
	TriggerAnalytics
	TriggerAnalyticsBack
	TriggerTwoMonths
	TriggerLastYear
	TriggerCategoryChart
	TriggerIncomeMenu
	TriggerIncomeCurrency
	TriggerIncomeShowLast
	TriggerIncomeDeleteLast
	TriggerBackToMain
)

var triggerNames = map[Trigger]string{
	TriggerText:             "text",
	TriggerStart:            "start",
	TriggerHelp:             "help",
	TriggerCurrency:         "currency",
	TriggerShowLast:         "show_last",
	TriggerDeleteLast:       "delete_last",
	TriggerAnalytics:        "analytics",
	TriggerAnalyticsBack:    "analytics_back",
	TriggerTwoMonths:        "two_months",
	TriggerLastYear:         "last_year",
	TriggerCategoryChart:    "category_chart",
	TriggerIncomeMenu:       "income_menu",
	TriggerIncomeCurrency:   "income_currency",
	TriggerIncomeShowLast:   "income_show_last",
	TriggerIncomeDeleteLast: "income_delete_last",
	TriggerBackToMain:       "back_to_main",
}

func (t Trigger) String() string {
	if name, ok := triggerNames[t]; ok {
		return name
	}
	return "unknown"
}

// replacesSession сообщает, что обработчик заменяет сессию целиком
// и прежнее состояние ему не нужно
func (t Trigger) replacesSession() bool {
	switch t {
	case TriggerStart, TriggerCurrency, TriggerDeleteLast, TriggerIncomeMenu,
		TriggerIncomeCurrency, TriggerIncomeDeleteLast, TriggerBackToMain, TriggerAnalyticsBack:
		return true
	}
	return false
}

var phraseTriggers = map[string]Trigger{
	labelShowLast:       TriggerShowLast,
	labelDeleteLast:     TriggerDeleteLast,
	labelAnalytics:      TriggerAnalytics,
	labelAnalyticsBack:  TriggerAnalyticsBack,
	labelTwoMonths:      TriggerTwoMonths,
	labelLastYear:       TriggerLastYear,
	labelCategoryChart:  TriggerCategoryChart,
	labelIncomeMenu:     TriggerIncomeMenu,
	labelIncomeShowLast: TriggerIncomeShowLast,
	labelIncomeDelete:   TriggerIncomeDeleteLast,
	labelBackToMain:     TriggerBackToMain,
}

// Classify определяет вид сообщения. Для выбора валюты возвращается её код.
// Фразы кнопок распознаются в любом состоянии.
func Classify(text string, currencies []model.Currency) (Trigger, string) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "/") {
		fields := strings.Fields(text)
		cmd, _, _ := strings.Cut(fields[0], "@")
		switch cmd {
		case cmdStart:
			return TriggerStart, ""
		case cmdHelp:
			return TriggerHelp, ""
		}
		return TriggerText, ""
	}

	if t, ok := phraseTriggers[text]; ok {
		return t, ""
	}

	for _, c := range currencies {
		switch text {
		case c.Label():
			return TriggerCurrency, c.Code
		case c.IncomeLabel():
			return TriggerIncomeCurrency, c.Code
		}
	}
	return TriggerText, ""
}

// parseAnswer распознаёт ответ Yes/No без учёта регистра
func parseAnswer(text string) (yes bool, ok bool) {
	switch {
	case strings.EqualFold(strings.TrimSpace(text), answerYes):
		return true, true
	case strings.EqualFold(strings.TrimSpace(text), answerNo):
		return false, true
	default:
		return false, false
	}
}
