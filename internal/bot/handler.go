package bot

import (
	"context"
	"errors"

	"github.com/ivanoskov/budget_bot/internal/model"
)

// dispatch сначала разбирает фразы кнопок, затем свободный текст по состоянию
func (b *Bot) dispatch(ctx context.Context, t *turn) {
	switch t.trigger {
	case TriggerStart:
		b.handleStart(t)
	case TriggerHelp:
		b.handleHelp(t)
	case TriggerCurrency:
		b.handlePaymentType(t)
	case TriggerShowLast:
		b.handleShowLast(ctx, t, model.FlowExpense)
	case TriggerDeleteLast:
		b.handleDeleteRequest(ctx, t, model.FlowExpense)
	case TriggerIncomeMenu:
		b.handleIncomeMenu(t)
	case TriggerIncomeCurrency:
		b.handleIncomeCurrency(t)
	case TriggerIncomeShowLast:
		b.handleShowLast(ctx, t, model.FlowIncome)
	case TriggerIncomeDeleteLast:
		b.handleDeleteRequest(ctx, t, model.FlowIncome)
	case TriggerBackToMain:
		b.handleBackToMain(t, msgBackToMain)
	case TriggerAnalytics:
		b.handleAnalyticsMenu(t)
	case TriggerAnalyticsBack:
		b.handleBackToMain(t, msgBackToMain)
	case TriggerTwoMonths:
		b.handleTwoMonths(ctx, t)
	case TriggerLastYear:
		b.handleLastYear(ctx, t)
	case TriggerCategoryChart:
		b.handleCategoryChartRequest(t)
	default:
		b.handleText(ctx, t)
	}
}

func (b *Bot) handleText(ctx context.Context, t *turn) {
	switch t.session.State {
	case model.StateValue, model.StateIncomeValue:
		b.handleValue(t)
	case model.StateDescription, model.StateIncomeDescription:
		b.handleDescription(t)
	case model.StateCategory:
		b.handleCategory(t)
	case model.StateIncomeType:
		b.handleIncomeType(t)
	case model.StateConfirmation:
		b.handleExpenseConfirmation(ctx, t)
	case model.StateIncomeConfirmation:
		b.handleIncomeConfirmation(ctx, t)
	case model.StateDeleteConfirmation, model.StateIncomeDeleteConfirmation:
		b.handleDeleteConfirmation(ctx, t)
	case model.StateCategoryChart:
		b.handleCategoryChart(ctx, t)
	case model.StatePaymentType:
		t.say(Reply{Text: msgChoosePayment, Keyboard: b.getMainKeyboard()})
	case model.StateIncomeMenu:
		t.say(Reply{Text: msgIncomeMenu, Keyboard: b.getIncomeMenuKeyboard()})
	case model.StateAnalyticsMenu:
		t.say(Reply{Text: msgChooseAnalytics, Keyboard: b.getAnalyticsKeyboard()})
	default:
		t.say(Reply{Text: msgStartFirst})
	}
}

func (b *Bot) handleStart(t *turn) {
	t.replace(model.NewSession(t.ev.UserID, model.FlowExpense, model.StatePaymentType))
	t.log.Info("user started the bot")
	t.say(Reply{Text: msgHello, Keyboard: b.getMainKeyboard()})
}

func (b *Bot) handleHelp(t *turn) {
	t.say(Reply{Text: msgHelp, Markdown: true, Keyboard: b.getMainKeyboard()})
}

func (b *Bot) handleBackToMain(t *turn, text string) {
	t.replace(model.NewSession(t.ev.UserID, model.FlowExpense, model.StatePaymentType))
	t.say(Reply{Text: text, Keyboard: b.getMainKeyboard()})
}

// rejected сообщает об ошибке ввода, состояние не меняется
func (b *Bot) rejected(t *turn, err error, reply Reply) {
	reason := "unknown"
	var ve *ValidationError
	if errors.As(err, &ve) {
		reason = ve.Reason
	}
	b.metrics.Rejected(reason)
	t.log.Warn("input rejected", "reason", reason, "text", t.ev.Text)
	t.say(reply)
}

// handleValue принимает сумму для расхода или дохода
func (b *Bot) handleValue(t *turn) {
	income := t.session.State == model.StateIncomeValue

	value, err := b.validator.ValidateValue(t.ev.Text)
	if err != nil {
		text := err.Error()
		if income {
			text = "❌ " + text + "\nPlease enter a valid amount:"
		}
		b.rejected(t, err, Reply{Text: text})
		return
	}

	t.session.Value = value
	t.touch()
	if income {
		t.session.State = model.StateIncomeDescription
		t.say(Reply{
			Text:           "💰 Amount: " + value.String() + " " + t.session.PaymentType + "\nNow enter a description for this income:",
			RemoveKeyboard: true,
		})
		return
	}
	t.session.State = model.StateDescription
	t.say(Reply{Text: msgEnterDescription})
}

// handleDescription принимает описание для расхода или дохода
func (b *Bot) handleDescription(t *turn) {
	income := t.session.State == model.StateIncomeDescription

	description, err := b.validator.ValidateDescription(t.ev.Text)
	if err != nil {
		text := err.Error()
		if income {
			text = "❌ " + text + "\nPlease enter a valid description:"
		}
		b.rejected(t, err, Reply{Text: text})
		return
	}

	t.session.Description = description
	t.touch()
	if income {
		t.session.State = model.StateIncomeType
		t.say(Reply{
			Text:     "📝 Description: " + description + "\nNow select the income type:",
			Keyboard: b.getIncomeTypesKeyboard(),
		})
		return
	}
	t.session.State = model.StateCategory
	t.say(Reply{Text: msgChooseCategory, Keyboard: b.getCategoriesKeyboard()})
}
