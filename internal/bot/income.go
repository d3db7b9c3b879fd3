package bot

import (
	"context"
	"strings"

	"github.com/ivanoskov/budget_bot/internal/model"
)

func (b *Bot) handleIncomeMenu(t *turn) {
	t.replace(model.NewSession(t.ev.UserID, model.FlowIncome, model.StateIncomeMenu))
	t.say(Reply{Text: msgIncomeMenu, Keyboard: b.getIncomeMenuKeyboard()})
}

// handleIncomeCurrency начинает новую запись дохода
func (b *Bot) handleIncomeCurrency(t *turn) {
	s := model.NewSession(t.ev.UserID, model.FlowIncome, model.StateIncomeValue)
	s.PaymentType = t.code
	s.Stamp(b.today())
	t.replace(s)

	t.log.Info("income currency selected", "payment_type", t.code)
	t.say(Reply{
		Text:           "💰 You selected " + t.code + ". Now enter the income amount:",
		RemoveKeyboard: true,
	})
}

func (b *Bot) handleIncomeType(t *turn) {
	incomeType := strings.TrimSpace(t.ev.Text)
	if !b.choices.IsIncomeType(incomeType) {
		err := &ValidationError{Reason: ReasonUnknownIncomeType, Message: msgInvalidIncomeType}
		b.rejected(t, err, Reply{Text: msgInvalidIncomeType, Keyboard: b.getIncomeTypesKeyboard()})
		return
	}

	t.session.IncomeType = incomeType
	t.session.State = model.StateIncomeConfirmation
	t.touch()
	t.say(Reply{Text: incomeConfirmation(t.session, t.ev.UserLabel()), Keyboard: getConfirmationKeyboard()})
}

func (b *Bot) handleIncomeConfirmation(ctx context.Context, t *turn) {
	yes, ok := parseAnswer(t.ev.Text)
	if !ok {
		t.say(Reply{Text: msgAnswerYesNo, Keyboard: getConfirmationKeyboard()})
		return
	}

	defer t.replace(model.NewSession(t.ev.UserID, model.FlowIncome, model.StateIncomeMenu))

	if !yes {
		t.log.Info("income recording cancelled")
		t.say(Reply{Text: msgIncomeCancelled, Keyboard: b.getIncomeMenuKeyboard()})
		return
	}

	tx := t.session.Transaction(t.ev.UserLabel())
	if err := b.ledger.Append(ctx, model.FlowIncome, tx); err != nil {
		b.metrics.StoreError("append")
		t.log.Error("failed to append income row", "error", err)
		t.say(Reply{Text: msgIncomeFailed, Keyboard: b.getIncomeMenuKeyboard()})
		return
	}

	b.metrics.RowAppended(string(model.FlowIncome))
	t.log.Info("income recorded", "value", tx.Value.String(), "payment_type", tx.PaymentType)
	t.say(Reply{
		Text:     "✅ Income entry saved successfully!\n💰 " + tx.Value.String() + " " + tx.PaymentType + " - " + tx.Description,
		Keyboard: b.getIncomeMenuKeyboard(),
	})
}
