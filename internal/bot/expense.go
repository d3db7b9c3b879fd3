package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/ivanoskov/budget_bot/internal/model"
	"github.com/ivanoskov/budget_bot/internal/service"
)

// handlePaymentType начинает новую запись расхода
func (b *Bot) handlePaymentType(t *turn) {
	s := model.NewSession(t.ev.UserID, model.FlowExpense, model.StateValue)
	s.PaymentType = t.code
	s.Stamp(b.today())
	t.replace(s)

	t.log.Info("payment type selected", "payment_type", t.code)
	t.say(Reply{
		Text:           "You selected " + t.code + ". Now enter the expense amount:",
		RemoveKeyboard: true,
	})
}

func (b *Bot) handleCategory(t *turn) {
	category := strings.TrimSpace(t.ev.Text)
	if !b.choices.IsCategory(category) {
		err := &ValidationError{Reason: ReasonUnknownCategory, Message: msgInvalidCategory}
		b.rejected(t, err, Reply{Text: msgInvalidCategory, Keyboard: b.getCategoriesKeyboard()})
		return
	}

	t.session.Category = category
	t.session.State = model.StateConfirmation
	t.touch()
	t.say(Reply{Text: expenseConfirmation(t.session), Keyboard: getConfirmationKeyboard()})
}

func (b *Bot) handleExpenseConfirmation(ctx context.Context, t *turn) {
	yes, ok := parseAnswer(t.ev.Text)
	if !ok {
		t.say(Reply{Text: msgAnswerYesNo, Keyboard: getConfirmationKeyboard()})
		return
	}

	defer t.replace(model.NewSession(t.ev.UserID, model.FlowExpense, model.StatePaymentType))

	if !yes {
		t.log.Info("expense recording cancelled")
		t.say(Reply{Text: msgExpenseCancelled, Keyboard: b.getMainKeyboard()})
		return
	}

	tx := t.session.Transaction(t.ev.UserLabel())
	if err := b.ledger.Append(ctx, model.FlowExpense, tx); err != nil {
		b.metrics.StoreError("append")
		t.log.Error("failed to append expense row", "error", err)
		t.say(Reply{Text: msgExpenseFailed, Keyboard: b.getMainKeyboard()})
		return
	}

	b.metrics.RowAppended(string(model.FlowExpense))
	t.log.Info("expense recorded", "value", tx.Value.String(), "category", tx.Label)
	t.say(Reply{Text: msgExpenseSaved, Keyboard: b.getMainKeyboard()})
}

// menuKeyboard - клавиатура, к которой возвращается поток после действия
func (b *Bot) menuKeyboard(flow model.Flow) Keyboard {
	if flow == model.FlowIncome {
		return b.getIncomeMenuKeyboard()
	}
	return b.getMainKeyboard()
}

// handleShowLast показывает последние записи таблицы. Состояние не меняется.
func (b *Bot) handleShowLast(ctx context.Context, t *turn, flow model.Flow) {
	const count = 3
	keyboard := b.menuKeyboard(flow)

	entries, err := b.ledger.Last(ctx, flow, count)
	if err != nil {
		b.metrics.StoreError("read")
		t.log.Error("failed to read last entries", "flow", flow, "error", err)
		text := msgFetchFailed
		if flow == model.FlowIncome {
			text = msgIncomeFetchFailed
		}
		t.say(Reply{Text: text, Keyboard: keyboard})
		return
	}

	if flow == model.FlowIncome {
		if len(entries) == 0 {
			t.say(Reply{Text: msgNoIncomeEntries, Keyboard: keyboard})
			return
		}
		blocks := make([]string, 0, len(entries))
		for i := len(entries) - 1; i >= 0; i-- {
			blocks = append(blocks, "Entry "+strconv.Itoa(len(blocks)+1)+":\n"+formatIncomeEntry(entries[i].Row))
		}
		t.say(Reply{Text: "💰 Last 3 Income Entries:\n\n" + joinBlocks(blocks), Keyboard: keyboard})
		return
	}

	if len(entries) == 0 {
		t.say(Reply{Text: msgNoEntries, Keyboard: keyboard})
		return
	}
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, formatExpenseEntry(e.Row))
	}
	t.say(Reply{Text: "📋 Last 3 entries:\n\n" + joinBlocks(blocks), Keyboard: keyboard})
}

// handleDeleteRequest запоминает последнюю запись и просит подтвердить удаление
func (b *Bot) handleDeleteRequest(ctx context.Context, t *turn, flow model.Flow) {
	keyboard := b.menuKeyboard(flow)

	pending, err := b.ledger.CaptureLast(ctx, flow)
	switch {
	case errors.Is(err, service.ErrNothingToDelete):
		text := msgNoDataToDelete
		if flow == model.FlowIncome {
			text = msgNoIncomeToDelete
		}
		t.say(Reply{Text: text, Keyboard: keyboard})
		return
	case err != nil:
		b.metrics.StoreError("read")
		t.log.Error("failed to prepare deletion", "flow", flow, "error", err)
		t.say(Reply{Text: msgPrepareFailed, Keyboard: keyboard})
		return
	}

	state := model.StateDeleteConfirmation
	text := "⚠️ Are you sure you want to delete this entry?\n\n" + formatExpenseEntry(pending.Row) + "\n\nConfirm? (Yes/No)"
	if flow == model.FlowIncome {
		state = model.StateIncomeDeleteConfirmation
		text = "🗑️ Confirm Income Deletion\n\nAre you sure you want to delete this income entry?\n\n" + formatIncomeEntry(pending.Row)
	}

	s := model.NewSession(t.ev.UserID, flow, state)
	s.PendingDelete = pending
	t.replace(s)

	t.log.Info("deletion requested", "flow", flow, "position", pending.Position)
	t.say(Reply{Text: text, Keyboard: getConfirmationKeyboard()})
}

// handleDeleteConfirmation удаляет запись после ответа Yes и возвращает в меню потока
func (b *Bot) handleDeleteConfirmation(ctx context.Context, t *turn) {
	flow := model.FlowExpense
	next := model.StatePaymentType
	if t.session.State == model.StateIncomeDeleteConfirmation {
		flow = model.FlowIncome
		next = model.StateIncomeMenu
	}
	keyboard := b.menuKeyboard(flow)

	yes, ok := parseAnswer(t.ev.Text)
	if !ok {
		t.say(Reply{Text: msgAnswerYesNo, Keyboard: getConfirmationKeyboard()})
		return
	}

	pending := t.session.PendingDelete
	t.replace(model.NewSession(t.ev.UserID, flow, next))

	if !yes {
		text := msgDeleteCancelled
		if flow == model.FlowIncome {
			text = msgIncomeDeleteCancelled
		}
		t.log.Info("deletion cancelled", "flow", flow)
		t.say(Reply{Text: text, Keyboard: keyboard})
		return
	}

	deleted, err := b.ledger.DeleteLast(ctx, flow, pending)
	switch {
	case errors.Is(err, service.ErrNothingToDelete):
		text := msgNoDataToDelete
		if flow == model.FlowIncome {
			text = msgNoIncomeToDelete
		}
		t.say(Reply{Text: text, Keyboard: keyboard})
	case errors.Is(err, service.ErrRowChanged):
		t.log.Warn("last entry changed before deletion", "flow", flow)
		t.say(Reply{Text: msgRowChanged, Keyboard: keyboard})
	case err != nil:
		b.metrics.StoreError("delete")
		t.log.Error("failed to delete row", "flow", flow, "error", err)
		text := msgDeleteFailed
		if flow == model.FlowIncome {
			text = msgIncomeDeleteFailed
		}
		t.say(Reply{Text: text, Keyboard: keyboard})
	default:
		b.metrics.RowDeleted(string(flow))
		t.log.Info("row deleted", "flow", flow, "position", deleted.Position)
		text := msgRowDeleted
		if flow == model.FlowIncome {
			text = msgIncomeRowDeleted
		}
		t.say(Reply{Text: text, Keyboard: keyboard})
	}
}
